package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/vehiclelink/vehicle-adapter/internal/log"
	"github.com/vehiclelink/vehicle-adapter/pkg/adapter"
	"github.com/vehiclelink/vehicle-adapter/pkg/config"
	"github.com/vehiclelink/vehicle-adapter/pkg/fleet"
	"github.com/vehiclelink/vehicle-adapter/pkg/httpapi"
)

const (
	defaultPort    = 8080
	defaultTimeout = 30 * time.Second
)

const (
	EnvHost    = "VEHICLE_ADAPTER_HOST"
	EnvPort    = "VEHICLE_ADAPTER_PORT"
	EnvTimeout = "VEHICLE_ADAPTER_TIMEOUT"
	EnvVerbose = "VEHICLE_ADAPTER_VERBOSE"
)

type serverConfig struct {
	verbose bool
	host    string
	port    int
	timeout time.Duration
}

var httpConfig = &serverConfig{}

func init() {
	flag.BoolVar(&httpConfig.verbose, "verbose", false, "Enable verbose logging")
	flag.StringVar(&httpConfig.host, "host", "localhost", "Server `hostname`")
	flag.IntVar(&httpConfig.port, "port", defaultPort, "`Port` to listen on")
	flag.DurationVar(&httpConfig.timeout, "timeout", defaultTimeout, "Timeout interval for a single job")
}

func Usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage: %s [OPTION...]\n", os.Args[0])
	fmt.Fprintf(out, "\nA server that translates job requests into vehicle API calls")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Credential store and vehicle API settings are read from the environment;")
	fmt.Fprintln(out, "see FLEET_API_URL, STORE_BACKEND, STORE_PROJECT_ID, and STORE_TABLE.")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Options:")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = Usage
	flag.Parse()
	if err := readFromEnvironment(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	if httpConfig.verbose {
		log.SetLevel(log.LevelDebug)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	store, err := cfg.OpenStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open credential store: %s\n", err)
		os.Exit(1)
	}

	dispatcher := adapter.New(store, fleet.NewClient(cfg.FleetAPIURL))
	handler := withTimeout(httpapi.Handler(dispatcher), httpConfig.timeout)

	addr := fmt.Sprintf("%s:%d", httpConfig.host, httpConfig.port)
	log.Info("Listening on %s", addr)
	log.Error("Server stopped: %s", http.ListenAndServe(addr, handler))
	os.Exit(1)
}

// withTimeout bounds each job by deadline. A hung remote call otherwise hangs the handler
// indefinitely.
func withTimeout(next http.Handler, timeout time.Duration) http.Handler {
	if timeout <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), timeout)
		defer cancel()
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

// readFromEnvironment applies configuration from environment variables.
// Values set on the command line are not overwritten.
func readFromEnvironment() error {
	if httpConfig.host == "localhost" {
		if host, ok := os.LookupEnv(EnvHost); ok {
			httpConfig.host = host
		}
	}

	if !httpConfig.verbose {
		if verbose, ok := os.LookupEnv(EnvVerbose); ok {
			httpConfig.verbose = verbose != "false" && verbose != "0"
		}
	}

	var err error
	if httpConfig.port == defaultPort {
		if port, ok := os.LookupEnv(EnvPort); ok {
			httpConfig.port, err = strconv.Atoi(port)
			if err != nil {
				return fmt.Errorf("invalid port: %s", port)
			}
		}
	}

	if httpConfig.timeout == defaultTimeout {
		if timeoutEnv, ok := os.LookupEnv(EnvTimeout); ok {
			httpConfig.timeout, err = time.ParseDuration(timeoutEnv)
			if err != nil {
				return fmt.Errorf("invalid timeout: %s", timeoutEnv)
			}
		}
	}

	return nil
}

package main

import (
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/vehiclelink/vehicle-adapter/internal/log"
	"github.com/vehiclelink/vehicle-adapter/pkg/adapter"
	"github.com/vehiclelink/vehicle-adapter/pkg/config"
	"github.com/vehiclelink/vehicle-adapter/pkg/fleet"
	"github.com/vehiclelink/vehicle-adapter/pkg/httpapi"
)

// EnvPayload selects the invocation payload shape: "job" receives the Job directly as the
// event body, "proxy" receives an API-gateway request with a JSON-encoded string body.
const EnvPayload = "LAMBDA_PAYLOAD"

func main() {
	if verbose, ok := os.LookupEnv("VEHICLE_ADAPTER_VERBOSE"); ok && verbose != "false" && verbose != "0" {
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
	switch payload := os.Getenv(EnvPayload); payload {
	case "proxy":
		lambda.Start(httpapi.ProxyHandler(dispatcher))
	case "", "job":
		lambda.Start(httpapi.TypedHandler(dispatcher))
	default:
		fmt.Fprintf(os.Stderr, "Unknown %s value %q\n", EnvPayload, payload)
		os.Exit(1)
	}
}

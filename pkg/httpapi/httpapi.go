// Package httpapi exposes the dispatcher through the adapter's inbound surfaces: a plain HTTP
// handler and two serverless handler shapes. Each surface only translates its environment's
// request/response framing; behavior lives in the dispatcher.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/vehiclelink/vehicle-adapter/internal/log"
	"github.com/vehiclelink/vehicle-adapter/pkg/adapter"
)

const maxRequestBodyBytes = 4096

func badRequest(err error) adapter.Result {
	return adapter.Result{
		Status:     "errored",
		Error:      err.Error(),
		StatusCode: http.StatusBadRequest,
	}
}

// Handler returns an http.Handler that decodes a Job from the request body and replies with
// the job's Result as JSON, using the Result's status code as the HTTP status.
func Handler(d *adapter.Dispatcher) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		log.Info("Received %s request for %s", req.Method, req.URL.Path)
		if req.Method != http.MethodPost {
			writeResult(w, adapter.Result{
				Status:     "errored",
				Error:      "method not allowed",
				StatusCode: http.StatusMethodNotAllowed,
			})
			return
		}

		var job adapter.Job
		decoder := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxRequestBodyBytes))
		if err := decoder.Decode(&job); err != nil {
			writeResult(w, badRequest(fmt.Errorf("could not parse job request: %w", err)))
			return
		}
		writeResult(w, d.Run(req.Context(), job))
	})
}

func writeResult(w http.ResponseWriter, result adapter.Result) {
	body, err := json.Marshal(result)
	if err != nil {
		log.Error("Error serializing result %+v: %s", result, err)
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintln(w, `{"error": "internal server error"}`)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(result.StatusCode)
	w.Write(append(body, '\n'))
}

// TypedHandler returns a serverless handler that receives the Job as its typed event payload.
// The returned error is always nil: failures are conveyed inside the Result so that every
// invocation produces exactly one response.
func TypedHandler(d *adapter.Dispatcher) func(context.Context, adapter.Job) (adapter.Result, error) {
	return func(ctx context.Context, job adapter.Job) (adapter.Result, error) {
		return d.Run(ctx, job), nil
	}
}

// ProxyHandler returns a serverless handler for API-gateway invocations, which deliver the Job
// as a JSON-encoded string body and expect a JSON-encoded string body plus an explicit status
// code in return.
func ProxyHandler(d *adapter.Dispatcher) func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		var job adapter.Job
		var result adapter.Result
		if err := json.Unmarshal([]byte(req.Body), &job); err != nil {
			result = badRequest(fmt.Errorf("could not parse job request: %w", err))
		} else {
			result = d.Run(ctx, job)
		}

		body, err := json.Marshal(result)
		if err != nil {
			log.Error("Error serializing result %+v: %s", result, err)
			return events.APIGatewayProxyResponse{
				StatusCode: http.StatusInternalServerError,
				Body:       `{"error": "internal server error"}`,
			}, nil
		}
		return events.APIGatewayProxyResponse{
			StatusCode: result.StatusCode,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       string(body),
		}, nil
	}
}

// Package fleet implements a minimal REST client for a Fleet-style vehicle telematics API.
//
// Every operation requires a bearer credential resolved by the caller; the client holds no
// account state of its own. Vehicles must be woken with [Client.Wake] before other operations
// can succeed, a remote-side requirement that the client does not enforce.
package fleet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/vehiclelink/vehicle-adapter/internal/log"
)

// MaxResponseLength caps the byte-length of remote responses the client will read.
const MaxResponseLength = 100000

const defaultUserAgent = "vehicle-adapter/1.0.0"

// Client issues requests to the vehicle API rooted at a base URL.
type Client struct {
	UserAgent string
	baseURL   string
	client    http.Client
}

// NewClient returns a Client for the API server at baseURL (scheme included).
func NewClient(baseURL string) *Client {
	return &Client{
		UserAgent: defaultUserAgent,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
	}
}

func authHeader(token string) string {
	return "Bearer " + strings.TrimSpace(token)
}

// send issues a request to endpoint and returns the response body. Non-200 statuses are
// returned as an *HttpError carrying the remote status code and body.
func (c *Client) send(ctx context.Context, method, token, endpoint string, command interface{}) ([]byte, error) {
	url := c.baseURL + "/" + endpoint
	var bodyReader io.Reader
	if command != nil {
		body, err := json.Marshal(command)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(body)
	}
	log.Debug("Sending %s request to %s", method, url)
	request, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("error constructing request to %s: %w", endpoint, err)
	}
	request.Header.Set("User-Agent", c.UserAgent)
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", authHeader(token))
	request.Header.Set("Accept", "*/*")

	result, err := c.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("error fetching %s: %w", url, err)
	}
	defer result.Body.Close()

	reader := io.LimitedReader{R: result.Body, N: MaxResponseLength + 1}
	body, err := io.ReadAll(&reader)
	if err != nil {
		return nil, err
	}
	if len(body) == MaxResponseLength+1 {
		return nil, fmt.Errorf("response from %s exceeds maximum length", url)
	}

	log.Debug("Server returned %d: %s: %s", result.StatusCode, http.StatusText(result.StatusCode), body)
	if result.StatusCode != http.StatusOK {
		return nil, &HttpError{Code: result.StatusCode, Message: string(body)}
	}
	return body, nil
}

// Wake requests a transition out of the vehicle's low-power state and returns the state
// reported by the server. The vehicle may not be online yet when Wake returns; the caller
// decides whether to poll.
func (c *Client) Wake(ctx context.Context, token, vehicleID string) (string, error) {
	var response struct {
		WakeResponse struct {
			State string `json:"state"`
		} `json:"response"`
	}
	endpoint := fmt.Sprintf("api/1/vehicles/%s/wake_up", vehicleID)
	body, err := c.send(ctx, http.MethodPost, token, endpoint, nil)
	if err != nil {
		return "", err
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("unable to parse wake response: %w", err)
	}
	return response.WakeResponse.State, nil
}

// VehicleData retrieves the current telemetry readings for a vehicle.
func (c *Client) VehicleData(ctx context.Context, token, vehicleID string) (Telemetry, error) {
	var response struct {
		Data struct {
			VehicleState struct {
				Odometer float64 `json:"odometer"`
			} `json:"vehicle_state"`
			ChargeState struct {
				BatteryLevel int64 `json:"battery_level"`
			} `json:"charge_state"`
			DriveState struct {
				Longitude float64 `json:"longitude"`
				Latitude  float64 `json:"latitude"`
			} `json:"drive_state"`
		} `json:"response"`
	}
	endpoint := fmt.Sprintf("api/1/vehicles/%s/vehicle_data", vehicleID)
	body, err := c.send(ctx, http.MethodGet, token, endpoint, nil)
	if err != nil {
		return Telemetry{}, err
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return Telemetry{}, fmt.Errorf("unable to parse vehicle data: %w", err)
	}
	return Telemetry{
		Odometer:     response.Data.VehicleState.Odometer,
		BatteryLevel: response.Data.ChargeState.BatteryLevel,
		Longitude:    response.Data.DriveState.Longitude,
		Latitude:     response.Data.DriveState.Latitude,
	}, nil
}

func (c *Client) command(ctx context.Context, token, vehicleID, command string) error {
	var response struct {
		CommandResponse struct {
			Result bool   `json:"result"`
			Reason string `json:"reason"`
		} `json:"response"`
	}
	endpoint := fmt.Sprintf("api/1/vehicles/%s/command/%s", vehicleID, command)
	body, err := c.send(ctx, http.MethodPost, token, endpoint, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return fmt.Errorf("unable to parse %s response: %w", command, err)
	}
	if !response.CommandResponse.Result {
		return fmt.Errorf("vehicle rejected %s: %s", command, response.CommandResponse.Reason)
	}
	return nil
}

// Unlock unlocks the vehicle's doors.
func (c *Client) Unlock(ctx context.Context, token, vehicleID string) error {
	return c.command(ctx, token, vehicleID, "door_unlock")
}

// Lock locks the vehicle's doors.
func (c *Client) Lock(ctx context.Context, token, vehicleID string) error {
	return c.command(ctx, token, vehicleID, "door_lock")
}

// HonkHorn honks the vehicle's horn.
func (c *Client) HonkHorn(ctx context.Context, token, vehicleID string) error {
	return c.command(ctx, token, vehicleID, "honk_horn")
}

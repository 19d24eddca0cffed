// Package adapter translates job requests into vehicle API calls.
//
// A Dispatcher handles one job at a time: it resolves the vehicle's credential, wakes the
// vehicle, performs the requested action, and produces exactly one Result. All inbound
// surfaces (HTTP, serverless) normalize to this contract.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/vehiclelink/vehicle-adapter/internal/log"
	"github.com/vehiclelink/vehicle-adapter/pkg/credentials"
	"github.com/vehiclelink/vehicle-adapter/pkg/fleet"
)

// Action selects the behavior of a job.
type Action string

const (
	ActionAuthenticate Action = "authenticate"
	ActionVehicles     Action = "vehicles"
	ActionWake         Action = "wake_up"
	ActionVehicleData  Action = "vehicle_data"
	ActionUnlock       Action = "unlock"
	ActionLock         Action = "lock"
	ActionHonkHorn     Action = "honk_horn"
)

// JobData identifies the vehicle and the requested action. APIToken and Address are only
// present for authenticate jobs.
type JobData struct {
	APIToken  string `json:"apiToken,omitempty"`
	VehicleID string `json:"vehicleId"`
	Action    Action `json:"action"`
	Address   string `json:"address,omitempty"`
}

// Job is one inbound request. The ID is opaque and echoed back unchanged in the Result.
type Job struct {
	ID   string  `json:"id"`
	Data JobData `json:"data"`
}

// Result is the single outcome of a job. StatusCode echoes the final remote call's status on
// success, or the remote's last known status (500 when none exists) on failure.
type Result struct {
	JobRunID   string      `json:"jobRunID"`
	Status     string      `json:"status,omitempty"`
	Data       interface{} `json:"data"`
	Result     interface{} `json:"result"`
	Error      string      `json:"error,omitempty"`
	StatusCode int         `json:"statusCode"`
}

// Dispatcher executes jobs against a credential store and a vehicle API client.
type Dispatcher struct {
	store  credentials.Store
	client *fleet.Client
}

// New returns a Dispatcher. Both dependencies are required.
func New(store credentials.Store, client *fleet.Client) *Dispatcher {
	return &Dispatcher{store: store, client: client}
}

func succeeded(job Job, data, result interface{}) Result {
	return Result{
		JobRunID:   job.ID,
		Data:       data,
		Result:     result,
		StatusCode: http.StatusOK,
	}
}

func errored(job Job, err error) Result {
	return Result{
		JobRunID:   job.ID,
		Status:     "errored",
		Error:      err.Error(),
		StatusCode: fleet.StatusCode(err, http.StatusInternalServerError),
	}
}

// Run executes job and returns its Result. Every job, including ones with unknown actions,
// produces exactly one Result; callers are never left unanswered.
func (d *Dispatcher) Run(ctx context.Context, job Job) Result {
	log.Info("Running job %s: %s on vehicle %s", job.ID, job.Data.Action, job.Data.VehicleID)

	switch job.Data.Action {
	case ActionAuthenticate, ActionWake, ActionVehicleData, ActionUnlock, ActionLock, ActionHonkHorn:
	case ActionVehicles:
		// Listing vehicles is not implemented. Rejecting up front keeps the one-job-one-result
		// contract without spending a wake call.
		return unsupported(job, fmt.Errorf("action %q is not implemented", job.Data.Action))
	default:
		log.Warning("Job %s requested unsupported action %q", job.ID, job.Data.Action)
		return unsupported(job, fmt.Errorf("unsupported action %q", job.Data.Action))
	}

	token, err := d.resolveToken(ctx, job)
	if err != nil {
		return errored(job, err)
	}

	// The vehicle must be awake before any other remote operation can succeed. A failed wake
	// fails the job; no action call is attempted.
	state, err := d.client.Wake(ctx, token, job.Data.VehicleID)
	if err != nil {
		if fleet.Temporary(err) {
			log.Warning("Vehicle %s may still be waking from sleep; the caller can resubmit the job", job.Data.VehicleID)
		}
		return errored(job, fmt.Errorf("wake failed: %w", err))
	}
	log.Debug("Vehicle %s state: %s", job.Data.VehicleID, state)

	switch job.Data.Action {
	case ActionAuthenticate:
		if err := d.store.Put(ctx, job.Data.VehicleID, token); err != nil {
			return errored(job, err)
		}
		return succeeded(job, job.Data.Address, job.Data.Address)

	case ActionWake:
		return succeeded(job, map[string]string{"state": state}, nil)

	case ActionVehicleData:
		telemetry, err := d.client.VehicleData(ctx, token, job.Data.VehicleID)
		if err != nil {
			return errored(job, err)
		}
		return succeeded(job, telemetry.String(), nil)

	case ActionUnlock, ActionLock:
		// Callers receive the vehicle's current state alongside the command outcome, so the
		// telemetry fetch must precede the command call.
		telemetry, err := d.client.VehicleData(ctx, token, job.Data.VehicleID)
		if err != nil {
			return errored(job, err)
		}
		command := d.client.Unlock
		if job.Data.Action == ActionLock {
			command = d.client.Lock
		}
		if err := command(ctx, token, job.Data.VehicleID); err != nil {
			return errored(job, err)
		}
		return succeeded(job, telemetry.String(), nil)

	case ActionHonkHorn:
		if err := d.client.HonkHorn(ctx, token, job.Data.VehicleID); err != nil {
			return errored(job, err)
		}
		return succeeded(job, map[string]bool{"success": true}, nil)

	default:
		// Unreachable: actions are validated before any remote call.
		return unsupported(job, fmt.Errorf("unsupported action %q", job.Data.Action))
	}
}

func unsupported(job Job, err error) Result {
	result := errored(job, err)
	result.StatusCode = http.StatusBadRequest
	return result
}

// resolveToken returns the credential for the job's vehicle. Authenticate jobs carry their
// token inline; every other action reads the store. A store miss is not a local error: the
// job proceeds with an empty token and the remote rejects it, matching the contract that the
// adapter performs no validation of its own.
func (d *Dispatcher) resolveToken(ctx context.Context, job Job) (string, error) {
	if job.Data.Action == ActionAuthenticate {
		if info, ok := credentials.Inspect(job.Data.APIToken); ok {
			if info.Expired() {
				log.Warning("Credential for vehicle %s is already expired", job.Data.VehicleID)
			} else if info.Subject != "" {
				log.Debug("Credential for vehicle %s belongs to %s", job.Data.VehicleID, info.Subject)
			}
		}
		return job.Data.APIToken, nil
	}

	token, err := d.store.Get(ctx, job.Data.VehicleID)
	if errors.Is(err, credentials.ErrNotFound) {
		log.Warning("No credential stored for vehicle %s", job.Data.VehicleID)
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

package adapter_test

import (
	"context"
	"errors"
	"net/http"

	"github.com/jarcoal/httpmock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/vehiclelink/vehicle-adapter/pkg/adapter"
	"github.com/vehiclelink/vehicle-adapter/pkg/credentials"
	"github.com/vehiclelink/vehicle-adapter/pkg/fleet"
)

const (
	baseURL   = "https://fleet.example.com"
	vehicleID = "1492931"
	jobID     = "job-0001"
	apiToken  = "stored-token"
)

func vehicleURL(suffix string) string {
	return baseURL + "/api/1/vehicles/" + vehicleID + "/" + suffix
}

const telemetryBody = `{"response": {
	"vehicle_state": {"odometer": 12345.6},
	"charge_state": {"battery_level": 77},
	"drive_state": {"longitude": -122.419416, "latitude": 37.774929}
}}`

const telemetryString = "{12346,77,-122419416,37774929}"

// erroringStore fails every operation, simulating an unreachable credential store backend.
type erroringStore struct{}

func (erroringStore) Get(context.Context, string) (string, error) {
	return "", errors.New("credential store unavailable")
}

func (erroringStore) Put(context.Context, string, string) error {
	return errors.New("credential store unavailable")
}

var _ = Describe("Dispatcher", func() {
	var (
		ctx   context.Context
		store *credentials.Memory
		d     *adapter.Dispatcher
	)

	job := func(action adapter.Action) adapter.Job {
		return adapter.Job{
			ID:   jobID,
			Data: adapter.JobData{VehicleID: vehicleID, Action: action},
		}
	}

	registerWake := func(status int, body string) {
		httpmock.RegisterResponder(http.MethodPost, vehicleURL("wake_up"),
			httpmock.NewStringResponder(status, body))
	}

	registerTelemetry := func() {
		httpmock.RegisterResponder(http.MethodGet, vehicleURL("vehicle_data"),
			httpmock.NewStringResponder(http.StatusOK, telemetryBody))
	}

	registerCommand := func(command string) {
		httpmock.RegisterResponder(http.MethodPost, vehicleURL("command/"+command),
			httpmock.NewStringResponder(http.StatusOK, `{"response": {"result": true, "reason": ""}}`))
	}

	callCount := func(method, url string) int {
		return httpmock.GetCallCountInfo()[method+" "+url]
	}

	BeforeEach(func() {
		ctx = context.Background()
		httpmock.Activate()
		DeferCleanup(httpmock.DeactivateAndReset)

		store = credentials.NewMemory()
		Expect(store.Put(ctx, vehicleID, apiToken)).To(Succeed())
		d = adapter.New(store, fleet.NewClient(baseURL))
	})

	Context("authenticate", func() {
		authJob := adapter.Job{
			ID: jobID,
			Data: adapter.JobData{
				APIToken:  "fresh-token",
				VehicleID: vehicleID,
				Action:    adapter.ActionAuthenticate,
				Address:   "0xdeadbeef",
			},
		}

		It("stores the credential and echoes the address", func() {
			registerWake(http.StatusOK, `{"response": {"state": "online"}}`)

			result := d.Run(ctx, authJob)
			Expect(result.JobRunID).To(Equal(jobID))
			Expect(result.StatusCode).To(Equal(http.StatusOK))
			Expect(result.Data).To(Equal("0xdeadbeef"))
			Expect(result.Result).To(Equal("0xdeadbeef"))

			token, err := store.Get(ctx, vehicleID)
			Expect(err).NotTo(HaveOccurred())
			Expect(token).To(Equal("fresh-token"))
		})

		It("does not store the credential when wake fails", func() {
			registerWake(http.StatusRequestTimeout, `{"error": "vehicle unavailable"}`)

			result := d.Run(ctx, authJob)
			Expect(result.Status).To(Equal("errored"))
			Expect(result.StatusCode).To(Equal(http.StatusRequestTimeout))

			token, err := store.Get(ctx, vehicleID)
			Expect(err).NotTo(HaveOccurred())
			Expect(token).To(Equal(apiToken), "stored credential should be untouched")
		})
	})

	Context("vehicle_data", func() {
		It("returns the formatted telemetry string", func() {
			registerWake(http.StatusOK, `{"response": {"state": "online"}}`)
			registerTelemetry()

			result := d.Run(ctx, job(adapter.ActionVehicleData))
			Expect(result.StatusCode).To(Equal(http.StatusOK))
			Expect(result.Data).To(Equal(telemetryString))
			Expect(result.Result).To(BeNil())
		})
	})

	Context("unlock and lock", func() {
		It("fetches telemetry before issuing the command", func() {
			registerWake(http.StatusOK, `{"response": {"state": "online"}}`)

			var order []string
			httpmock.RegisterResponder(http.MethodGet, vehicleURL("vehicle_data"),
				func(*http.Request) (*http.Response, error) {
					order = append(order, "vehicle_data")
					return httpmock.NewStringResponse(http.StatusOK, telemetryBody), nil
				})
			httpmock.RegisterResponder(http.MethodPost, vehicleURL("command/door_unlock"),
				func(*http.Request) (*http.Response, error) {
					order = append(order, "door_unlock")
					return httpmock.NewStringResponse(http.StatusOK, `{"response": {"result": true, "reason": ""}}`), nil
				})

			result := d.Run(ctx, job(adapter.ActionUnlock))
			Expect(result.StatusCode).To(Equal(http.StatusOK))
			Expect(result.Data).To(Equal(telemetryString))
			Expect(order).To(Equal([]string{"vehicle_data", "door_unlock"}))
		})

		It("locks via the door_lock endpoint", func() {
			registerWake(http.StatusOK, `{"response": {"state": "online"}}`)
			registerTelemetry()
			registerCommand("door_lock")

			result := d.Run(ctx, job(adapter.ActionLock))
			Expect(result.StatusCode).To(Equal(http.StatusOK))
			Expect(callCount(http.MethodPost, vehicleURL("command/door_lock"))).To(Equal(1))
		})

		It("does not issue the command when the telemetry fetch fails", func() {
			registerWake(http.StatusOK, `{"response": {"state": "online"}}`)
			httpmock.RegisterResponder(http.MethodGet, vehicleURL("vehicle_data"),
				httpmock.NewStringResponder(http.StatusInternalServerError, `{"error": "data unavailable"}`))
			registerCommand("door_unlock")

			result := d.Run(ctx, job(adapter.ActionUnlock))
			Expect(result.Status).To(Equal("errored"))
			Expect(callCount(http.MethodPost, vehicleURL("command/door_unlock"))).To(BeZero())
		})
	})

	Context("honk_horn", func() {
		It("returns a generic success payload", func() {
			registerWake(http.StatusOK, `{"response": {"state": "online"}}`)
			registerCommand("honk_horn")

			result := d.Run(ctx, job(adapter.ActionHonkHorn))
			Expect(result.StatusCode).To(Equal(http.StatusOK))
			Expect(result.Data).To(Equal(map[string]bool{"success": true}))
		})
	})

	Context("wake_up", func() {
		It("reports the vehicle state", func() {
			registerWake(http.StatusOK, `{"response": {"state": "waking"}}`)

			result := d.Run(ctx, job(adapter.ActionWake))
			Expect(result.StatusCode).To(Equal(http.StatusOK))
			Expect(result.Data).To(Equal(map[string]string{"state": "waking"}))
		})
	})

	Context("failed wake", func() {
		It("attempts no action call", func() {
			registerWake(http.StatusServiceUnavailable, `{"error": "vehicle unavailable"}`)
			registerTelemetry()
			registerCommand("honk_horn")

			for _, action := range []adapter.Action{
				adapter.ActionVehicleData, adapter.ActionUnlock, adapter.ActionLock, adapter.ActionHonkHorn,
			} {
				result := d.Run(ctx, job(action))
				Expect(result.Status).To(Equal("errored"))
				Expect(result.StatusCode).To(Equal(http.StatusServiceUnavailable))
			}
			Expect(callCount(http.MethodGet, vehicleURL("vehicle_data"))).To(BeZero())
			Expect(callCount(http.MethodPost, vehicleURL("command/honk_horn"))).To(BeZero())
		})
	})

	Context("credential store miss", func() {
		It("propagates the remote authorization failure", func() {
			missing := job(adapter.ActionHonkHorn)
			missing.Data.VehicleID = "no-such-vehicle"
			httpmock.RegisterResponder(http.MethodPost,
				baseURL+"/api/1/vehicles/no-such-vehicle/wake_up",
				httpmock.NewStringResponder(http.StatusUnauthorized, `{"error": "invalid bearer token"}`))

			result := d.Run(ctx, missing)
			Expect(result.Status).To(Equal("errored"))
			Expect(result.StatusCode).To(Equal(http.StatusUnauthorized))
		})
	})

	Context("credential store failures", func() {
		It("fails the job with 500 when the store read errors", func() {
			registerWake(http.StatusOK, `{"response": {"state": "online"}}`)
			registerCommand("honk_horn")
			failing := adapter.New(erroringStore{}, fleet.NewClient(baseURL))

			result := failing.Run(ctx, job(adapter.ActionHonkHorn))
			Expect(result.Status).To(Equal("errored"))
			Expect(result.StatusCode).To(Equal(http.StatusInternalServerError))
			Expect(result.Error).To(ContainSubstring("credential store unavailable"))
			Expect(httpmock.GetTotalCallCount()).To(BeZero(), "no remote call should be made without a resolved credential")
		})

		It("fails the job with 500 when the authenticate write errors", func() {
			registerWake(http.StatusOK, `{"response": {"state": "online"}}`)
			failing := adapter.New(erroringStore{}, fleet.NewClient(baseURL))

			authJob := adapter.Job{
				ID: jobID,
				Data: adapter.JobData{
					APIToken:  "fresh-token",
					VehicleID: vehicleID,
					Action:    adapter.ActionAuthenticate,
					Address:   "0xdeadbeef",
				},
			}
			result := failing.Run(ctx, authJob)
			Expect(result.Status).To(Equal("errored"))
			Expect(result.StatusCode).To(Equal(http.StatusInternalServerError))
			Expect(result.Error).To(ContainSubstring("credential store unavailable"))
		})
	})

	Context("unsupported actions", func() {
		It("rejects unknown actions without any remote call", func() {
			result := d.Run(ctx, job(adapter.Action("self_destruct")))
			Expect(result.Status).To(Equal("errored"))
			Expect(result.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(result.Error).To(ContainSubstring("unsupported action"))
			Expect(httpmock.GetTotalCallCount()).To(BeZero())
		})

		It("rejects the unimplemented vehicles action", func() {
			result := d.Run(ctx, job(adapter.ActionVehicles))
			Expect(result.Status).To(Equal("errored"))
			Expect(result.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(result.Error).To(ContainSubstring("not implemented"))
			Expect(httpmock.GetTotalCallCount()).To(BeZero())
		})
	})
})

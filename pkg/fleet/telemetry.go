package fleet

import (
	"fmt"
	"math"
)

// coordinateScale preserves six decimal places of GPS precision when coordinates are encoded
// as integers.
const coordinateScale = 1e6

// Telemetry holds the vehicle readings reported to callers.
type Telemetry struct {
	Odometer     float64
	BatteryLevel int64
	Longitude    float64
	Latitude     float64
}

// String encodes the telemetry as a positional, comma-delimited tuple:
//
//	{odometer,battery,longitude,latitude}
//
// The odometer is rounded to a whole unit; coordinates are scaled by 10^6 and truncated.
// Downstream consumers parse this string positionally, so the field order and scaling must
// not change.
func (t Telemetry) String() string {
	return fmt.Sprintf("{%d,%d,%d,%d}",
		int64(math.Round(t.Odometer)),
		t.BatteryLevel,
		int64(t.Longitude*coordinateScale),
		int64(t.Latitude*coordinateScale),
	)
}

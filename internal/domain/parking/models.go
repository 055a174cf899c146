package parking

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// VehicleType selects the spot pool and the hourly rate.
type VehicleType string

const (
	VehicleTypeCar  VehicleType = "CAR"
	VehicleTypeBike VehicleType = "BIKE"
)

const (
	// FreePeriod is the initial span of a session that is never charged.
	FreePeriod = 30 * time.Minute

	// DiscountFactor is applied to the fare of recurring users.
	DiscountFactor = 0.95
)

var (
	ErrUnknownVehicleType = errors.New("unknown vehicle type")
	ErrInvalidSelection   = errors.New("invalid selection")
)

// ParseVehicleType maps a type name to a VehicleType.
func ParseVehicleType(s string) (VehicleType, error) {
	switch VehicleType(strings.ToUpper(strings.TrimSpace(s))) {
	case VehicleTypeCar:
		return VehicleTypeCar, nil
	case VehicleTypeBike:
		return VehicleTypeBike, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownVehicleType, s)
	}
}

// VehicleTypeFromSelection maps an operator selection code to a VehicleType.
// Codes: 1 = CAR, 2 = BIKE.
func VehicleTypeFromSelection(code int) (VehicleType, error) {
	switch code {
	case 1:
		return VehicleTypeCar, nil
	case 2:
		return VehicleTypeBike, nil
	default:
		return "", fmt.Errorf("%w: %d", ErrInvalidSelection, code)
	}
}

// Spot is a uniquely numbered parking location typed for one vehicle
// category. The type never changes after creation.
type Spot struct {
	Number    int         `json:"spot_number"`
	Type      VehicleType `json:"vehicle_type"`
	Available bool        `json:"available"`
}

// Ticket records one parking session. OutTime is nil while the vehicle is
// parked and set exactly once at exit; Price stays 0 until the exit fare is
// computed.
type Ticket struct {
	ID           int64
	Reference    string
	Spot         Spot
	VehicleReg   string
	InTime       time.Time
	OutTime      *time.Time
	Price        float64
	VehicleAttrs map[string]interface{}
}

// EntryRequest carries the operator input for an incoming vehicle.
type EntryRequest struct {
	VehicleType  VehicleType
	VehicleReg   string
	VehicleAttrs map[string]interface{}
}

// ProcessResult is the outcome of an entry or exit workflow.
type ProcessResult struct {
	Ticket        *Ticket
	RecurringUser bool
}

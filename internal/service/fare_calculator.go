package service

import (
	"fmt"

	"parking-service/internal/config"
	"parking-service/internal/domain/parking"
)

// FareCalculator prices a parking session from its duration, the spot's
// vehicle type, and the recurring-user discount flag.
type FareCalculator struct {
	carRate  float64
	bikeRate float64
}

func NewFareCalculator(cfg config.FareConfig) *FareCalculator {
	return &FareCalculator{
		carRate:  cfg.CarRatePerHour,
		bikeRate: cfg.BikeRatePerHour,
	}
}

// Calculate prices the ticket without any discount.
func (f *FareCalculator) Calculate(t *parking.Ticket) (float64, error) {
	return f.CalculateWithDiscount(t, false)
}

// CalculateWithDiscount prices the ticket. Sessions within the free period
// cost nothing regardless of type or discount; longer sessions are charged
// pro rata at the type's hourly rate. The discount factor applies to the
// computed price, the zero case included.
func (f *FareCalculator) CalculateWithDiscount(t *parking.Ticket, applyDiscount bool) (float64, error) {
	if t.OutTime == nil {
		return 0, fmt.Errorf("%w: out time is not set", ErrInvalidInput)
	}
	if t.OutTime.Before(t.InTime) {
		return 0, fmt.Errorf("%w: out time %s precedes in time %s", ErrInvalidInput,
			t.OutTime.Format("2006-01-02T15:04:05"), t.InTime.Format("2006-01-02T15:04:05"))
	}

	var rate float64
	switch t.Spot.Type {
	case parking.VehicleTypeCar:
		rate = f.carRate
	case parking.VehicleTypeBike:
		rate = f.bikeRate
	default:
		return 0, fmt.Errorf("%w: %q", parking.ErrUnknownVehicleType, t.Spot.Type)
	}

	duration := t.OutTime.Sub(t.InTime)
	price := 0.0
	if duration > parking.FreePeriod {
		price = duration.Hours() * rate
	}

	if applyDiscount {
		price *= parking.DiscountFactor
	}
	return price, nil
}

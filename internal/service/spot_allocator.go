package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"parking-service/internal/domain/parking"
)

// SpotNotFound is returned when no spot of the requested type is free, or
// when the spot store cannot be queried. Both are normal outcomes for the
// caller, never a crash.
const SpotNotFound = -1

// SpotStore is the storage collaborator for the spot inventory.
type SpotStore interface {
	// FindFreeSpot returns the lowest-numbered available spot of the given
	// type, or 0 when none is free.
	FindFreeSpot(ctx context.Context, vehicleType parking.VehicleType) (int, error)
	// SetAvailability flips a spot's availability and reports the number of
	// rows the update touched.
	SetAvailability(ctx context.Context, spotNumber int, available bool) (int64, error)
	ListSpots(ctx context.Context) ([]parking.Spot, error)
}

type SpotAllocator struct {
	store SpotStore
	log   zerolog.Logger
}

func NewSpotAllocator(store SpotStore, log zerolog.Logger) *SpotAllocator {
	return &SpotAllocator{
		store: store,
		log:   log,
	}
}

// FindNextAvailableSpot returns the lowest-numbered free spot of the
// requested type, or SpotNotFound.
func (a *SpotAllocator) FindNextAvailableSpot(ctx context.Context, vehicleType parking.VehicleType) int {
	number, err := a.store.FindFreeSpot(ctx, vehicleType)
	if err != nil {
		a.log.Error().Err(err).Str("vehicle_type", string(vehicleType)).Msg("failed to query free spot")
		return SpotNotFound
	}
	if number <= 0 {
		return SpotNotFound
	}
	return number
}

// ReserveSpot marks the spot occupied. A false return means the allocation
// did not happen: the spot was already taken, unknown, or the store failed.
func (a *SpotAllocator) ReserveSpot(ctx context.Context, spot *parking.Spot) bool {
	if !a.setAvailability(ctx, spot.Number, false) {
		return false
	}
	spot.Available = false
	return true
}

// ReleaseSpot marks the spot free again, with the same failure contract as
// ReserveSpot.
func (a *SpotAllocator) ReleaseSpot(ctx context.Context, spot *parking.Spot) bool {
	if !a.setAvailability(ctx, spot.Number, true) {
		return false
	}
	spot.Available = true
	return true
}

func (a *SpotAllocator) setAvailability(ctx context.Context, spotNumber int, available bool) bool {
	rows, err := a.store.SetAvailability(ctx, spotNumber, available)
	if err != nil {
		a.log.Error().Err(err).Int("spot_number", spotNumber).Bool("available", available).
			Msg("failed to update spot availability")
		return false
	}
	if rows == 0 {
		a.log.Warn().Int("spot_number", spotNumber).Bool("available", available).
			Msg("spot availability update affected no rows")
		return false
	}
	return true
}

// SpotInventory lists every spot with its occupancy state.
func (a *SpotAllocator) SpotInventory(ctx context.Context) ([]parking.Spot, error) {
	spots, err := a.store.ListSpots(ctx)
	if err != nil {
		a.log.Error().Err(err).Msg("failed to list spots")
		return nil, fmt.Errorf("list spots: %w", err)
	}
	return spots, nil
}

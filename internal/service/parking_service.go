package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"parking-service/internal/config"
	"parking-service/internal/domain/parking"
	"parking-service/internal/metrics"
	"parking-service/internal/utils"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("not found")
	ErrNoSpotAvailable    = errors.New("no spot available")
	ErrActiveTicketExists = errors.New("active ticket already exists")
)

// ParkingService drives the entry and exit workflows end to end.
type ParkingService struct {
	spots         *SpotAllocator
	tickets       *TicketLedger
	fares         *FareCalculator
	strictReentry bool
	log           zerolog.Logger
}

func NewParkingService(
	spots *SpotAllocator,
	tickets *TicketLedger,
	fares *FareCalculator,
	cfg config.ParkingConfig,
	log zerolog.Logger,
) *ParkingService {
	return &ParkingService{
		spots:         spots,
		tickets:       tickets,
		fares:         fares,
		strictReentry: cfg.StrictReentry,
		log:           log,
	}
}

// ProcessIncomingVehicle reserves a spot for the vehicle and opens a ticket.
// "No spot available" is a normal outcome: nothing is created, nothing is
// mutated. If the ticket cannot be persisted after the spot was reserved,
// the reservation is rolled back best-effort.
func (s *ParkingService) ProcessIncomingVehicle(ctx context.Context, req parking.EntryRequest) (*parking.ProcessResult, error) {
	reg := utils.NormalizeRegistration(req.VehicleReg)
	if reg == "" {
		return nil, fmt.Errorf("%w: vehicle registration is required", ErrInvalidInput)
	}
	if req.VehicleType != parking.VehicleTypeCar && req.VehicleType != parking.VehicleTypeBike {
		return nil, fmt.Errorf("%w: %q", parking.ErrUnknownVehicleType, req.VehicleType)
	}

	if s.strictReentry {
		latest, err := s.tickets.FindActiveTicket(ctx, reg)
		if err == nil && latest.OutTime == nil {
			return nil, fmt.Errorf("%w: vehicle %s", ErrActiveTicketExists, reg)
		}
	}

	number := s.spots.FindNextAvailableSpot(ctx, req.VehicleType)
	if number == SpotNotFound {
		return nil, fmt.Errorf("%w: type %s", ErrNoSpotAvailable, req.VehicleType)
	}

	spot := parking.Spot{Number: number, Type: req.VehicleType, Available: true}
	if !s.spots.ReserveSpot(ctx, &spot) {
		// Lost a race or the store failed. Either way the allocation did
		// not happen.
		return nil, fmt.Errorf("%w: spot %d could not be reserved", ErrNoSpotAvailable, number)
	}

	ticket := &parking.Ticket{
		Reference:    uuid.NewString(),
		Spot:         spot,
		VehicleReg:   reg,
		InTime:       time.Now(),
		VehicleAttrs: req.VehicleAttrs,
	}
	if !s.tickets.CreateTicket(ctx, ticket) {
		if !s.spots.ReleaseSpot(ctx, &spot) {
			s.log.Error().Int("spot_number", spot.Number).
				Msg("failed to release spot after ticket creation failure")
		}
		return nil, fmt.Errorf("failed to create ticket for vehicle %s", reg)
	}

	recurring := s.tickets.CountPriorVisits(ctx, reg) > 1
	metrics.RecordEntry(string(spot.Type))
	s.log.Info().
		Str("vehicle_reg_number", reg).
		Int("spot_number", spot.Number).
		Str("vehicle_type", string(spot.Type)).
		Str("ticket_reference", ticket.Reference).
		Bool("recurring_user", recurring).
		Msg("vehicle parked")

	return &parking.ProcessResult{Ticket: ticket, RecurringUser: recurring}, nil
}

// ProcessExitingVehicle closes the vehicle's active ticket, prices it, and
// frees the spot. Recurring users (more than one historical ticket) get the
// fare discount.
func (s *ParkingService) ProcessExitingVehicle(ctx context.Context, regNumber string) (*parking.ProcessResult, error) {
	reg := utils.NormalizeRegistration(regNumber)
	if reg == "" {
		return nil, fmt.Errorf("%w: vehicle registration is required", ErrInvalidInput)
	}

	ticket, err := s.tickets.FindActiveTicket(ctx, reg)
	if err != nil {
		return nil, err
	}
	if ticket.OutTime != nil {
		return nil, fmt.Errorf("%w: no active ticket for vehicle %s", ErrNotFound, reg)
	}

	now := time.Now()
	ticket.OutTime = &now

	recurring := s.tickets.CountPriorVisits(ctx, reg) > 1
	price, err := s.fares.CalculateWithDiscount(ticket, recurring)
	if err != nil {
		return nil, err
	}
	ticket.Price = price

	if !s.tickets.CloseTicket(ctx, ticket) {
		return nil, fmt.Errorf("failed to close ticket %d for vehicle %s", ticket.ID, reg)
	}

	if !s.spots.ReleaseSpot(ctx, &ticket.Spot) {
		// The ticket is closed either way; the spot stays blocked until an
		// operator override.
		s.log.Warn().Int("spot_number", ticket.Spot.Number).
			Msg("spot was not released on exit")
	}

	metrics.RecordExit(string(ticket.Spot.Type), price)
	s.log.Info().
		Str("vehicle_reg_number", reg).
		Int("spot_number", ticket.Spot.Number).
		Float64("price", price).
		Bool("recurring_user", recurring).
		Msg("vehicle exited")

	return &parking.ProcessResult{Ticket: ticket, RecurringUser: recurring}, nil
}

// GetNextParkingNumberIfAvailable maps an operator selection code to a
// vehicle type and returns the next free spot without reserving it.
func (s *ParkingService) GetNextParkingNumberIfAvailable(ctx context.Context, selection int) (*parking.Spot, error) {
	vehicleType, err := parking.VehicleTypeFromSelection(selection)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	number := s.spots.FindNextAvailableSpot(ctx, vehicleType)
	if number == SpotNotFound {
		return nil, fmt.Errorf("%w: type %s", ErrNoSpotAvailable, vehicleType)
	}

	return &parking.Spot{Number: number, Type: vehicleType, Available: true}, nil
}

// TicketHistory returns the vehicle's past sessions, most recent first.
func (s *ParkingService) TicketHistory(ctx context.Context, regNumber string, limit int) ([]parking.Ticket, error) {
	reg := utils.NormalizeRegistration(regNumber)
	if reg == "" {
		return nil, fmt.Errorf("%w: vehicle registration is required", ErrInvalidInput)
	}
	return s.tickets.VisitHistory(ctx, reg, limit)
}

// SpotInventory lists the full spot inventory with occupancy.
func (s *ParkingService) SpotInventory(ctx context.Context) ([]parking.Spot, error) {
	return s.spots.SpotInventory(ctx)
}

// OverrideSpotAvailability forces a spot's availability for maintenance.
// The returned flag reports whether anything changed.
func (s *ParkingService) OverrideSpotAvailability(ctx context.Context, spotNumber int, available bool) bool {
	spot := parking.Spot{Number: spotNumber}
	if available {
		return s.spots.ReleaseSpot(ctx, &spot)
	}
	return s.spots.ReserveSpot(ctx, &spot)
}

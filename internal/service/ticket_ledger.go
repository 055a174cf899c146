package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"parking-service/internal/domain/parking"
)

// TicketStore is the storage collaborator for parking tickets.
type TicketStore interface {
	Insert(ctx context.Context, t *parking.Ticket) error
	// FindLatestByVehicle returns the vehicle's most recent ticket by entry
	// time, or nil when the vehicle has no ticket history.
	FindLatestByVehicle(ctx context.Context, reg string) (*parking.Ticket, error)
	Update(ctx context.Context, id int64, price float64, outTime time.Time) (int64, error)
	CountByVehicle(ctx context.Context, reg string) (int64, error)
	ListByVehicle(ctx context.Context, reg string, limit int) ([]parking.Ticket, error)
}

// TicketLedger tracks tickets across the entry/exit lifecycle.
type TicketLedger struct {
	store TicketStore
	log   zerolog.Logger
}

func NewTicketLedger(store TicketStore, log zerolog.Logger) *TicketLedger {
	return &TicketLedger{
		store: store,
		log:   log,
	}
}

// CreateTicket persists a new ticket. A false return means nothing was
// persisted; the caller must not treat the spot as consistently allocated.
func (l *TicketLedger) CreateTicket(ctx context.Context, t *parking.Ticket) bool {
	if err := l.store.Insert(ctx, t); err != nil {
		l.log.Error().Err(err).
			Str("vehicle_reg_number", t.VehicleReg).
			Int("spot_number", t.Spot.Number).
			Msg("failed to create ticket")
		return false
	}
	return true
}

// FindActiveTicket returns the vehicle's most recent ticket together with
// its spot's type.
func (l *TicketLedger) FindActiveTicket(ctx context.Context, reg string) (*parking.Ticket, error) {
	ticket, err := l.store.FindLatestByVehicle(ctx, reg)
	if err != nil {
		l.log.Error().Err(err).Str("vehicle_reg_number", reg).Msg("failed to look up ticket")
		return nil, fmt.Errorf("find ticket for vehicle %s: %w", reg, err)
	}
	if ticket == nil {
		return nil, fmt.Errorf("%w: no ticket for vehicle %s", ErrNotFound, reg)
	}
	return ticket, nil
}

// CloseTicket persists the computed price and out time of an exiting
// session. Returns false when no matching ticket exists or the store fails.
func (l *TicketLedger) CloseTicket(ctx context.Context, t *parking.Ticket) bool {
	if t.OutTime == nil {
		l.log.Error().Int64("ticket_id", t.ID).Msg("refusing to close ticket without out time")
		return false
	}

	rows, err := l.store.Update(ctx, t.ID, t.Price, *t.OutTime)
	if err != nil {
		l.log.Error().Err(err).Int64("ticket_id", t.ID).Msg("failed to close ticket")
		return false
	}
	if rows == 0 {
		l.log.Warn().Int64("ticket_id", t.ID).Msg("ticket close affected no rows")
		return false
	}
	return true
}

// CountPriorVisits counts the tickets historically associated with the
// vehicle. Storage failures are converted into 0: the vehicle is then simply
// not treated as a recurring user.
func (l *TicketLedger) CountPriorVisits(ctx context.Context, reg string) int64 {
	count, err := l.store.CountByVehicle(ctx, reg)
	if err != nil {
		l.log.Error().Err(err).Str("vehicle_reg_number", reg).
			Msg("failed to count visits, treating vehicle as non-recurring")
		return 0
	}
	return count
}

// VisitHistory returns the vehicle's past tickets, most recent first.
func (l *TicketLedger) VisitHistory(ctx context.Context, reg string, limit int) ([]parking.Ticket, error) {
	tickets, err := l.store.ListByVehicle(ctx, reg, limit)
	if err != nil {
		l.log.Error().Err(err).Str("vehicle_reg_number", reg).Msg("failed to list tickets")
		return nil, fmt.Errorf("list tickets for vehicle %s: %w", reg, err)
	}
	return tickets, nil
}

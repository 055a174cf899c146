package service

import (
	"context"
	"sort"
	"time"

	"parking-service/internal/domain/parking"
)

type fakeSpotStore struct {
	spots     map[int]*parking.Spot
	findErr   error
	updateErr error
}

func newFakeSpotStore(spots ...parking.Spot) *fakeSpotStore {
	s := &fakeSpotStore{spots: map[int]*parking.Spot{}}
	for i := range spots {
		sp := spots[i]
		s.spots[sp.Number] = &sp
	}
	return s
}

func (s *fakeSpotStore) FindFreeSpot(_ context.Context, vehicleType parking.VehicleType) (int, error) {
	if s.findErr != nil {
		return 0, s.findErr
	}
	best := 0
	for _, sp := range s.spots {
		if sp.Type == vehicleType && sp.Available && (best == 0 || sp.Number < best) {
			best = sp.Number
		}
	}
	return best, nil
}

func (s *fakeSpotStore) SetAvailability(_ context.Context, spotNumber int, available bool) (int64, error) {
	if s.updateErr != nil {
		return 0, s.updateErr
	}
	sp, ok := s.spots[spotNumber]
	if !ok || sp.Available == available {
		return 0, nil
	}
	sp.Available = available
	return 1, nil
}

func (s *fakeSpotStore) ListSpots(_ context.Context) ([]parking.Spot, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	out := make([]parking.Spot, 0, len(s.spots))
	for _, sp := range s.spots {
		out = append(out, *sp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

type fakeTicketStore struct {
	tickets   []*parking.Ticket
	nextID    int64
	insertErr error
	findErr   error
	updateErr error
	countErr  error
}

func (s *fakeTicketStore) add(t parking.Ticket) *parking.Ticket {
	s.nextID++
	t.ID = s.nextID
	s.tickets = append(s.tickets, &t)
	return &t
}

func (s *fakeTicketStore) Insert(_ context.Context, t *parking.Ticket) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	stored := s.add(*t)
	t.ID = stored.ID
	return nil
}

func (s *fakeTicketStore) FindLatestByVehicle(_ context.Context, reg string) (*parking.Ticket, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	var latest *parking.Ticket
	for _, t := range s.tickets {
		if t.VehicleReg != reg {
			continue
		}
		if latest == nil || t.InTime.After(latest.InTime) {
			latest = t
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (s *fakeTicketStore) Update(_ context.Context, id int64, price float64, outTime time.Time) (int64, error) {
	if s.updateErr != nil {
		return 0, s.updateErr
	}
	for _, t := range s.tickets {
		if t.ID == id {
			t.Price = price
			out := outTime
			t.OutTime = &out
			return 1, nil
		}
	}
	return 0, nil
}

func (s *fakeTicketStore) CountByVehicle(_ context.Context, reg string) (int64, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	var count int64
	for _, t := range s.tickets {
		if t.VehicleReg == reg {
			count++
		}
	}
	return count, nil
}

func (s *fakeTicketStore) ListByVehicle(_ context.Context, reg string, limit int) ([]parking.Ticket, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	var out []parking.Ticket
	for _, t := range s.tickets {
		if t.VehicleReg == reg {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InTime.After(out[j].InTime) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

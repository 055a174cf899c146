package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parking-service/internal/config"
	"parking-service/internal/domain/parking"
)

func newTestParkingService(spotStore *fakeSpotStore, ticketStore *fakeTicketStore, strict bool) *ParkingService {
	log := zerolog.Nop()
	return NewParkingService(
		NewSpotAllocator(spotStore, log),
		NewTicketLedger(ticketStore, log),
		newTestFareCalculator(),
		config.ParkingConfig{StrictReentry: strict},
		log,
	)
}

func TestProcessIncomingVehicle(t *testing.T) {
	spotStore := newFakeSpotStore(defaultInventory()...)
	ticketStore := &fakeTicketStore{}
	svc := newTestParkingService(spotStore, ticketStore, false)

	result, err := svc.ProcessIncomingVehicle(context.Background(), parking.EntryRequest{
		VehicleType: parking.VehicleTypeCar,
		VehicleReg:  "ab cd-ef",
	})

	require.NoError(t, err)
	ticket := result.Ticket
	assert.Equal(t, 1, ticket.Spot.Number)
	assert.Equal(t, parking.VehicleTypeCar, ticket.Spot.Type)
	assert.Equal(t, "ABCDEF", ticket.VehicleReg)
	assert.NotEmpty(t, ticket.Reference)
	assert.Nil(t, ticket.OutTime)
	assert.Zero(t, ticket.Price)
	assert.False(t, result.RecurringUser)
	assert.False(t, spotStore.spots[1].Available)
	require.Len(t, ticketStore.tickets, 1)
}

func TestProcessIncomingVehicleFillsLowestSpotsFirst(t *testing.T) {
	spotStore := newFakeSpotStore(defaultInventory()...)
	svc := newTestParkingService(spotStore, &fakeTicketStore{}, false)

	first, err := svc.ProcessIncomingVehicle(context.Background(), parking.EntryRequest{
		VehicleType: parking.VehicleTypeCar, VehicleReg: "AAA111",
	})
	require.NoError(t, err)
	second, err := svc.ProcessIncomingVehicle(context.Background(), parking.EntryRequest{
		VehicleType: parking.VehicleTypeCar, VehicleReg: "BBB222",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, first.Ticket.Spot.Number)
	assert.Equal(t, 2, second.Ticket.Spot.Number)
}

func TestProcessIncomingVehicleNoSpotAvailable(t *testing.T) {
	spotStore := newFakeSpotStore(defaultInventory()...)
	for _, n := range []int{1, 2, 3} {
		spotStore.spots[n].Available = false
	}
	ticketStore := &fakeTicketStore{}
	svc := newTestParkingService(spotStore, ticketStore, false)

	_, err := svc.ProcessIncomingVehicle(context.Background(), parking.EntryRequest{
		VehicleType: parking.VehicleTypeCar,
		VehicleReg:  "ABCDEF",
	})

	require.ErrorIs(t, err, ErrNoSpotAvailable)
	assert.Empty(t, ticketStore.tickets)
	assert.True(t, spotStore.spots[4].Available)
	assert.True(t, spotStore.spots[5].Available)
}

func TestProcessIncomingVehicleTicketCreationFails(t *testing.T) {
	spotStore := newFakeSpotStore(defaultInventory()...)
	ticketStore := &fakeTicketStore{insertErr: errors.New("connection refused")}
	svc := newTestParkingService(spotStore, ticketStore, false)

	_, err := svc.ProcessIncomingVehicle(context.Background(), parking.EntryRequest{
		VehicleType: parking.VehicleTypeCar,
		VehicleReg:  "ABCDEF",
	})

	require.Error(t, err)
	// The reserved spot is handed back when the ticket could not be saved.
	assert.True(t, spotStore.spots[1].Available)
}

func TestProcessIncomingVehicleInvalidInput(t *testing.T) {
	svc := newTestParkingService(newFakeSpotStore(defaultInventory()...), &fakeTicketStore{}, false)

	_, err := svc.ProcessIncomingVehicle(context.Background(), parking.EntryRequest{
		VehicleType: parking.VehicleTypeCar,
		VehicleReg:  "   ",
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.ProcessIncomingVehicle(context.Background(), parking.EntryRequest{
		VehicleType: "TRUCK",
		VehicleReg:  "ABCDEF",
	})
	require.ErrorIs(t, err, parking.ErrUnknownVehicleType)
}

func TestProcessIncomingVehicleReentry(t *testing.T) {
	spotStore := newFakeSpotStore(defaultInventory()...)
	spotStore.spots[1].Available = false
	ticketStore := &fakeTicketStore{}
	ticketStore.add(openTicket("ABCDEF", time.Now().Add(-time.Hour)))

	// Default mode matches the historical behavior: a second session may
	// start while the first is still open.
	svc := newTestParkingService(spotStore, ticketStore, false)
	_, err := svc.ProcessIncomingVehicle(context.Background(), parking.EntryRequest{
		VehicleType: parking.VehicleTypeCar,
		VehicleReg:  "ABCDEF",
	})
	require.NoError(t, err)
}

func TestProcessIncomingVehicleStrictReentry(t *testing.T) {
	spotStore := newFakeSpotStore(defaultInventory()...)
	spotStore.spots[1].Available = false
	ticketStore := &fakeTicketStore{}
	ticketStore.add(openTicket("ABCDEF", time.Now().Add(-time.Hour)))

	svc := newTestParkingService(spotStore, ticketStore, true)
	_, err := svc.ProcessIncomingVehicle(context.Background(), parking.EntryRequest{
		VehicleType: parking.VehicleTypeCar,
		VehicleReg:  "ABCDEF",
	})

	require.ErrorIs(t, err, ErrActiveTicketExists)
	require.Len(t, ticketStore.tickets, 1)
}

func exitFixture(reg string, duration time.Duration) (*fakeSpotStore, *fakeTicketStore) {
	spotStore := newFakeSpotStore(defaultInventory()...)
	spotStore.spots[1].Available = false
	ticketStore := &fakeTicketStore{}
	ticketStore.add(openTicket(reg, time.Now().Add(-duration)))
	return spotStore, ticketStore
}

func TestProcessExitingVehicle(t *testing.T) {
	spotStore, ticketStore := exitFixture("ABCDEF", time.Hour)
	svc := newTestParkingService(spotStore, ticketStore, false)

	result, err := svc.ProcessExitingVehicle(context.Background(), "abc def")

	require.NoError(t, err)
	assert.InDelta(t, testCarRate, result.Ticket.Price, 0.01)
	assert.False(t, result.RecurringUser)
	assert.NotNil(t, result.Ticket.OutTime)
	assert.True(t, spotStore.spots[1].Available)
	assert.InDelta(t, testCarRate, ticketStore.tickets[0].Price, 0.01)
}

func TestProcessExitingVehicleRecurringUserDiscount(t *testing.T) {
	spotStore, ticketStore := exitFixture("ABCDEF", time.Hour)
	old := openTicket("ABCDEF", time.Now().Add(-72*time.Hour))
	outTime := old.InTime.Add(time.Hour)
	old.OutTime = &outTime
	ticketStore.add(old)
	svc := newTestParkingService(spotStore, ticketStore, false)

	result, err := svc.ProcessExitingVehicle(context.Background(), "ABCDEF")

	require.NoError(t, err)
	assert.True(t, result.RecurringUser)
	assert.InDelta(t, parking.DiscountFactor*testCarRate, result.Ticket.Price, 0.01)
}

func TestProcessExitingVehicleNoActiveTicket(t *testing.T) {
	svc := newTestParkingService(newFakeSpotStore(defaultInventory()...), &fakeTicketStore{}, false)

	_, err := svc.ProcessExitingVehicle(context.Background(), "GHOST")

	require.ErrorIs(t, err, ErrNotFound)
}

func TestProcessExitingVehicleAlreadyClosed(t *testing.T) {
	spotStore := newFakeSpotStore(defaultInventory()...)
	ticketStore := &fakeTicketStore{}
	closed := openTicket("ABCDEF", time.Now().Add(-2*time.Hour))
	outTime := closed.InTime.Add(time.Hour)
	closed.OutTime = &outTime
	ticketStore.add(closed)
	svc := newTestParkingService(spotStore, ticketStore, false)

	_, err := svc.ProcessExitingVehicle(context.Background(), "ABCDEF")

	require.ErrorIs(t, err, ErrNotFound)
}

func TestProcessExitingVehicleCloseFails(t *testing.T) {
	spotStore, ticketStore := exitFixture("ABCDEF", time.Hour)
	ticketStore.updateErr = errors.New("connection refused")
	svc := newTestParkingService(spotStore, ticketStore, false)

	_, err := svc.ProcessExitingVehicle(context.Background(), "ABCDEF")

	require.Error(t, err)
	// The spot stays blocked when the close did not persist.
	assert.False(t, spotStore.spots[1].Available)
}

func TestProcessExitingVehicleCountFailureSkipsDiscount(t *testing.T) {
	spotStore, ticketStore := exitFixture("ABCDEF", time.Hour)
	ticketStore.countErr = errors.New("connection refused")
	svc := newTestParkingService(spotStore, ticketStore, false)

	result, err := svc.ProcessExitingVehicle(context.Background(), "ABCDEF")

	require.NoError(t, err)
	assert.False(t, result.RecurringUser)
	assert.InDelta(t, testCarRate, result.Ticket.Price, 0.01)
}

func TestGetNextParkingNumberIfAvailable(t *testing.T) {
	spotStore := newFakeSpotStore(defaultInventory()...)
	svc := newTestParkingService(spotStore, &fakeTicketStore{}, false)

	spot, err := svc.GetNextParkingNumberIfAvailable(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 1, spot.Number)
	assert.Equal(t, parking.VehicleTypeCar, spot.Type)
	assert.True(t, spot.Available)
	// Advisory only: nothing is reserved.
	assert.True(t, spotStore.spots[1].Available)
}

func TestGetNextParkingNumberIfAvailableInvalidSelection(t *testing.T) {
	svc := newTestParkingService(newFakeSpotStore(defaultInventory()...), &fakeTicketStore{}, false)

	_, err := svc.GetNextParkingNumberIfAvailable(context.Background(), 3)

	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetNextParkingNumberIfAvailableNoneFree(t *testing.T) {
	spotStore := newFakeSpotStore(defaultInventory()...)
	spotStore.spots[4].Available = false
	spotStore.spots[5].Available = false
	svc := newTestParkingService(spotStore, &fakeTicketStore{}, false)

	_, err := svc.GetNextParkingNumberIfAvailable(context.Background(), 2)

	require.ErrorIs(t, err, ErrNoSpotAvailable)
}

func TestOverrideSpotAvailability(t *testing.T) {
	spotStore := newFakeSpotStore(defaultInventory()...)
	svc := newTestParkingService(spotStore, &fakeTicketStore{}, false)

	assert.True(t, svc.OverrideSpotAvailability(context.Background(), 1, false))
	assert.False(t, spotStore.spots[1].Available)
	// Already in the requested state: nothing changes.
	assert.False(t, svc.OverrideSpotAvailability(context.Background(), 1, false))
	assert.True(t, svc.OverrideSpotAvailability(context.Background(), 1, true))
}

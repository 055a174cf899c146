package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"parking-service/internal/domain/parking"
)

type Ticket struct {
	ID               int64  `gorm:"primaryKey"`
	Reference        string `gorm:"not null;uniqueIndex"`
	SpotNumber       int    `gorm:"not null"`
	VehicleRegNumber string `gorm:"not null"`
	Price            float64
	InTime           time.Time `gorm:"not null"`
	OutTime          *time.Time
	VehicleAttrs     datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt        time.Time
}

func (Ticket) TableName() string { return "tickets" }

// ticketRow is a Ticket joined with its spot's type.
type ticketRow struct {
	ID               int64
	Reference        string
	SpotNumber       int
	VehicleRegNumber string
	Price            float64
	InTime           time.Time
	OutTime          *time.Time
	VehicleAttrs     datatypes.JSONMap
	SpotType         string
}

type TicketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

// Insert persists a new ticket and writes the storage-assigned id back onto
// the domain ticket.
func (r *TicketRepository) Insert(ctx context.Context, t *parking.Ticket) error {
	dbTicket := Ticket{
		Reference:        t.Reference,
		SpotNumber:       t.Spot.Number,
		VehicleRegNumber: t.VehicleReg,
		Price:            t.Price,
		InTime:           t.InTime,
		OutTime:          t.OutTime,
		CreatedAt:        time.Now(),
	}
	if len(t.VehicleAttrs) > 0 {
		dbTicket.VehicleAttrs = datatypes.JSONMap(t.VehicleAttrs)
	}

	if err := r.db.WithContext(ctx).Create(&dbTicket).Error; err != nil {
		return err
	}

	t.ID = dbTicket.ID
	return nil
}

// FindLatestByVehicle returns the vehicle's most recent ticket together with
// its spot's type, or nil when the vehicle has no ticket history.
func (r *TicketRepository) FindLatestByVehicle(ctx context.Context, reg string) (*parking.Ticket, error) {
	var row ticketRow
	err := r.db.WithContext(ctx).
		Table("tickets").
		Select("tickets.*, parking_spots.type AS spot_type").
		Joins("JOIN parking_spots ON parking_spots.spot_number = tickets.spot_number").
		Where("tickets.vehicle_reg_number = ?", reg).
		Order("tickets.in_time DESC").
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	ticket := row.toDomain()
	return &ticket, nil
}

// Update persists the computed price and out time for an existing ticket.
func (r *TicketRepository) Update(ctx context.Context, id int64, price float64, outTime time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&Ticket{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"price": price, "out_time": outTime})
	return res.RowsAffected, res.Error
}

func (r *TicketRepository) CountByVehicle(ctx context.Context, reg string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Ticket{}).
		Where("vehicle_reg_number = ?", reg).
		Count(&count).Error
	return count, err
}

func (r *TicketRepository) ListByVehicle(ctx context.Context, reg string, limit int) ([]parking.Ticket, error) {
	query := r.db.WithContext(ctx).
		Table("tickets").
		Select("tickets.*, parking_spots.type AS spot_type").
		Joins("JOIN parking_spots ON parking_spots.spot_number = tickets.spot_number").
		Where("tickets.vehicle_reg_number = ?", reg).
		Order("tickets.in_time DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []ticketRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	tickets := make([]parking.Ticket, 0, len(rows))
	for _, row := range rows {
		tickets = append(tickets, row.toDomain())
	}
	return tickets, nil
}

func (row ticketRow) toDomain() parking.Ticket {
	t := parking.Ticket{
		ID:         row.ID,
		Reference:  row.Reference,
		VehicleReg: row.VehicleRegNumber,
		InTime:     row.InTime,
		OutTime:    row.OutTime,
		Price:      row.Price,
		Spot: parking.Spot{
			Number: row.SpotNumber,
			Type:   parking.VehicleType(row.SpotType),
		},
	}
	if len(row.VehicleAttrs) > 0 {
		t.VehicleAttrs = map[string]interface{}(row.VehicleAttrs)
	}
	return t
}

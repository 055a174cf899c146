package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"parking-service/internal/domain/parking"
)

type Spot struct {
	SpotNumber int    `gorm:"primaryKey"`
	Type       string `gorm:"not null"`
	Available  bool   `gorm:"not null"`
	CreatedAt  time.Time
}

func (Spot) TableName() string { return "parking_spots" }

type SpotRepository struct {
	db *gorm.DB
}

func NewSpotRepository(db *gorm.DB) *SpotRepository {
	return &SpotRepository{db: db}
}

// FindFreeSpot returns the lowest-numbered available spot of the given type,
// or 0 when none is free.
func (r *SpotRepository) FindFreeSpot(ctx context.Context, vehicleType parking.VehicleType) (int, error) {
	var spot Spot
	err := r.db.WithContext(ctx).
		Where("type = ? AND available = true", string(vehicleType)).
		Order("spot_number ASC").
		First(&spot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return spot.SpotNumber, nil
}

// SetAvailability flips a spot's availability with a conditional update, so
// two concurrent reservations of the same spot cannot both succeed. The
// returned row count is 0 when the spot is unknown or already in the target
// state.
func (r *SpotRepository) SetAvailability(ctx context.Context, spotNumber int, available bool) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&Spot{}).
		Where("spot_number = ? AND available = ?", spotNumber, !available).
		Update("available", available)
	return res.RowsAffected, res.Error
}

func (r *SpotRepository) ListSpots(ctx context.Context) ([]parking.Spot, error) {
	var spots []Spot
	err := r.db.WithContext(ctx).
		Order("spot_number ASC").
		Find(&spots).Error
	if err != nil {
		return nil, err
	}

	result := make([]parking.Spot, 0, len(spots))
	for _, s := range spots {
		result = append(result, parking.Spot{
			Number:    s.SpotNumber,
			Type:      parking.VehicleType(s.Type),
			Available: s.Available,
		})
	}
	return result, nil
}

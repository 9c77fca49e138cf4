package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/openmotel/motel/pkg/types"
)

type Service interface {
	AddReading(ctx context.Context, req AddReadingRequest) (*MeterReading, error)
	ListReadings(ctx context.Context, req ListReadingsRequest) ([]MeterReading, error)
	// RangeForPeriod returns the latest reading strictly before the
	// period start and the latest reading at or before the period end.
	// Either side may be nil.
	RangeForPeriod(ctx context.Context, roomID snowflake.ID, utility Utility, start, end time.Time) (*PeriodRange, error)
}

type AddReadingRequest struct {
	RoomID    snowflake.ID
	Utility   Utility
	Value     types.BigInt
	ReadingAt time.Time
}

type ListReadingsRequest struct {
	RoomID  snowflake.ID
	Utility Utility
	From    *time.Time
	To      *time.Time
}

type PeriodRange struct {
	Before *MeterReading
	End    *MeterReading
}

var (
	ErrInvalidUtility = errors.New("invalid_utility")
	ErrNegativeValue  = errors.New("negative_reading_value")
	ErrInvalidTime    = errors.New("invalid_reading_time")
)

package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, utility Utility, reading *MeterReading) error
	// LatestBefore returns the most recent reading before ts. With
	// inclusive set, readings taken exactly at ts qualify.
	LatestBefore(ctx context.Context, db *gorm.DB, utility Utility, roomID snowflake.ID, ts time.Time, inclusive bool) (*MeterReading, error)
	List(ctx context.Context, db *gorm.DB, utility Utility, roomID snowflake.ID, from, to *time.Time) ([]MeterReading, error)
}

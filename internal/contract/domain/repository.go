package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Contract, error)
	FindActiveForPeriod(ctx context.Context, db *gorm.DB, roomID snowflake.ID, start, end time.Time) (*Contract, error)
	ListFixedCosts(ctx context.Context, db *gorm.DB, contractID snowflake.ID) ([]FixedCost, error)
}

package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// InsertIfAbsent inserts the bill unless one already exists for its
	// (contract_id, period_key). Reports whether the row was written.
	InsertIfAbsent(ctx context.Context, db *gorm.DB, bill *Bill) (bool, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Bill, error)
	FindByContractPeriod(ctx context.Context, db *gorm.DB, contractID snowflake.ID, periodKey string) (*Bill, error)
	// FindLatestBefore returns the most recent bill for the contract
	// preceding periodKey, ordered by period then charge date.
	FindLatestBefore(ctx context.Context, db *gorm.DB, contractID snowflake.ID, periodKey string) (*Bill, error)
	ListForContract(ctx context.Context, db *gorm.DB, contractID snowflake.ID) ([]Bill, error)
}

package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, payment *Payment) error
	ListForBill(ctx context.Context, db *gorm.DB, billID snowflake.ID) ([]Payment, error)
}

package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/openmotel/motel/pkg/types"
)

// Payment is one partial payment against a bill. Rows are append-only:
// never updated, never deleted, and their sum always equals the bill's
// total_paid.
type Payment struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	BillID    snowflake.ID `json:"bill_id" gorm:"not null;index"`
	Amount    types.BigInt `json:"amount" gorm:"not null"`
	PaidAt    time.Time    `json:"paid_at" gorm:"not null"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Payment) TableName() string { return "bill_payments" }

package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/openmotel/motel/internal/billing/domain"
	"github.com/openmotel/motel/pkg/types"
)

type Service interface {
	// Record appends a payment and bumps the bill's total_paid in one
	// transaction. total_paid never exceeds total_price and never
	// decreases.
	Record(ctx context.Context, req RecordRequest) (*billingdomain.Bill, error)
	ListForBill(ctx context.Context, billID snowflake.ID) ([]Payment, error)
}

type RecordRequest struct {
	BillID snowflake.ID
	Amount types.BigInt
	// PaidAt defaults to now.
	PaidAt *time.Time
}

var (
	ErrNonPositiveAmount = errors.New("non_positive_payment_amount")
	ErrExceedsRemaining  = errors.New("payment_exceeds_remaining")
)

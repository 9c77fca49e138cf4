package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/openmotel/motel/pkg/types"
)

type Service interface {
	// Generate creates the bill for a contract and period, or returns
	// the existing one unchanged. Exactly one bill survives per
	// (contract, period) regardless of concurrent callers.
	Generate(ctx context.Context, req GenerateRequest) (*Bill, error)
	// Preview runs the full reading-resolution and pricing pipeline
	// without persisting anything.
	Preview(ctx context.Context, req PreviewRequest) (*Statement, error)
	GetByID(ctx context.Context, billID snowflake.ID) (*Bill, error)
	ListForContract(ctx context.Context, contractID snowflake.ID) ([]Bill, error)
}

type GenerateRequest struct {
	ContractID snowflake.ID
	Period     string
	// ChargeDate overrides the default of the period's last instant.
	ChargeDate *time.Time
	// Explicit end-of-period readings; when nil the latest stored
	// reading at or before the period end is used.
	ElectricityAfter *types.BigInt
	WaterAfter       *types.BigInt
}

type PreviewRequest struct {
	RoomID snowflake.ID
	Period string
}

var (
	ErrInvalidPeriod             = errors.New("invalid_period")
	ErrBillNotFound              = errors.New("bill_not_found")
	ErrMissingElectricityReading = errors.New("missing_electricity_reading")
	ErrMissingWaterReading       = errors.New("missing_water_reading")
	ErrNonMonotonicElectricity   = errors.New("non_monotonic_electricity_reading")
	ErrNonMonotonicWater         = errors.New("non_monotonic_water_reading")
)

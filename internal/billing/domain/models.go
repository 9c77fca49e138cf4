package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/openmotel/motel/pkg/types"
)

// Bill is one generated charge for a contract and calendar month.
// At most one row exists per (contract_id, period_key); the unique
// index is what makes generation idempotent under concurrency.
// Immutable after insert except for total_paid, which only grows.
type Bill struct {
	ID                snowflake.ID `json:"id" gorm:"primaryKey"`
	UUID              string       `json:"uuid" gorm:"type:text;not null"`
	ContractID        snowflake.ID `json:"contract_id" gorm:"not null;uniqueIndex:ux_bills_contract_period,priority:1"`
	RoomID            snowflake.ID `json:"room_id" gorm:"not null;index"`
	TenantID          snowflake.ID `json:"tenant_id" gorm:"not null;index"`
	PeriodKey         string       `json:"period" gorm:"type:text;not null;uniqueIndex:ux_bills_contract_period,priority:2"`
	ChargeDate        time.Time    `json:"charge_date" gorm:"not null"`
	ElectricityBefore types.BigInt `json:"electricity_before" gorm:"not null"`
	ElectricityAfter  types.BigInt `json:"electricity_after" gorm:"not null"`
	WaterBefore       types.BigInt `json:"water_before" gorm:"not null"`
	WaterAfter        types.BigInt `json:"water_after" gorm:"not null"`
	TotalPrice        types.BigInt `json:"total_price" gorm:"not null"`
	TotalPaid         types.BigInt `json:"total_paid" gorm:"not null"`
	CreatedAt         time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt         time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Bill) TableName() string { return "bills" }

// Remaining is the unpaid part of the bill.
func (b Bill) Remaining() types.BigInt {
	return b.TotalPrice.Sub(b.TotalPaid)
}

// UtilityLine is the itemized charge for one metered utility.
type UtilityLine struct {
	Before    types.BigInt `json:"before"`
	After     types.BigInt `json:"after"`
	Used      types.BigInt `json:"used"`
	UnitPrice types.BigInt `json:"unit_price"`
	Charge    types.BigInt `json:"charge"`
}

// Statement is the itemized result of the billing calculator. It backs
// both the preview endpoint and bill generation.
type Statement struct {
	PeriodKey   string       `json:"period"`
	PeriodStart time.Time    `json:"period_start"`
	PeriodEnd   time.Time    `json:"period_end"`
	RoomPrice   types.BigInt `json:"room_price"`
	Electricity UtilityLine  `json:"electricity"`
	Water       UtilityLine  `json:"water"`
	FixedTotal  types.BigInt `json:"fixed_total"`
	Total       types.BigInt `json:"total"`
}

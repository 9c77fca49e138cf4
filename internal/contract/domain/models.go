package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/openmotel/motel/pkg/types"
)

// Contract is a lease over one room, carrying the rate terms billing
// applies: flat room price, per-unit utility prices, optional meter
// start values, and fixed monthly costs.
type Contract struct {
	ID                    snowflake.ID  `json:"id" gorm:"primaryKey"`
	RoomID                snowflake.ID  `json:"room_id" gorm:"not null;index"`
	TenantID              snowflake.ID  `json:"tenant_id" gorm:"not null;index"`
	RoomPrice             types.BigInt  `json:"room_price" gorm:"not null"`
	ElectricityUnitPrice  *types.BigInt `json:"electricity_unit_price"`
	ElectricityStartValue *types.BigInt `json:"electricity_start_value"`
	WaterUnitPrice        *types.BigInt `json:"water_unit_price"`
	WaterStartValue       *types.BigInt `json:"water_start_value"`
	StartDate             time.Time     `json:"start_date" gorm:"not null;index"`
	EndDate               *time.Time    `json:"end_date"`
	Note                  string        `json:"note" gorm:"type:text"`
	CreatedAt             time.Time     `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt             time.Time     `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`

	FixedCosts []FixedCost `json:"fixed_costs" gorm:"-"`
}

func (Contract) TableName() string { return "contracts" }

// ActiveDuring reports whether the contract overlaps [start, end].
// A nil end date means the lease is open-ended.
func (c Contract) ActiveDuring(start, end time.Time) bool {
	if c.StartDate.After(end) {
		return false
	}
	return c.EndDate == nil || !c.EndDate.Before(start)
}

// FixedCost is a recurring monthly charge attached to a contract
// (garbage, internet, parking and the like).
type FixedCost struct {
	ID         snowflake.ID `json:"id" gorm:"primaryKey"`
	ContractID snowflake.ID `json:"contract_id" gorm:"not null;index"`
	Name       string       `json:"name" gorm:"type:text;not null"`
	Price      types.BigInt `json:"price" gorm:"not null"`
	CreatedAt  time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (FixedCost) TableName() string { return "contract_fixed_costs" }

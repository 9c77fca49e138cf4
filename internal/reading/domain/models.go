package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/openmotel/motel/pkg/types"
)

// Utility selects which meter a reading belongs to. Each utility keeps
// its own table.
type Utility string

const (
	UtilityElectricity Utility = "electricity"
	UtilityWater       Utility = "water"
)

func ParseUtility(raw string) (Utility, error) {
	switch Utility(strings.ToLower(strings.TrimSpace(raw))) {
	case UtilityElectricity:
		return UtilityElectricity, nil
	case UtilityWater:
		return UtilityWater, nil
	default:
		return "", ErrInvalidUtility
	}
}

// MeterReading is a raw counter sample. Rows are immutable; ordering
// and continuity are checked at billing time, not at ingestion.
type MeterReading struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	RoomID    snowflake.ID `json:"room_id" gorm:"not null;index"`
	Value     types.BigInt `json:"value" gorm:"not null"`
	ReadingAt time.Time    `json:"reading_at" gorm:"not null;index"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// ElectricityReading maps MeterReading onto the electricity table.
type ElectricityReading struct {
	MeterReading `gorm:"embedded"`
}

func (ElectricityReading) TableName() string { return "electricity_readings" }

// WaterReading maps MeterReading onto the water table.
type WaterReading struct {
	MeterReading `gorm:"embedded"`
}

func (WaterReading) TableName() string { return "water_readings" }

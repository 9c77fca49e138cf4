package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Apartment groups rooms under a single owner.
type Apartment struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	OwnerID   snowflake.ID `json:"owner_id" gorm:"not null;index"`
	Name      string       `json:"name" gorm:"type:text;not null"`
	Address   string       `json:"address" gorm:"type:text"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Apartment) TableName() string { return "apartments" }

// Room is the rentable unit meters and contracts attach to.
type Room struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	ApartmentID snowflake.ID `json:"apartment_id" gorm:"not null;index"`
	RoomNumber  string       `json:"room_number" gorm:"type:text;not null"`
	CreatedAt   time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Room) TableName() string { return "rooms" }

// Tenant is the renting party referenced by contracts and bills.
type Tenant struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Name      string       `json:"name" gorm:"type:text;not null"`
	Phone     string       `json:"phone" gorm:"type:text"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Tenant) TableName() string { return "tenants" }

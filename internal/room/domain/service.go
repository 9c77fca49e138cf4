package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Guard is the single ownership capability check every service uses
// instead of re-deriving the room -> apartment -> owner join chain.
type Guard interface {
	// AssertRoomOwned loads the room and verifies the owner chain,
	// using tx when the caller already holds a transaction.
	AssertRoomOwned(ctx context.Context, tx *gorm.DB, ownerID, roomID snowflake.ID) (*Room, error)
}

var (
	ErrRoomNotFound  = errors.New("room_not_found")
	ErrRoomForbidden = errors.New("room_forbidden")
	ErrInvalidOwner  = errors.New("invalid_owner")
)

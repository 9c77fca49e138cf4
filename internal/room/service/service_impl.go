package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	roomdomain "github.com/openmotel/motel/internal/room/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type Guard struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewGuard(p Params) roomdomain.Guard {
	return &Guard{
		db:  p.DB,
		log: p.Log.Named("room.guard"),
	}
}

type ownedRoomRow struct {
	ID          snowflake.ID
	ApartmentID snowflake.ID
	RoomNumber  string
	OwnerID     snowflake.ID
}

func (g *Guard) AssertRoomOwned(ctx context.Context, tx *gorm.DB, ownerID, roomID snowflake.ID) (*roomdomain.Room, error) {
	if ownerID == 0 {
		return nil, roomdomain.ErrInvalidOwner
	}
	conn := tx
	if conn == nil {
		conn = g.db
	}

	var row ownedRoomRow
	err := conn.WithContext(ctx).Raw(
		`SELECT r.id, r.apartment_id, r.room_number, a.owner_id
		 FROM rooms r
		 JOIN apartments a ON a.id = r.apartment_id
		 WHERE r.id = ?`,
		roomID,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, roomdomain.ErrRoomNotFound
	}
	if row.OwnerID != ownerID {
		return nil, roomdomain.ErrRoomForbidden
	}

	return &roomdomain.Room{
		ID:          row.ID,
		ApartmentID: row.ApartmentID,
		RoomNumber:  row.RoomNumber,
	}, nil
}

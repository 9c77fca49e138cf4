package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	readingdomain "github.com/openmotel/motel/internal/reading/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() readingdomain.Repository {
	return &repo{}
}

func tableFor(utility readingdomain.Utility) (string, error) {
	switch utility {
	case readingdomain.UtilityElectricity:
		return "electricity_readings", nil
	case readingdomain.UtilityWater:
		return "water_readings", nil
	default:
		return "", readingdomain.ErrInvalidUtility
	}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, utility readingdomain.Utility, reading *readingdomain.MeterReading) error {
	table, err := tableFor(utility)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Exec(
		fmt.Sprintf(`INSERT INTO %s (id, room_id, value, reading_at, created_at)
		 VALUES (?, ?, ?, ?, ?)`, table),
		reading.ID,
		reading.RoomID,
		reading.Value,
		reading.ReadingAt,
		reading.CreatedAt,
	).Error
}

func (r *repo) LatestBefore(ctx context.Context, db *gorm.DB, utility readingdomain.Utility, roomID snowflake.ID, ts time.Time, inclusive bool) (*readingdomain.MeterReading, error) {
	table, err := tableFor(utility)
	if err != nil {
		return nil, err
	}
	op := "<"
	if inclusive {
		op = "<="
	}

	var reading readingdomain.MeterReading
	err = db.WithContext(ctx).Raw(
		fmt.Sprintf(`SELECT id, room_id, value, reading_at, created_at
		 FROM %s
		 WHERE room_id = ? AND reading_at %s ?
		 ORDER BY reading_at DESC, id DESC
		 LIMIT 1`, table, op),
		roomID,
		ts,
	).Scan(&reading).Error
	if err != nil {
		return nil, err
	}
	if reading.ID == 0 {
		return nil, nil
	}
	return &reading, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, utility readingdomain.Utility, roomID snowflake.ID, from, to *time.Time) ([]readingdomain.MeterReading, error) {
	table, err := tableFor(utility)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT id, room_id, value, reading_at, created_at
	 FROM %s WHERE room_id = ?`, table)
	args := []any{roomID}
	if from != nil {
		query += " AND reading_at >= ?"
		args = append(args, *from)
	}
	if to != nil {
		query += " AND reading_at <= ?"
		args = append(args, *to)
	}
	query += " ORDER BY reading_at DESC, id DESC"

	var readings []readingdomain.MeterReading
	err = db.WithContext(ctx).Raw(query, args...).Scan(&readings).Error
	if err != nil {
		return nil, err
	}
	return readings, nil
}

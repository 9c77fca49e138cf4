package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	contractdomain "github.com/openmotel/motel/internal/contract/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() contractdomain.Repository {
	return &repo{}
}

const contractColumns = `id, room_id, tenant_id, room_price,
	electricity_unit_price, electricity_start_value,
	water_unit_price, water_start_value,
	start_date, end_date, note, created_at, updated_at`

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*contractdomain.Contract, error) {
	var contract contractdomain.Contract
	err := db.WithContext(ctx).Raw(
		`SELECT `+contractColumns+`
		 FROM contracts WHERE id = ?`,
		id,
	).Scan(&contract).Error
	if err != nil {
		return nil, err
	}
	if contract.ID == 0 {
		return nil, nil
	}
	return &contract, nil
}

func (r *repo) FindActiveForPeriod(ctx context.Context, db *gorm.DB, roomID snowflake.ID, start, end time.Time) (*contractdomain.Contract, error) {
	var contract contractdomain.Contract
	err := db.WithContext(ctx).Raw(
		`SELECT `+contractColumns+`
		 FROM contracts
		 WHERE room_id = ?
		   AND start_date <= ?
		   AND (end_date IS NULL OR end_date >= ?)
		 ORDER BY start_date DESC, id DESC
		 LIMIT 1`,
		roomID,
		end,
		start,
	).Scan(&contract).Error
	if err != nil {
		return nil, err
	}
	if contract.ID == 0 {
		return nil, nil
	}
	return &contract, nil
}

func (r *repo) ListFixedCosts(ctx context.Context, db *gorm.DB, contractID snowflake.ID) ([]contractdomain.FixedCost, error) {
	var costs []contractdomain.FixedCost
	err := db.WithContext(ctx).Raw(
		`SELECT id, contract_id, name, price, created_at
		 FROM contract_fixed_costs
		 WHERE contract_id = ?
		 ORDER BY id ASC`,
		contractID,
	).Scan(&costs).Error
	if err != nil {
		return nil, err
	}
	return costs, nil
}

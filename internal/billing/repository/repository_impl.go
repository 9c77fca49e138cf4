package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/openmotel/motel/internal/billing/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() billingdomain.Repository {
	return &repo{}
}

const billColumns = `id, uuid, contract_id, room_id, tenant_id, period_key, charge_date,
	electricity_before, electricity_after, water_before, water_after,
	total_price, total_paid, created_at, updated_at`

func (r *repo) InsertIfAbsent(ctx context.Context, db *gorm.DB, bill *billingdomain.Bill) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`INSERT INTO bills (
			id, uuid, contract_id, room_id, tenant_id, period_key, charge_date,
			electricity_before, electricity_after, water_before, water_after,
			total_price, total_paid, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (contract_id, period_key) DO NOTHING`,
		bill.ID,
		bill.UUID,
		bill.ContractID,
		bill.RoomID,
		bill.TenantID,
		bill.PeriodKey,
		bill.ChargeDate,
		bill.ElectricityBefore,
		bill.ElectricityAfter,
		bill.WaterBefore,
		bill.WaterAfter,
		bill.TotalPrice,
		bill.TotalPaid,
		bill.CreatedAt,
		bill.UpdatedAt,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*billingdomain.Bill, error) {
	var bill billingdomain.Bill
	err := db.WithContext(ctx).Raw(
		`SELECT `+billColumns+` FROM bills WHERE id = ?`,
		id,
	).Scan(&bill).Error
	if err != nil {
		return nil, err
	}
	if bill.ID == 0 {
		return nil, nil
	}
	return &bill, nil
}

func (r *repo) FindByContractPeriod(ctx context.Context, db *gorm.DB, contractID snowflake.ID, periodKey string) (*billingdomain.Bill, error) {
	var bill billingdomain.Bill
	err := db.WithContext(ctx).Raw(
		`SELECT `+billColumns+`
		 FROM bills
		 WHERE contract_id = ? AND period_key = ?
		 LIMIT 1`,
		contractID,
		periodKey,
	).Scan(&bill).Error
	if err != nil {
		return nil, err
	}
	if bill.ID == 0 {
		return nil, nil
	}
	return &bill, nil
}

func (r *repo) FindLatestBefore(ctx context.Context, db *gorm.DB, contractID snowflake.ID, periodKey string) (*billingdomain.Bill, error) {
	// period_key sorts lexicographically in calendar order; charge_date
	// breaks ties for rows predating the period column.
	var bill billingdomain.Bill
	err := db.WithContext(ctx).Raw(
		`SELECT `+billColumns+`
		 FROM bills
		 WHERE contract_id = ? AND period_key < ?
		 ORDER BY period_key DESC, charge_date DESC, id DESC
		 LIMIT 1`,
		contractID,
		periodKey,
	).Scan(&bill).Error
	if err != nil {
		return nil, err
	}
	if bill.ID == 0 {
		return nil, nil
	}
	return &bill, nil
}

func (r *repo) ListForContract(ctx context.Context, db *gorm.DB, contractID snowflake.ID) ([]billingdomain.Bill, error) {
	var bills []billingdomain.Bill
	err := db.WithContext(ctx).Raw(
		`SELECT `+billColumns+`
		 FROM bills
		 WHERE contract_id = ?
		 ORDER BY period_key DESC, id DESC`,
		contractID,
	).Scan(&bills).Error
	if err != nil {
		return nil, err
	}
	return bills, nil
}

package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	paymentdomain "github.com/openmotel/motel/internal/payment/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() paymentdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, payment *paymentdomain.Payment) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO bill_payments (id, bill_id, amount, paid_at, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		payment.ID,
		payment.BillID,
		payment.Amount,
		payment.PaidAt,
		payment.CreatedAt,
	).Error
}

func (r *repo) ListForBill(ctx context.Context, db *gorm.DB, billID snowflake.ID) ([]paymentdomain.Payment, error) {
	var payments []paymentdomain.Payment
	err := db.WithContext(ctx).Raw(
		`SELECT id, bill_id, amount, paid_at, created_at
		 FROM bill_payments
		 WHERE bill_id = ?
		 ORDER BY paid_at ASC, id ASC`,
		billID,
	).Scan(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

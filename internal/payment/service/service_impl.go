package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/openmotel/motel/internal/billing/domain"
	"github.com/openmotel/motel/internal/db"
	obsmetrics "github.com/openmotel/motel/internal/observability/metrics"
	"github.com/openmotel/motel/internal/ownerctx"
	paymentdomain "github.com/openmotel/motel/internal/payment/domain"
	roomdomain "github.com/openmotel/motel/internal/room/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Guard      roomdomain.Guard
	Repo       paymentdomain.Repository
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	guard      roomdomain.Guard
	repo       paymentdomain.Repository
	obsMetrics *obsmetrics.Metrics
}

func New(p Params) paymentdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("payment.service"),
		genID:      p.GenID,
		guard:      p.Guard,
		repo:       p.Repo,
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Service) Record(ctx context.Context, req paymentdomain.RecordRequest) (*billingdomain.Bill, error) {
	ownerID, err := s.ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if req.Amount.Sign() <= 0 {
		s.obsMetrics.PaymentRecorded(obsmetrics.OutcomeRejected)
		return nil, paymentdomain.ErrNonPositiveAmount
	}

	now := time.Now().UTC()
	paidAt := now
	if req.PaidAt != nil {
		paidAt = req.PaidAt.UTC()
	}

	var updated *billingdomain.Bill
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Row lock first, then read remaining: two concurrent payments
		// must serialize here, or both would accept against the same
		// stale total_paid.
		bill, err := s.loadBillForUpdate(ctx, tx, req.BillID)
		if err != nil {
			return err
		}
		if bill == nil {
			return billingdomain.ErrBillNotFound
		}
		if _, err := s.guard.AssertRoomOwned(ctx, tx, ownerID, bill.RoomID); err != nil {
			return err
		}

		remaining := bill.Remaining()
		if req.Amount.Cmp(remaining) > 0 {
			return paymentdomain.ErrExceedsRemaining
		}

		payment := &paymentdomain.Payment{
			ID:        s.genID.Generate(),
			BillID:    bill.ID,
			Amount:    req.Amount,
			PaidAt:    paidAt,
			CreatedAt: now,
		}
		if err := s.repo.Insert(ctx, tx, payment); err != nil {
			return err
		}

		newPaid := bill.TotalPaid.Add(req.Amount)
		if err := tx.WithContext(ctx).Exec(
			`UPDATE bills SET total_paid = ?, updated_at = ? WHERE id = ?`,
			newPaid,
			now,
			bill.ID,
		).Error; err != nil {
			return err
		}

		bill.TotalPaid = newPaid
		bill.UpdatedAt = now
		updated = bill
		return nil
	})
	if err != nil {
		s.obsMetrics.PaymentRecorded(obsmetrics.OutcomeRejected)
		return nil, err
	}

	s.obsMetrics.PaymentRecorded(obsmetrics.OutcomeCreated)
	s.log.Info("payment recorded",
		zap.String("bill_id", updated.ID.String()),
		zap.String("amount", req.Amount.String()),
		zap.String("total_paid", updated.TotalPaid.String()),
	)
	return updated, nil
}

func (s *Service) ListForBill(ctx context.Context, billID snowflake.ID) ([]paymentdomain.Payment, error) {
	ownerID, err := s.ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	bill, err := s.loadBill(ctx, s.db, billID)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, billingdomain.ErrBillNotFound
	}
	if _, err := s.guard.AssertRoomOwned(ctx, nil, ownerID, bill.RoomID); err != nil {
		return nil, err
	}

	return s.repo.ListForBill(ctx, s.db, billID)
}

const billColumns = `id, uuid, contract_id, room_id, tenant_id, period_key, charge_date,
	electricity_before, electricity_after, water_before, water_after,
	total_price, total_paid, created_at, updated_at`

func (s *Service) loadBillForUpdate(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*billingdomain.Bill, error) {
	var bill billingdomain.Bill
	err := tx.WithContext(ctx).Raw(
		`SELECT `+billColumns+` FROM bills WHERE id = ?`+db.LockingClause(tx),
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

func (s *Service) loadBill(ctx context.Context, conn *gorm.DB, id snowflake.ID) (*billingdomain.Bill, error) {
	var bill billingdomain.Bill
	err := conn.WithContext(ctx).Raw(
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

func (s *Service) ownerFromContext(ctx context.Context) (snowflake.ID, error) {
	ownerID, ok := ownerctx.OwnerIDFromContext(ctx)
	if !ok || ownerID == 0 {
		return 0, roomdomain.ErrInvalidOwner
	}
	return ownerID, nil
}

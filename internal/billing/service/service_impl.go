package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	billingdomain "github.com/openmotel/motel/internal/billing/domain"
	contractdomain "github.com/openmotel/motel/internal/contract/domain"
	"github.com/openmotel/motel/internal/db"
	obsmetrics "github.com/openmotel/motel/internal/observability/metrics"
	"github.com/openmotel/motel/internal/ownerctx"
	readingdomain "github.com/openmotel/motel/internal/reading/domain"
	roomdomain "github.com/openmotel/motel/internal/room/domain"
	"github.com/openmotel/motel/pkg/types"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Guard       roomdomain.Guard
	ContractSvc contractdomain.Service
	ReadingRepo readingdomain.Repository
	Repo        billingdomain.Repository
	ObsMetrics  *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	guard       roomdomain.Guard
	contractSvc contractdomain.Service
	readingRepo readingdomain.Repository
	repo        billingdomain.Repository
	obsMetrics  *obsmetrics.Metrics
}

func New(p Params) billingdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("billing.service"),
		genID:       p.GenID,
		guard:       p.Guard,
		contractSvc: p.ContractSvc,
		readingRepo: p.ReadingRepo,
		repo:        p.Repo,
		obsMetrics:  p.ObsMetrics,
	}
}

func (s *Service) Generate(ctx context.Context, req billingdomain.GenerateRequest) (*billingdomain.Bill, error) {
	period, err := billingdomain.ParsePeriod(req.Period)
	if err != nil {
		return nil, err
	}

	contract, err := s.contractSvc.GetOwned(ctx, req.ContractID)
	if err != nil {
		return nil, err
	}

	// Fast path: the period was already billed. All reading resolution
	// and pricing is skipped so the stored bill is returned unchanged.
	existing, err := s.repo.FindByContractPeriod(ctx, s.db, contract.ID, period.Key)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.obsMetrics.BillGenerated(obsmetrics.OutcomeExisting)
		return existing, nil
	}

	statement, err := s.resolveAndCompute(ctx, contract, period, req.ElectricityAfter, req.WaterAfter)
	if err != nil {
		s.obsMetrics.BillGenerated(obsmetrics.OutcomeRejected)
		return nil, err
	}

	chargeDate := period.End
	if req.ChargeDate != nil {
		chargeDate = req.ChargeDate.UTC()
	}

	now := time.Now().UTC()
	bill := &billingdomain.Bill{
		ID:                s.genID.Generate(),
		UUID:              uuid.NewString(),
		ContractID:        contract.ID,
		RoomID:            contract.RoomID,
		TenantID:          contract.TenantID,
		PeriodKey:         period.Key,
		ChargeDate:        chargeDate,
		ElectricityBefore: statement.Electricity.Before,
		ElectricityAfter:  statement.Electricity.After,
		WaterBefore:       statement.Water.Before,
		WaterAfter:        statement.Water.After,
		TotalPrice:        statement.Total,
		TotalPaid:         types.NewBigInt(0),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	var result *billingdomain.Bill
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inserted, err := s.repo.InsertIfAbsent(ctx, tx, bill)
		if err != nil {
			if !db.IsDuplicateKeyErr(err) {
				return err
			}
			inserted = false
		}
		if inserted {
			result = bill
			return nil
		}

		// A concurrent caller won the insert; hand back its row.
		winner, err := s.repo.FindByContractPeriod(ctx, tx, contract.ID, period.Key)
		if err != nil {
			return err
		}
		if winner == nil {
			return fmt.Errorf("bill for contract %s period %s vanished after conflict", contract.ID, period.Key)
		}
		result = winner
		return nil
	})
	if err != nil {
		s.obsMetrics.BillGenerated(obsmetrics.OutcomeError)
		return nil, err
	}

	if result.ID == bill.ID {
		s.obsMetrics.BillGenerated(obsmetrics.OutcomeCreated)
		s.log.Info("bill generated",
			zap.String("bill_id", result.ID.String()),
			zap.String("contract_id", contract.ID.String()),
			zap.String("period", period.Key),
			zap.String("total", result.TotalPrice.String()),
		)
	} else {
		s.obsMetrics.BillGenerated(obsmetrics.OutcomeExisting)
	}
	return result, nil
}

func (s *Service) Preview(ctx context.Context, req billingdomain.PreviewRequest) (*billingdomain.Statement, error) {
	period, err := billingdomain.ParsePeriod(req.Period)
	if err != nil {
		return nil, err
	}

	contract, err := s.contractSvc.ActiveForPeriod(ctx, req.RoomID, period.Start, period.End)
	if err != nil {
		return nil, err
	}

	return s.resolveAndCompute(ctx, contract, period, nil, nil)
}

func (s *Service) GetByID(ctx context.Context, billID snowflake.ID) (*billingdomain.Bill, error) {
	ownerID, err := s.ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	bill, err := s.repo.FindByID(ctx, s.db, billID)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, billingdomain.ErrBillNotFound
	}
	if _, err := s.guard.AssertRoomOwned(ctx, nil, ownerID, bill.RoomID); err != nil {
		return nil, err
	}
	return bill, nil
}

func (s *Service) ListForContract(ctx context.Context, contractID snowflake.ID) ([]billingdomain.Bill, error) {
	contract, err := s.contractSvc.GetOwned(ctx, contractID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListForContract(ctx, s.db, contract.ID)
}

// resolveAndCompute applies the documented fallback chain for both
// utilities and prices the period.
//
// After readings: explicit caller value, else the latest stored
// reading at or before the period end.
//
// Before readings: the previous bill's after value carries forward
// first, then the latest raw reading strictly before the period start,
// then the contract's start value.
func (s *Service) resolveAndCompute(
	ctx context.Context,
	contract *contractdomain.Contract,
	period billingdomain.Period,
	electricityAfter, waterAfter *types.BigInt,
) (*billingdomain.Statement, error) {

	priorBill, err := s.repo.FindLatestBefore(ctx, s.db, contract.ID, period.Key)
	if err != nil {
		return nil, err
	}

	elecAfter, err := s.resolveAfter(ctx, contract.RoomID, readingdomain.UtilityElectricity, period, electricityAfter, billingdomain.ErrMissingElectricityReading)
	if err != nil {
		return nil, err
	}
	waterAfterVal, err := s.resolveAfter(ctx, contract.RoomID, readingdomain.UtilityWater, period, waterAfter, billingdomain.ErrMissingWaterReading)
	if err != nil {
		return nil, err
	}

	var priorElec, priorWater *types.BigInt
	if priorBill != nil {
		priorElec = &priorBill.ElectricityAfter
		priorWater = &priorBill.WaterAfter
	}

	elecBefore, err := s.resolveBefore(ctx, contract.RoomID, readingdomain.UtilityElectricity, period, priorElec, contract.ElectricityStartValue, billingdomain.ErrMissingElectricityReading)
	if err != nil {
		return nil, err
	}
	waterBefore, err := s.resolveBefore(ctx, contract.RoomID, readingdomain.UtilityWater, period, priorWater, contract.WaterStartValue, billingdomain.ErrMissingWaterReading)
	if err != nil {
		return nil, err
	}

	return billingdomain.ComputeStatement(contract, period, elecBefore, elecAfter, waterBefore, waterAfterVal)
}

func (s *Service) resolveAfter(
	ctx context.Context,
	roomID snowflake.ID,
	utility readingdomain.Utility,
	period billingdomain.Period,
	explicit *types.BigInt,
	missing error,
) (types.BigInt, error) {

	if explicit != nil {
		if explicit.Sign() < 0 {
			return types.BigInt{}, readingdomain.ErrNegativeValue
		}
		return *explicit, nil
	}

	reading, err := s.readingRepo.LatestBefore(ctx, s.db, utility, roomID, period.End, true)
	if err != nil {
		return types.BigInt{}, err
	}
	if reading == nil {
		return types.BigInt{}, fmt.Errorf("%w: no end-of-period reading at or before %s", missing, period.End.Format(time.RFC3339))
	}
	return reading.Value, nil
}

func (s *Service) resolveBefore(
	ctx context.Context,
	roomID snowflake.ID,
	utility readingdomain.Utility,
	period billingdomain.Period,
	carryForward *types.BigInt,
	contractStart *types.BigInt,
	missing error,
) (types.BigInt, error) {

	if carryForward != nil {
		return *carryForward, nil
	}

	reading, err := s.readingRepo.LatestBefore(ctx, s.db, utility, roomID, period.Start, false)
	if err != nil {
		return types.BigInt{}, err
	}
	if reading != nil {
		return reading.Value, nil
	}

	if contractStart != nil {
		return *contractStart, nil
	}
	return types.BigInt{}, fmt.Errorf("%w: no baseline before %s and no contract start value", missing, period.Start.Format(time.RFC3339))
}

func (s *Service) ownerFromContext(ctx context.Context) (snowflake.ID, error) {
	ownerID, ok := ownerctx.OwnerIDFromContext(ctx)
	if !ok || ownerID == 0 {
		return 0, roomdomain.ErrInvalidOwner
	}
	return ownerID, nil
}

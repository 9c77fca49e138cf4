package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	contractdomain "github.com/openmotel/motel/internal/contract/domain"
	"github.com/openmotel/motel/internal/ownerctx"
	roomdomain "github.com/openmotel/motel/internal/room/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Guard roomdomain.Guard
	Repo  contractdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	guard roomdomain.Guard
	repo  contractdomain.Repository
}

func New(p Params) contractdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("contract.service"),
		guard: p.Guard,
		repo:  p.Repo,
	}
}

func (s *Service) GetOwned(ctx context.Context, contractID snowflake.ID) (*contractdomain.Contract, error) {
	ownerID, err := s.ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	contract, err := s.repo.FindByID(ctx, s.db, contractID)
	if err != nil {
		return nil, err
	}
	if contract == nil {
		return nil, contractdomain.ErrNotFound
	}
	if _, err := s.guard.AssertRoomOwned(ctx, nil, ownerID, contract.RoomID); err != nil {
		return nil, err
	}

	return s.withFixedCosts(ctx, contract)
}

func (s *Service) ActiveForPeriod(ctx context.Context, roomID snowflake.ID, start, end time.Time) (*contractdomain.Contract, error) {
	ownerID, err := s.ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.guard.AssertRoomOwned(ctx, nil, ownerID, roomID); err != nil {
		return nil, err
	}

	contract, err := s.repo.FindActiveForPeriod(ctx, s.db, roomID, start, end)
	if err != nil {
		return nil, err
	}
	if contract == nil {
		return nil, contractdomain.ErrNoActiveContract
	}

	return s.withFixedCosts(ctx, contract)
}

func (s *Service) withFixedCosts(ctx context.Context, contract *contractdomain.Contract) (*contractdomain.Contract, error) {
	costs, err := s.repo.ListFixedCosts(ctx, s.db, contract.ID)
	if err != nil {
		return nil, err
	}
	contract.FixedCosts = costs
	return contract, nil
}

func (s *Service) ownerFromContext(ctx context.Context) (snowflake.ID, error) {
	ownerID, ok := ownerctx.OwnerIDFromContext(ctx)
	if !ok || ownerID == 0 {
		return 0, roomdomain.ErrInvalidOwner
	}
	return ownerID, nil
}

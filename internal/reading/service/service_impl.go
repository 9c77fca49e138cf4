package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/openmotel/motel/internal/ownerctx"
	readingdomain "github.com/openmotel/motel/internal/reading/domain"
	roomdomain "github.com/openmotel/motel/internal/room/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Guard roomdomain.Guard
	Repo  readingdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	guard roomdomain.Guard
	repo  readingdomain.Repository
}

func New(p Params) readingdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("reading.service"),
		genID: p.GenID,
		guard: p.Guard,
		repo:  p.Repo,
	}
}

func (s *Service) AddReading(ctx context.Context, req readingdomain.AddReadingRequest) (*readingdomain.MeterReading, error) {
	ownerID, err := s.ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.guard.AssertRoomOwned(ctx, nil, ownerID, req.RoomID); err != nil {
		return nil, err
	}

	utility, err := readingdomain.ParseUtility(string(req.Utility))
	if err != nil {
		return nil, err
	}
	if req.Value.Sign() < 0 {
		return nil, readingdomain.ErrNegativeValue
	}
	if req.ReadingAt.IsZero() {
		return nil, readingdomain.ErrInvalidTime
	}

	// Out-of-order writes are accepted on purpose; delta consistency
	// is enforced when a bill is computed.
	reading := &readingdomain.MeterReading{
		ID:        s.genID.Generate(),
		RoomID:    req.RoomID,
		Value:     req.Value,
		ReadingAt: req.ReadingAt.UTC(),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, s.db, utility, reading); err != nil {
		return nil, err
	}
	return reading, nil
}

func (s *Service) ListReadings(ctx context.Context, req readingdomain.ListReadingsRequest) ([]readingdomain.MeterReading, error) {
	ownerID, err := s.ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.guard.AssertRoomOwned(ctx, nil, ownerID, req.RoomID); err != nil {
		return nil, err
	}

	utility, err := readingdomain.ParseUtility(string(req.Utility))
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, s.db, utility, req.RoomID, req.From, req.To)
}

func (s *Service) RangeForPeriod(ctx context.Context, roomID snowflake.ID, utility readingdomain.Utility, start, end time.Time) (*readingdomain.PeriodRange, error) {
	ownerID, err := s.ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.guard.AssertRoomOwned(ctx, nil, ownerID, roomID); err != nil {
		return nil, err
	}

	before, err := s.repo.LatestBefore(ctx, s.db, utility, roomID, start, false)
	if err != nil {
		return nil, err
	}
	endReading, err := s.repo.LatestBefore(ctx, s.db, utility, roomID, end, true)
	if err != nil {
		return nil, err
	}
	return &readingdomain.PeriodRange{Before: before, End: endReading}, nil
}

func (s *Service) ownerFromContext(ctx context.Context) (snowflake.ID, error) {
	ownerID, ok := ownerctx.OwnerIDFromContext(ctx)
	if !ok || ownerID == 0 {
		return 0, roomdomain.ErrInvalidOwner
	}
	return ownerID, nil
}

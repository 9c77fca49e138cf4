package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// GetOwned loads a contract and enforces the owner chain before
	// returning any of its data.
	GetOwned(ctx context.Context, contractID snowflake.ID) (*Contract, error)
	// ActiveForPeriod selects the contract covering [start, end] for a
	// room, breaking overlap ties by most recent start date.
	ActiveForPeriod(ctx context.Context, roomID snowflake.ID, start, end time.Time) (*Contract, error)
}

var (
	ErrNotFound         = errors.New("contract_not_found")
	ErrNoActiveContract = errors.New("no_active_contract")
)

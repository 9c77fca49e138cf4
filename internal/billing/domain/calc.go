package domain

import (
	"fmt"

	contractdomain "github.com/openmotel/motel/internal/contract/domain"
	"github.com/openmotel/motel/pkg/types"
)

// ComputeStatement prices one billing period from resolved meter
// readings and the contract's rate terms. Pure integer arithmetic; no
// storage access and no side effects.
//
//	total = room_price + used*unit_price per utility + sum(fixed costs)
//
// A missing unit price means the utility is not billed per unit and
// contributes zero. A counter that moved backwards means the meter was
// reset or replaced; that needs a human, not an auto-correction.
func ComputeStatement(
	contract *contractdomain.Contract,
	period Period,
	electricityBefore, electricityAfter types.BigInt,
	waterBefore, waterAfter types.BigInt,
) (*Statement, error) {

	electricity, err := computeUtilityLine("electricity", electricityBefore, electricityAfter, contract.ElectricityUnitPrice, ErrNonMonotonicElectricity)
	if err != nil {
		return nil, err
	}
	water, err := computeUtilityLine("water", waterBefore, waterAfter, contract.WaterUnitPrice, ErrNonMonotonicWater)
	if err != nil {
		return nil, err
	}

	fixedTotal := types.NewBigInt(0)
	for _, cost := range contract.FixedCosts {
		fixedTotal = fixedTotal.Add(cost.Price)
	}

	total := contract.RoomPrice.
		Add(electricity.Charge).
		Add(water.Charge).
		Add(fixedTotal)

	return &Statement{
		PeriodKey:   period.Key,
		PeriodStart: period.Start,
		PeriodEnd:   period.End,
		RoomPrice:   contract.RoomPrice,
		Electricity: electricity,
		Water:       water,
		FixedTotal:  fixedTotal,
		Total:       total,
	}, nil
}

func computeUtilityLine(name string, before, after types.BigInt, unitPrice *types.BigInt, monotonicErr error) (UtilityLine, error) {
	if after.Cmp(before) < 0 {
		return UtilityLine{}, fmt.Errorf("%w: %s before=%s after=%s", monotonicErr, name, before, after)
	}

	price := types.NewBigInt(0)
	if unitPrice != nil {
		price = *unitPrice
	}
	used := after.Sub(before)

	return UtilityLine{
		Before:    before,
		After:     after,
		Used:      used,
		UnitPrice: price,
		Charge:    used.Mul(price),
	}, nil
}

package engine

import (
	"errors"

	"github.com/holiman/uint256"
)

var (
	ErrInvalidChoice      = errors.New("nft choice must be 1 or 2")
	ErrInvalidAmount      = errors.New("amount must be greater than 0")
	ErrNotEnoughLiquidity = errors.New("not enough liquidity")
	ErrArithmeticOverflow = errors.New("reserve arithmetic overflow")
	ErrVoteNotFound       = errors.New("vote not found")
	ErrVoteMismatch       = errors.New("vote does not belong to this poll")
	ErrVoteDidNotWin      = errors.New("vote did not win")
	ErrAlreadyClaimed     = errors.New("winnings already claimed")
)

const (
	// FeeRateBps is the protocol fee charged on every stake, in basis points
	FeeRateBps = 300
	// BpsDenominator converts basis points to a ratio
	BpsDenominator = 10000
)

// SplitFee splits a gross stake into the protocol fee and the net amount
// swapped into the pool: fee = floor(amount * 300 / 10000).
func SplitFee(amount uint64) (fee, net uint64) {
	f := uint256.NewInt(amount)
	f.Mul(f, uint256.NewInt(FeeRateBps))
	f.Div(f, uint256.NewInt(BpsDenominator))
	fee = f.Uint64()
	return fee, amount - fee
}

// Reprice applies a net stake on the targeted outcome to a constant-product
// reserve pair. The stake is swapped against the opposite reserve: the
// opposite reserve grows by net, the targeted reserve becomes k divided by
// the new opposite reserve (floored), and the targeted reserve's drop is the
// number of shares the stake acquired. k itself is never recomputed.
func Reprice(targetShares, otherShares uint64, k *uint256.Int, net uint64) (acquired, newTarget, newOther uint64, err error) {
	if net > otherShares {
		return 0, 0, 0, ErrNotEnoughLiquidity
	}

	newOther = otherShares + net
	if newOther < otherShares {
		return 0, 0, 0, ErrArithmeticOverflow
	}

	q := new(uint256.Int).Div(k, uint256.NewInt(newOther))
	if !q.IsUint64() {
		return 0, 0, 0, ErrArithmeticOverflow
	}
	newTarget = q.Uint64()
	if newTarget > targetShares {
		return 0, 0, 0, ErrArithmeticOverflow
	}

	return targetShares - newTarget, newTarget, newOther, nil
}

// Price returns the implied price of an outcome in basis points: the share
// of the combined reserves held by the opposite outcome.
func Price(nft1Shares, nft2Shares uint64, choice uint8) uint64 {
	total := new(uint256.Int).Add(
		uint256.NewInt(nft1Shares),
		uint256.NewInt(nft2Shares),
	)
	if total.IsZero() {
		return 0
	}

	var opposite uint64
	if choice == 1 {
		opposite = nft2Shares
	} else {
		opposite = nft1Shares
	}

	p := uint256.NewInt(opposite)
	p.Mul(p, uint256.NewInt(BpsDenominator))
	p.Div(p, total)
	return p.Uint64()
}

// ProRata computes floor(shares * pool / totalShares) in 256-bit space
func ProRata(shares, pool, totalShares uint64) uint64 {
	if totalShares == 0 {
		return 0
	}
	p := uint256.NewInt(shares)
	p.Mul(p, uint256.NewInt(pool))
	p.Div(p, uint256.NewInt(totalShares))
	return p.Uint64()
}

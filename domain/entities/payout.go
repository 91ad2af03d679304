package entities

import (
	"math"

	"github.com/holiman/uint256"
)

var bpsDenominator = uint256.NewInt(MaxFeeBps)

// ComputeFee returns floor(totalPool * feeBps / 10000)
func ComputeFee(totalPool, feeBps int64) (int64, error) {
	if totalPool < 0 {
		return 0, ErrInvalidAmount
	}
	if feeBps < 0 || feeBps > MaxFeeBps {
		return 0, ErrInvalidFeeBps
	}
	product := new(uint256.Int).Mul(uint256.NewInt(uint64(totalPool)), uint256.NewInt(uint64(feeBps)))
	return toInt64(product.Div(product, bpsDenominator))
}

// ComputePayout returns amount * prizePool / winningPool with a 256-bit intermediate, truncated.
// Because amount never exceeds winningPool the result never exceeds prizePool.
func ComputePayout(amount, prizePool, winningPool int64) (int64, error) {
	if winningPool <= 0 {
		return 0, ErrZeroWinningPool
	}
	if amount < 0 || prizePool < 0 {
		return 0, ErrInvalidAmount
	}
	if amount > winningPool {
		return 0, ErrPayoutExceedsPot
	}
	product := new(uint256.Int).Mul(uint256.NewInt(uint64(amount)), uint256.NewInt(uint64(prizePool)))
	return toInt64(product.Div(product, uint256.NewInt(uint64(winningPool))))
}

func toInt64(v *uint256.Int) (int64, error) {
	if !v.IsUint64() || v.Uint64() > math.MaxInt64 {
		return 0, ErrOverflow
	}
	return int64(v.Uint64()), nil
}

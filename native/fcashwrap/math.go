package fcashwrap

import "math/big"

// maxFaceValue is the largest face amount representable in the wrapped-supply
// numeric domain (88 bits, matching the Market's claim notional width).
var maxFaceValue = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 88), big.NewInt(1))

// validFaceAmount reports whether amount is positive and fits the 88-bit
// domain. Values outside the domain must fail fast rather than truncate.
func validFaceAmount(amount *big.Int) bool {
	if amount == nil || amount.Sign() <= 0 {
		return false
	}
	return amount.Cmp(maxFaceValue) <= 0
}

// proRataShare computes floor(cash * burn / supply). Rounding down means the
// wrapper, not the redeeming holder, retains any remainder, so the sum of all
// individually floored redemptions can never exceed the true cash balance.
func proRataShare(cash, burn, supply *big.Int) *big.Int {
	if cash == nil || burn == nil || supply == nil || supply.Sign() == 0 {
		return big.NewInt(0)
	}
	share := new(big.Int).Mul(cash, burn)
	return share.Quo(share, supply)
}

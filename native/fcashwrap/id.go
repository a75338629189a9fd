package fcashwrap

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Claim identifiers pack the identity into a single 256-bit value:
//
//	id = (currencyID << 48) | (maturity << 8) | assetType
//
// Maturity occupies 40 bits, which covers timestamps well past year 30000.
// The fixed-cash asset type is the only one this wrapper accepts.
const (
	AssetTypeFCash uint8 = 1

	maxMaturity = uint64(1) << 40
)

// EncodeClaimID derives the packed claim identifier for an identity.
func EncodeClaimID(id TokenIdentity) (*uint256.Int, error) {
	if id.CurrencyID == 0 {
		return nil, fmt.Errorf("fcashwrap: currency id must be non-zero")
	}
	if id.Maturity == 0 || id.Maturity >= maxMaturity {
		return nil, fmt.Errorf("fcashwrap: maturity %d outside 40-bit domain", id.Maturity)
	}
	packed := uint64(id.CurrencyID)<<48 | id.Maturity<<8 | uint64(AssetTypeFCash)
	return uint256.NewInt(packed), nil
}

// DecodeClaimID unpacks a claim identifier. Identifiers with bits above the
// packed 64-bit layout are rejected rather than truncated.
func DecodeClaimID(claimID *uint256.Int) (currencyID uint16, maturity uint64, assetType uint8, err error) {
	if claimID == nil {
		return 0, 0, 0, fmt.Errorf("fcashwrap: nil claim id")
	}
	if !claimID.IsUint64() {
		return 0, 0, 0, fmt.Errorf("fcashwrap: claim id %s outside packed domain", claimID)
	}
	packed := claimID.Uint64()
	assetType = uint8(packed & 0xff)
	maturity = (packed >> 8) & (maxMaturity - 1)
	currencyID = uint16(packed >> 48)
	return currencyID, maturity, assetType, nil
}

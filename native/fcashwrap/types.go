package fcashwrap

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
)

// TokenIdentity pins a wrapper instance to one claim. It is derived once at
// construction and never changes; every mint and every accepted incoming
// transfer must reference exactly this identity.
type TokenIdentity struct {
	// CurrencyID identifies the asset family the claim is denominated in.
	CurrencyID uint16
	// Maturity is the unix timestamp after which the claim is settleable.
	Maturity uint64
	// MarketIndex selects the tenor slot used to originate new claims. It is
	// only consulted on mint; redemption of an already-held claim does not
	// re-select a market.
	MarketIndex uint8
}

// Valid reports whether the identity fields are within their packed-encoding
// domains (see EncodeClaimID).
func (id TokenIdentity) Valid() bool {
	return id.CurrencyID != 0 && id.Maturity != 0 && id.Maturity < maxMaturity && id.MarketIndex != 0
}

// Asset is a handle to a transferable balance: either the native currency or
// a token contract.
type Asset struct {
	Native bool
	Token  common.Address
}

// PortfolioAsset mirrors a single position held by an account inside the
// Market. The receiver hook uses it to double-check that the wrapper account
// carries exactly one position matching its identity.
type PortfolioAsset struct {
	CurrencyID uint16
	Maturity   uint64
	AssetType  uint8
	Notional   *big.Int
}

// MaturitySlot describes one active tenor of a currency inside the Market.
type MaturitySlot struct {
	MarketIndex uint8
	Maturity    uint64
}

// RedemptionOptions is the per-call value object steering a burn. It is
// constructed by the caller, consumed within a single Redeem call, and never
// stored.
type RedemptionOptions struct {
	// RedeemToUnderlying selects the underlying reference asset for payouts
	// instead of the intermediate yield-bearing asset.
	RedeemToUnderlying bool
	// TransferClaim forwards the raw claim to the recipient instead of
	// settling or selling it. Ignored once the wrapper has matured.
	TransferClaim bool
	// Recipient receives the payout or the claim. Must be non-zero.
	Recipient common.Address
	// MaxImpliedRate bounds the annualized rate of a pre-maturity sale; the
	// Market rejects trades priced worse than this.
	MaxImpliedRate uint32
}

// encodedOptions is the wire form carried as claim-transfer metadata.
type encodedOptions struct {
	RedeemToUnderlying bool
	TransferClaim      bool
	Recipient          common.Address
	MaxImpliedRate     uint32
}

// EncodeOptions serialises the options for use as transfer metadata.
func EncodeOptions(opts RedemptionOptions) ([]byte, error) {
	return rlp.EncodeToBytes(encodedOptions{
		RedeemToUnderlying: opts.RedeemToUnderlying,
		TransferClaim:      opts.TransferClaim,
		Recipient:          opts.Recipient,
		MaxImpliedRate:     opts.MaxImpliedRate,
	})
}

// DecodeOptions reverses EncodeOptions.
func DecodeOptions(data []byte) (RedemptionOptions, error) {
	var enc encodedOptions
	if err := rlp.DecodeBytes(data, &enc); err != nil {
		return RedemptionOptions{}, fmt.Errorf("fcashwrap: decode options: %w", err)
	}
	return RedemptionOptions{
		RedeemToUnderlying: enc.RedeemToUnderlying,
		TransferClaim:      enc.TransferClaim,
		Recipient:          enc.Recipient,
		MaxImpliedRate:     enc.MaxImpliedRate,
	}, nil
}

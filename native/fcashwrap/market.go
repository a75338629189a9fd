package fcashwrap

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Market is the external lending protocol the wrapper trades against. Every
// method is a synchronous black-box call; the engine never trusts a Market
// return value for asset amounts and instead measures its own balance delta
// around each call.
//
// Pre/post-conditions the engine relies on:
//   - Lend pulls at most the account's available bank balance and originates
//     faceAmount of the claim, failing when the implied rate would fall below
//     minImpliedRate or liquidity is insufficient.
//   - SellClaim disposes of faceAmount of the claim and credits the proceeds
//     to the account's bank balance, failing when the implied rate would
//     exceed maxImpliedRate.
//   - SettleAccount converts matured claims into cash; calling it again
//     without an intervening position change is a no-op.
//   - WithdrawCash debits the account's cash balance and credits its bank
//     balance in the chosen asset form.
//   - TransferClaim pushes the claim to the recipient, invoking the
//     recipient's receiver hook when it has one and failing when the
//     recipient is a contract without one.
type Market interface {
	// Currency resolves the yield-bearing asset and its underlying reference
	// asset for a currency. Unknown currencies fail.
	Currency(currencyID uint16) (assetToken Asset, underlyingToken Asset, err error)

	// ActiveMaturities lists the currently tradable tenor slots of a currency.
	ActiveMaturities(currencyID uint16) ([]MaturitySlot, error)

	// Lend originates faceAmount of the claim for the account.
	Lend(account common.Address, currencyID uint16, marketIndex uint8, faceAmount *big.Int, minImpliedRate uint32, useUnderlying bool) error

	// LendQuote prices a prospective lend without executing it, returning the
	// deposit cost in the chosen asset form.
	LendQuote(currencyID uint16, marketIndex uint8, faceAmount *big.Int, useUnderlying bool) (*big.Int, error)

	// SellClaim disposes of faceAmount of an already-held claim.
	SellClaim(account common.Address, currencyID uint16, maturity uint64, faceAmount *big.Int, maxImpliedRate uint32, toUnderlying bool) error

	// SellQuote prices a prospective sale without executing it.
	SellQuote(currencyID uint16, maturity uint64, faceAmount *big.Int, toUnderlying bool) (*big.Int, error)

	// SettleAccount settles any matured positions of the account. Idempotent.
	SettleAccount(account common.Address) error

	// CashBalance reports the account's settled cash balance for a currency.
	// The result may be negative when the account carries debt.
	CashBalance(account common.Address, currencyID uint16) (*big.Int, error)

	// AccountContext reports whether the account carries debt anywhere in the
	// Market along with its full claim portfolio.
	AccountContext(account common.Address) (hasDebt bool, portfolio []PortfolioAsset, err error)

	// WithdrawCash moves settled cash out of the Market into the account's
	// bank balance.
	WithdrawCash(account common.Address, currencyID uint16, amount *big.Int, toUnderlying bool) error

	// TransferClaim moves raw claim units between accounts, carrying opaque
	// metadata to the recipient's receiver hook.
	TransferClaim(from, to common.Address, claimID *uint256.Int, amount *big.Int, data []byte) error
}

// AssetBank is the token-transfer capability the wrapper builds on. It covers
// both native-currency and token-denominated assets behind one interface;
// implementations must fail (not silently no-op) on insufficient balance.
type AssetBank interface {
	BalanceOf(asset Asset, holder common.Address) (*big.Int, error)
	Transfer(asset Asset, from, to common.Address, amount *big.Int) error
}

package fcashwrap

import (
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"wfcash/core/events"
	nativecommon "wfcash/native/common"
	"wfcash/storage"
)

const moduleName = "fcashwrap"

// ReceiveAck is the acknowledgement value the receiver hook returns when it
// accepts an incoming claim transfer.
var ReceiveAck = [4]byte{0xf2, 0x3a, 0x6e, 0x61}

// Engine wraps one maturity-dated claim into fungible supply. It owns exactly
// two pieces of persistent state: the immutable token identity and the
// wrapped-supply ledger. Everything else lives in the Market, which the
// engine treats as an untrusted synchronous collaborator: asset amounts are
// always derived from the engine's own balance deltas around Market calls,
// never from Market return values.
type Engine struct {
	identity TokenIdentity
	claimID  *uint256.Int

	// account is the wrapper's own account inside the Market and the bank.
	account common.Address
	// marketAddr is the identity the Market presents when it invokes the
	// receiver hook.
	marketAddr common.Address

	market Market
	bank   AssetBank
	ledger *SupplyLedger

	assetToken      Asset
	underlyingToken Asset

	emitter events.Emitter
	pauses  nativecommon.PauseView
	latch   nativecommon.Latch
	nowFn   func() int64
}

// NewEngine constructs a wrapper engine bound to one token identity. The
// currency's asset pair is resolved from the Market once and cached; the
// identity is immutable afterward.
func NewEngine(identity TokenIdentity, account, marketAddr common.Address, market Market, bank AssetBank, db storage.Database) (*Engine, error) {
	if market == nil {
		return nil, errNilMarket
	}
	if bank == nil {
		return nil, errNilBank
	}
	claimID, err := EncodeClaimID(identity)
	if err != nil {
		return nil, err
	}
	assetToken, underlyingToken, err := market.Currency(identity.CurrencyID)
	if err != nil {
		return nil, err
	}
	ledger, err := NewSupplyLedger(db, claimID)
	if err != nil {
		return nil, err
	}
	return &Engine{
		identity:        identity,
		claimID:         claimID,
		account:         account,
		marketAddr:      marketAddr,
		market:          market,
		bank:            bank,
		ledger:          ledger,
		assetToken:      assetToken,
		underlyingToken: underlyingToken,
		emitter:         events.NoopEmitter{},
		nowFn:           func() int64 { return time.Now().Unix() },
	}, nil
}

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if e == nil {
		return
	}
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetPauses wires the engine to the governance pause switchboard.
func (e *Engine) SetPauses(p nativecommon.PauseView) {
	if e == nil {
		return
	}
	e.pauses = p
}

// SetClock overrides the wall-clock used by the maturity gate.
func (e *Engine) SetClock(nowFn func() int64) {
	if e == nil || nowFn == nil {
		return
	}
	e.nowFn = nowFn
}

// Identity returns the immutable token identity of this wrapper.
func (e *Engine) Identity() TokenIdentity { return e.identity }

// ClaimID returns a copy of the packed claim identifier.
func (e *Engine) ClaimID() *uint256.Int { return new(uint256.Int).Set(e.claimID) }

// Account returns the wrapper's own Market account address.
func (e *Engine) Account() common.Address { return e.account }

// HasMatured reports whether current time has reached the maturity timestamp.
// Mint is rejected and the settlement redemption path becomes mandatory once
// this returns true.
func (e *Engine) HasMatured() bool {
	return e.nowFn() >= int64(e.identity.Maturity)
}

// BalanceOf returns the holder's wrapped balance.
func (e *Engine) BalanceOf(holder common.Address) (*big.Int, error) {
	return e.ledger.BalanceOf(holder)
}

// TotalSupply returns the outstanding wrapped supply.
func (e *Engine) TotalSupply() (*big.Int, error) {
	return e.ledger.TotalSupply()
}

// Allowance returns the amount spender may redeem or transfer for owner.
func (e *Engine) Allowance(owner, spender common.Address) (*big.Int, error) {
	return e.ledger.Allowance(owner, spender)
}

// Transfer moves wrapped supply between holders. This is the documented
// mitigation for sending value to recipients that cannot accept raw claim
// transfers.
func (e *Engine) Transfer(caller, to common.Address, amount *big.Int) error {
	if err := e.latch.Acquire(); err != nil {
		return err
	}
	defer e.latch.Release()
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	return e.ledger.Transfer(caller, to, amount)
}

// Approve sets spender's allowance over the caller's wrapped balance.
func (e *Engine) Approve(caller, spender common.Address, amount *big.Int) error {
	if err := e.latch.Acquire(); err != nil {
		return err
	}
	defer e.latch.Release()
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	return e.ledger.Approve(caller, spender, amount)
}

// MintViaUnderlying mints wrapped supply against a deposit of the underlying
// reference asset.
func (e *Engine) MintViaUnderlying(caller common.Address, depositAmount, faceAmount *big.Int, receiver common.Address, minImpliedRate uint32) error {
	return e.mint(caller, depositAmount, faceAmount, receiver, minImpliedRate, true)
}

// MintViaAsset mints wrapped supply against a deposit of the yield-bearing
// intermediate asset.
func (e *Engine) MintViaAsset(caller common.Address, depositAmount, faceAmount *big.Int, receiver common.Address, minImpliedRate uint32) error {
	return e.mint(caller, depositAmount, faceAmount, receiver, minImpliedRate, false)
}

func (e *Engine) mint(caller common.Address, depositAmount, faceAmount *big.Int, receiver common.Address, minImpliedRate uint32, useUnderlying bool) error {
	if err := e.latch.Acquire(); err != nil {
		return err
	}
	defer e.latch.Release()
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if e.HasMatured() {
		return errMatured
	}
	if receiver == (common.Address{}) {
		return errZeroReceiver
	}
	if depositAmount == nil || depositAmount.Sign() <= 0 {
		return errInvalidAmount
	}
	if faceAmount == nil || faceAmount.Sign() <= 0 {
		return errInvalidAmount
	}
	if !validFaceAmount(faceAmount) {
		return errAmountOverflow
	}

	asset := e.underlyingToken
	if !useUnderlying {
		asset = e.assetToken
	}

	before, err := e.bank.BalanceOf(asset, e.account)
	if err != nil {
		return err
	}
	if err := e.bank.Transfer(asset, caller, e.account, depositAmount); err != nil {
		return err
	}
	if err := e.market.Lend(e.account, e.identity.CurrencyID, e.identity.MarketIndex, faceAmount, minImpliedRate, useUnderlying); err != nil {
		// Return the pulled deposit before surfacing the failure so the
		// caller observes no net outflow.
		if _, uerr := e.transferDelta(asset, before, caller); uerr != nil {
			return errors.Join(err, uerr)
		}
		return err
	}
	if err := e.ledger.Mint(receiver, faceAmount); err != nil {
		return err
	}
	refund, err := e.transferDelta(asset, before, caller)
	if err != nil {
		return err
	}

	e.emit(events.WrapperMinted{
		ClaimID:    e.claimID.Hex(),
		Caller:     caller,
		Receiver:   receiver,
		FaceAmount: new(big.Int).Set(faceAmount),
		Spent:      new(big.Int).Sub(depositAmount, refund),
		Refund:     refund,
	})
	return nil
}

// OnClaimReceived is invoked by the Market when it pushes a single-claim
// transfer to the wrapper's account, converting the claim 1:1 into wrapped
// supply. When data carries an RLP-encoded relay address, that address is
// credited instead of the transfer's sender.
func (e *Engine) OnClaimReceived(caller, from common.Address, claimID *uint256.Int, amount *big.Int, data []byte) ([4]byte, error) {
	var zero [4]byte
	if err := e.latch.Acquire(); err != nil {
		return zero, err
	}
	defer e.latch.Release()
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return zero, err
	}
	if caller != e.marketAddr {
		return zero, errInvalidCaller
	}
	if claimID == nil || claimID.Cmp(e.claimID) != 0 {
		return zero, errClaimMismatch
	}
	if amount == nil || amount.Sign() <= 0 {
		return zero, errInvalidAmount
	}
	if !validFaceAmount(amount) {
		return zero, errAmountOverflow
	}

	// Defensive double-check against unexpected position mixing: the wrapper
	// must hold exactly one portfolio entry matching its identity and carry
	// no debt anywhere in the Market.
	hasDebt, portfolio, err := e.market.AccountContext(e.account)
	if err != nil {
		return zero, err
	}
	if hasDebt {
		return zero, errAccountHasDebt
	}
	if len(portfolio) != 1 {
		return zero, errPortfolioMixed
	}
	entry := portfolio[0]
	if entry.CurrencyID != e.identity.CurrencyID || entry.Maturity != e.identity.Maturity || entry.AssetType != AssetTypeFCash {
		return zero, errPortfolioMixed
	}
	if entry.Notional == nil || entry.Notional.Sign() < 0 {
		return zero, errPortfolioMixed
	}

	credit := from
	if len(data) > 0 {
		var relay common.Address
		if err := rlp.DecodeBytes(data, &relay); err != nil {
			return zero, errors.Join(errClaimMismatch, err)
		}
		credit = relay
	}
	if credit == (common.Address{}) {
		return zero, errZeroReceiver
	}

	if err := e.ledger.Mint(credit, amount); err != nil {
		return zero, err
	}
	e.emit(events.ClaimAccepted{
		ClaimID: e.claimID.Hex(),
		Sender:  from,
		Credit:  credit,
		Amount:  new(big.Int).Set(amount),
	})
	return ReceiveAck, nil
}

// OnClaimBatchReceived always rejects: this wrapper represents exactly one
// maturity and market and must not absorb mixed positions.
func (e *Engine) OnClaimBatchReceived(caller, from common.Address, claimIDs []*uint256.Int, amounts []*big.Int, data []byte) ([4]byte, error) {
	return [4]byte{}, errBatchNotAccepted
}

// Redeem burns wrapped supply from the caller and pays out along one of the
// three redemption paths selected by maturity state and options.
func (e *Engine) Redeem(caller common.Address, amount *big.Int, opts RedemptionOptions) error {
	if err := e.latch.Acquire(); err != nil {
		return err
	}
	defer e.latch.Release()
	return e.redeem(caller, amount, opts)
}

// RedeemFrom burns wrapped supply from holder using spender's allowance.
func (e *Engine) RedeemFrom(spender, holder common.Address, amount *big.Int, opts RedemptionOptions) error {
	if err := e.latch.Acquire(); err != nil {
		return err
	}
	defer e.latch.Release()
	if amount == nil || amount.Sign() <= 0 {
		return errInvalidAmount
	}
	if err := e.ledger.SpendAllowance(holder, spender, amount); err != nil {
		return err
	}
	if err := e.redeem(holder, amount, opts); err != nil {
		// Restore the spent allowance so the failed call leaves no trace.
		allowance, aerr := e.ledger.Allowance(holder, spender)
		if aerr == nil {
			aerr = e.ledger.Approve(holder, spender, new(big.Int).Add(allowance, amount))
		}
		if aerr != nil {
			return errors.Join(err, aerr)
		}
		return err
	}
	return nil
}

// RedeemToUnderlying burns the caller's wrapped supply for the underlying
// reference asset.
func (e *Engine) RedeemToUnderlying(caller common.Address, amount *big.Int, receiver common.Address, maxImpliedRate uint32) error {
	return e.Redeem(caller, amount, RedemptionOptions{
		RedeemToUnderlying: true,
		Recipient:          receiver,
		MaxImpliedRate:     maxImpliedRate,
	})
}

// RedeemToAsset burns the caller's wrapped supply for the yield-bearing
// intermediate asset.
func (e *Engine) RedeemToAsset(caller common.Address, amount *big.Int, receiver common.Address, maxImpliedRate uint32) error {
	return e.Redeem(caller, amount, RedemptionOptions{
		Recipient:      receiver,
		MaxImpliedRate: maxImpliedRate,
	})
}

// redeem runs with the latch already held.
func (e *Engine) redeem(holder common.Address, amount *big.Int, opts RedemptionOptions) error {
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return errInvalidAmount
	}
	if opts.Recipient == (common.Address{}) {
		return errZeroRecipient
	}

	// The supply snapshot must predate the burn: the settled cash is divided
	// among supply inclusive of the amount being redeemed.
	supplyBefore, err := e.ledger.TotalSupply()
	if err != nil {
		return err
	}
	// Burn before any asset-moving side effect so the updated supply is
	// consistent if the Market calls back in.
	if err := e.ledger.Burn(holder, amount); err != nil {
		return err
	}

	var payout *big.Int
	var path string
	switch {
	case e.HasMatured():
		payout, err = e.settleAndWithdraw(amount, supplyBefore, opts)
		path = events.RedeemPathSettle
	case opts.TransferClaim:
		err = e.forwardClaim(amount, opts)
		payout = big.NewInt(0)
		path = events.RedeemPathTransfer
	default:
		payout, err = e.sellClaim(amount, opts)
		path = events.RedeemPathSell
	}
	if err != nil {
		// Re-credit the burned supply so a Market failure leaves no partial
		// mutation behind.
		if merr := e.ledger.Mint(holder, amount); merr != nil {
			return errors.Join(err, merr)
		}
		return err
	}

	e.emit(events.WrapperRedeemed{
		ClaimID:   e.claimID.Hex(),
		Holder:    holder,
		Recipient: opts.Recipient,
		Amount:    new(big.Int).Set(amount),
		Path:      path,
		Payout:    payout,
	})
	return nil
}

// settleAndWithdraw handles a matured redemption: settle the wrapper account
// (idempotent), take the floor-rounded pro-rata share of settled cash and
// withdraw it to the recipient in the chosen asset form.
func (e *Engine) settleAndWithdraw(amount, supplyBefore *big.Int, opts RedemptionOptions) (*big.Int, error) {
	if err := e.market.SettleAccount(e.account); err != nil {
		return nil, err
	}
	cash, err := e.market.CashBalance(e.account, e.identity.CurrencyID)
	if err != nil {
		return nil, err
	}
	if cash == nil || cash.Sign() <= 0 {
		return nil, errCashBalanceInvariant
	}
	share := proRataShare(cash, amount, supplyBefore)
	if share.Cmp(maxFaceValue) > 0 {
		return nil, errAmountOverflow
	}
	if share.Sign() == 0 {
		return big.NewInt(0), nil
	}

	asset := e.payoutAsset(opts)
	before, err := e.bank.BalanceOf(asset, e.account)
	if err != nil {
		return nil, err
	}
	if err := e.market.WithdrawCash(e.account, e.identity.CurrencyID, share, opts.RedeemToUnderlying); err != nil {
		return nil, err
	}
	return e.transferDelta(asset, before, opts.Recipient)
}

// forwardClaim hands the raw claim to the recipient, carrying the caller's
// options as transfer metadata. Fails when the recipient cannot accept claim
// transfers; callers can fall back to a plain wrapped-supply Transfer.
func (e *Engine) forwardClaim(amount *big.Int, opts RedemptionOptions) error {
	data, err := EncodeOptions(opts)
	if err != nil {
		return err
	}
	return e.market.TransferClaim(e.account, opts.Recipient, e.claimID, amount, data)
}

// sellClaim disposes of the claim on the Market before maturity and forwards
// the proceeds to the recipient.
func (e *Engine) sellClaim(amount *big.Int, opts RedemptionOptions) (*big.Int, error) {
	asset := e.payoutAsset(opts)
	before, err := e.bank.BalanceOf(asset, e.account)
	if err != nil {
		return nil, err
	}
	if err := e.market.SellClaim(e.account, e.identity.CurrencyID, e.identity.Maturity, amount, opts.MaxImpliedRate, opts.RedeemToUnderlying); err != nil {
		return nil, err
	}
	return e.transferDelta(asset, before, opts.Recipient)
}

// PreviewMint quotes the deposit cost of minting faceAmount. Rejected once
// the wrapper has matured since the stale market offers no rate discovery.
func (e *Engine) PreviewMint(faceAmount *big.Int, useUnderlying bool) (*big.Int, error) {
	if e.HasMatured() {
		return nil, errMatured
	}
	if faceAmount == nil || faceAmount.Sign() <= 0 {
		return nil, errInvalidAmount
	}
	if !validFaceAmount(faceAmount) {
		return nil, errAmountOverflow
	}
	return e.market.LendQuote(e.identity.CurrencyID, e.identity.MarketIndex, faceAmount, useUnderlying)
}

// PreviewRedeem quotes the proceeds of redeeming amount: the pro-rata share
// of settled cash after maturity, a sale quote before it. The matured branch
// settles the wrapper account first, exactly as redemption would, so quotes
// issued between maturity and the first redemption reflect the full cash pool.
func (e *Engine) PreviewRedeem(amount *big.Int, toUnderlying bool) (*big.Int, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, errInvalidAmount
	}
	if e.HasMatured() {
		if err := e.market.SettleAccount(e.account); err != nil {
			return nil, err
		}
		cash, err := e.market.CashBalance(e.account, e.identity.CurrencyID)
		if err != nil {
			return nil, err
		}
		if cash == nil || cash.Sign() <= 0 {
			return big.NewInt(0), nil
		}
		supply, err := e.ledger.TotalSupply()
		if err != nil {
			return nil, err
		}
		return proRataShare(cash, amount, supply), nil
	}
	return e.market.SellQuote(e.identity.CurrencyID, e.identity.Maturity, amount, toUnderlying)
}

// transferDelta measures the wrapper account's balance growth since before
// and moves exactly that delta to the recipient. Using the measured delta
// instead of an expected amount defends against fees, rounding and partial
// fills inside the Market.
func (e *Engine) transferDelta(asset Asset, before *big.Int, recipient common.Address) (*big.Int, error) {
	after, err := e.bank.BalanceOf(asset, e.account)
	if err != nil {
		return nil, err
	}
	delta := new(big.Int).Sub(after, before)
	if delta.Sign() <= 0 {
		return big.NewInt(0), nil
	}
	if err := e.bank.Transfer(asset, e.account, recipient, delta); err != nil {
		return nil, err
	}
	return delta, nil
}

func (e *Engine) payoutAsset(opts RedemptionOptions) Asset {
	if opts.RedeemToUnderlying {
		return e.underlyingToken
	}
	return e.assetToken
}

func (e *Engine) emit(evt events.Event) {
	if e == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(evt)
}

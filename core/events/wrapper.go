package events

import (
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"wfcash/core/types"
)

const (
	// TypeWrapperDeployed is emitted when the factory instantiates a wrapper
	// for a new (currency, maturity) identity.
	TypeWrapperDeployed = "wrapper.deployed"
	// TypeWrapperMinted is emitted whenever a mint credits wrapped supply.
	TypeWrapperMinted = "wrapper.minted"
	// TypeClaimAccepted is emitted when the receiver hook converts an incoming
	// claim transfer into wrapped supply.
	TypeClaimAccepted = "wrapper.claim_accepted"
	// TypeWrapperRedeemed is emitted for every successful burn, regardless of
	// which redemption path the burn took.
	TypeWrapperRedeemed = "wrapper.redeemed"
)

// Redemption path labels carried by TypeWrapperRedeemed events.
const (
	RedeemPathSettle   = "settle"
	RedeemPathTransfer = "transfer"
	RedeemPathSell     = "sell"
)

type WrapperDeployed struct {
	ClaimID     string
	CurrencyID  uint16
	Maturity    uint64
	MarketIndex uint8
	Account     common.Address
}

func (WrapperDeployed) EventType() string { return TypeWrapperDeployed }

func (e WrapperDeployed) Event() *types.Event {
	return &types.Event{
		Type: TypeWrapperDeployed,
		Attributes: map[string]string{
			"claimId":     e.ClaimID,
			"currencyId":  strconv.FormatUint(uint64(e.CurrencyID), 10),
			"maturity":    strconv.FormatUint(e.Maturity, 10),
			"marketIndex": strconv.FormatUint(uint64(e.MarketIndex), 10),
			"account":     e.Account.Hex(),
		},
	}
}

type WrapperMinted struct {
	ClaimID    string
	Caller     common.Address
	Receiver   common.Address
	FaceAmount *big.Int
	Spent      *big.Int
	Refund     *big.Int
}

func (WrapperMinted) EventType() string { return TypeWrapperMinted }

func (e WrapperMinted) Event() *types.Event {
	return &types.Event{
		Type: TypeWrapperMinted,
		Attributes: map[string]string{
			"claimId":    e.ClaimID,
			"caller":     e.Caller.Hex(),
			"receiver":   e.Receiver.Hex(),
			"faceAmount": formatAmount(e.FaceAmount),
			"spent":      formatAmount(e.Spent),
			"refund":     formatAmount(e.Refund),
		},
	}
}

type ClaimAccepted struct {
	ClaimID string
	Sender  common.Address
	Credit  common.Address
	Amount  *big.Int
}

func (ClaimAccepted) EventType() string { return TypeClaimAccepted }

func (e ClaimAccepted) Event() *types.Event {
	return &types.Event{
		Type: TypeClaimAccepted,
		Attributes: map[string]string{
			"claimId": e.ClaimID,
			"sender":  e.Sender.Hex(),
			"credit":  e.Credit.Hex(),
			"amount":  formatAmount(e.Amount),
		},
	}
}

type WrapperRedeemed struct {
	ClaimID   string
	Holder    common.Address
	Recipient common.Address
	Amount    *big.Int
	Path      string
	Payout    *big.Int
}

func (WrapperRedeemed) EventType() string { return TypeWrapperRedeemed }

func (e WrapperRedeemed) Event() *types.Event {
	return &types.Event{
		Type: TypeWrapperRedeemed,
		Attributes: map[string]string{
			"claimId":   e.ClaimID,
			"holder":    e.Holder.Hex(),
			"recipient": e.Recipient.Hex(),
			"amount":    formatAmount(e.Amount),
			"path":      e.Path,
			"payout":    formatAmount(e.Payout),
		},
	}
}

func formatAmount(amount *big.Int) string {
	if amount == nil {
		return "0"
	}
	return amount.String()
}

package fcashwrap

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"wfcash/storage"
)

// SupplyLedger is the fungible wrapped-supply ledger of one wrapper instance.
// Balances are keyed by holder address and scoped under the claim identifier
// so multiple wrappers can share one database. One unit of supply equals one
// unit of claim face value, exactly, across mint, transfer and burn.
type SupplyLedger struct {
	db    storage.Database
	scope []byte
}

// NewSupplyLedger binds a ledger to the given claim identifier.
func NewSupplyLedger(db storage.Database, claimID *uint256.Int) (*SupplyLedger, error) {
	if db == nil {
		return nil, errNilStorage
	}
	if claimID == nil {
		return nil, fmt.Errorf("fcashwrap: nil claim id")
	}
	return &SupplyLedger{db: db, scope: ledgerScope(claimID)}, nil
}

// BalanceOf returns the holder's wrapped balance. Unknown holders read zero.
func (l *SupplyLedger) BalanceOf(holder common.Address) (*big.Int, error) {
	return l.readAmount(balanceKey(l.scope, holder))
}

// TotalSupply returns the sum of all holder balances.
func (l *SupplyLedger) TotalSupply() (*big.Int, error) {
	return l.readAmount(supplyKey(l.scope))
}

// Allowance returns the amount spender may move on behalf of owner.
func (l *SupplyLedger) Allowance(owner, spender common.Address) (*big.Int, error) {
	return l.readAmount(allowanceKey(l.scope, owner, spender))
}

// Mint credits the holder and grows total supply by the same amount.
func (l *SupplyLedger) Mint(holder common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return errInvalidAmount
	}
	balance, err := l.BalanceOf(holder)
	if err != nil {
		return err
	}
	supply, err := l.TotalSupply()
	if err != nil {
		return err
	}
	if err := l.writeAmount(balanceKey(l.scope, holder), new(big.Int).Add(balance, amount)); err != nil {
		return err
	}
	return l.writeAmount(supplyKey(l.scope), new(big.Int).Add(supply, amount))
}

// Burn debits the holder and shrinks total supply by the same amount.
func (l *SupplyLedger) Burn(holder common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return errInvalidAmount
	}
	balance, err := l.BalanceOf(holder)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	supply, err := l.TotalSupply()
	if err != nil {
		return err
	}
	if err := l.writeAmount(balanceKey(l.scope, holder), new(big.Int).Sub(balance, amount)); err != nil {
		return err
	}
	return l.writeAmount(supplyKey(l.scope), new(big.Int).Sub(supply, amount))
}

// Transfer moves wrapped supply between holders without changing the total.
func (l *SupplyLedger) Transfer(from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return errInvalidAmount
	}
	if to == (common.Address{}) {
		return errZeroRecipient
	}
	fromBalance, err := l.BalanceOf(from)
	if err != nil {
		return err
	}
	if fromBalance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	toBalance, err := l.BalanceOf(to)
	if err != nil {
		return err
	}
	if err := l.writeAmount(balanceKey(l.scope, from), new(big.Int).Sub(fromBalance, amount)); err != nil {
		return err
	}
	return l.writeAmount(balanceKey(l.scope, to), new(big.Int).Add(toBalance, amount))
}

// Approve sets spender's allowance over owner's balance, replacing any
// previous value.
func (l *SupplyLedger) Approve(owner, spender common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return errInvalidAmount
	}
	return l.writeAmount(allowanceKey(l.scope, owner, spender), amount)
}

// SpendAllowance debits spender's allowance over owner's balance.
func (l *SupplyLedger) SpendAllowance(owner, spender common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return errInvalidAmount
	}
	allowance, err := l.Allowance(owner, spender)
	if err != nil {
		return err
	}
	if allowance.Cmp(amount) < 0 {
		return ErrInsufficientAllowance
	}
	return l.writeAmount(allowanceKey(l.scope, owner, spender), new(big.Int).Sub(allowance, amount))
}

func (l *SupplyLedger) readAmount(key []byte) (*big.Int, error) {
	raw, ok, err := l.db.Get(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	value := new(big.Int)
	if err := rlp.DecodeBytes(raw, value); err != nil {
		return nil, fmt.Errorf("fcashwrap: corrupt ledger entry: %w", err)
	}
	return value, nil
}

func (l *SupplyLedger) writeAmount(key []byte, value *big.Int) error {
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	return l.db.Put(key, encoded)
}

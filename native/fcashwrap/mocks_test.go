package fcashwrap

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

type mockBank struct {
	balances map[Asset]map[common.Address]*big.Int
}

func newMockBank() *mockBank {
	return &mockBank{balances: make(map[Asset]map[common.Address]*big.Int)}
}

func (b *mockBank) credit(asset Asset, holder common.Address, amount *big.Int) {
	if b.balances[asset] == nil {
		b.balances[asset] = make(map[common.Address]*big.Int)
	}
	current := b.balances[asset][holder]
	if current == nil {
		current = big.NewInt(0)
	}
	b.balances[asset][holder] = new(big.Int).Add(current, amount)
}

func (b *mockBank) BalanceOf(asset Asset, holder common.Address) (*big.Int, error) {
	if b.balances[asset] == nil || b.balances[asset][holder] == nil {
		return big.NewInt(0), nil
	}
	return new(big.Int).Set(b.balances[asset][holder]), nil
}

func (b *mockBank) Transfer(asset Asset, from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("bank: amount must be positive")
	}
	balance, _ := b.BalanceOf(asset, from)
	if balance.Cmp(amount) < 0 {
		return fmt.Errorf("bank: insufficient balance")
	}
	b.balances[asset][from] = new(big.Int).Sub(balance, amount)
	b.credit(asset, to, amount)
	return nil
}

type claimReceiver func(caller, from common.Address, claimID *uint256.Int, amount *big.Int, data []byte) ([4]byte, error)

type mockMarket struct {
	bank *mockBank
	// addr is the market's own bank account; lend costs accumulate here and
	// it is also the caller identity presented to receiver hooks.
	addr common.Address

	currencyID      uint16
	assetToken      Asset
	underlyingToken Asset
	slots           []MaturitySlot

	// executable rate knobs: Lend fails when the caller demands a better rate
	// than lendRate, SellClaim fails when the bound is tighter than sellRate.
	lendRate     uint32
	lendCost     *big.Int
	sellRate     uint32
	sellProceeds *big.Int

	settleCash  *big.Int
	settled     bool
	settleCalls int
	cash        map[uint16]*big.Int

	claims    map[common.Address]*big.Int
	portfolio map[common.Address][]PortfolioAsset
	debt      map[common.Address]bool

	receivers map[common.Address]claimReceiver
	noHook    map[common.Address]bool

	transferCalls int
	lendHook      func() error
}

func newMockMarket(bank *mockBank, addr common.Address) *mockMarket {
	return &mockMarket{
		bank:            bank,
		addr:            addr,
		currencyID:      2,
		assetToken:      Asset{Token: common.HexToAddress("0xbb")},
		underlyingToken: Asset{Token: common.HexToAddress("0xaa")},
		cash:            make(map[uint16]*big.Int),
		claims:          make(map[common.Address]*big.Int),
		portfolio:       make(map[common.Address][]PortfolioAsset),
		debt:            make(map[common.Address]bool),
		receivers:       make(map[common.Address]claimReceiver),
		noHook:          make(map[common.Address]bool),
	}
}

func (m *mockMarket) claimBalance(account common.Address) *big.Int {
	if m.claims[account] == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(m.claims[account])
}

func (m *mockMarket) addClaim(account common.Address, amount *big.Int) {
	m.claims[account] = new(big.Int).Add(m.claimBalance(account), amount)
}

func (m *mockMarket) Currency(currencyID uint16) (Asset, Asset, error) {
	if currencyID != m.currencyID {
		return Asset{}, Asset{}, fmt.Errorf("market: unknown currency %d", currencyID)
	}
	return m.assetToken, m.underlyingToken, nil
}

func (m *mockMarket) ActiveMaturities(currencyID uint16) ([]MaturitySlot, error) {
	if currencyID != m.currencyID {
		return nil, fmt.Errorf("market: unknown currency %d", currencyID)
	}
	return m.slots, nil
}

func (m *mockMarket) Lend(account common.Address, currencyID uint16, marketIndex uint8, faceAmount *big.Int, minImpliedRate uint32, useUnderlying bool) error {
	if m.lendHook != nil {
		hook := m.lendHook
		m.lendHook = nil
		if err := hook(); err != nil {
			return err
		}
	}
	if currencyID != m.currencyID {
		return fmt.Errorf("market: unknown currency %d", currencyID)
	}
	if minImpliedRate > m.lendRate {
		return fmt.Errorf("market: trade failed, slippage")
	}
	asset := m.assetToken
	if useUnderlying {
		asset = m.underlyingToken
	}
	if err := m.bank.Transfer(asset, account, m.addr, m.lendCost); err != nil {
		return err
	}
	m.addClaim(account, faceAmount)
	return nil
}

func (m *mockMarket) LendQuote(currencyID uint16, marketIndex uint8, faceAmount *big.Int, useUnderlying bool) (*big.Int, error) {
	if currencyID != m.currencyID {
		return nil, fmt.Errorf("market: unknown currency %d", currencyID)
	}
	return new(big.Int).Set(m.lendCost), nil
}

func (m *mockMarket) SellClaim(account common.Address, currencyID uint16, maturity uint64, faceAmount *big.Int, maxImpliedRate uint32, toUnderlying bool) error {
	if m.claimBalance(account).Cmp(faceAmount) < 0 {
		return fmt.Errorf("market: insufficient claim balance")
	}
	if maxImpliedRate != 0 && maxImpliedRate < m.sellRate {
		return fmt.Errorf("market: trade failed, slippage")
	}
	m.claims[account] = new(big.Int).Sub(m.claimBalance(account), faceAmount)
	asset := m.assetToken
	if toUnderlying {
		asset = m.underlyingToken
	}
	m.bank.credit(asset, account, m.sellProceeds)
	return nil
}

func (m *mockMarket) SellQuote(currencyID uint16, maturity uint64, faceAmount *big.Int, toUnderlying bool) (*big.Int, error) {
	return new(big.Int).Set(m.sellProceeds), nil
}

func (m *mockMarket) SettleAccount(account common.Address) error {
	m.settleCalls++
	if m.settled {
		return nil
	}
	m.settled = true
	m.cash[m.currencyID] = new(big.Int).Set(m.settleCash)
	m.claims[account] = big.NewInt(0)
	return nil
}

func (m *mockMarket) CashBalance(account common.Address, currencyID uint16) (*big.Int, error) {
	if m.cash[currencyID] == nil {
		return big.NewInt(0), nil
	}
	return new(big.Int).Set(m.cash[currencyID]), nil
}

func (m *mockMarket) AccountContext(account common.Address) (bool, []PortfolioAsset, error) {
	return m.debt[account], m.portfolio[account], nil
}

func (m *mockMarket) WithdrawCash(account common.Address, currencyID uint16, amount *big.Int, toUnderlying bool) error {
	cash := m.cash[currencyID]
	if cash == nil || cash.Cmp(amount) < 0 {
		return fmt.Errorf("market: insufficient cash balance")
	}
	m.cash[currencyID] = new(big.Int).Sub(cash, amount)
	asset := m.assetToken
	if toUnderlying {
		asset = m.underlyingToken
	}
	m.bank.credit(asset, account, amount)
	return nil
}

func (m *mockMarket) TransferClaim(from, to common.Address, claimID *uint256.Int, amount *big.Int, data []byte) error {
	m.transferCalls++
	if m.claimBalance(from).Cmp(amount) < 0 {
		return fmt.Errorf("market: insufficient claim balance")
	}
	if m.noHook[to] {
		return fmt.Errorf("market: recipient cannot accept claim transfers")
	}
	if hook, ok := m.receivers[to]; ok {
		if _, err := hook(m.addr, from, claimID, amount, data); err != nil {
			return err
		}
	}
	m.claims[from] = new(big.Int).Sub(m.claimBalance(from), amount)
	m.addClaim(to, amount)
	return nil
}

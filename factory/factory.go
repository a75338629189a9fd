package factory

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"wfcash/core/events"
	"wfcash/native/fcashwrap"
	"wfcash/storage"
)

var (
	errNilMarket  = errors.New("factory: market not configured")
	errNilBank    = errors.New("factory: asset bank not configured")
	errNilStorage = errors.New("factory: storage not configured")
)

// Factory instantiates wrapper engines, one per (currency, maturity)
// identity. Identifiers and wrapper account addresses are derived
// deterministically so deployment is idempotent: a second deploy of the same
// identity returns the existing engine without emitting an event.
type Factory struct {
	mu         sync.Mutex
	market     fcashwrap.Market
	bank       fcashwrap.AssetBank
	db         storage.Database
	marketAddr common.Address
	emitter    events.Emitter
	nowFn      func() int64
	wrappers   map[[32]byte]*fcashwrap.Engine
}

// New constructs a factory bound to one Market deployment.
func New(market fcashwrap.Market, bank fcashwrap.AssetBank, db storage.Database, marketAddr common.Address) (*Factory, error) {
	if market == nil {
		return nil, errNilMarket
	}
	if bank == nil {
		return nil, errNilBank
	}
	if db == nil {
		return nil, errNilStorage
	}
	return &Factory{
		market:     market,
		bank:       bank,
		db:         db,
		marketAddr: marketAddr,
		emitter:    events.NoopEmitter{},
		wrappers:   make(map[[32]byte]*fcashwrap.Engine),
	}, nil
}

// SetEmitter configures the emitter passed to deployed engines. Passing nil
// resets it to a no-op implementation.
func (f *Factory) SetEmitter(emitter events.Emitter) {
	if f == nil {
		return
	}
	if emitter == nil {
		f.emitter = events.NoopEmitter{}
		return
	}
	f.emitter = emitter
}

// SetClock overrides the wall-clock wired into deployed engines.
func (f *Factory) SetClock(nowFn func() int64) {
	if f == nil || nowFn == nil {
		return
	}
	f.nowFn = nowFn
}

// ComputeID derives the deterministic wrapper identifier for an identity.
func ComputeID(currencyID uint16, maturity uint64) [32]byte {
	var buf [10]byte
	binary.BigEndian.PutUint16(buf[0:2], currencyID)
	binary.BigEndian.PutUint64(buf[2:10], maturity)
	var id [32]byte
	copy(id[:], ethcrypto.Keccak256(buf[:]))
	return id
}

func accountFor(id [32]byte) common.Address {
	return common.BytesToAddress(id[12:])
}

// DeployWrapper validates the identity against the Market's active maturities
// and instantiates its engine. Unknown currencies and maturities that do not
// match an active tenor slot are rejected.
func (f *Factory) DeployWrapper(currencyID uint16, maturity uint64) (*fcashwrap.Engine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := ComputeID(currencyID, maturity)
	if engine, ok := f.wrappers[id]; ok {
		return engine, nil
	}

	slots, err := f.market.ActiveMaturities(currencyID)
	if err != nil {
		return nil, err
	}
	var marketIndex uint8
	for _, slot := range slots {
		if slot.Maturity == maturity {
			marketIndex = slot.MarketIndex
			break
		}
	}
	if marketIndex == 0 {
		return nil, fmt.Errorf("factory: maturity %d is not an active market for currency %d", maturity, currencyID)
	}

	identity := fcashwrap.TokenIdentity{
		CurrencyID:  currencyID,
		Maturity:    maturity,
		MarketIndex: marketIndex,
	}
	engine, err := fcashwrap.NewEngine(identity, accountFor(id), f.marketAddr, f.market, f.bank, f.db)
	if err != nil {
		return nil, err
	}
	engine.SetEmitter(f.emitter)
	if f.nowFn != nil {
		engine.SetClock(f.nowFn)
	}
	f.wrappers[id] = engine

	f.emitter.Emit(events.WrapperDeployed{
		ClaimID:     engine.ClaimID().Hex(),
		CurrencyID:  currencyID,
		Maturity:    maturity,
		MarketIndex: marketIndex,
		Account:     engine.Account(),
	})
	return engine, nil
}

// Wrapper looks up a previously deployed engine.
func (f *Factory) Wrapper(currencyID uint16, maturity uint64) (*fcashwrap.Engine, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	engine, ok := f.wrappers[ComputeID(currencyID, maturity)]
	return engine, ok
}

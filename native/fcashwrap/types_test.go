package fcashwrap

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestOptionsRoundTrip(t *testing.T) {
	opts := RedemptionOptions{
		RedeemToUnderlying: true,
		Recipient:          common.HexToAddress("0xa1"),
		MaxImpliedRate:     1_200_000,
	}
	data, err := EncodeOptions(opts)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeOptions(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded != opts {
		t.Fatalf("round trip mismatch: %+v != %+v", decoded, opts)
	}
}

func TestDecodeOptionsRejectsGarbage(t *testing.T) {
	if _, err := DecodeOptions([]byte{0xff, 0x00}); err == nil {
		t.Fatal("expected decode failure")
	}
}

func TestTokenIdentityValid(t *testing.T) {
	valid := TokenIdentity{CurrencyID: 2, Maturity: testMaturity, MarketIndex: 1}
	if !valid.Valid() {
		t.Fatal("expected valid identity")
	}
	for _, id := range []TokenIdentity{
		{CurrencyID: 0, Maturity: testMaturity, MarketIndex: 1},
		{CurrencyID: 2, Maturity: 0, MarketIndex: 1},
		{CurrencyID: 2, Maturity: maxMaturity, MarketIndex: 1},
		{CurrencyID: 2, Maturity: testMaturity, MarketIndex: 0},
	} {
		if id.Valid() {
			t.Fatalf("expected invalid identity: %+v", id)
		}
	}
}

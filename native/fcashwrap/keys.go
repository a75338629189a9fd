package fcashwrap

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var (
	ledgerPrefix       = []byte("fcashwrap/")
	supplySuffix       = []byte("/supply")
	balanceInfix       = []byte("/balance/")
	allowanceInfix     = []byte("/allowance/")
	allowanceSeparator = []byte("/")
)

func ledgerScope(claimID *uint256.Int) []byte {
	hex := claimID.Hex()
	buf := make([]byte, 0, len(ledgerPrefix)+len(hex))
	buf = append(buf, ledgerPrefix...)
	buf = append(buf, hex...)
	return buf
}

func supplyKey(scope []byte) []byte {
	buf := make([]byte, 0, len(scope)+len(supplySuffix))
	buf = append(buf, scope...)
	buf = append(buf, supplySuffix...)
	return buf
}

func balanceKey(scope []byte, holder common.Address) []byte {
	buf := make([]byte, 0, len(scope)+len(balanceInfix)+common.AddressLength)
	buf = append(buf, scope...)
	buf = append(buf, balanceInfix...)
	buf = append(buf, holder.Bytes()...)
	return buf
}

func allowanceKey(scope []byte, owner, spender common.Address) []byte {
	buf := make([]byte, 0, len(scope)+len(allowanceInfix)+2*common.AddressLength+len(allowanceSeparator))
	buf = append(buf, scope...)
	buf = append(buf, allowanceInfix...)
	buf = append(buf, owner.Bytes()...)
	buf = append(buf, allowanceSeparator...)
	buf = append(buf, spender.Bytes()...)
	return buf
}

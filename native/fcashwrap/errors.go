package fcashwrap

import "errors"

var (
	errNilMarket  = errors.New("fcashwrap: market not configured")
	errNilBank    = errors.New("fcashwrap: asset bank not configured")
	errNilStorage = errors.New("fcashwrap: storage not configured")

	errMatured          = errors.New("fcashwrap: wrapper has matured")
	errInvalidAmount    = errors.New("fcashwrap: amount must be positive")
	errAmountOverflow   = errors.New("fcashwrap: amount exceeds 88-bit domain")
	errZeroRecipient    = errors.New("fcashwrap: recipient must be non-zero")
	errZeroReceiver     = errors.New("fcashwrap: receiver must be non-zero")
	errInvalidCaller    = errors.New("fcashwrap: caller is not the market")
	errClaimMismatch    = errors.New("fcashwrap: claim id does not match wrapper identity")
	errBatchNotAccepted = errors.New("fcashwrap: batch claim transfers not accepted")
	errPortfolioMixed   = errors.New("fcashwrap: wrapper portfolio is not a single matching claim")
	errAccountHasDebt   = errors.New("fcashwrap: wrapper account carries debt")

	// ErrInsufficientBalance and ErrInsufficientAllowance are exported so
	// callers can distinguish ordinary user errors from protocol failures.
	ErrInsufficientBalance   = errors.New("fcashwrap: insufficient balance")
	ErrInsufficientAllowance = errors.New("fcashwrap: insufficient allowance")

	// errCashBalanceInvariant signals a contract-level accounting fault, not a
	// recoverable user error: settlement left the wrapper with a non-positive
	// cash balance while wrapped supply is still outstanding.
	errCashBalanceInvariant = errors.New("fcashwrap: settled cash balance non-positive")
)

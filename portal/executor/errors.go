package executor

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotConnected is returned when the client has no chain connection.
	ErrNotConnected = errors.New("wallet not connected: no blockchain connection")

	// ErrInvalidAmount is returned for zero or negative amounts.
	ErrInvalidAmount = errors.New("invalid amount: must be greater than zero")
)

// PairNotSupportedError is returned for swap pairs the DEX has no direct
// market for. Today that is only RISE into USDT.
type PairNotSupportedError struct {
	FromToken string
	ToToken   string
}

func (e *PairNotSupportedError) Error() string {
	return fmt.Sprintf("swap pair %s/%s not supported on the current DEX", e.FromToken, e.ToToken)
}

// InsufficientBalanceError reports that the account cannot cover an amount
// plus its gas cost. Needed includes the gas and safety margin.
type InsufficientBalanceError struct {
	Token   string
	Balance decimal.Decimal
	Needed  decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("Insufficient balance. Balance: %s %s, Needed: %s %s",
		e.Balance.StringFixed(6), e.Token, e.Needed.StringFixed(6), e.Token)
}

// InvalidReceiverError reports a transfer destination that is not a valid
// hex address.
type InvalidReceiverError struct {
	Address string
}

func (e *InvalidReceiverError) Error() string {
	return fmt.Sprintf("Invalid receiver address: %s", e.Address)
}

// UnsupportedTransferTokenError reports a token with no transferable
// contract on this network.
type UnsupportedTransferTokenError struct {
	Token string
}

func (e *UnsupportedTransferTokenError) Error() string {
	return fmt.Sprintf("Token %s not supported for transfer", e.Token)
}

package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrOverflow            = errors.New("arithmetic overflow")
	ErrAccountNotFound     = errors.New("account not found")
	ErrTokenNotFound       = errors.New("token not found")
	ErrTokenConflict       = errors.New("token metadata conflict")
	ErrInvalidToken        = errors.New("invalid token metadata")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrSelfTransfer        = errors.New("cannot transfer to the same account")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrInvalidScope        = errors.New("invalid scope for command")
	ErrGeneral             = errors.New("general backend error")
)

type InvalidAmountError struct {
	Amount Amount
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidAmount, e.Amount)
}

func (e *InvalidAmountError) Unwrap() error { return ErrInvalidAmount }

type AccountNotFoundError struct {
	ID AccountID
}

func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", ErrAccountNotFound, e.ID)
}

func (e *AccountNotFoundError) Unwrap() error { return ErrAccountNotFound }

type TokenNotFoundError struct {
	Symbol string
}

func (e *TokenNotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", ErrTokenNotFound, e.Symbol)
}

func (e *TokenNotFoundError) Unwrap() error { return ErrTokenNotFound }

type TokenConflictError struct {
	Symbol string
}

func (e *TokenConflictError) Error() string {
	return fmt.Sprintf("%s: %s", ErrTokenConflict, e.Symbol)
}

func (e *TokenConflictError) Unwrap() error { return ErrTokenConflict }

type InsufficientBalanceError struct {
	Required  Amount
	Available Amount
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("%s: required %s, available %s", ErrInsufficientBalance, e.Required, e.Available)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

type PermissionDeniedError struct {
	Role Role
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("%s for role %s", ErrPermissionDenied, e.Role)
}

func (e *PermissionDeniedError) Unwrap() error { return ErrPermissionDenied }

type GeneralError struct {
	Text string
}

func (e *GeneralError) Error() string {
	return fmt.Sprintf("%s: %s", ErrGeneral, e.Text)
}

func (e *GeneralError) Unwrap() error { return ErrGeneral }

// kindLabels is ordered so the first matching sentinel wins.
var kindLabels = []struct {
	err   error
	label string
}{
	{ErrInvalidAmount, "invalid_amount"},
	{ErrOverflow, "overflow"},
	{ErrAccountNotFound, "account_not_found"},
	{ErrTokenNotFound, "token_not_found"},
	{ErrTokenConflict, "token_conflict"},
	{ErrInvalidToken, "invalid_token"},
	{ErrInsufficientBalance, "insufficient_balance"},
	{ErrSelfTransfer, "self_transfer"},
	{ErrPermissionDenied, "permission_denied"},
	{ErrInvalidScope, "invalid_scope"},
	{ErrGeneral, "general"},
}

// ErrorKind returns a stable snake_case label for err, "ok" for nil and
// "general" for errors outside the taxonomy.
func ErrorKind(err error) string {
	if err == nil {
		return "ok"
	}
	for _, kind := range kindLabels {
		if errors.Is(err, kind.err) {
			return kind.label
		}
	}
	return "general"
}

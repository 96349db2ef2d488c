package domain

import (
	"fmt"
	"strings"
)

const MaxTokenDecimals = 38

type TokenMeta struct {
	Symbol   string
	Decimals uint8
	// Name is informational only.
	Name string
}

func NewTokenMeta(symbol string, decimals uint8, name string) TokenMeta {
	return TokenMeta{Symbol: symbol, Decimals: decimals, Name: name}
}

func (m TokenMeta) Validate() error {
	if strings.TrimSpace(m.Symbol) == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidToken)
	}
	if m.Decimals > MaxTokenDecimals {
		return fmt.Errorf("%w: decimals %d out of range [0, %d]", ErrInvalidToken, m.Decimals, MaxTokenDecimals)
	}
	return nil
}

// SameAs reports whether other carries identical registration metadata.
func (m TokenMeta) SameAs(other TokenMeta) bool {
	return m.Symbol == other.Symbol && m.Decimals == other.Decimals && m.Name == other.Name
}

type TokenSupply struct {
	Total Amount
}

// Mint returns the supply grown by amount.
func (s TokenSupply) Mint(amount Amount) (TokenSupply, error) {
	if amount.IsZero() {
		return s, &InvalidAmountError{Amount: amount}
	}
	total, ok := s.Total.CheckedAdd(amount)
	if !ok {
		return s, ErrOverflow
	}
	return TokenSupply{Total: total}, nil
}

// Burn returns the supply reduced by amount.
func (s TokenSupply) Burn(amount Amount) (TokenSupply, error) {
	if amount.IsZero() {
		return s, &InvalidAmountError{Amount: amount}
	}
	total, ok := s.Total.CheckedSub(amount)
	if !ok {
		return s, &GeneralError{Text: fmt.Sprintf("burn of %s exceeds supply %s", amount, s.Total)}
	}
	return TokenSupply{Total: total}, nil
}

// Token pairs registration metadata with the current supply.
type Token struct {
	Meta   TokenMeta
	Supply TokenSupply
}

// TransferRequest moves Amount of Symbol between two accounts.
type TransferRequest struct {
	From   AccountID
	To     AccountID
	Amount Amount
	Symbol string
}

func NewTransferRequest(from, to AccountID, amount Amount, symbol string) TransferRequest {
	return TransferRequest{From: from, To: to, Amount: amount, Symbol: symbol}
}

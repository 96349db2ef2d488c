package domain

import "sort"

type AccountID string

type Account struct {
	ID       AccountID
	Alias    string
	Balances map[string]Amount
}

// TokenBalance is one balance entry in deterministic listings.
type TokenBalance struct {
	Symbol string
	Amount Amount
}

func NewAccount(id AccountID, alias string) *Account {
	return &Account{ID: id, Alias: alias, Balances: map[string]Amount{}}
}

// Balance returns the held amount of symbol. Absent and zero entries both read as 0.
func (a *Account) Balance(symbol string) Amount {
	return a.Balances[symbol]
}

// Holds reports whether a balance entry exists for symbol. Entries are
// removed when they reach zero.
func (a *Account) Holds(symbol string) bool {
	_, ok := a.Balances[symbol]
	return ok
}

// Credit adds amount to symbol. On error the account is unchanged.
func (a *Account) Credit(symbol string, amount Amount) error {
	next, err := a.CheckCredit(symbol, amount)
	if err != nil {
		return err
	}
	a.setBalance(symbol, next)
	return nil
}

// Debit subtracts amount from symbol. On error the account is unchanged.
func (a *Account) Debit(symbol string, amount Amount) error {
	next, err := a.CheckDebit(symbol, amount)
	if err != nil {
		return err
	}
	a.setBalance(symbol, next)
	return nil
}

// CheckCredit computes the balance a credit would produce without applying it.
func (a *Account) CheckCredit(symbol string, amount Amount) (Amount, error) {
	if amount.IsZero() {
		return Amount{}, &InvalidAmountError{Amount: amount}
	}

	next, ok := a.Balance(symbol).CheckedAdd(amount)
	if !ok {
		return Amount{}, ErrOverflow
	}
	return next, nil
}

// CheckDebit computes the balance a debit would produce without applying it.
func (a *Account) CheckDebit(symbol string, amount Amount) (Amount, error) {
	if amount.IsZero() {
		return Amount{}, &InvalidAmountError{Amount: amount}
	}

	current, ok := a.Balances[symbol]
	if !ok {
		return Amount{}, &TokenNotFoundError{Symbol: symbol}
	}

	next, ok := current.CheckedSub(amount)
	if !ok {
		return Amount{}, &InsufficientBalanceError{Required: amount, Available: current}
	}
	return next, nil
}

func (a *Account) setBalance(symbol string, amount Amount) {
	if amount.IsZero() {
		delete(a.Balances, symbol)
		return
	}
	if a.Balances == nil {
		a.Balances = map[string]Amount{}
	}
	a.Balances[symbol] = amount
}

// SetBalance stores a precomputed balance returned by CheckCredit or CheckDebit.
func (a *Account) SetBalance(symbol string, amount Amount) {
	a.setBalance(symbol, amount)
}

// SortedBalances lists entries ordered by symbol.
func (a *Account) SortedBalances() []TokenBalance {
	out := make([]TokenBalance, 0, len(a.Balances))
	for symbol, amount := range a.Balances {
		out = append(out, TokenBalance{Symbol: symbol, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Clone returns a deep copy.
func (a *Account) Clone() Account {
	balances := make(map[string]Amount, len(a.Balances))
	for symbol, amount := range a.Balances {
		balances[symbol] = amount
	}
	return Account{ID: a.ID, Alias: a.Alias, Balances: balances}
}

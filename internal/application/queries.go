package application

import (
	"time"

	"github.com/bnema/neuroledger/internal/domain"
)

type StatementAccount struct {
	ID       domain.AccountID
	Alias    string
	Balances []domain.TokenBalance
}

type StatementToken struct {
	Symbol   string
	Decimals uint8
	Name     string
	Supply   domain.Amount
}

// Statement is a point-in-time report of ledger balances and supplies.
type Statement struct {
	GeneratedAt time.Time
	Accounts    []StatementAccount
	Tokens      []StatementToken
}

func NewStatement(snapshot Snapshot, generatedAt time.Time) Statement {
	statement := Statement{
		GeneratedAt: generatedAt,
		Accounts:    make([]StatementAccount, 0, len(snapshot.Accounts)),
		Tokens:      make([]StatementToken, 0, len(snapshot.Tokens)),
	}
	for i := range snapshot.Accounts {
		account := &snapshot.Accounts[i]
		statement.Accounts = append(statement.Accounts, StatementAccount{
			ID:       account.ID,
			Alias:    account.Alias,
			Balances: account.SortedBalances(),
		})
	}
	for _, token := range snapshot.Tokens {
		statement.Tokens = append(statement.Tokens, StatementToken{
			Symbol:   token.Meta.Symbol,
			Decimals: token.Meta.Decimals,
			Name:     token.Meta.Name,
			Supply:   token.Supply.Total,
		})
	}
	return statement
}

// BalanceTotals sums balances per symbol. A consistent statement has every sum
// equal to the matching token supply.
func (s Statement) BalanceTotals() (map[string]domain.Amount, error) {
	totals := map[string]domain.Amount{}
	for _, account := range s.Accounts {
		for _, balance := range account.Balances {
			next, ok := totals[balance.Symbol].CheckedAdd(balance.Amount)
			if !ok {
				return nil, domain.ErrOverflow
			}
			totals[balance.Symbol] = next
		}
	}
	return totals, nil
}

package application

import (
	"fmt"
	"sort"

	"github.com/bnema/neuroledger/internal/domain"
	"github.com/bnema/neuroledger/internal/ports"
)

// Ledger owns accounts and token supplies. It is not safe for concurrent
// use; embedders serialize calls. Every mutating method either commits in
// full or returns an error with state untouched.
type Ledger struct {
	ids      ports.IDGenerator
	accounts map[domain.AccountID]*domain.Account
	tokens   map[string]*domain.Token
}

func NewLedger(ids ports.IDGenerator) *Ledger {
	return &Ledger{
		ids:      ids,
		accounts: map[domain.AccountID]*domain.Account{},
		tokens:   map[string]*domain.Token{},
	}
}

func (l *Ledger) CreateAccount(alias string) (domain.AccountID, error) {
	id := l.ids.NewAccountID()
	if id == "" {
		return "", &domain.GeneralError{Text: "id generator returned an empty account id"}
	}
	if _, exists := l.accounts[id]; exists {
		return "", &domain.GeneralError{Text: fmt.Sprintf("account id collision: %s", id)}
	}

	l.accounts[id] = domain.NewAccount(id, alias)
	return id, nil
}

func (l *Ledger) RegisterToken(meta domain.TokenMeta) error {
	if err := l.checkRegistration(meta); err != nil {
		return err
	}
	if _, exists := l.tokens[meta.Symbol]; !exists {
		l.tokens[meta.Symbol] = &domain.Token{Meta: meta}
	}
	return nil
}

func (l *Ledger) checkRegistration(meta domain.TokenMeta) error {
	if err := meta.Validate(); err != nil {
		return err
	}
	if existing, ok := l.tokens[meta.Symbol]; ok && !existing.Meta.SameAs(meta) {
		return &domain.TokenConflictError{Symbol: meta.Symbol}
	}
	return nil
}

func (l *Ledger) Mint(id domain.AccountID, amount domain.Amount, meta domain.TokenMeta) error {
	if amount.IsZero() {
		return &domain.InvalidAmountError{Amount: amount}
	}
	account, ok := l.accounts[id]
	if !ok {
		return &domain.AccountNotFoundError{ID: id}
	}
	if err := l.checkRegistration(meta); err != nil {
		return err
	}

	supply := domain.TokenSupply{}
	if token, ok := l.tokens[meta.Symbol]; ok {
		supply = token.Supply
	}
	nextSupply, err := supply.Mint(amount)
	if err != nil {
		return err
	}
	nextBalance, err := account.CheckCredit(meta.Symbol, amount)
	if err != nil {
		return err
	}

	token, ok := l.tokens[meta.Symbol]
	if !ok {
		token = &domain.Token{Meta: meta}
		l.tokens[meta.Symbol] = token
	}
	token.Supply = nextSupply
	account.SetBalance(meta.Symbol, nextBalance)
	return nil
}

func (l *Ledger) Burn(id domain.AccountID, symbol string, amount domain.Amount) error {
	if amount.IsZero() {
		return &domain.InvalidAmountError{Amount: amount}
	}
	account, ok := l.accounts[id]
	if !ok {
		return &domain.AccountNotFoundError{ID: id}
	}
	token, ok := l.tokens[symbol]
	if !ok {
		return &domain.TokenNotFoundError{Symbol: symbol}
	}

	nextBalance, err := account.CheckDebit(symbol, amount)
	if err != nil {
		return err
	}
	nextSupply, err := token.Supply.Burn(amount)
	if err != nil {
		return err
	}

	account.SetBalance(symbol, nextBalance)
	token.Supply = nextSupply
	return nil
}

func (l *Ledger) Transfer(req domain.TransferRequest) error {
	if req.Amount.IsZero() {
		return &domain.InvalidAmountError{Amount: req.Amount}
	}
	from, ok := l.accounts[req.From]
	if !ok {
		return &domain.AccountNotFoundError{ID: req.From}
	}
	to, ok := l.accounts[req.To]
	if !ok {
		return &domain.AccountNotFoundError{ID: req.To}
	}
	if req.From == req.To {
		return domain.ErrSelfTransfer
	}
	if _, ok := l.tokens[req.Symbol]; !ok {
		return &domain.TokenNotFoundError{Symbol: req.Symbol}
	}

	nextFrom, err := from.CheckDebit(req.Symbol, req.Amount)
	if err != nil {
		return err
	}
	nextTo, err := to.CheckCredit(req.Symbol, req.Amount)
	if err != nil {
		return err
	}

	from.SetBalance(req.Symbol, nextFrom)
	to.SetBalance(req.Symbol, nextTo)
	return nil
}

// BalanceOf returns 0 for an unheld symbol and ok=false only when the
// account is unknown.
func (l *Ledger) BalanceOf(id domain.AccountID, symbol string) (domain.Amount, bool) {
	account, ok := l.accounts[id]
	if !ok {
		return domain.Amount{}, false
	}
	return account.Balance(symbol), true
}

func (l *Ledger) Supply(symbol string) (domain.Amount, bool) {
	token, ok := l.tokens[symbol]
	if !ok {
		return domain.Amount{}, false
	}
	return token.Supply.Total, true
}

func (l *Ledger) Token(symbol string) (domain.Token, bool) {
	token, ok := l.tokens[symbol]
	if !ok {
		return domain.Token{}, false
	}
	return *token, true
}

func (l *Ledger) Account(id domain.AccountID) (domain.Account, bool) {
	account, ok := l.accounts[id]
	if !ok {
		return domain.Account{}, false
	}
	return account.Clone(), true
}

// Accounts returns copies ordered by id.
func (l *Ledger) Accounts() []domain.Account {
	out := make([]domain.Account, 0, len(l.accounts))
	for _, account := range l.accounts {
		out = append(out, account.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Tokens returns copies ordered by symbol.
func (l *Ledger) Tokens() []domain.Token {
	out := make([]domain.Token, 0, len(l.tokens))
	for _, token := range l.tokens {
		out = append(out, *token)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Meta.Symbol < out[j].Meta.Symbol })
	return out
}

// Snapshot is a deep copy of the ledger's observable state.
type Snapshot struct {
	Accounts []domain.Account
	Tokens   []domain.Token
}

func (l *Ledger) Snapshot() Snapshot {
	return Snapshot{Accounts: l.Accounts(), Tokens: l.Tokens()}
}

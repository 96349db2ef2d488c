package application

import (
	"fmt"

	"github.com/bnema/neuroledger/internal/domain"
)

type PlanOp string

const (
	PlanOpMint     PlanOp = "mint"
	PlanOpBurn     PlanOp = "burn"
	PlanOpTransfer PlanOp = "transfer"
)

func (o PlanOp) Valid() bool {
	switch o {
	case PlanOpMint, PlanOpBurn, PlanOpTransfer:
		return true
	default:
		return false
	}
}

// PlanStep is one ledger operation. Account is used by mint and burn,
// From and To by transfer. All account fields hold plan aliases.
type PlanStep struct {
	Op      PlanOp
	Account string
	From    string
	To      string
	Symbol  string
	Amount  domain.Amount
}

// Plan is an ordered batch of ledger operations applied to a fresh ledger.
type Plan struct {
	Accounts []string
	Tokens   []domain.TokenMeta
	Steps    []PlanStep
}

// Validate checks that every step names a declared alias and that minted
// symbols are declared.
func (p Plan) Validate() error {
	aliases := make(map[string]struct{}, len(p.Accounts))
	for _, alias := range p.Accounts {
		if alias == "" {
			return fmt.Errorf("account alias is required")
		}
		if _, dup := aliases[alias]; dup {
			return fmt.Errorf("duplicate account alias %q", alias)
		}
		aliases[alias] = struct{}{}
	}

	symbols := make(map[string]struct{}, len(p.Tokens))
	for _, meta := range p.Tokens {
		if err := meta.Validate(); err != nil {
			return fmt.Errorf("token %q: %w", meta.Symbol, err)
		}
		if _, dup := symbols[meta.Symbol]; dup {
			return fmt.Errorf("duplicate token %q", meta.Symbol)
		}
		symbols[meta.Symbol] = struct{}{}
	}

	known := func(alias string) error {
		if _, ok := aliases[alias]; !ok {
			return fmt.Errorf("unknown account alias %q", alias)
		}
		return nil
	}

	for i, step := range p.Steps {
		var err error
		switch step.Op {
		case PlanOpMint:
			err = known(step.Account)
			if _, ok := symbols[step.Symbol]; err == nil && !ok {
				err = fmt.Errorf("mint of undeclared token %q", step.Symbol)
			}
		case PlanOpBurn:
			err = known(step.Account)
		case PlanOpTransfer:
			if err = known(step.From); err == nil {
				err = known(step.To)
			}
		default:
			err = fmt.Errorf("unsupported op %q", step.Op)
		}
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	return nil
}

func (p Plan) token(symbol string) (domain.TokenMeta, bool) {
	for _, meta := range p.Tokens {
		if meta.Symbol == symbol {
			return meta, true
		}
	}
	return domain.TokenMeta{}, false
}

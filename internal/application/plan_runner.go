package application

import (
	"context"
	"fmt"

	"github.com/bnema/neuroledger/internal/domain"
	"github.com/bnema/neuroledger/internal/ports"
)

// StepError reports the first plan step that failed. Err is the ledger
// error, untouched.
type StepError struct {
	Index int
	Op    PlanOp
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index, e.Op, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// PlanResult carries the ledger a plan was applied to and the ids assigned
// to its aliases. The ledger reflects every step that succeeded.
type PlanResult struct {
	Ledger  *Ledger
	Aliases map[string]domain.AccountID
	Applied int
}

func (r PlanResult) Statement(clock ports.Clock) Statement {
	return NewStatement(r.Ledger.Snapshot(), clock.Now())
}

type PlanRunner struct {
	ids     ports.IDGenerator
	metrics ports.Metrics
}

func NewPlanRunner(ids ports.IDGenerator, metrics ports.Metrics) *PlanRunner {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &PlanRunner{ids: ids, metrics: metrics}
}

// Run applies plan to a fresh ledger. It stops at the first failing step
// and returns the partial result together with a *StepError.
func (r *PlanRunner) Run(ctx context.Context, plan Plan) (PlanResult, error) {
	if err := plan.Validate(); err != nil {
		return PlanResult{}, fmt.Errorf("validate plan: %w", err)
	}

	ledger := NewLedger(r.ids)
	result := PlanResult{Ledger: ledger, Aliases: make(map[string]domain.AccountID, len(plan.Accounts))}

	for _, meta := range plan.Tokens {
		if err := ledger.RegisterToken(meta); err != nil {
			return result, fmt.Errorf("register token %s: %w", meta.Symbol, err)
		}
	}
	for _, alias := range plan.Accounts {
		id, err := ledger.CreateAccount(alias)
		if err != nil {
			return result, fmt.Errorf("create account %s: %w", alias, err)
		}
		result.Aliases[alias] = id
	}

	for i, step := range plan.Steps {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		err := r.apply(ledger, plan, result.Aliases, step)
		r.metrics.ObserveLedgerOp(string(step.Op), domain.ErrorKind(err))
		if err != nil {
			return result, &StepError{Index: i, Op: step.Op, Err: err}
		}
		result.Applied++
	}

	return result, nil
}

func (r *PlanRunner) apply(ledger *Ledger, plan Plan, aliases map[string]domain.AccountID, step PlanStep) error {
	switch step.Op {
	case PlanOpMint:
		meta, _ := plan.token(step.Symbol)
		return ledger.Mint(aliases[step.Account], step.Amount, meta)
	case PlanOpBurn:
		return ledger.Burn(aliases[step.Account], step.Symbol, step.Amount)
	case PlanOpTransfer:
		return ledger.Transfer(domain.NewTransferRequest(aliases[step.From], aliases[step.To], step.Amount, step.Symbol))
	default:
		return &domain.GeneralError{Text: fmt.Sprintf("unsupported op %q", step.Op)}
	}
}

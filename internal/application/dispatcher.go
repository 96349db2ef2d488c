package application

import (
	"fmt"

	"github.com/bnema/neuroledger/internal/domain"
)

// kindRule is the authorization and routing entry for one command kind.
// An empty scope accepts every scope variant.
type kindRule struct {
	minRole domain.Role
	scope   domain.ScopeKind
	apply   func(state *domain.BackendState, cmd domain.Command) (string, error)
}

var kindRules = map[domain.KindName]kindRule{
	domain.KindNeuralCachePurge: {
		minRole: domain.RoleAdmin,
		apply: func(state *domain.BackendState, _ domain.Command) (string, error) {
			state.CacheCleared = true
			return "neural cache purged", nil
		},
	},
	domain.KindContextExpand: {
		minRole: domain.RoleGuest,
		apply:   applyContextExpand,
	},
	domain.KindSessionArchive: {
		minRole: domain.RoleAdmin,
		scope:   domain.ScopeSession,
		apply: func(state *domain.BackendState, cmd domain.Command) (string, error) {
			state.Sessions[cmd.Scope.ID] = domain.SessionArchived
			return fmt.Sprintf("session %s archived", cmd.Scope.ID), nil
		},
	},
	domain.KindSessionSnapshot: {
		minRole: domain.RoleAdmin,
		scope:   domain.ScopeSession,
		apply: func(state *domain.BackendState, cmd domain.Command) (string, error) {
			state.Sessions[cmd.Scope.ID] = domain.SessionSnapshot
			return fmt.Sprintf("session %s snapshot taken", cmd.Scope.ID), nil
		},
	},
	domain.KindSessionRecover: {
		minRole: domain.RoleAdmin,
		scope:   domain.ScopeSession,
		apply: func(state *domain.BackendState, cmd domain.Command) (string, error) {
			if _, ok := state.Sessions[cmd.Scope.ID]; ok {
				return fmt.Sprintf("session %s recovered", cmd.Scope.ID), nil
			}
			return fmt.Sprintf("session %s not found; nothing to recover", cmd.Scope.ID), nil
		},
	},
	domain.KindCodexValidate: {
		minRole: domain.RoleGuest,
		apply: func(state *domain.BackendState, _ domain.Command) (string, error) {
			state.CodexValid = true
			return "codex validated", nil
		},
	},
	domain.KindCodexCompress: informational("codex compressed (logical operation)"),
	domain.KindNodeRebalance: informational("node workloads rebalanced (simulated)"),
	domain.KindQueryTrace:    informational("query trace recorded (simulated)"),
	domain.KindQueryOptimize: informational("query execution paths optimized (simulated)"),
}

func informational(message string) kindRule {
	return kindRule{
		minRole: domain.RoleGuest,
		apply: func(*domain.BackendState, domain.Command) (string, error) {
			return message, nil
		},
	}
}

func applyContextExpand(state *domain.BackendState, cmd domain.Command) (string, error) {
	next := state.ContextSize + cmd.Kind.Amount
	if next < state.ContextSize {
		return "", domain.ErrOverflow
	}
	state.ContextSize = next
	return fmt.Sprintf("context expanded by %d, new size %d", cmd.Kind.Amount, next), nil
}

// Dispatcher applies administrative commands to a BackendState. It is not
// safe for concurrent use.
type Dispatcher struct {
	state domain.BackendState
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{state: domain.NewBackendState()}
}

// Handle checks role, then scope, then applies the command. A failed
// command leaves the backend state unchanged.
func (d *Dispatcher) Handle(cmd domain.Command) (domain.CommandResult, error) {
	rule, ok := kindRules[cmd.Kind.Name]
	if !ok {
		return domain.CommandResult{}, &domain.GeneralError{Text: fmt.Sprintf("unsupported command kind %q", cmd.Kind.Name)}
	}
	if !cmd.Role.AtLeast(rule.minRole) {
		return domain.CommandResult{}, &domain.PermissionDeniedError{Role: cmd.Role}
	}
	if !cmd.Scope.Valid() || (rule.scope != "" && cmd.Scope.Kind != rule.scope) {
		return domain.CommandResult{}, domain.ErrInvalidScope
	}

	next := d.state.Clone()
	message, err := rule.apply(&next, cmd)
	if err != nil {
		return domain.CommandResult{}, err
	}
	d.state = next

	return domain.CommandResult{CommandID: cmd.ID, OK: true, Message: message}, nil
}

// State returns a deep copy of the backend state.
func (d *Dispatcher) State() domain.BackendState {
	return d.state.Clone()
}

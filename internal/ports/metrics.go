package ports

import "github.com/bnema/neuroledger/internal/domain"

// Metrics records outcomes of ledger operations and dispatched commands.
// Outcome labels come from domain.ErrorKind.
type Metrics interface {
	ObserveLedgerOp(op string, outcome string)
	ObserveCommand(kind domain.KindName, outcome string)
	SetContextSize(size uint64)
}

type NopMetrics struct{}

func (NopMetrics) ObserveLedgerOp(string, string) {}
func (NopMetrics) ObserveCommand(domain.KindName, string) {}
func (NopMetrics) SetContextSize(uint64) {}

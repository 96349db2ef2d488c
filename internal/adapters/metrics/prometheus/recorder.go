package prometheus

import (
	"net/http"

	"github.com/bnema/neuroledger/internal/domain"
	"github.com/bnema/neuroledger/internal/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "neuro"

// unknownKind labels every command kind outside domain.KindNames.
const unknownKind = "unknown"

// Recorder exports ledger and dispatcher outcomes on its own registry.
type Recorder struct {
	registry    *prometheus.Registry
	ledgerOps   *prometheus.CounterVec
	commands    *prometheus.CounterVec
	contextSize prometheus.Gauge
}

var _ ports.Metrics = (*Recorder)(nil)

func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Recorder{
		registry: registry,
		ledgerOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "operations_total",
			Help:      "Ledger operations by op and outcome.",
		}, []string{"op", "outcome"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatcher",
			Name:      "commands_total",
			Help:      "Dispatched commands by kind and outcome.",
		}, []string{"kind", "outcome"}),
		contextSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "context_size",
			Help:      "Current backend context size.",
		}),
	}
	registry.MustRegister(r.ledgerOps, r.commands, r.contextSize)
	r.contextSize.Set(float64(domain.DefaultContextSize))

	return r
}

func (r *Recorder) ObserveLedgerOp(op string, outcome string) {
	r.ledgerOps.WithLabelValues(op, outcome).Inc()
}

// ObserveCommand counts a dispatch outcome. Kinds come from clients, so
// unrecognized names share a single series.
func (r *Recorder) ObserveCommand(kind domain.KindName, outcome string) {
	label := unknownKind
	if kind.Known() {
		label = string(kind)
	}
	r.commands.WithLabelValues(label, outcome).Inc()
}

func (r *Recorder) SetContextSize(size uint64) {
	r.contextSize.Set(float64(size))
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

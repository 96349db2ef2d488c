package cmd

import (
	"fmt"
	"os"
	"time"

	idsadapter "github.com/bnema/neuroledger/internal/adapters/ids"
	promrecorder "github.com/bnema/neuroledger/internal/adapters/metrics/prometheus"
	statusadapter "github.com/bnema/neuroledger/internal/adapters/render/status"
	statementstore "github.com/bnema/neuroledger/internal/adapters/statement/toml"
	"github.com/bnema/neuroledger/internal/application"
	"github.com/bnema/neuroledger/internal/config"
	"github.com/bnema/neuroledger/internal/domain"
	"github.com/bnema/neuroledger/internal/ports"
	"github.com/spf13/viper"
)

type app struct {
	cfg               config.Config
	ids               ports.IDGenerator
	clock             ports.Clock
	metrics           *promrecorder.Recorder
	statementRenderer func(application.Statement, statusadapter.RenderOptions) (string, error)
	commandRenderer   func(domain.CommandResult, domain.BackendState) (string, error)
	sendTimeout       time.Duration
}

func wireApp() (*app, error) {
	cfg, err := config.Load(viper.New(), envOrDefault("NEURO_CONFIG", ""))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	sendTimeout, err := time.ParseDuration(envOrDefault("NEURO_SEND_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("parse NEURO_SEND_TIMEOUT: %w", err)
	}

	return &app{
		cfg:               cfg,
		ids:               idsadapter.UUIDGenerator{},
		clock:             ports.SystemClock{},
		metrics:           promrecorder.NewRecorder(),
		statementRenderer: statusadapter.RenderStatement,
		commandRenderer:   statusadapter.RenderCommand,
		sendTimeout:       sendTimeout,
	}, nil
}

func (a *app) planRunner() *application.PlanRunner {
	return application.NewPlanRunner(a.ids, a.metrics)
}

// statementStore opens the statement file at path, or at the configured
// statement.path when path is empty.
func (a *app) statementStore(path string) (*statementstore.Store, error) {
	v := viper.New()
	switch {
	case path != "":
		v.Set("statement.path", path)
	case a.cfg.Statement.Path != "":
		v.Set("statement.path", a.cfg.Statement.Path)
	}

	store, err := statementstore.NewStore(v)
	if err != nil {
		return nil, fmt.Errorf("open statement store: %w", err)
	}
	return store, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

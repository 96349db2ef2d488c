package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bnema/neuroledger/internal/application"
	"github.com/bnema/neuroledger/internal/domain"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	statementPathKey    = "statement.path"
	statementFileMode   = 0o600
	statementDirMode    = 0o700
	statementConfigDir  = ".neuro"
	statementConfigFile = "statement.toml"
	tempFilePattern     = ".statement-*.toml.tmp"
)

// Store writes and reads ledger statements as versioned TOML.
type Store struct {
	path string
	mu   *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

func NewStore(cfg *viper.Viper) (*Store, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}
	cfg.SetDefault(statementPathKey, filepath.Join(homeDir, statementConfigDir, statementConfigFile))

	path := cfg.GetString(statementPathKey)
	if path == "" {
		return nil, errors.New("statement path is empty")
	}
	path, err = normalizeStatementPath(path)
	if err != nil {
		return nil, err
	}

	return &Store{path: path, mu: lockForPath(path)}, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Write(ctx context.Context, statement application.Statement) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file := toSchema(statement)
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.writeSchema(file)
}

func (s *Store) Read(ctx context.Context) (application.Statement, error) {
	if err := ctx.Err(); err != nil {
		return application.Statement{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return application.Statement{}, fmt.Errorf("read statement file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return application.Statement{}, fmt.Errorf("decode statement file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return application.Statement{}, err
	}
	file.applyDefaults()

	return fromSchema(file)
}

func normalizeStatementPath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve statement path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func (s *Store) writeSchema(file fileSchema) (err error) {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(s.path), statementDirMode); err != nil {
		return fmt.Errorf("create statement directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode statement file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(s.path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp statement file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if !cleanup {
			return
		}
		if removeErr := os.Remove(tempName); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
			err = errors.Join(err, fmt.Errorf("remove temp statement file: %w", removeErr))
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp statement file: %w", err)
	}

	if err := tempFile.Chmod(statementFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp statement file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp statement file: %w", err)
	}

	if err := os.Rename(tempName, s.path); err != nil {
		return fmt.Errorf("replace statement file: %w", err)
	}

	cleanup = false

	if err := os.Chmod(s.path, statementFileMode); err != nil {
		return fmt.Errorf("chmod statement file: %w", err)
	}

	return nil
}

func toSchema(statement application.Statement) fileSchema {
	file := fileSchema{
		Version:     currentSchemaVersion,
		GeneratedAt: formatTime(statement.GeneratedAt),
		Tokens:      make([]tokenSchema, 0, len(statement.Tokens)),
		Accounts:    make([]accountSchema, 0, len(statement.Accounts)),
	}

	for _, token := range statement.Tokens {
		file.Tokens = append(file.Tokens, tokenSchema{
			Symbol:   token.Symbol,
			Decimals: int(token.Decimals),
			Name:     token.Name,
			Supply:   token.Supply.String(),
		})
	}

	for _, account := range statement.Accounts {
		entry := accountSchema{ID: string(account.ID), Alias: account.Alias}
		for _, balance := range account.Balances {
			entry.Balances = append(entry.Balances, balanceSchema{
				Symbol: balance.Symbol,
				Amount: balance.Amount.String(),
			})
		}
		file.Accounts = append(file.Accounts, entry)
	}

	return file
}

func fromSchema(file fileSchema) (application.Statement, error) {
	statement := application.Statement{
		GeneratedAt: parseTime(file.GeneratedAt),
		Tokens:      make([]application.StatementToken, 0, len(file.Tokens)),
		Accounts:    make([]application.StatementAccount, 0, len(file.Accounts)),
	}

	for _, token := range file.Tokens {
		if token.Decimals < 0 || token.Decimals > domain.MaxTokenDecimals {
			return application.Statement{}, fmt.Errorf("token %s: decimals %d out of range", token.Symbol, token.Decimals)
		}
		supply, err := domain.ParseAmount(token.Supply)
		if err != nil {
			return application.Statement{}, fmt.Errorf("token %s supply: %w", token.Symbol, err)
		}
		statement.Tokens = append(statement.Tokens, application.StatementToken{
			Symbol:   token.Symbol,
			Decimals: uint8(token.Decimals),
			Name:     token.Name,
			Supply:   supply,
		})
	}

	for _, account := range file.Accounts {
		entry := application.StatementAccount{
			ID:       domain.AccountID(account.ID),
			Alias:    account.Alias,
			Balances: make([]domain.TokenBalance, 0, len(account.Balances)),
		}
		for _, balance := range account.Balances {
			amount, err := domain.ParseAmount(balance.Amount)
			if err != nil {
				return application.Statement{}, fmt.Errorf("account %s balance %s: %w", account.ID, balance.Symbol, err)
			}
			entry.Balances = append(entry.Balances, domain.TokenBalance{Symbol: balance.Symbol, Amount: amount})
		}
		statement.Accounts = append(statement.Accounts, entry)
	}

	return statement, nil
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.UTC().Format(time.RFC3339)
}

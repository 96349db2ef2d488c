package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version     int             `toml:"version"`
	GeneratedAt string          `toml:"generated_at"`
	Tokens      []tokenSchema   `toml:"tokens"`
	Accounts    []accountSchema `toml:"accounts"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported statement schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

// Amounts are decimal strings; TOML integers stop at 64 bits.
type tokenSchema struct {
	Symbol   string `toml:"symbol"`
	Decimals int    `toml:"decimals"`
	Name     string `toml:"name"`
	Supply   string `toml:"supply"`
}

type accountSchema struct {
	ID       string          `toml:"id"`
	Alias    string          `toml:"alias"`
	Balances []balanceSchema `toml:"balances,omitempty"`
}

type balanceSchema struct {
	Symbol string `toml:"symbol"`
	Amount string `toml:"amount"`
}

package plan

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version  int             `toml:"version" yaml:"version"`
	Accounts []accountSchema `toml:"accounts" yaml:"accounts"`
	Tokens   []tokenSchema   `toml:"tokens" yaml:"tokens"`
	Steps    []stepSchema    `toml:"steps" yaml:"steps"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported plan schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type accountSchema struct {
	Alias string `toml:"alias" yaml:"alias"`
}

type tokenSchema struct {
	Symbol   string `toml:"symbol" yaml:"symbol"`
	Decimals int    `toml:"decimals" yaml:"decimals"`
	Name     string `toml:"name" yaml:"name"`
}

// Amounts are decimal strings so values above 2^64 survive both formats.
type stepSchema struct {
	Op      string `toml:"op" yaml:"op"`
	Account string `toml:"account,omitempty" yaml:"account,omitempty"`
	From    string `toml:"from,omitempty" yaml:"from,omitempty"`
	To      string `toml:"to,omitempty" yaml:"to,omitempty"`
	Symbol  string `toml:"symbol" yaml:"symbol"`
	Amount  string `toml:"amount" yaml:"amount"`
}

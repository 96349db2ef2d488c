package plan

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bnema/neuroledger/internal/application"
	"github.com/bnema/neuroledger/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tomlPlan = `version = 1

[[accounts]]
alias = "alice"

[[accounts]]
alias = "bob"

[[tokens]]
symbol = "NEURO"
decimals = 6
name = "Neuro Token"

[[steps]]
op = "mint"
account = "alice"
symbol = "NEURO"
amount = "1000000"

[[steps]]
op = "transfer"
from = "alice"
to = "bob"
symbol = "NEURO"
amount = "250000"
`

const yamlPlan = `version: 1
accounts:
  - alias: alice
  - alias: bob
tokens:
  - symbol: NEURO
    decimals: 6
    name: Neuro Token
steps:
  - op: mint
    account: alice
    symbol: NEURO
    amount: "1000000"
  - op: transfer
    from: alice
    to: bob
    symbol: NEURO
    amount: "250000"
`

func expectedPlan() application.Plan {
	return application.Plan{
		Accounts: []string{"alice", "bob"},
		Tokens:   []domain.TokenMeta{domain.NewTokenMeta("NEURO", 6, "Neuro Token")},
		Steps: []application.PlanStep{
			{Op: application.PlanOpMint, Account: "alice", Symbol: "NEURO", Amount: domain.NewAmount(1_000_000)},
			{Op: application.PlanOpTransfer, From: "alice", To: "bob", Symbol: "NEURO", Amount: domain.NewAmount(250_000)},
		},
	}
}

func TestDecodeFormats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		format Format
		body   string
	}{
		{name: "toml", format: FormatTOML, body: tomlPlan},
		{name: "yaml", format: FormatYAML, body: yamlPlan},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := Decode(strings.NewReader(tc.body), tc.format)
			require.NoError(t, err)
			assert.Equal(t, expectedPlan(), got)
		})
	}
}

func TestLoadPicksFormatFromExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "plan.toml")
	ymlPath := filepath.Join(dir, "plan.yml")
	require.NoError(t, os.WriteFile(tomlPath, []byte(tomlPlan), 0o600))
	require.NoError(t, os.WriteFile(ymlPath, []byte(yamlPlan), 0o600))

	fromTOML, err := Load(tomlPath)
	require.NoError(t, err)
	fromYAML, err := Load(ymlPath)
	require.NoError(t, err)
	assert.Equal(t, fromTOML, fromYAML)

	_, err = Load(filepath.Join(dir, "plan.json"))
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDecodeRejectsInvalidPlans(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "future version",
			body:    "version = 999\n",
			wantErr: "unsupported plan schema version 999",
		},
		{
			name:    "unknown key",
			body:    "version = 1\nledger = \"main\"\n",
			wantErr: "decode plan file",
		},
		{
			name:    "unknown op",
			body:    "[[accounts]]\nalias = \"alice\"\n\n[[steps]]\nop = \"melt\"\naccount = \"alice\"\nsymbol = \"NEURO\"\namount = \"1\"\n",
			wantErr: `step 0: unsupported op "melt"`,
		},
		{
			name:    "unknown alias",
			body:    "[[accounts]]\nalias = \"alice\"\n\n[[steps]]\nop = \"burn\"\naccount = \"carol\"\nsymbol = \"NEURO\"\namount = \"1\"\n",
			wantErr: `unknown account alias "carol"`,
		},
		{
			name:    "mint of undeclared token",
			body:    "[[accounts]]\nalias = \"alice\"\n\n[[steps]]\nop = \"mint\"\naccount = \"alice\"\nsymbol = \"SYN\"\namount = \"1\"\n",
			wantErr: `undeclared token "SYN"`,
		},
		{
			name:    "bad amount",
			body:    "[[accounts]]\nalias = \"alice\"\n\n[[steps]]\nop = \"burn\"\naccount = \"alice\"\nsymbol = \"NEURO\"\namount = \"-4\"\n",
			wantErr: "step 0 amount: invalid amount",
		},
		{
			name:    "decimals out of range",
			body:    "[[tokens]]\nsymbol = \"NEURO\"\ndecimals = 40\nname = \"Neuro\"\n",
			wantErr: "decimals 40 out of range",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := Decode(strings.NewReader(tc.body), FormatTOML)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestDecodeAmountBeyondUint64(t *testing.T) {
	t.Parallel()

	body := "[[accounts]]\nalias = \"alice\"\n\n[[tokens]]\nsymbol = \"BIG\"\n\n[[steps]]\nop = \"mint\"\naccount = \"alice\"\nsymbol = \"BIG\"\namount = \"340282366920938463463374607431768211455\"\n"

	got, err := Decode(strings.NewReader(body), FormatTOML)

	require.NoError(t, err)
	require.Len(t, got.Steps, 1)
	assert.Equal(t, domain.MaxAmount(), got.Steps[0].Amount)
}

func TestDecodeEmptyYAML(t *testing.T) {
	t.Parallel()

	got, err := Decode(strings.NewReader(""), FormatYAML)

	require.NoError(t, err)
	assert.Empty(t, got.Steps)
}

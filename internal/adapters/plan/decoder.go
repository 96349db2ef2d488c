package plan

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bnema/neuroledger/internal/application"
	"github.com/bnema/neuroledger/internal/domain"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

var ErrUnsupportedFormat = errors.New("unsupported plan format")

// FormatForPath picks the decoder from the file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Load reads and decodes the plan file at path.
func Load(path string) (application.Plan, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return application.Plan{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return application.Plan{}, fmt.Errorf("read plan file: %w", err)
	}

	return Decode(bytes.NewReader(data), format)
}

// Decode parses a plan and validates it. Unknown keys are rejected.
func Decode(r io.Reader, format Format) (application.Plan, error) {
	var file fileSchema

	switch format {
	case FormatTOML:
		decoder := toml.NewDecoder(r)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&file); err != nil {
			return application.Plan{}, fmt.Errorf("decode plan file: %w", err)
		}
	case FormatYAML:
		decoder := yaml.NewDecoder(r)
		decoder.KnownFields(true)
		if err := decoder.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
			return application.Plan{}, fmt.Errorf("decode plan file: %w", err)
		}
	default:
		return application.Plan{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	if err := file.validateVersion(); err != nil {
		return application.Plan{}, err
	}
	file.applyDefaults()

	plan, err := fromSchema(file)
	if err != nil {
		return application.Plan{}, err
	}
	if err := plan.Validate(); err != nil {
		return application.Plan{}, fmt.Errorf("validate plan: %w", err)
	}

	return plan, nil
}

func fromSchema(file fileSchema) (application.Plan, error) {
	plan := application.Plan{
		Accounts: make([]string, 0, len(file.Accounts)),
		Tokens:   make([]domain.TokenMeta, 0, len(file.Tokens)),
		Steps:    make([]application.PlanStep, 0, len(file.Steps)),
	}

	for _, account := range file.Accounts {
		plan.Accounts = append(plan.Accounts, strings.TrimSpace(account.Alias))
	}

	for _, token := range file.Tokens {
		if token.Decimals < 0 || token.Decimals > domain.MaxTokenDecimals {
			return application.Plan{}, fmt.Errorf("token %s: %w: decimals %d out of range [0, %d]", token.Symbol, domain.ErrInvalidToken, token.Decimals, domain.MaxTokenDecimals)
		}
		plan.Tokens = append(plan.Tokens, domain.NewTokenMeta(strings.TrimSpace(token.Symbol), uint8(token.Decimals), token.Name))
	}

	for i, step := range file.Steps {
		op := application.PlanOp(strings.ToLower(strings.TrimSpace(step.Op)))
		if !op.Valid() {
			return application.Plan{}, fmt.Errorf("step %d: unsupported op %q", i, step.Op)
		}
		amount, err := domain.ParseAmount(step.Amount)
		if err != nil {
			return application.Plan{}, fmt.Errorf("step %d amount: %w", i, err)
		}
		plan.Steps = append(plan.Steps, application.PlanStep{
			Op:      op,
			Account: strings.TrimSpace(step.Account),
			From:    strings.TrimSpace(step.From),
			To:      strings.TrimSpace(step.To),
			Symbol:  strings.TrimSpace(step.Symbol),
			Amount:  amount,
		})
	}

	return plan, nil
}

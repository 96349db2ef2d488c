package status

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/bnema/neuroledger/internal/application"
	"github.com/bnema/neuroledger/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const shareBarWidth = 24

type RenderOptions struct {
	Now time.Time
}

func renderStatementView(statement application.Statement, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Ledger Statement"),
		s.header.Render(fmt.Sprintf("accounts: %d  tokens: %d", len(statement.Accounts), len(statement.Tokens))),
	}
	if !statement.GeneratedAt.IsZero() {
		lines = append(lines, s.meta.Render(formatGenerated(statement.GeneratedAt, opts.Now)))
	}

	if len(statement.Accounts) == 0 && len(statement.Tokens) == 0 {
		lines = append(lines, s.empty.Render("No ledger entries available."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	tokens := make(map[string]application.StatementToken, len(statement.Tokens))
	for _, token := range statement.Tokens {
		tokens[token.Symbol] = token
	}

	totals, err := statement.BalanceTotals()
	if err != nil {
		lines = append(lines, s.warning.Render(fmt.Sprintf("balances unreadable: %v", err)))
	}
	for _, token := range statement.Tokens {
		lines = append(lines, s.section.Render(tokenLine(token, totals, s)))
	}

	for _, account := range statement.Accounts {
		lines = append(lines, s.section.Render(renderAccount(account, tokens, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func tokenLine(token application.StatementToken, totals map[string]domain.Amount, s styles) string {
	line := lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.token.Render(token.Symbol),
		" ",
		s.meta.Render(fmt.Sprintf("(%s, %d decimals)", tokenName(token.Name), token.Decimals)),
		" ",
		s.detail.Render("supply "+token.Supply.Format(token.Decimals)),
	)

	if totals == nil {
		return line
	}
	if totals[token.Symbol].Cmp(token.Supply) != 0 {
		return line + " " + s.warning.Render("[supply mismatch]")
	}
	return line
}

func tokenName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "unnamed"
	}
	return name
}

func renderAccount(account application.StatementAccount, tokens map[string]application.StatementToken, s styles) string {
	parts := []string{s.account.Render(accountTitle(account.Alias, account.ID))}

	if len(account.Balances) == 0 {
		parts = append(parts, s.empty.Render("no balances"))
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	}

	for _, balance := range account.Balances {
		parts = append(parts, balanceLine(balance, tokens[balance.Symbol], s))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func accountTitle(alias string, id domain.AccountID) string {
	trimmed := strings.TrimSpace(alias)
	if trimmed == "" {
		return string(id)
	}
	return fmt.Sprintf("%s (%s)", trimmed, id)
}

func balanceLine(balance domain.TokenBalance, token application.StatementToken, s styles) string {
	share := balance.Amount.Percent(token.Supply)

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.key.Render(balance.Symbol+":"),
		" ",
		s.detail.Render(balance.Amount.Format(token.Decimals)),
		" ",
		renderShareBar(share, shareBarWidth, s),
		" ",
		s.meta.Render(fmt.Sprintf("%.2f%% of supply", share)),
	)
}

func renderShareBar(percent float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	filled := int(math.Round(float64(width) * clampPercent(percent) / 100.0))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func formatGenerated(generatedAt, now time.Time) string {
	stamp := generatedAt.UTC().Format(time.RFC3339)
	if now.IsZero() || now.Before(generatedAt) {
		return "generated " + stamp
	}

	age := now.Sub(generatedAt)
	switch {
	case age < time.Minute:
		return fmt.Sprintf("generated just now (%s)", stamp)
	case age < time.Hour:
		return fmt.Sprintf("generated %s ago (%s)", plural(int(age.Minutes()), "minute"), stamp)
	case age < 24*time.Hour:
		return fmt.Sprintf("generated %s ago (%s)", plural(int(age.Hours()), "hour"), stamp)
	default:
		return fmt.Sprintf("generated %s ago (%s)", plural(int(age.Hours()/24), "day"), stamp)
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func renderCommandView(result domain.CommandResult, state domain.BackendState, s styles) string {
	status := s.ok.Render("ok")
	if !result.OK {
		status = s.warning.Render("failed")
	}

	lines := []string{
		s.title.Render("Command " + result.CommandID.String()),
		lipgloss.JoinHorizontal(lipgloss.Top, status, " ", s.detail.Render(result.Message)),
		s.section.Render(s.title.Render("Backend")),
		stateLine("cache cleared", yesNo(state.CacheCleared), s),
		stateLine("context size", fmt.Sprintf("%d", state.ContextSize), s),
		stateLine("codex valid", yesNo(state.CodexValid), s),
	}

	if len(state.Sessions) == 0 {
		lines = append(lines, stateLine("sessions", s.empty.Render("none"), s))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	ids := make([]string, 0, len(state.Sessions))
	for id := range state.Sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	lines = append(lines, s.key.Render("sessions:"))
	for _, id := range ids {
		lines = append(lines, s.detail.Render(fmt.Sprintf("  %s: %s", id, state.Sessions[id])))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func stateLine(key, value string, s styles) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, s.key.Render(key+":"), " ", s.detail.Render(value))
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

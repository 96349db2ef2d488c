package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bnema/neuroledger/internal/adapters/transport/ws"
	"github.com/bnema/neuroledger/internal/application"
	"github.com/bnema/neuroledger/internal/domain"
	"github.com/spf13/cobra"
)

// commandFlags are shared by exec and send.
type commandFlags struct {
	role   string
	scope  string
	amount uint64
	id     string
	asJSON bool
}

func (f *commandFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.role, "role", "guest", "Issuer role (guest|operator|admin)")
	cmd.Flags().StringVar(&f.scope, "scope", "cluster", "Target scope (node:NAME|cluster|session:ID|codex)")
	cmd.Flags().Uint64Var(&f.amount, "amount", 0, "Expansion amount (context_expand only)")
	cmd.Flags().StringVar(&f.id, "id", "", "Command ID (default: random UUID)")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "Render JSON output")
}

func (f *commandFlags) build(cmd *cobra.Command, rawKind string) (domain.Command, error) {
	role, err := domain.ParseRole(f.role)
	if err != nil {
		return domain.Command{}, err
	}

	// The dispatcher validates the scope after checking the role.
	scope := domain.ScopeFromText(f.scope)

	id := domain.NewCommandID()
	if strings.TrimSpace(f.id) != "" {
		id, err = domain.ParseCommandID(f.id)
		if err != nil {
			return domain.Command{}, err
		}
	}

	name := domain.KindName(strings.ToLower(strings.TrimSpace(rawKind)))
	kind := domain.SimpleKind(name)
	switch {
	case name == domain.KindContextExpand:
		if !cmd.Flags().Changed("amount") {
			return domain.Command{}, fmt.Errorf("%s requires --amount", name)
		}
		kind = domain.ContextExpand(f.amount)
	case cmd.Flags().Changed("amount"):
		return domain.Command{}, fmt.Errorf("%s takes no --amount", name)
	}

	return domain.Command{ID: id, Role: role, Scope: scope, Kind: kind}, nil
}

func newCommandCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "command",
		Short: "Dispatch administrative commands",
	}

	cmd.AddCommand(
		newCommandExecCmd(app),
		newCommandSendCmd(app),
		newCommandKindsCmd(),
	)

	return cmd
}

func newCommandExecCmd(app *app) *cobra.Command {
	var flags commandFlags

	cmd := &cobra.Command{
		Use:       "exec KIND",
		Short:     "Dispatch a command against a fresh local backend",
		Args:      cobra.ExactArgs(1),
		ValidArgs: kindArgs(),
		RunE: func(cmd *cobra.Command, args []string) error {
			command, err := flags.build(cmd, args[0])
			if err != nil {
				return err
			}

			dispatcher := application.NewDispatcher()
			result, err := dispatcher.Handle(command)
			app.metrics.ObserveCommand(command.Kind.Name, domain.ErrorKind(err))
			if err != nil {
				return fmt.Errorf("dispatch %s: %w", command.Kind.Name, err)
			}

			state := dispatcher.State()
			if flags.asJSON {
				return writeJSON(cmd, execOutput{resultOutput: resultFromDomain(result), State: stateFromDomain(state)})
			}

			rendered, err := app.commandRenderer(result, state)
			if err != nil {
				return fmt.Errorf("render command result: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	flags.register(cmd)

	return cmd
}

// resultOutput is the --json shape shared by exec and send. It matches the
// reply frame the server writes.
type resultOutput struct {
	CommandID string `json:"command_id"`
	OK        bool   `json:"ok"`
	Message   string `json:"message"`
	Error     string `json:"error,omitempty"`
}

func resultFromDomain(result domain.CommandResult) resultOutput {
	return resultOutput{CommandID: result.CommandID.String(), OK: result.OK, Message: result.Message}
}

func resultFromReply(reply ws.Reply) resultOutput {
	return resultOutput{CommandID: reply.CommandID.String(), OK: reply.OK, Message: reply.Message, Error: reply.Error}
}

type stateOutput struct {
	CacheCleared bool              `json:"cache_cleared"`
	ContextSize  uint64            `json:"context_size"`
	Sessions     map[string]string `json:"sessions"`
	CodexValid   bool              `json:"codex_valid"`
}

func stateFromDomain(state domain.BackendState) stateOutput {
	sessions := make(map[string]string, len(state.Sessions))
	for id, status := range state.Sessions {
		sessions[id] = status.String()
	}
	return stateOutput{
		CacheCleared: state.CacheCleared,
		ContextSize:  state.ContextSize,
		Sessions:     sessions,
		CodexValid:   state.CodexValid,
	}
}

type execOutput struct {
	resultOutput
	State stateOutput `json:"state"`
}

func newCommandSendCmd(app *app) *cobra.Command {
	var flags commandFlags
	var addr string
	var useCBOR bool

	cmd := &cobra.Command{
		Use:       "send KIND",
		Short:     "Send a command to a running command server",
		Args:      cobra.ExactArgs(1),
		ValidArgs: kindArgs(),
		RunE: func(cmd *cobra.Command, args []string) error {
			command, err := flags.build(cmd, args[0])
			if err != nil {
				return err
			}

			target := addr
			if target == "" {
				target = app.cfg.Server.Listen
			}
			enc := ws.EncodingJSON
			if useCBOR {
				enc = ws.EncodingCBOR
			}

			send := func(ctx context.Context) (ws.Reply, error) {
				ctx, cancel := context.WithTimeout(ctx, app.sendTimeout)
				defer cancel()

				client, err := ws.Dial(ctx, target)
				if err != nil {
					return ws.Reply{}, err
				}
				defer client.Close()

				return client.Send(ctx, command, enc)
			}

			var reply ws.Reply
			if flags.asJSON {
				reply, err = send(cmd.Context())
			} else {
				reply, err = runSendSpinner(cmd.Context(), cmd.ErrOrStderr(), command, target, send)
			}
			if err != nil {
				return err
			}

			if flags.asJSON {
				if err := writeJSON(cmd, resultFromReply(reply)); err != nil {
					return err
				}
			} else if reply.OK {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Command %s ok: %s\n", reply.CommandID, reply.Message)
			}

			if !reply.OK {
				return fmt.Errorf("command %s failed (%s): %s", reply.CommandID, reply.Error, reply.Message)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", "", "Server address, host:port or ws:// URL (default: server.listen)")
	cmd.Flags().BoolVar(&useCBOR, "cbor", false, "Send a binary CBOR frame instead of JSON")

	return cmd
}

func newCommandKindsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List supported command kinds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, kind := range domain.KindNames() {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), kind)
			}
			return nil
		},
	}
}

func kindArgs() []string {
	names := domain.KindNames()
	args := make([]string, 0, len(names))
	for _, name := range names {
		args = append(args, string(name))
	}
	return args
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

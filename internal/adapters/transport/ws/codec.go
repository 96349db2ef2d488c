package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/neuroledger/internal/domain"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// Encoding selects the frame payload format. Text frames carry JSON and
// binary frames carry CBOR; replies use the encoding of the request.
type Encoding uint8

const (
	EncodingJSON Encoding = iota
	EncodingCBOR
)

func (e Encoding) String() string {
	if e == EncodingCBOR {
		return "cbor"
	}
	return "json"
}

var ErrMalformedCommand = errors.New("malformed command")

var (
	cborEnc cbor.EncMode
	cborDec cbor.DecMode
)

func init() {
	var err error

	cborEnc, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("ws: CBOR encoder initialization failed: " + err.Error())
	}

	cborDec, err = cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyEnforcedAPF,
	}.DecMode()
	if err != nil {
		panic("ws: CBOR decoder initialization failed: " + err.Error())
	}
}

type wireScope struct {
	Type string `json:"type" cbor:"type"`
	Name string `json:"name,omitempty" cbor:"name,omitempty"`
	ID   string `json:"id,omitempty" cbor:"id,omitempty"`
}

type wireKind struct {
	Type   string  `json:"type" cbor:"type"`
	Amount *uint64 `json:"amount,omitempty" cbor:"amount,omitempty"`
}

type wireCommand struct {
	ID    string    `json:"id,omitempty" cbor:"id,omitempty"`
	Role  string    `json:"role" cbor:"role"`
	Scope wireScope `json:"scope" cbor:"scope"`
	Kind  wireKind  `json:"kind" cbor:"kind"`
}

type wireReply struct {
	CommandID string `json:"command_id" cbor:"command_id"`
	OK        bool   `json:"ok" cbor:"ok"`
	Message   string `json:"message" cbor:"message"`
	Error     string `json:"error,omitempty" cbor:"error,omitempty"`
}

// Reply is a command result as seen on the wire. Error holds the
// domain.ErrorKind label when OK is false.
type Reply struct {
	CommandID domain.CommandID
	OK        bool
	Message   string
	Error     string
}

func ReplyFromResult(result domain.CommandResult) Reply {
	return Reply{CommandID: result.CommandID, OK: result.OK, Message: result.Message}
}

// ReplyFromError builds a failed reply. id is uuid.Nil when the command
// could not be decoded.
func ReplyFromError(id domain.CommandID, err error) Reply {
	return Reply{CommandID: id, OK: false, Message: err.Error(), Error: domain.ErrorKind(err)}
}

func marshal(v any, enc Encoding) ([]byte, error) {
	if enc == EncodingCBOR {
		return cborEnc.Marshal(v)
	}
	return json.Marshal(v)
}

func unmarshal(data []byte, v any, enc Encoding) error {
	if enc == EncodingCBOR {
		return cborDec.Unmarshal(data, v)
	}
	return json.Unmarshal(data, v)
}

func EncodeCommand(cmd domain.Command, enc Encoding) ([]byte, error) {
	data, err := marshal(toWireCommand(cmd), enc)
	if err != nil {
		return nil, fmt.Errorf("encode command: %w", err)
	}
	return data, nil
}

// DecodeCommand parses a command frame. A missing id is replaced by a
// fresh one. The returned id is valid whenever the id field parsed, even
// if the rest of the command did not.
func DecodeCommand(data []byte, enc Encoding) (domain.Command, error) {
	var wire wireCommand
	if err := unmarshal(data, &wire, enc); err != nil {
		return domain.Command{}, fmt.Errorf("%w: %v", ErrMalformedCommand, err)
	}

	id := domain.NewCommandID()
	if strings.TrimSpace(wire.ID) != "" {
		parsed, err := domain.ParseCommandID(wire.ID)
		if err != nil {
			return domain.Command{}, fmt.Errorf("%w: %v", ErrMalformedCommand, err)
		}
		id = parsed
	}

	cmd, err := fromWireCommand(wire)
	cmd.ID = id
	return cmd, err
}

func EncodeReply(reply Reply, enc Encoding) ([]byte, error) {
	wire := wireReply{
		CommandID: reply.CommandID.String(),
		OK:        reply.OK,
		Message:   reply.Message,
		Error:     reply.Error,
	}
	data, err := marshal(wire, enc)
	if err != nil {
		return nil, fmt.Errorf("encode reply: %w", err)
	}
	return data, nil
}

func DecodeReply(data []byte, enc Encoding) (Reply, error) {
	var wire wireReply
	if err := unmarshal(data, &wire, enc); err != nil {
		return Reply{}, fmt.Errorf("decode reply: %w", err)
	}
	id, err := uuid.Parse(wire.CommandID)
	if err != nil {
		return Reply{}, fmt.Errorf("decode reply command id: %w", err)
	}
	return Reply{CommandID: id, OK: wire.OK, Message: wire.Message, Error: wire.Error}, nil
}

func toWireCommand(cmd domain.Command) wireCommand {
	wire := wireCommand{
		ID:   cmd.ID.String(),
		Role: cmd.Role.String(),
		Scope: wireScope{
			Type: string(cmd.Scope.Kind),
			Name: cmd.Scope.Name,
			ID:   cmd.Scope.ID,
		},
		Kind: wireKind{Type: string(cmd.Kind.Name)},
	}
	if cmd.Kind.Name == domain.KindContextExpand {
		amount := cmd.Kind.Amount
		wire.Kind.Amount = &amount
	}
	return wire
}

func fromWireCommand(wire wireCommand) (domain.Command, error) {
	role, err := domain.ParseRole(wire.Role)
	if err != nil {
		return domain.Command{}, fmt.Errorf("%w: %v", ErrMalformedCommand, err)
	}

	kind, err := fromWireKind(wire.Kind)
	if err != nil {
		return domain.Command{}, err
	}

	return domain.Command{Role: role, Scope: fromWireScope(wire.Scope), Kind: kind}, nil
}

// fromWireScope keeps the scope as sent. The dispatcher validates it after
// the role check so an unprivileged issuer always sees permission_denied.
func fromWireScope(wire wireScope) domain.Scope {
	return domain.Scope{
		Kind: domain.ScopeKind(strings.ToLower(strings.TrimSpace(wire.Type))),
		Name: wire.Name,
		ID:   wire.ID,
	}
}

// fromWireKind leaves unknown kind names to the dispatcher so they fail
// with the same error as any other unsupported command.
func fromWireKind(wire wireKind) (domain.CommandKind, error) {
	name := domain.KindName(strings.ToLower(strings.TrimSpace(wire.Type)))
	if name == "" {
		return domain.CommandKind{}, fmt.Errorf("%w: kind type is required", ErrMalformedCommand)
	}

	if name == domain.KindContextExpand {
		if wire.Amount == nil {
			return domain.CommandKind{}, fmt.Errorf("%w: context_expand requires an amount", ErrMalformedCommand)
		}
		return domain.ContextExpand(*wire.Amount), nil
	}
	if wire.Amount != nil {
		return domain.CommandKind{}, fmt.Errorf("%w: %s takes no amount", ErrMalformedCommand, name)
	}
	return domain.SimpleKind(name), nil
}

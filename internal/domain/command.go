package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type CommandID = uuid.UUID

func NewCommandID() CommandID {
	return uuid.New()
}

func ParseCommandID(raw string) (CommandID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse command id %q: %w", raw, err)
	}
	return id, nil
}

type KindName string

const (
	KindNeuralCachePurge KindName = "neural_cache_purge"
	KindContextExpand    KindName = "context_expand"
	KindSessionArchive   KindName = "session_archive"
	KindSessionSnapshot  KindName = "session_snapshot"
	KindSessionRecover   KindName = "session_recover"
	KindCodexValidate    KindName = "codex_validate"
	KindCodexCompress    KindName = "codex_compress"
	KindNodeRebalance    KindName = "node_rebalance"
	KindQueryTrace       KindName = "query_trace"
	KindQueryOptimize    KindName = "query_optimize"
)

// KindNames lists every command kind in declaration order.
func KindNames() []KindName {
	return []KindName{
		KindNeuralCachePurge,
		KindContextExpand,
		KindSessionArchive,
		KindSessionSnapshot,
		KindSessionRecover,
		KindCodexValidate,
		KindCodexCompress,
		KindNodeRebalance,
		KindQueryTrace,
		KindQueryOptimize,
	}
}

// Known reports whether k is one of KindNames.
func (k KindName) Known() bool {
	for _, name := range KindNames() {
		if k == name {
			return true
		}
	}
	return false
}

// CommandKind selects the operation. Amount is meaningful only for KindContextExpand.
type CommandKind struct {
	Name   KindName
	Amount uint64
}

func SimpleKind(name KindName) CommandKind {
	return CommandKind{Name: name}
}

func ContextExpand(amount uint64) CommandKind {
	return CommandKind{Name: KindContextExpand, Amount: amount}
}

type Command struct {
	ID    CommandID
	Role  Role
	Scope Scope
	Kind  CommandKind
}

type CommandResult struct {
	CommandID CommandID
	OK        bool
	Message   string
}

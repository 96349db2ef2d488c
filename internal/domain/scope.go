package domain

import "strings"

type ScopeKind string

const (
	ScopeNode    ScopeKind = "node"
	ScopeCluster ScopeKind = "cluster"
	ScopeSession ScopeKind = "session"
	ScopeCodex   ScopeKind = "codex"
)

func (k ScopeKind) Valid() bool {
	switch k {
	case ScopeNode, ScopeCluster, ScopeSession, ScopeCodex:
		return true
	default:
		return false
	}
}

// Scope is the target of a command. Name is set only for node scopes and
// ID only for session scopes.
type Scope struct {
	Kind ScopeKind
	Name string
	ID   string
}

func NodeScope(name string) Scope {
	return Scope{Kind: ScopeNode, Name: name}
}

func ClusterScope() Scope {
	return Scope{Kind: ScopeCluster}
}

func SessionScope(id string) Scope {
	return Scope{Kind: ScopeSession, ID: id}
}

func CodexScope() Scope {
	return Scope{Kind: ScopeCodex}
}

// Valid reports whether s is a known scope carrying exactly the field its
// kind requires.
func (s Scope) Valid() bool {
	switch s.Kind {
	case ScopeNode:
		return s.Name != "" && s.ID == ""
	case ScopeSession:
		return s.ID != "" && s.Name == ""
	case ScopeCluster, ScopeCodex:
		return s.Name == "" && s.ID == ""
	default:
		return false
	}
}

// SessionID returns the session id when s is a session scope.
func (s Scope) SessionID() (string, bool) {
	if s.Kind != ScopeSession {
		return "", false
	}
	return s.ID, true
}

func (s Scope) String() string {
	switch s.Kind {
	case ScopeNode:
		return "node:" + s.Name
	case ScopeSession:
		return "session:" + s.ID
	default:
		return string(s.Kind)
	}
}

// ScopeFromText reads the short form without validating it. The value after
// the colon becomes the session id for session scopes and the name otherwise,
// so malformed input yields a scope that Valid rejects.
func ScopeFromText(raw string) Scope {
	kind, value, _ := strings.Cut(strings.TrimSpace(raw), ":")
	scope := Scope{Kind: ScopeKind(strings.ToLower(kind))}
	if scope.Kind == ScopeSession {
		scope.ID = strings.TrimSpace(value)
	} else {
		scope.Name = strings.TrimSpace(value)
	}
	return scope
}

package domain

import "fmt"

const DefaultContextSize uint64 = 1024

type SessionStatus uint8

const (
	SessionArchived SessionStatus = iota + 1
	SessionSnapshot
)

func (s SessionStatus) String() string {
	switch s {
	case SessionArchived:
		return "archived"
	case SessionSnapshot:
		return "snapshot"
	default:
		return fmt.Sprintf("session_status(%d)", uint8(s))
	}
}

func (s SessionStatus) MarshalText() ([]byte, error) {
	switch s {
	case SessionArchived, SessionSnapshot:
		return []byte(s.String()), nil
	default:
		return nil, fmt.Errorf("unsupported session status %d", uint8(s))
	}
}

func (s *SessionStatus) UnmarshalText(text []byte) error {
	switch string(text) {
	case "archived":
		*s = SessionArchived
	case "snapshot":
		*s = SessionSnapshot
	default:
		return fmt.Errorf("unsupported session status %q", text)
	}
	return nil
}

// BackendState is the flat record mutated by administrative commands.
type BackendState struct {
	CacheCleared bool
	ContextSize  uint64
	Sessions     map[string]SessionStatus
	CodexValid   bool
}

func NewBackendState() BackendState {
	return BackendState{
		ContextSize: DefaultContextSize,
		Sessions:    map[string]SessionStatus{},
		CodexValid:  true,
	}
}

func (s BackendState) Clone() BackendState {
	sessions := make(map[string]SessionStatus, len(s.Sessions))
	for id, status := range s.Sessions {
		sessions[id] = status
	}
	s.Sessions = sessions
	return s
}

package domain

import "time"

// Session is the state of one viewer: which graph node and port it shows
// and the data it last extracted. It mirrors what a UI table model holds
// between refreshes.
type Session struct {
	ID        string            `json:"id"`
	Node      string            `json:"node"`
	Port      string            `json:"port,omitempty"`
	Result    *ExtractionResult `json:"result,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`

	// Sealed holds the encrypted session when a store encrypts at rest.
	// Node, Port and Result are empty while it is set.
	Sealed []byte `json:"sealed,omitempty"`
}

// NewSession creates a viewer session bound to a graph node.
func NewSession(id, node string) *Session {
	return &Session{
		ID:        id,
		Node:      node,
		UpdatedAt: time.Now().UTC(),
	}
}

// Snapshot returns a copy that shares no slices with s.
func (s *Session) Snapshot() *Session {
	cp := *s
	if s.Result != nil {
		r := *s.Result
		r.Data = make([][]Value, len(s.Result.Data))
		for i, col := range s.Result.Data {
			r.Data[i] = append([]Value(nil), col...)
		}
		cp.Result = &r
	}
	return &cp
}

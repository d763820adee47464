package api

import (
	"time"

	automaton "github.com/geange/automaton-editor"
)

// NameRequest names a state or symbol.
type NameRequest struct {
	Name string `json:"name"`
}

// TransitionRequest names a transition. Use "ε" as symbol for an epsilon move.
type TransitionRequest struct {
	From   string `json:"from"`
	Symbol string `json:"symbol"`
	To     string `json:"to"`
}

// ModeRequest is the body of PUT /v1/mode.
type ModeRequest struct {
	Mode string `json:"mode"`
}

// SimulateRequest is the body of the simulate endpoints.
type SimulateRequest struct {
	Input string `json:"input"`
}

// MutationResponse acknowledges a change to the NFA.
type MutationResponse struct {
	Message  string `json:"message"`
	Revision uint64 `json:"revision"`
}

// DefinitionResponse is the payload of GET /v1/definition.
type DefinitionResponse struct {
	Mode       string `json:"mode"`
	Definition string `json:"definition"`
}

// ModeResponse reports the active mode.
type ModeResponse struct {
	Mode string `json:"mode"`
}

// DFAResponse reports the cached DFA.
type DFAResponse struct {
	Available bool                         `json:"available"`
	Revision  uint64                       `json:"revision,omitempty"`
	Order     []string                     `json:"order,omitempty"`
	Labeling  map[string][]automaton.State `json:"labeling,omitempty"`
}

// DiagramResponse carries a diagram in one of the supported formats.
type DiagramResponse struct {
	Format string `json:"format"`
	// DOT source, for format=dot.
	DOT string `json:"dot,omitempty"`
	// Base64 image, for format=image.
	Image string `json:"image,omitempty"`
}

// APIError is a standard error payload.
type APIError struct {
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"` // RFC3339
}

// TimeNow abstracts time for tests; overridden in tests.
var TimeNow = func() time.Time { return time.Now() }

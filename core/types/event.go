package types

// Event represents a typed event emitted during marketplace state
// transitions. Attributes carry the canonical payload fields keyed by name.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}

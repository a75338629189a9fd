package types

// Event is the flattened wire form of the wrapper event stream: every typed
// event in core/events renders itself into one of these for indexers and
// other subscribers that consume events generically.
type Event struct {
	// Type is the event type label, e.g. "wrapper.minted".
	Type string `json:"type"`
	// Attributes carries the event payload as decimal/hex-formatted strings.
	Attributes map[string]string `json:"attributes"`
}

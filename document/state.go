package document

// State is the lifecycle state of a document load.
type State int

const (
	// Idle is the state before Load is called.
	Idle State = iota
	// FetchingAndInitializing means the bytes are being fetched while the
	// engine initialises. Both must finish before opening.
	FetchingAndInitializing
	// Opening means the engine is parsing the document.
	Opening
	// RenderingPages means pages are being rendered in document order.
	RenderingPages
	// Ready means every page has a result or a per-page error.
	Ready
	// Error means fetching or opening failed and no pages exist.
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case FetchingAndInitializing:
		return "fetching"
	case Opening:
		return "opening"
	case RenderingPages:
		return "rendering"
	case Ready:
		return "ready"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

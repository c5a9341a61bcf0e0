package decompress

// Status is what a single Step reports back to the decode loop.
type Status uint8

const (
	// NeedsMoreInput means the engine consumed all input it was given and
	// the stream isn't finished.
	NeedsMoreInput Status = iota
	// NeedsMoreOutput means the output window is full.
	NeedsMoreOutput
	// Success means the stream ended cleanly.
	Success
	// Error means the stream is corrupt. Engine.Err has the cause.
	Error
)

func (s Status) String() string {
	switch s {
	case NeedsMoreInput:
		return "needs more input"
	case NeedsMoreOutput:
		return "needs more output"
	case Success:
		return "success"
	case Error:
		return "error"
	}
	return "unknown status"
}

// Terminal reports whether no further steps can change s.
func (s Status) Terminal() bool {
	return s == Success || s == Error
}

package diag

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// Label is the lower-case form used in single-line and JSON output.
func (s Severity) Label() string {
	switch s {
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	default:
		return "info"
	}
}

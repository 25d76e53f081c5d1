package pagevet

// Category is a classification bucket events are filed into. The set is
// closed; a single event may belong to several categories at once.
type Category int8

const (
	ConsoleError Category = iota + 1
	ConsoleWarning
	CspViolation
	AccessibilityIssue
	RouterWarning
	NetworkFailure
)

// Categories in report display order.
var Categories = []Category{
	ConsoleError,
	ConsoleWarning,
	CspViolation,
	AccessibilityIssue,
	RouterWarning,
	NetworkFailure,
}

func (c Category) String() string {
	switch c {
	case ConsoleError:
		return "console_error"
	case ConsoleWarning:
		return "console_warning"
	case CspViolation:
		return "csp_violation"
	case AccessibilityIssue:
		return "accessibility_issue"
	case RouterWarning:
		return "router_warning"
	case NetworkFailure:
		return "network_failure"
	}
	return "unknown"
}

// MarshalText lets category-keyed maps serialize with readable keys.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Failing reports whether any event in this category forces a Fail verdict.
// AccessibilityIssue only downgrades Pass to PassWithWarnings and
// ConsoleWarning on its own does not alter the verdict.
func (c Category) Failing() bool {
	switch c {
	case ConsoleError, CspViolation, RouterWarning, NetworkFailure:
		return true
	}
	return false
}

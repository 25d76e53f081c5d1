package pagevet

// VerdictStatus is the single derived pass/warn/fail state for a session.
type VerdictStatus int8

const (
	Pass VerdictStatus = iota + 1
	PassWithWarnings
	Fail
)

func (v VerdictStatus) String() string {
	switch v {
	case Pass:
		return "pass"
	case PassWithWarnings:
		return "pass_with_warnings"
	case Fail:
		return "fail"
	}
	return "unknown"
}

// Verdict is computed once, after the driver completes, from the final
// ledger snapshot and step outcomes.
type Verdict struct {
	Status           VerdictStatus    `json:"status"`
	CountsByCategory map[Category]int `json:"counts_by_category"`
	FailingStepCount int              `json:"failing_step_count"`
}

// Exitable reports whether the process should exit zero for this verdict.
func (v *Verdict) Exitable() bool {
	return v.Status != Fail
}

package pagevet

import "time"

// StepStatus is the outcome state of a single navigation step.
type StepStatus int8

const (
	StepSuccess StepStatus = iota + 1
	StepFailure
)

func (s StepStatus) String() string {
	if s == StepSuccess {
		return "success"
	}
	return "failure"
}

// StepOutcome records the result of one step in the fixed session walk.
// Appended by the session driver as steps complete, immutable afterward.
type StepOutcome struct {
	Name      string     `json:"name"`
	Target    string     `json:"target"`
	ResultURL string     `json:"result_url,omitempty"`
	Status    StepStatus `json:"status"`
	Error     string     `json:"error,omitempty"`
	Artifact  string     `json:"artifact,omitempty"`
	Started   time.Time  `json:"started"`
}

// Failed is a convenience for verdict computation.
func (o *StepOutcome) Failed() bool {
	return o.Status == StepFailure
}

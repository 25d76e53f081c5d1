package verifier

import "gitlab.com/pagevet/pagevet"

// Decide folds the final ledger snapshot and step outcomes into a single
// verdict. Pure and total. Precedence: any step failure or any event in a
// failing category forces Fail regardless of accessibility counts; otherwise
// accessibility findings alone downgrade Pass to PassWithWarnings.
func Decide(snap *Snapshot, outcomes []pagevet.StepOutcome) *pagevet.Verdict {
	counts := snap.Counts()

	failingSteps := 0
	for i := range outcomes {
		if outcomes[i].Failed() {
			failingSteps++
		}
	}

	status := pagevet.Pass
	for _, cat := range pagevet.Categories {
		if cat.Failing() && counts[cat] > 0 {
			status = pagevet.Fail
		}
	}
	if failingSteps > 0 {
		status = pagevet.Fail
	}
	if status == pagevet.Pass && counts[pagevet.AccessibilityIssue] > 0 {
		status = pagevet.PassWithWarnings
	}

	return &pagevet.Verdict{
		Status:           status,
		CountsByCategory: counts,
		FailingStepCount: failingSteps,
	}
}

package grading

// Verdict is a coarse bucket over the percentage score.
type Verdict string

const (
	VerdictOutstanding     Verdict = "OUTSTANDING"
	VerdictPassWithWarning Verdict = "PASS_WITH_WARNING"
	VerdictFail            Verdict = "FAIL"
)

const (
	outstandingMin = 90.0
	passMin        = 50.0
)

// VerdictFor evaluates the tiers top-down; lower bounds are inclusive.
func VerdictFor(pct float64) Verdict {
	switch {
	case pct >= outstandingMin:
		return VerdictOutstanding
	case pct >= passMin:
		return VerdictPassWithWarning
	default:
		return VerdictFail
	}
}

// Message is the banner shown with the final score.
func (v Verdict) Message() string {
	switch v {
	case VerdictOutstanding:
		return "OUTSTANDING! You are definitely a top student."
	case VerdictPassWithWarning:
		return "You passed, but study the 'Specific Tables' more."
	case VerdictFail:
		return "FAILED. These questions are very hard. Review the notes."
	}
	return ""
}

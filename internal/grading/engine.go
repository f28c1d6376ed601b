package grading

import (
	"errors"

	"github.com/mind-engage/pharmexam/internal/questionset"
)

// ErrEmptyQuestionSet is returned instead of dividing by a zero total.
var ErrEmptyQuestionSet = errors.New("question set has no questions")

// Responses maps question index to the selected label. A missing key or an
// empty label means nothing was selected.
type Responses map[int]questionset.Label

// Clone returns an independent copy.
func (r Responses) Clone() Responses {
	out := make(Responses, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Outcome is the result for one question.
type Outcome struct {
	Index       int               `json:"index"`
	Question    string            `json:"question"`
	Selected    questionset.Label `json:"selected,omitempty"` // empty: no selection
	Correct     questionset.Label `json:"correct"`
	IsCorrect   bool              `json:"is_correct"`
	Explanation string            `json:"explanation,omitempty"`
}

// Answered reports whether a label was selected.
func (o Outcome) Answered() bool { return o.Selected != "" }

// Report is the full result of grading one submission.
type Report struct {
	Outcomes     []Outcome `json:"outcomes"`
	CorrectCount int       `json:"correct_count"`
	TotalCount   int       `json:"total_count"`
	Percentage   float64   `json:"percentage"`
	Verdict      Verdict   `json:"verdict"`
}

// Grade compares each selection with the record's correct label. Labels are
// compared exactly; anything unanswered, unknown or out of range counts as
// incorrect. Responses for indices outside the set are ignored.
func Grade(set questionset.Set, responses Responses) (Report, error) {
	n := set.Len()
	if n == 0 {
		return Report{}, ErrEmptyQuestionSet
	}
	rep := Report{Outcomes: make([]Outcome, 0, n), TotalCount: n}
	for i := 0; i < n; i++ {
		rec := set.At(i)
		sel := responses[i]
		o := Outcome{
			Index:       i,
			Question:    rec.Question,
			Selected:    sel,
			Correct:     rec.Correct,
			IsCorrect:   sel != "" && sel == rec.Correct,
			Explanation: rec.Explanation,
		}
		if o.IsCorrect {
			rep.CorrectCount++
		}
		rep.Outcomes = append(rep.Outcomes, o)
	}
	rep.Percentage = 100 * float64(rep.CorrectCount) / float64(rep.TotalCount)
	rep.Verdict = VerdictFor(rep.Percentage)
	return rep, nil
}

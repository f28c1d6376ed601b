package web

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/mind-engage/pharmexam/internal/grading"
	"github.com/mind-engage/pharmexam/internal/questionset"
)

// ChoiceText renders an option the way radio values and API clients see it: "B: Statin".
func ChoiceText(o questionset.Option) string {
	return fmt.Sprintf("%s: %s", o.Label, o.Text)
}

// ParseChoice recovers the label from "B: Statin" or a bare "B". Anything
// else yields "" (no selection).
func ParseChoice(v string) questionset.Label {
	head, _, _ := strings.Cut(v, ":")
	l := questionset.Label(strings.TrimSpace(head))
	if !l.Valid() {
		return ""
	}
	return l
}

// FieldName is the form field holding the choice for question i.
func FieldName(i int) string { return "q_" + strconv.Itoa(i) }

// ResponsesFromForm snapshots the submitted form into a response map for a
// set of n questions. Missing or unparseable fields count as no selection.
func ResponsesFromForm(form url.Values, n int) grading.Responses {
	out := grading.Responses{}
	for i := 0; i < n; i++ {
		if l := ParseChoice(form.Get(FieldName(i))); l != "" {
			out[i] = l
		}
	}
	return out
}

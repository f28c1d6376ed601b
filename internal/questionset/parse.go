package questionset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	colQuestion    = "Question"
	colCorrect     = "Correct Answer"
	colExplanation = "Explanation"
	optionPrefix   = "Option "
)

// RequiredColumns lists the header names every question file must carry.
var RequiredColumns = []string{
	colQuestion,
	optionPrefix + "A", optionPrefix + "B", optionPrefix + "C", optionPrefix + "D", optionPrefix + "E",
	colCorrect,
	colExplanation,
}

// Parse reads a CSV question table. The first row is the header; extra columns are ignored.
func Parse(source string, r io.Reader) (Set, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	hdr, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return Set{}, loadErr(source, "file is empty", nil)
	}
	if err != nil {
		return Set{}, loadErr(source, "unreadable header", err)
	}
	idx := map[string]int{}
	for i, h := range hdr {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		idx[h] = i
	}
	for _, k := range RequiredColumns {
		if _, ok := idx[k]; !ok {
			return Set{}, loadErr(source, "missing column: "+k, nil)
		}
	}

	var records []Record
	for row := 1; ; row++ {
		line, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Set{}, loadErr(source, "malformed csv", err)
		}
		rec, err := parseRow(idx, line)
		if err != nil {
			return Set{}, loadErr(source, fmt.Sprintf("row %d", row), err)
		}
		records = append(records, rec)
	}
	return NewSet(source, records), nil
}

func parseRow(idx map[string]int, line []string) (Record, error) {
	get := func(col string) string { return strings.TrimSpace(line[idx[col]]) }

	rec := Record{
		Question:    get(colQuestion),
		Explanation: get(colExplanation),
	}
	if rec.Question == "" {
		return Record{}, errors.New("empty question")
	}
	for i, l := range Labels {
		rec.Options[i] = Option{Label: l, Text: get(optionPrefix + string(l))}
	}
	correct, err := ParseCorrectAnswer(line[idx[colCorrect]])
	if err != nil {
		return Record{}, err
	}
	rec.Correct = correct
	return rec, nil
}

// ParseCorrectAnswer accepts "Option B" or a bare "B", surrounding whitespace ignored.
func ParseCorrectAnswer(v string) (Label, error) {
	s := strings.TrimSpace(v)
	s = strings.TrimSpace(strings.TrimPrefix(s, optionPrefix))
	l := Label(s)
	if !l.Valid() {
		return "", fmt.Errorf("correct answer %q does not name an option A-E", strings.TrimSpace(v))
	}
	return l, nil
}

package questionset

// Label identifies an option by position.
type Label string

const (
	LabelA Label = "A"
	LabelB Label = "B"
	LabelC Label = "C"
	LabelD Label = "D"
	LabelE Label = "E"
)

// Labels is the fixed display order of options.
var Labels = [5]Label{LabelA, LabelB, LabelC, LabelD, LabelE}

// Valid reports whether l is one of A..E.
func (l Label) Valid() bool {
	for _, v := range Labels {
		if l == v {
			return true
		}
	}
	return false
}

type Option struct {
	Label Label  `json:"label"`
	Text  string `json:"text"`
}

// Record is one row of a question table.
type Record struct {
	Question    string    `json:"question"`
	Options     [5]Option `json:"options"`
	Correct     Label     `json:"correct"`
	Explanation string    `json:"explanation,omitempty"`
}

// Set is an ordered, read-only sequence of records loaded from one source.
type Set struct {
	source  string
	records []Record
}

// NewSet copies records into a new Set.
func NewSet(source string, records []Record) Set {
	cp := make([]Record, len(records))
	copy(cp, records)
	return Set{source: source, records: cp}
}

func (s Set) Source() string { return s.source }
func (s Set) Len() int       { return len(s.records) }
func (s Set) Empty() bool    { return len(s.records) == 0 }

// At returns the record at index i. It panics when i is out of range.
func (s Set) At(i int) Record { return s.records[i] }

// Records returns a copy of the records in display order.
func (s Set) Records() []Record {
	cp := make([]Record, len(s.records))
	copy(cp, s.records)
	return cp
}

// PublicQuestion is a record without its answer key, safe to hand to a test taker.
type PublicQuestion struct {
	Index    int      `json:"index"`
	Question string   `json:"question"`
	Options  []Option `json:"options"`
}

// Public strips answer keys and explanations.
func (s Set) Public() []PublicQuestion {
	out := make([]PublicQuestion, 0, len(s.records))
	for i, r := range s.records {
		out = append(out, PublicQuestion{Index: i, Question: r.Question, Options: r.Options[:]})
	}
	return out
}

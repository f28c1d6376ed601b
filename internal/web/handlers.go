package web

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/mind-engage/pharmexam/internal/exam"
	"github.com/mind-engage/pharmexam/internal/grading"
	"github.com/mind-engage/pharmexam/internal/logger"
	"github.com/mind-engage/pharmexam/internal/questionset"
	"github.com/mind-engage/pharmexam/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	pageTitle    = "Top Student Pharmacology Test"
	pageSubtitle = "Based on Farmakologia SPECIFIC tables.pdf and Pgarma general tables.pdf"
)

var funcs = template.FuncMap{
	"inc":    func(i int) int { return i + 1 },
	"field":  FieldName,
	"choice": ChoiceText,
	"pct":    func(p float64) string { return fmt.Sprintf("%.1f%%", p) },
	"optionName": func(l questionset.Label) string {
		if l == "" {
			return "Nothing"
		}
		return "Option " + string(l)
	},
}

// Handler serves the single-page exam: pick a set, answer, submit once.
type Handler struct {
	svc    *exam.Service
	cat    *questionset.Catalog
	signer *session.Signer
	log    *logger.Logger
	tmpl   *template.Template
	secure bool
}

func New(svc *exam.Service, cat *questionset.Catalog, signer *session.Signer, log *logger.Logger, secureCookies bool) (*Handler, error) {
	t, err := template.New("pages").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{svc: svc, cat: cat, signer: signer, log: log.With("component", "WebUI"), tmpl: t, secure: secureCookies}, nil
}

type page struct {
	Title    string
	Subtitle string
	Sources  []questionset.Source
	Selected string
	Message  string

	Questions []questionset.PublicQuestion
	Token     string
	Report    grading.Report
}

// Hidden quiz form fields binding the answer sheet to its attempt.
const (
	attemptField = "attempt"
	sourceField  = "source"
)

// Index renders the source picker and the quiz form for the selected source.
// Any load failure replaces the quiz with a single blocking message.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	p := page{Title: pageTitle, Subtitle: pageSubtitle}
	srcs, err := h.cat.Available()
	if err != nil {
		p.Message = "No question files found! Please add 'q1.csv' and 'q2.csv' to the questions directory."
		h.render(w, http.StatusServiceUnavailable, "error", p)
		return
	}
	p.Sources = srcs
	p.Selected = srcs[0].ID
	if want := r.URL.Query().Get("source"); want != "" {
		p.Selected = want
		if !containsSource(srcs, want) {
			p.Message = fmt.Sprintf("Question set %q is not available.", want)
			h.render(w, http.StatusNotFound, "error", p)
			return
		}
	}

	a, set, err := h.resumeOrStart(r, p.Selected)
	if err != nil {
		h.log.Warn("cannot start exam", "source", p.Selected, "error", err)
		p.Message = startErrorMessage(err)
		h.render(w, http.StatusUnprocessableEntity, "error", p)
		return
	}
	tok, err := h.signer.Issue(a.ID)
	if err != nil {
		http.Error(w, "issue token", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    tok,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	p.Token = tok
	p.Questions = set.Public()
	h.render(w, http.StatusOK, "quiz", p)
}

// Submit grades the whole form in one step. Re-posting a submitted attempt
// shows the same report again.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	p := page{Title: pageTitle}
	if srcs, err := h.cat.Available(); err == nil {
		p.Sources = srcs
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	tok := r.PostForm.Get(attemptField)
	if tok == "" {
		if c, err := r.Cookie(session.CookieName); err == nil {
			tok = c.Value
		}
	}
	if tok == "" {
		p.Message = "Your exam session was not found. Please start a new exam."
		h.render(w, http.StatusBadRequest, "error", p)
		return
	}
	id, err := h.signer.Verify(tok)
	if err != nil {
		p.Message = "Your exam session has expired. Please start a new exam."
		h.render(w, http.StatusUnauthorized, "error", p)
		return
	}

	a, err := h.svc.Get(r.Context(), id)
	if err != nil {
		p.Message = "Your exam session was not found. Please start a new exam."
		h.render(w, http.StatusNotFound, "error", p)
		return
	}
	p.Selected = a.Source
	if src := r.PostForm.Get(sourceField); src != "" && src != a.Source {
		h.log.Warn("answer sheet does not match attempt", "attempt_id", id, "form_source", src, "attempt_source", a.Source)
		p.Message = fmt.Sprintf("These answers were given for %q but the exam session is on %q. Please reload the exam.", src, a.Source)
		h.render(w, http.StatusConflict, "error", p)
		return
	}
	set, err := h.svc.QuestionSet(r.Context(), a.Source)
	if err != nil {
		p.Message = startErrorMessage(err)
		h.render(w, http.StatusUnprocessableEntity, "error", p)
		return
	}
	if !a.Submitted() {
		if _, err := h.svc.Answer(r.Context(), id, ResponsesFromForm(r.PostForm, set.Len())); err != nil && !errors.Is(err, exam.ErrAttemptSubmitted) {
			h.log.Error("save responses failed", "attempt_id", id, "error", err)
			http.Error(w, "save responses", http.StatusInternalServerError)
			return
		}
	}
	rep, err := h.svc.Submit(r.Context(), id)
	if err != nil {
		h.log.Error("submit failed", "attempt_id", id, "error", err)
		p.Message = startErrorMessage(err)
		h.render(w, http.StatusUnprocessableEntity, "error", p)
		return
	}
	p.Report = rep
	h.render(w, http.StatusOK, "result", p)
}

// resumeOrStart keeps a page reload on the attempt already in progress for
// source and opens a new one otherwise.
func (h *Handler) resumeOrStart(r *http.Request, source string) (exam.Attempt, questionset.Set, error) {
	if c, err := r.Cookie(session.CookieName); err == nil {
		if id, err := h.signer.Verify(c.Value); err == nil {
			if a, set, err := h.svc.Resume(r.Context(), id, source); err == nil {
				return a, set, nil
			}
		}
	}
	return h.svc.Start(r.Context(), source)
}

func (h *Handler) render(w http.ResponseWriter, status int, name string, p page) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, name, p); err != nil {
		h.log.Error("render failed", "template", name, "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func startErrorMessage(err error) string {
	var le *questionset.LoadError
	switch {
	case errors.Is(err, grading.ErrEmptyQuestionSet):
		return "This question set has no questions."
	case errors.As(err, &le):
		return "Error loading file: " + le.Error()
	default:
		return "Something went wrong: " + err.Error()
	}
}

func containsSource(srcs []questionset.Source, id string) bool {
	for _, s := range srcs {
		if s.ID == id {
			return true
		}
	}
	return false
}

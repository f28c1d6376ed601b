package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/pharmexam/internal/exam"
	"github.com/mind-engage/pharmexam/internal/grading"
	"github.com/mind-engage/pharmexam/internal/questionset"
	"github.com/mind-engage/pharmexam/internal/session"
	"github.com/mind-engage/pharmexam/internal/web"
)

// Routes mounts the JSON API. Attempt routes need the token handed out by POST /attempts.
func Routes(svc *exam.Service, cat *questionset.Catalog, signer *session.Signer) chi.Router {
	r := chi.NewRouter()
	r.Get("/sources", ListSourcesHandler(cat))
	r.Get("/sources/{sourceID}/questions", GetQuestionsHandler(svc))
	r.Post("/attempts", CreateAttemptHandler(svc, signer))

	r.Group(func(pr chi.Router) {
		pr.Use(session.RequireAttempt(signer, func(r *http.Request) string {
			return chi.URLParam(r, "attemptID")
		}))
		// handlers below read the verified id from the context
		pr.Get("/attempts/{attemptID}", GetAttemptHandler(svc))
		pr.Post("/attempts/{attemptID}/responses", SaveResponsesHandler(svc))
		pr.Post("/attempts/{attemptID}/submit", SubmitAttemptHandler(svc))
	})
	return r
}

func ListSourcesHandler(cat *questionset.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		srcs, err := cat.Available()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, srcs)
	}
}

func GetQuestionsHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		set, err := svc.QuestionSet(r.Context(), chi.URLParam(r, "sourceID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, set.Public())
	}
}

type createAttemptResp struct {
	Attempt   exam.Attempt                 `json:"attempt"`
	Token     string                       `json:"token"`
	Questions []questionset.PublicQuestion `json:"questions"`
}

func CreateAttemptHandler(svc *exam.Service, signer *session.Signer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Source string `json:"source"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Source) == "" {
			http.Error(w, "source required", http.StatusBadRequest)
			return
		}
		a, set, err := svc.Start(r.Context(), req.Source)
		if err != nil {
			writeError(w, err)
			return
		}
		tok, err := signer.Issue(a.ID)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, createAttemptResp{Attempt: a, Token: tok, Questions: set.Public()})
	}
}

func GetAttemptHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := svc.Get(r.Context(), session.AttemptFromContext(r.Context()))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

// SaveResponsesHandler accepts {"0": "B", "1": "C: Statin", "2": ""}.
func SaveResponsesHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		resp := grading.Responses{}
		for k, v := range body {
			i, err := strconv.Atoi(strings.TrimSpace(k))
			if err != nil {
				http.Error(w, "question index must be an integer: "+k, http.StatusBadRequest)
				return
			}
			l := web.ParseChoice(v)
			if l == "" && strings.TrimSpace(v) != "" {
				http.Error(w, "unrecognised choice for question "+k, http.StatusBadRequest)
				return
			}
			resp[i] = l
		}
		a, err := svc.Answer(r.Context(), session.AttemptFromContext(r.Context()), resp)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

func SubmitAttemptHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, err := svc.Submit(r.Context(), session.AttemptFromContext(r.Context()))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rep)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	var le *questionset.LoadError
	switch {
	case errors.Is(err, questionset.ErrUnknownSource):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &le), errors.Is(err, grading.ErrEmptyQuestionSet):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, questionset.ErrNoSources):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	case errors.Is(err, exam.ErrAttemptNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, exam.ErrAttemptSubmitted):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, exam.ErrInvalidResponse):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hazyhaar/axsim/audit"
	"github.com/hazyhaar/axsim/internal/store"
	"github.com/hazyhaar/axsim/kit"
	"github.com/hazyhaar/axsim/screenreader"
	"github.com/hazyhaar/axsim/shield"
)

const maxBody = 8 << 20

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(shield.SecurityHeaders(shield.DefaultHeaders()))
	r.Use(shield.HeadToGet)
	r.Use(s.limiter.Middleware)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := kit.WithTransport(req.Context(), "http")
			ctx = kit.WithRequestID(ctx, middleware.GetReqID(ctx))
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/audit", s.handleAudit)
		r.Post("/tree", s.handleTree)
		r.Post("/simulate", s.handleSimulate)
		r.Get("/commands", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, screenreader.Commands())
		})

		r.Get("/reports", s.handleListReports)
		r.Get("/reports/{id}", s.handleGetReport)
		r.Delete("/reports/{id}", s.handleDeleteReport)
	})
	return r
}

func (s *Service) handleAudit(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err)
		return
	}
	q := r.URL.Query()
	req := &AuditRequest{
		Name:     q.Get("name"),
		HTML:     string(body),
		Sanitize: q.Get("sanitize") == "1" || q.Get("sanitize") == "true",
	}
	resp, err := s.audit(r.Context(), req)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Service) handleTree(w http.ResponseWriter, r *http.Request) {
	var req TreeRequest
	if !decode(w, r, &req) {
		return
	}
	resp, err := s.tree(r.Context(), &req)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Service) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req SimulateRequest
	if !decode(w, r, &req) {
		return
	}
	resp, err := s.simulate(r.Context(), &req)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Service) handleListReports(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.fail(w, ErrNoStore)
		return
	}
	opts := store.ListOptions{Source: r.URL.Query().Get("source")}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", v))
			return
		}
		opts.Limit = n
	}
	list, err := s.store.ListReports(r.Context(), opts)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// handleGetReport serves /reports/{id}, /reports/{id}.md and
// /reports/{id}.html.
func (s *Service) handleGetReport(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.fail(w, ErrNoStore)
		return
	}
	id := chi.URLParam(r, "id")
	format := "json"
	if base, ok := strings.CutSuffix(id, ".md"); ok {
		id, format = base, "md"
	} else if base, ok := strings.CutSuffix(id, ".html"); ok {
		id, format = base, "html"
	}

	rep, err := s.store.GetReport(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}

	switch format {
	case "md":
		md, err := audit.RenderMarkdown(rep)
		if err != nil {
			s.fail(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		io.WriteString(w, md)
	case "html":
		page, err := audit.RenderHTML(rep)
		if err != nil {
			s.fail(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(page)
	default:
		writeJSON(w, http.StatusOK, rep)
	}
}

func (s *Service) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.fail(w, ErrNoStore)
		return
	}
	if err := s.store.DeleteReport(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid JSON: %w", err))
		return false
	}
	return true
}

func (s *Service) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, ErrNoStore):
		writeError(w, http.StatusServiceUnavailable, err)
	default:
		s.logger.Error("service: request failed", "error", err)
		writeError(w, http.StatusInternalServerError, err)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

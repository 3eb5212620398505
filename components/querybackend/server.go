package querybackend

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const defaultQueryTimeout = 30 * time.Second

// Options configures the backend server.
type Options struct {
	DB           *sql.DB
	Dialect      Dialect
	Logger       *zap.Logger
	QueryTimeout time.Duration
}

// Server answers prompts and raw SQL against one database.
type Server struct {
	db      *sql.DB
	dialect Dialect
	logger  *zap.Logger
	timeout time.Duration
}

// NewServer builds a server; DB is required.
func NewServer(opts Options) (*Server, error) {
	if opts.DB == nil {
		return nil, errors.New("querybackend: database is required")
	}
	if opts.Dialect == "" {
		opts.Dialect = DialectSQLite
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.QueryTimeout <= 0 {
		opts.QueryTimeout = defaultQueryTimeout
	}
	return &Server{db: opts.DB, dialect: opts.Dialect, logger: opts.Logger, timeout: opts.QueryTimeout}, nil
}

type askRequest struct {
	Question string `json:"question"`
}

// AskResponse is the answer to a natural-language question.
type AskResponse struct {
	SQL         string   `json:"sql"`
	Results     []Record `json:"results"`
	Totals      Record   `json:"totals"`
	SummaryText string   `json:"summary_text"`
	ChartType   string   `json:"chart_type"`
	Title       string   `json:"title"`
}

type dateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type executeRequest struct {
	Query     string     `json:"query"`
	DateRange *dateRange `json:"date_range,omitempty"`
}

// ExecuteResponse carries raw query rows.
type ExecuteResponse struct {
	Data    []Record `json:"data"`
	Columns []string `json:"columns,omitempty"`
}

// Routes returns the HTTP surface of the backend.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(allowAllOrigins)
	r.Get("/", s.Root)
	r.Post("/ask-ai", s.AskAI)
	r.Post("/execute-sql", s.ExecuteSQL)
	return r
}

// Root reports liveness.
func (s *Server) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "AI SQL Dashboard Backend is running"})
}

// AskAI maps a question to SQL by keyword, runs it and summarizes the rows.
func (s *Server) AskAI(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.Answer(r.Context(), req.Question))
}

// Answer resolves a question to SQL and runs it. An SQL failure yields empty
// results with the error in the summary.
func (s *Server) Answer(ctx context.Context, raw string) AskResponse {
	question := strings.ToLower(strings.TrimSpace(raw))
	resp := AskResponse{
		SQL:       DetectSQL(question, s.dialect),
		ChartType: DetectChartType(question),
		Title:     "AI-generated: " + raw,
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	s.logger.Info("executing sql", zap.String("sql", resp.SQL))
	records, _, err := query(ctx, s.db, resp.SQL)
	if err != nil {
		s.logger.Warn("sql execution failed", zap.String("sql", resp.SQL), zap.Error(err))
		resp.Results = []Record{}
		resp.Totals = Record{Columns: []string{}, Values: []any{}}
		resp.SummaryText = "Error executing SQL: " + err.Error()
		return resp
	}
	resp.Results = records
	resp.Totals, resp.SummaryText = Summarize(records)
	return resp
}

// ExecuteSQL runs the posted query verbatim. Failures are reported inside
// the data payload so callers still get a 200.
func (s *Server) ExecuteSQL(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	records, columns, err := query(ctx, s.db, req.Query)
	if err != nil {
		s.logger.Warn("sql execution failed", zap.String("sql", req.Query), zap.Error(err))
		mock := Record{Columns: []string{"MockResponse"}, Values: []any{err.Error()}}
		writeJSON(w, http.StatusOK, ExecuteResponse{Data: []Record{mock}})
		return
	}
	writeJSON(w, http.StatusOK, ExecuteResponse{Data: records, Columns: columns})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// allowAllOrigins answers CORS preflights and lets any origin call the API.
func allowAllOrigins(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		origin := r.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Add("Vary", "Origin")
		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			if req := r.Header.Get("Access-Control-Request-Headers"); req != "" {
				h.Set("Access-Control-Allow-Headers", req)
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

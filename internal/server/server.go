package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/abhisek/examhelper/internal/bank"
	"github.com/abhisek/examhelper/internal/quiz"
)

// Server serves the question provider and answer evaluator endpoints over
// a question bank.
type Server struct {
	bank    bank.Bank
	log     zerolog.Logger
	origins []string
}

// New creates a Server. origins lists the CORS origins allowed to call it
// from a browser; empty disables CORS headers.
func New(b bank.Bank, log zerolog.Logger, origins []string) *Server {
	return &Server{bank: b, log: log, origins: origins}
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, s.accessLog, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	if len(s.origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.origins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/get_question", s.getQuestion)
	r.Post("/submit_answer", s.submitAnswer)
	r.Get("/healthz", s.healthz)
	return r
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("quiz server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

type questionResponse struct {
	Question quiz.Question `json:"question"`
}

func (s *Server) getQuestion(w http.ResponseWriter, r *http.Request) {
	e, err := s.bank.Random(r.Context())
	if err != nil {
		if errors.Is(err, bank.ErrEmpty) {
			s.respondError(w, r, http.StatusServiceUnavailable, err)
			return
		}
		s.respondError(w, r, http.StatusInternalServerError, err)
		return
	}

	s.log.Debug().Str("question", e.Text).Msg("serving question")
	s.writeJSON(w, http.StatusOK, questionResponse{Question: e.Question()})
}

// submitRequest also accepts question_id, the field older clients used for
// the question text.
type submitRequest struct {
	Answer       *string `json:"answer"`
	QuestionText string  `json:"questionText"`
	QuestionID   string  `json:"question_id"`
}

func (s *Server) submitAnswer(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}
	text := req.QuestionText
	if text == "" {
		text = req.QuestionID
	}
	if req.Answer == nil || text == "" {
		s.respondError(w, r, http.StatusBadRequest, errors.New("answer and questionText are required"))
		return
	}

	e, err := s.bank.Lookup(r.Context(), text)
	if err != nil {
		if errors.Is(err, bank.ErrNotFound) {
			s.respondError(w, r, http.StatusNotFound, errors.New("question not found"))
			return
		}
		s.respondError(w, r, http.StatusInternalServerError, err)
		return
	}

	res := e.Grade(*req.Answer)
	s.log.Debug().Str("question", text).Bool("correct", res.IsCorrect).Msg("graded answer")
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	n, err := s.bank.Count(r.Context())
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "questions": n})
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, code int, err error) {
	if code >= http.StatusInternalServerError {
		s.log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	s.writeJSON(w, code, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Int("status", code).Msg("encode response")
	}
}

// accessLog logs one line per request.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("latency", time.Since(start)).
			Msg("request")
	})
}

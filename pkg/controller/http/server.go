package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/themis/pkg/usecase"
	"github.com/secmon-lab/themis/pkg/utils/logging"
)

type Server struct {
	router         *chi.Mux
	uc             *usecase.UseCases
	sessions       *sessionStore
	defaultOrgID   string
	maxSessionIdle time.Duration
}

type Options func(*Server)

// WithDefaultOrganization sets the organization used when a request carries
// no X-Organization-ID header
func WithDefaultOrganization(orgID string) Options {
	return func(s *Server) {
		s.defaultOrgID = orgID
	}
}

// WithSessionIdleTimeout sets how long an untouched evaluation session is kept
func WithSessionIdleTimeout(d time.Duration) Options {
	return func(s *Server) {
		s.maxSessionIdle = d
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:         r,
		uc:             uc,
		maxSessionIdle: defaultSessionIdleTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.sessions = newSessionStore(s.maxSessionIdle)

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(organizationMiddleware(s.defaultOrgID))

		r.Route("/threats", func(r chi.Router) {
			r.Get("/", s.listThreats)
			r.Post("/", s.createThreat)
			r.Get("/{threatID}", s.getThreat)
			r.Put("/{threatID}", s.updateThreat)
			r.Delete("/{threatID}", s.deleteThreat)
			r.Get("/{threatID}/references", s.threatReferences)
		})

		r.Route("/evaluations", func(r chi.Router) {
			r.Post("/", s.startEvaluation)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", s.sessionHandler(viewSession))
				r.Delete("/", s.sessionHandler(closeSession))
				r.Put("/assessment", s.sessionHandler(setAssessment))
				r.Put("/treatment", s.sessionHandler(setTreatment))
				r.Post("/advance", s.sessionHandler(advanceSession))
				r.Post("/back", s.sessionHandler(backSession))
				r.Post("/save", s.saveEvaluation)
			})
		})

		r.Route("/risks", func(r chi.Router) {
			r.Get("/", s.listRisks)
			r.Get("/{riskID}", s.getRisk)
			r.Delete("/{riskID}", s.deleteRisk)
			r.Post("/{riskID}/evaluation", s.startEdit)
			r.Get("/{riskID}/actions", s.listActions)
			r.Post("/{riskID}/actions", s.createAction)
			r.Post("/{riskID}/trainings", s.createTraining)
		})

		r.Get("/suggestions", s.getSuggestions)
		r.Post("/audits", s.proposeAudit)
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// DefaultTimeout covers a book round trip, which the provider can take a
// while to answer.
const DefaultTimeout = 45 * time.Second

type Server struct{ mux *chi.Mux }

// New builds the router and its middleware chain. The timeout becomes the
// request context deadline, so provider calls are cut off with it.
func New(timeout time.Duration) *Server {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	m := chi.NewRouter()

	m.Use(chimw.RealIP)
	m.Use(chimw.RequestID)
	m.Use(Observe(log.Logger))
	m.Use(chimw.Recoverer)
	m.Use(chimw.Timeout(timeout))

	m.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, problem{Title: "Not Found", Status: http.StatusNotFound, Detail: "no such route"})
	})
	m.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, problem{Title: "Method Not Allowed", Status: http.StatusMethodNotAllowed})
	})

	return &Server{mux: m}
}

func (s *Server) Mux() http.Handler { return s.mux }

// Mount attaches an extra handler (e.g. /metrics) to the router.
func (s *Server) Mount(path string, h http.Handler) {
	s.mux.Handle(path, h)
}

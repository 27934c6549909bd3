package server

import (
	"log"
	"net/http"

	"github.com/jscompat/jscompat/pkg/analyzer"
	"github.com/jscompat/jscompat/pkg/datastore"
	"github.com/jscompat/jscompat/pkg/storage"
)

type Server struct {
	Store    *datastore.Store
	Analyzer *analyzer.Analyzer
	DB       *storage.DB
	Username string
	Password string
}

// New wires the API server. db may be nil; the history endpoint then
// reports an empty list.
func New(store *datastore.Store, an *analyzer.Analyzer, db *storage.DB, user, pass string) *Server {
	return &Server{
		Store:    store,
		Analyzer: an,
		DB:       db,
		Username: user,
		Password: pass,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// API Group
	mux.HandleFunc("POST /api/check", s.basicAuth(s.handleCheck))
	mux.HandleFunc("GET /api/features", s.basicAuth(s.handleFeatures))
	mux.HandleFunc("GET /api/agents", s.basicAuth(s.handleAgents))
	mux.HandleFunc("GET /api/history", s.basicAuth(s.handleHistory))

	return mux
}

func (s *Server) Start(addr string) error {
	log.Printf("Starting server on %s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) basicAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Username == "" && s.Password == "" {
			next(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != s.Username || pass != s.Password {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

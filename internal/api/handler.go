package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"pollmarket-backend/internal/config"
	"pollmarket-backend/internal/engine"
	"pollmarket-backend/internal/identity"
	"pollmarket-backend/internal/ledger"
	"pollmarket-backend/internal/poll"
)

// Server holds all dependencies for the HTTP server
type Server struct {
	cfg         *config.Config
	polls       *poll.Manager
	engine      *engine.Engine
	tokens      *ledger.Ledger
	adminSigner *identity.Signer
	wsHub       *Hub
}

// NewServer creates a new API server
func NewServer(
	cfg *config.Config,
	polls *poll.Manager,
	eng *engine.Engine,
	tokens *ledger.Ledger,
	adminSigner *identity.Signer,
) *Server {
	return &Server{
		cfg:         cfg,
		polls:       polls,
		engine:      eng,
		tokens:      tokens,
		adminSigner: adminSigner,
		wsHub:       NewHub(),
	}
}

// RegisterRoutes registers all HTTP routes
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /api/health", s.handleHealth)

	// Poll endpoints
	mux.HandleFunc("POST /api/poll", s.handleCreatePoll)
	mux.HandleFunc("GET /api/polls", s.handleListPolls)
	mux.HandleFunc("GET /api/poll/{id}", s.handleGetPoll)
	mux.HandleFunc("POST /api/poll/{id}/resolve", s.handleResolvePoll)
	mux.HandleFunc("POST /api/poll/{id}/cancel", s.handleCancelPoll)

	// Voting and settlement endpoints
	mux.HandleFunc("POST /api/poll/{id}/vote", s.handleVote)
	mux.HandleFunc("POST /api/poll/{id}/claim", s.handleClaim)
	mux.HandleFunc("GET /api/poll/{id}/votes", s.handleGetVotes)

	// Token bootstrap endpoints
	mux.HandleFunc("POST /api/mint", s.handleCreateMint)
	mux.HandleFunc("POST /api/account", s.handleCreateAccount)
	mux.HandleFunc("GET /api/account/{id}", s.handleGetAccount)
	mux.HandleFunc("POST /api/faucet", s.handleFaucet)

	// WebSocket endpoint
	mux.HandleFunc("GET /ws", s.handleWebSocket)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	// Start WebSocket hub
	go s.wsHub.Run()

	// Broadcast engine events to WebSocket subscribers
	s.engine.SetEventCallback(func(ev engine.Event) {
		s.wsHub.Broadcast(Message{
			Type: ev.Type,
			Data: ev.Data,
		})
	})

	mux := http.NewServeMux()
	s.RegisterRoutes(mux)

	// Add CORS middleware
	handler := corsMiddleware(mux)

	addr := ":" + s.cfg.ServerPort
	log.Printf("Server starting on %s", addr)
	return http.ListenAndServe(addr, handler)
}

// handleHealth is the health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// corsMiddleware adds CORS headers
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusForError maps core errors to HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, poll.ErrPollNotFound),
		errors.Is(err, engine.ErrVoteNotFound),
		errors.Is(err, ledger.ErrMintNotFound),
		errors.Is(err, ledger.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, poll.ErrUnauthorized),
		errors.Is(err, ledger.ErrNotAccountOwner):
		return http.StatusForbidden
	case errors.Is(err, poll.ErrAlreadyResolved),
		errors.Is(err, poll.ErrPollCanceled),
		errors.Is(err, engine.ErrAlreadyClaimed):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

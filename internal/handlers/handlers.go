package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"gator-gram/internal/engine"
	"gator-gram/internal/upload"
	"gator-gram/internal/utils"
	"gator-gram/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
)

// Server holds all server dependencies, including the actor system and engine
type Server struct {
	System         *actor.ActorSystem
	Context        *actor.RootContext
	Engine         *engine.Engine
	Metrics        *utils.MetricsCollector
	Uploader       upload.Uploader
	Hub            *websocket.Hub
	Debug          bool
	RequestTimeout time.Duration
}

// NewServer creates a new Server instance with the given components
func NewServer(
	system *actor.ActorSystem,
	eng *engine.Engine,
	metrics *utils.MetricsCollector,
	uploader upload.Uploader,
	hub *websocket.Hub,
	debug bool,
) *Server {
	return &Server{
		System:         system,
		Context:        system.Root,
		Engine:         eng,
		Metrics:        metrics,
		Uploader:       uploader,
		Hub:            hub,
		Debug:          debug,
		RequestTimeout: 5 * time.Second, // Default timeout for actor requests
	}
}

// request dispatches a message to an actor and waits for the reply.
// Actor timeouts and AppError replies both come back as *utils.AppError.
func (s *Server) request(pid *actor.PID, msg interface{}) (interface{}, *utils.AppError) {
	future := s.Context.RequestFuture(pid, msg, s.RequestTimeout)
	result, err := future.Result()
	if err != nil {
		return nil, utils.NewAppError(utils.ErrActorTimeout, "Request timed out", err)
	}
	if appErr, ok := result.(*utils.AppError); ok {
		return nil, appErr
	}
	return result, nil
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	s.Metrics.IncrementRequests()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func (s *Server) respondError(w http.ResponseWriter, appErr *utils.AppError) {
	s.Metrics.IncrementRequests()
	s.Metrics.IncrementErrors()

	body := map[string]string{"message": appErr.Message}
	// Fault detail is only exposed outside production mode.
	if s.Debug && appErr.Origin != nil {
		body["error"] = appErr.Origin.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(utils.AppErrorToHTTPStatus(appErr.Code))
	json.NewEncoder(w).Encode(body)
}

// HandleRoot answers the unauthenticated welcome route.
func (s *Server) HandleRoot() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.respondJSON(w, http.StatusOK, map[string]interface{}{
			"message": "Welcome to GatorGram API",
			"status":  "Server is running correctly",
			"time":    time.Now().UTC(),
		})
	}
}

// HandleHealth reports liveness plus a metrics snapshot.
func (s *Server) HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.respondJSON(w, http.StatusOK, map[string]interface{}{
			"status":      "healthy",
			"server_time": time.Now().UTC(),
			"metrics":     s.Metrics.GetSnapshot(),
		})
	}
}

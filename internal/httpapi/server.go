package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/alejandrodlv/facelock/internal/facelock/service"
	"github.com/alejandrodlv/facelock/internal/facelock/store"
	"github.com/alejandrodlv/facelock/internal/facelock/types"
)

// maxRequestBody caps the request body size for JSON payloads.  The largest
// message (NotifyRequest) encodes to well under 1 KiB, so 4 KiB is generous.
const maxRequestBody = 4096

type Dependencies struct {
	Logger      *log.Logger
	Addr        string
	Coordinator *service.Coordinator

	// MetricsHandler, when non-nil, is mounted at GET /metrics.
	MetricsHandler http.Handler

	// RateLimit caps request throughput; zero values disable limiting.
	RateLimit RateLimit
}

type Server struct {
	httpServer  *http.Server
	logger      *log.Logger
	mux         *http.ServeMux
	coordinator *service.Coordinator
}

func NewServer(d Dependencies) *Server {
	mux := http.NewServeMux()

	s := &Server{
		logger:      d.Logger,
		mux:         mux,
		coordinator: d.Coordinator,
	}

	mux.HandleFunc("GET /api/get-pending-commands", s.handlePollCommand)
	mux.HandleFunc("POST /api/notify-access", s.handleNotifyAccess)
	mux.HandleFunc("POST /api/confirm-command", s.handleConfirmCommand)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/users", s.handleListUsers)
	mux.HandleFunc("DELETE /api/users/{name}", s.handleDeleteUser)
	mux.HandleFunc("POST /api/users/{name}/activate", s.handleSetActive(true))
	mux.HandleFunc("POST /api/users/{name}/deactivate", s.handleSetActive(false))
	mux.HandleFunc("DELETE /api/access_logs", s.handlePurgeLogs)

	if d.MetricsHandler != nil {
		mux.Handle("GET /metrics", d.MetricsHandler)
	}

	handler := loggingMiddleware(d.Logger, rateLimitMiddleware(d.RateLimit, mux))

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// handlePollCommand is the actuator's poll: a destructive read that always
// answers immediately, with the sentinel "NONE" when nothing is pending.
// The body is plain text — the actuator firmware parses "OPEN:<name>".
func (s *Server) handlePollCommand(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, s.coordinator.PollCommand())
}

func (s *Server) handleNotifyAccess(w http.ResponseWriter, r *http.Request) {
	var req types.NotifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := s.coordinator.Notify(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidNotify):
			writeError(w, http.StatusBadRequest, "invalid_notify", err.Error())
			return
		case errors.Is(err, service.ErrAuditAppend):
			// The decision stands; only the audit trail is best-effort.
			// Loud log so a dead audit store is noticed.
			s.logger.Printf("AUDIT WRITE FAILED: %v", err)
		default:
			s.logger.Printf("notify-access error: %v", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
			return
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleConfirmCommand(w http.ResponseWriter, r *http.Request) {
	var req types.ConfirmRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	writeJSON(w, http.StatusOK, s.coordinator.Confirm(req))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp, err := s.coordinator.Status(r.Context())
	if err != nil {
		s.logger.Printf("status error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.coordinator.Users(r.Context())
	if err != nil {
		s.logger.Printf("users error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}
	if users == nil {
		users = []types.UserInfo{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	err := s.coordinator.DeleteUser(r.Context(), name)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, types.MutationResponse{
			Status:  "not_found",
			Message: fmt.Sprintf("user %q not found", name),
		})
	case err != nil:
		s.logger.Printf("delete user error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
	default:
		writeJSON(w, http.StatusOK, types.MutationResponse{
			Status:  "success",
			Message: fmt.Sprintf("user %q deleted", name),
		})
	}
}

func (s *Server) handleSetActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")

		err := s.coordinator.SetUserActive(r.Context(), name, active)
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeJSON(w, http.StatusNotFound, types.MutationResponse{
				Status:  "not_found",
				Message: fmt.Sprintf("user %q not found", name),
			})
		case err != nil:
			s.logger.Printf("set active error: %v", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		default:
			writeJSON(w, http.StatusOK, types.MutationResponse{
				Status:  "success",
				Message: fmt.Sprintf("user %q active=%v", name, active),
			})
		}
	}
}

func (s *Server) handlePurgeLogs(w http.ResponseWriter, r *http.Request) {
	removed, err := s.coordinator.PurgeLogs(r.Context())
	if err != nil {
		s.logger.Printf("purge logs error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}
	writeJSON(w, http.StatusOK, types.PurgeResponse{Status: "success", Removed: removed})
}

// decodeJSON parses a bounded, strict JSON body into v.  On failure it
// writes the 400 itself and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return false
	}
	return true
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody{Error: code, Message: msg})
}

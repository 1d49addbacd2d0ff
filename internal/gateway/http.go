package gateway

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nhle/teamboard/internal/identity"
	"github.com/nhle/teamboard/internal/model"
)

const (
	publicMessage    = "This is a public endpoint. Anyone can see it."
	protectedMessage = "You are successfully authenticated via Clerk on the backend!"
	syncedMessage    = "User synced successfully"

	defaultMaxBodyBytes = 1 << 20
)

type messageResponse struct {
	Message string `json:"message"`
}

type protectedResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

type syncResponse struct {
	Message string             `json:"message"`
	User    model.VerifiedUser `json:"user"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type unauthenticatedResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// HandlerConfig configures a Handler.
type HandlerConfig struct {
	AllowedOrigin string
	MaxBodyBytes  int64

	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
	Metrics  *Metrics
}

// Handler serves the gateway's HTTP surface.
type Handler struct {
	service  *Service
	verifier identity.Verifier
	cfg      HandlerConfig
	logger   *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(service *Service, verifier identity.Verifier, cfg HandlerConfig, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
	return &Handler{service: service, verifier: verifier, cfg: cfg, logger: logger}
}

// RegisterHTTPHandlers adds the gateway routes to mux.
func (h *Handler) RegisterHTTPHandlers(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/public", h.handlePublic)
	mux.HandleFunc("GET /api/protected", h.requireAuth(h.handleProtected))
	mux.HandleFunc("POST /api/users/sync", h.requireAuth(h.handleSync))
	mux.HandleFunc("GET /healthz", h.handleHealth)
	if h.cfg.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(h.cfg.Gatherer, promhttp.HandlerOpts{}))
	}
}

// Routes returns the full middleware-wrapped handler.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	h.RegisterHTTPHandlers(mux)

	var handler http.Handler = mux
	handler = withCORS(h.cfg.AllowedOrigin, handler)
	handler = withRequestLog(h.logger, h.cfg.Metrics, handler)
	handler = withRecover(h.logger, handler)
	return handler
}

// ----------------------------------------------------------------------------
// GET /api/public
// ----------------------------------------------------------------------------

func (h *Handler) handlePublic(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Message: publicMessage})
}

// ----------------------------------------------------------------------------
// GET /api/protected
// ----------------------------------------------------------------------------

func (h *Handler) handleProtected(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())
	writeJSON(w, http.StatusOK, protectedResponse{Message: protectedMessage, UserID: id.Subject})
}

// ----------------------------------------------------------------------------
// POST /api/users/sync
// ----------------------------------------------------------------------------

// handleSync upserts the caller's profile. The subject always comes from
// the verified credential, never from the body.
func (h *Handler) handleSync(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxBodyBytes)
	var req SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("sync: decoding body", "error", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}

	user, err := h.service.Sync(r.Context(), id.Subject, req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, syncResponse{Message: syncedMessage, User: user})
	case errors.Is(err, ErrInvalidRequest):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Missing required user name"})
	case errors.Is(err, identity.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, unauthenticatedResponse{Error: "Unauthenticated!", Details: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to sync user data"})
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// writeJSON marshals v as JSON and writes it to w with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Response is already partially written on failure; nothing to report.
	_ = json.NewEncoder(w).Encode(v)
}

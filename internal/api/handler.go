package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/eugenenazirov/relay-service/internal/config"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// Handler serves read-only views of the resolved configuration.
type Handler struct {
	cfg *config.Config

	clock     func() time.Time
	startedAt time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// NewHandler constructs a Handler over the resolved configuration.
func NewHandler(cfg *config.Config, opts ...HandlerOption) *Handler {
	h := &Handler{
		cfg: cfg,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.startedAt = h.clock()
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	now := h.clock()
	resp := healthResponse{
		Status:        "ok",
		Timestamp:     now,
		UptimeSeconds: int64(now.Sub(h.startedAt).Seconds()),
		Environment:   h.cfg.Server.NodeEnv,
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleWebSettings(w http.ResponseWriter, _ *http.Request) {
	resp := webSettingsResponse{
		Title:                 h.cfg.Web.Title,
		Description:           h.cfg.Web.Description,
		LogoURL:               h.cfg.Web.LogoURL,
		LDAPEnabled:           h.cfg.LDAP.Enabled,
		UserManagementEnabled: h.cfg.UserManagement.Enabled,
		Timezone:              h.cfg.System.Timezone,
		TimezoneOffset:        h.cfg.System.TimezoneOffset,
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleConfig(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	if err := h.cfg.WriteYAML(&buf); err != nil {
		writeInternalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type healthResponse struct {
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	UptimeSeconds int64     `json:"uptimeSeconds"`
	Environment   string    `json:"environment"`
}

type webSettingsResponse struct {
	Title                 string `json:"title"`
	Description           string `json:"description"`
	LogoURL               string `json:"logoUrl"`
	LDAPEnabled           bool   `json:"ldapEnabled"`
	UserManagementEnabled bool   `json:"userManagementEnabled"`
	Timezone              string `json:"timezone"`
	TimezoneOffset        int    `json:"timezoneOffset"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, errorResponse{
		Error:   message,
		Details: details,
	})
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}

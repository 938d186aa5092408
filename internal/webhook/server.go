package webhook

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"mediasyncdel/internal/logging"
	"mediasyncdel/internal/metrics"
	"mediasyncdel/internal/syncdel"
)

// RequestIDHeader carries the correlation id in requests and responses.
const RequestIDHeader = "X-Request-ID"

// Processor runs one event through the pipeline. *syncdel.Handler satisfies it.
type Processor interface {
	Handle(ctx context.Context, raw syncdel.RawEvent) syncdel.Outcome
	Enabled() bool
}

// Observer is called after every processed event.
type Observer func(ctx context.Context, raw syncdel.RawEvent, outcome syncdel.Outcome)

// Options configures the router.
type Options struct {
	Token    string
	Metrics  *metrics.Metrics
	Observer Observer
	Logger   *slog.Logger
}

// Response is the JSON body returned for every processed event.
type Response struct {
	RequestID    string `json:"request_id"`
	Result       string `json:"result"`
	Reason       string `json:"reason,omitempty"`
	Descriptor   string `json:"descriptor,omitempty"`
	SelfDisabled bool   `json:"self_disabled,omitempty"`
	Error        string `json:"error,omitempty"`
}

type router struct {
	processor Processor
	opts      Options
	logger    *slog.Logger
}

// NewRouter builds the HTTP handler serving the webhook routes.
func NewRouter(processor Processor, opts Options) http.Handler {
	rt := &router{
		processor: processor,
		opts:      opts,
		logger:    logging.NewComponentLogger(opts.Logger, "webhook"),
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", rt.handleHealth)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}
	r.With(tokenAuth(opts.Token)).Post("/webhook", rt.handleWebhook)
	return r
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), id)))
	})
}

// tokenAuth accepts the token as a query parameter, since media server
// webhook senders often cannot set headers, or as a bearer token. An empty
// token disables the check.
func tokenAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := r.URL.Query().Get("token")
			if presented == "" {
				if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
					presented = strings.TrimPrefix(auth, "Bearer ")
				}
			}
			if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (rt *router) handleHealth(w http.ResponseWriter, r *http.Request) {
	enabled := rt.processor != nil && rt.processor.Enabled()
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "enabled": enabled})
}

func (rt *router) handleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.WithContext(ctx, rt.logger)
	requestID, _ := logging.RequestIDFromContext(ctx)

	raw, err := ParseEvent(w, r)
	if err != nil {
		logging.WarnWithContext(logger, "webhook payload rejected", "webhook_parse",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "send a JSON object or form body"),
			logging.String(logging.FieldImpact, "event was not processed"),
		)
		writeJSON(w, http.StatusBadRequest, Response{RequestID: requestID, Result: "invalid", Error: err.Error()})
		return
	}
	logger.Debug("event received",
		logging.String("webhook_event", raw[syncdel.FieldEventType]),
		logging.String("media_type", raw[syncdel.FieldMediaType]),
	)

	if rt.processor == nil {
		writeJSON(w, http.StatusServiceUnavailable, Response{RequestID: requestID, Result: "unavailable"})
		return
	}
	outcome := rt.processor.Handle(ctx, raw)
	rt.opts.Metrics.ObserveOutcome(outcome)
	rt.opts.Metrics.SetEnabled(rt.processor.Enabled())
	if rt.opts.Observer != nil {
		rt.opts.Observer(ctx, raw, outcome)
	}

	writeJSON(w, http.StatusAccepted, NewResponse(requestID, outcome))
}

// NewResponse renders an outcome for clients.
func NewResponse(requestID string, outcome syncdel.Outcome) Response {
	resp := Response{
		RequestID:    requestID,
		Result:       string(outcome.Result),
		SelfDisabled: outcome.SelfDisabled,
	}
	if outcome.Kind != syncdel.KindNone {
		resp.Reason = outcome.Kind.String()
	}
	if outcome.Intent != nil {
		resp.Descriptor = outcome.Intent.Descriptor
	}
	if outcome.Err != nil {
		resp.Error = outcome.Err.Error()
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// Server owns the listener for the webhook router.
type Server struct {
	bind   string
	logger *slog.Logger

	listener net.Listener
	server   *http.Server
}

// NewServer wraps handler in an http.Server bound to bind.
func NewServer(bind string, handler http.Handler, logger *slog.Logger) *Server {
	return &Server{
		bind:   bind,
		logger: logging.NewComponentLogger(logger, "webhook-server"),
		server: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// Start listens on the configured address and serves until ctx is done or
// Stop is called.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("webhook listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("webhook server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("webhook server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr returns the bound address once started.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down, waiting briefly for in-flight requests.
func (s *Server) Stop() {
	if s == nil || s.server == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
}

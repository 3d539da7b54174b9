package cli

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/prxtenses/repair-json-stream/pkg/buildinfo"
	"github.com/prxtenses/repair-json-stream/pkg/cache"
	apperrors "github.com/prxtenses/repair-json-stream/pkg/errors"
	"github.com/prxtenses/repair-json-stream/pkg/observability"
	"github.com/prxtenses/repair-json-stream/pkg/repair"
)

// maxRequestBody caps the accepted document size (16 MiB).
const maxRequestBody = 16 << 20

// serveCommand creates the serve command exposing repair over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the repair API over HTTP",
		Long: `Serve the repair API over HTTP.

Endpoints:

  POST /v1/repair     repair the request body; with ?events=1 the response
                      is a JSON envelope carrying the repair events
  GET  /healthz       liveness probe

Results are cached by input hash when a cache backend is configured.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Serve.Addr
	}
	if err := apperrors.ValidateListenAddr(addr); err != nil {
		return err
	}

	store, err := newCache(cfg)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeCache, err, "initialize cache backend %s", cfg.Cache.Backend)
	}
	defer store.Close()

	srv := newServer(c.Logger, store, cfg)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	c.Logger.Info("listening", "addr", addr, "cache", cfg.Cache.Backend)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return apperrors.Wrap(apperrors.ErrCodeServer, err, "serve on %s", addr)
	}
	return nil
}

// server carries the serve command's handler state.
type server struct {
	logger *log.Logger
	store  cache.Cache
	keyer  cache.Keyer
	cfg    *Config
}

func newServer(logger *log.Logger, store cache.Cache, cfg *Config) *server {
	return &server{
		logger: logger,
		store:  store,
		keyer:  cache.NewDefaultKeyer(),
		cfg:    cfg,
	}
}

// routes builds the chi router with request-ID and logging middleware.
func (s *server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logRequests)
	r.Get("/healthz", s.handleHealth)
	r.Post("/v1/repair", s.handleRepair)
	return r
}

// requestID assigns each request a uuid, echoed in the X-Request-ID header
// and attached to the context logger.
func (s *server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := withLogger(r.Context(), s.logger.With("request_id", id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// logRequests emits one structured log line per request and feeds the HTTP
// hooks.
func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), elapsed)
		loggerFromContext(r.Context()).Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", elapsed.Round(time.Millisecond),
		)
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// repairEnvelope is the ?events=1 response shape.
type repairEnvelope struct {
	Repaired string         `json:"repaired"`
	Events   []repair.Event `json:"events"`
}

func (s *server) handleRepair(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := loggerFromContext(ctx)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "read request body"))
		return
	}
	wantEvents := r.URL.Query().Get("events") == "1"

	key := s.keyer.RepairKey(body, wantEvents)
	if cached, hit, err := s.store.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, s.cfg.Cache.Backend)
		logger.Debug("cache hit", "key", key)
		s.writeRepaired(w, cached)
		return
	} else if err != nil {
		logger.Warn("cache read failed", "error", err)
	} else {
		observability.Cache().OnCacheMiss(ctx, s.cfg.Cache.Backend)
	}

	start := time.Now()
	observability.Repair().OnRepairStart(ctx, "http", len(body))

	var events []repair.Event
	opts := []repair.Option{repair.WithSink(func(e repair.Event) {
		events = append(events, e)
		observability.Repair().OnRepairEvent(ctx, string(e.Kind), e.Pos)
	})}
	if len(s.cfg.Wrappers) > 0 {
		opts = append(opts, repair.WithWrappers(s.cfg.Wrappers...))
	}
	repaired := repair.Repair(string(body), opts...)

	observability.Repair().OnRepairComplete(ctx, "http", len(repaired), len(events), time.Since(start))

	var payload []byte
	if wantEvents {
		if events == nil {
			events = []repair.Event{}
		}
		payload, err = json.Marshal(repairEnvelope{Repaired: repaired, Events: events})
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, apperrors.Wrap(apperrors.ErrCodeInternal, err, "encode response"))
			return
		}
	} else {
		payload = []byte(repaired)
	}

	if err := s.store.Set(ctx, key, payload, s.cfg.Cache.TTL.Duration); err != nil {
		logger.Warn("cache write failed", "error", err)
	} else {
		observability.Cache().OnCacheSet(ctx, s.cfg.Cache.Backend, len(payload))
	}

	s.writeRepaired(w, payload)
}

// writeRepaired sends a repair result. The payload is already JSON, either
// the repaired document itself or the events envelope.
func (s *server) writeRepaired(w http.ResponseWriter, payload []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, _ = w.Write(data)
}

// errorResponse is the error body shape shared by all endpoints.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorResponse{
		Code:    string(apperrors.GetCode(err)),
		Message: apperrors.UserMessage(err),
	})
}

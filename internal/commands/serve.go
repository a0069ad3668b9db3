package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/tipsplit/internal/auth"
	"github.com/mmynk/tipsplit/internal/config"
	"github.com/mmynk/tipsplit/internal/metrics"
	"github.com/mmynk/tipsplit/internal/middleware"
	"github.com/mmynk/tipsplit/internal/service"
	"github.com/mmynk/tipsplit/internal/session"
	"github.com/mmynk/tipsplit/internal/storage/sqlite"
	"github.com/mmynk/tipsplit/internal/web"
	"github.com/mmynk/tipsplit/pkg/api/apiconnect"
)

const (
	sweepInterval   = time.Minute
	shutdownTimeout = 10 * time.Second
)

func addServe(topLevel *cobra.Command, v *viper.Viper) {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web form and the Connect API.",
		Example: `
TIPSPLIT_TOKEN_SECRET=changeme tipsplit serve
tipsplit serve --addr :9090 --redis-addr localhost:6379 --token-secret changeme
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("addr", "", "Listen address, for example :8080.")
	cmd.Flags().String("db-path", "", "SQLite database holding saved splits.")
	cmd.Flags().String("redis-addr", "", "Redis address for form sessions; in-memory when empty.")
	cmd.Flags().Duration("session-ttl", 0, "How long an idle form session lives.")
	cmd.Flags().String("token-secret", "", "Secret used to sign session tokens.")
	bindFlag(v, cmd.Flags().Lookup("addr"), config.KeyAddr)
	bindFlag(v, cmd.Flags().Lookup("db-path"), config.KeyDBPath)
	bindFlag(v, cmd.Flags().Lookup("redis-addr"), config.KeyRedisAddr)
	bindFlag(v, cmd.Flags().Lookup("session-ttl"), config.KeySessionTTL)
	bindFlag(v, cmd.Flags().Lookup("token-secret"), config.KeyTokenSecret)

	topLevel.AddCommand(cmd)
}

// app is everything serve wires together.
type app struct {
	handler http.Handler
	close   func()
}

func newApp(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, gatherer prometheus.Gatherer) (*app, error) {
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	slog.Info("Storage initialized", "database", cfg.DBPath)

	sweepCtx, stopSweep := context.WithCancel(ctx)
	var sessions session.Store
	if cfg.RedisAddr != "" {
		rs, err := session.NewRedisStore(ctx, cfg.RedisAddr, cfg.SessionTTL)
		if err != nil {
			stopSweep()
			store.Close()
			return nil, err
		}
		sessions = rs
		slog.Info("Sessions stored in Redis", "addr", cfg.RedisAddr)
	} else {
		ms := session.NewMemoryStore(cfg.SessionTTL)
		go sweep(sweepCtx, ms)
		sessions = ms
		slog.Info("Sessions stored in memory")
	}

	m := metrics.New(reg)
	tokens := auth.NewTokenManager(cfg.TokenSecret, cfg.SessionTTL)
	forms := service.NewFormManager(sessions, cfg.Rules, m)

	mux := http.NewServeMux()

	interceptors := connect.WithInterceptors(
		middleware.LoggingInterceptor(),
		middleware.MetricsInterceptor(m),
		middleware.RequireSession(tokens, apiconnect.SessionProcedures),
	)
	apiPath, apiHandler := apiconnect.NewTipServiceHandler(service.NewTipService(store, forms, tokens, m), interceptors)
	mux.Handle(apiPath, apiHandler)
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.Handle("/", web.NewHandler(store, forms, tokens))

	// h2c serves HTTP/2 without TLS, which Connect and gRPC clients need.
	handler := h2c.NewHandler(loggingMiddleware(corsMiddleware(mux)), &http2.Server{})

	return &app{
		handler: handler,
		close: func() {
			stopSweep()
			if err := sessions.Close(); err != nil {
				slog.Error("Failed to close session store", "error", err)
			}
			if err := store.Close(); err != nil {
				slog.Error("Failed to close storage", "error", err)
			}
		},
	}, nil
}

func sweep(ctx context.Context, ms *session.MemoryStore) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := ms.Sweep(); n > 0 {
				slog.Debug("Expired form sessions dropped", "count", n, "live", ms.Len())
			}
		}
	}
}

func runServer(ctx context.Context, cfg *config.Config) error {
	a, err := newApp(ctx, cfg, prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
	if err != nil {
		return err
	}
	defer a.close()

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      a.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "address", cfg.Addr, "rules", cfg.Rules.Name)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
		slog.Info("Shutting down server")
	case <-ctx.Done():
		slog.Info("Shutting down server", "reason", ctx.Err())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	slog.Info("Server exited")
	return nil
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		slog.Debug("Request received",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		)

		next.ServeHTTP(w, r)

		slog.Info("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms, "+middleware.SessionHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

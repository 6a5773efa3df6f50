package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/Vovarama1992/rental-support-bridge/internal/ai"
	"github.com/Vovarama1992/rental-support-bridge/internal/config"
	"github.com/Vovarama1992/rental-support-bridge/internal/events"
	"github.com/Vovarama1992/rental-support-bridge/internal/logger"
	"github.com/Vovarama1992/rental-support-bridge/internal/support"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "support-bridge",
	Short: "Support chat and employee console backend",
	Long: `support-bridge answers the rental platform's chat widget with canned
replies, escalates conversations it cannot handle to a human, and serves the
employee console that responds to and resolves those requests.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

var classifyCmd = &cobra.Command{
	Use:   "classify [text]",
	Short: "Show requester type and canned reply for a message",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reply, ok := support.Respond(args[0])
		if !ok {
			reply = support.FallbackText
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "user type: %s\n", support.Classify(args[0]))
		fmt.Fprintf(out, "reply:     %s\n", reply)
		fmt.Fprintf(out, "escalates: %t\n", !ok || support.Escalates(reply))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.AddCommand(serveCmd, classifyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := support.NewStore()
	opts := []support.Option{support.WithBotDelay(cfg.Chat.BotReplyDelay)}

	// --- DB ---
	if cfg.Database.URL != "" {
		db, err := openDB(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		repo := support.NewRepo(db)
		n, err := support.Hydrate(ctx, repo, store)
		if err != nil {
			return err
		}
		log.Info("notifications loaded", map[string]interface{}{"count": n})
		opts = append(opts, support.WithRepo(repo))
	} else {
		log.Warn("DATABASE_URL not set, notifications are kept in memory only", nil)
	}

	// --- Sessions ---
	sessions := support.NewMemorySessions()
	if cfg.Redis.URL != "" {
		rdb, err := support.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		sessions = support.NewRedisSessions(rdb, cfg.Chat.SessionTTL)
	}

	// --- Events ---
	var publishers events.Multi
	if cfg.Events.AMQPURL != "" {
		conn, err := events.DialWithRetry(ctx, cfg.Events.AMQPURL, 5, time.Second, log)
		if err != nil {
			return err
		}
		pub, err := events.NewAMQPPublisher(conn, cfg.Events.Exchange, log)
		if err != nil {
			_ = conn.Close()
			return err
		}
		defer pub.Close()
		publishers = append(publishers, pub)
	}
	if cfg.Events.WebhookURL != "" {
		publishers = append(publishers, events.NewWebhookPublisher(cfg.Events.WebhookURL, os.Getenv("CONSOLE_WEBHOOK_SECRET")))
	}
	if len(publishers) > 0 {
		opts = append(opts, support.WithPublisher(publishers))
	}

	// --- AI ---
	if cfg.AI.APIKey != "" {
		client, err := ai.NewOpenAIClient(ai.Options{
			APIKey:  cfg.AI.APIKey,
			Model:   cfg.AI.Model,
			Timeout: cfg.AI.Timeout,
		}, log)
		if err != nil {
			return err
		}
		opts = append(opts, support.WithTitler(ai.NewTitler(client)))
	}

	svc := support.NewService(store, sessions, log, opts...)
	defer svc.Close()

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	support.RegisterRoutes(r, support.NewHandler(svc, log))

	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})
	r.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", map[string]interface{}{"port": cfg.Server.Port})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down", nil)
	return srv.Shutdown(shutdownCtx)
}

func openDB(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	if err := support.EnsureSchema(pingCtx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

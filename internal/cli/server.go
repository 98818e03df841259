package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mcq-quiz-service/internal/app"
	"mcq-quiz-service/internal/config"
	"mcq-quiz-service/internal/infra/memory"
	"mcq-quiz-service/internal/infra/postgres"
	rediscache "mcq-quiz-service/internal/infra/redis"
	transport "mcq-quiz-service/internal/transport/http"

	"github.com/gorilla/handlers"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		log.Printf("config %s not found, using in-memory defaults", configPath)
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var (
		questions app.QuestionRepository
		settings  app.SettingsRepository
		results   app.ResultRepository
	)
	if pool != nil {
		questions = postgres.NewQuestionStore(pool)
		settings = postgres.NewSettingsStore(pool)
		results = postgres.NewResultStore(pool)
	} else {
		questions = memory.NewQuestionStore()
		settings = memory.NewSettingsStore()
		results = memory.NewResultStore()
	}

	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		cacheTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)
		questions = rediscache.NewQuestionCache(redisClient, questions, cacheTTL)
	}

	service := app.NewQuizService(questions, settings, results)
	auth, err := buildAuthenticator(cfg)
	if err != nil {
		return err
	}
	handler := transport.NewHandler(service, auth)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)
	root := handlers.LoggingHandler(os.Stdout, cors(handler.Router()))

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     root,
		ReadTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildAuthenticator applies development fallbacks for missing auth config so
// a bare checkout still runs; production deployments set all three values.
func buildAuthenticator(cfg config.Config) (*transport.Authenticator, error) {
	secret := cfg.Auth.JWTSecret
	if secret == "" {
		secret = "quiz-dev-secret"
		log.Printf("auth.jwtSecret not set, using development secret")
	}
	adminEmail := cfg.Auth.AdminEmail
	if adminEmail == "" {
		adminEmail = "admin@example.com"
	}
	adminHash := cfg.Auth.AdminPasswordHash
	if adminHash == "" {
		hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		adminHash = string(hash)
		log.Printf("auth.adminPasswordHash not set, using default admin credentials")
	}
	tokenTTL := config.TTLDuration(cfg.Auth.TokenTTL, 24*time.Hour)
	return transport.NewAuthenticator(secret, adminEmail, adminHash, tokenTTL), nil
}

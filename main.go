// main.go
package main

import (
	"context"
	"log"
	"time"

	"exam-registration/cmd"
	"exam-registration/internal/data/repository"
	"exam-registration/internal/usecase"
	"exam-registration/internal/wire"
	"exam-registration/pkg/admitcard"
	"exam-registration/pkg/clock"
	"exam-registration/pkg/database"
	"exam-registration/pkg/jwt"
	"exam-registration/pkg/mailer"
	"exam-registration/pkg/ratelimit"
	"exam-registration/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = database.Migrate(migrateCtx, db)
	cancel()
	if err != nil {
		logger.Fatal("Failed to apply schema", zap.Error(err))
	}

	logger.Info("Database connected successfully")

	clk := clock.New()

	limiter, closeLimiter, err := newLimiter(config, clk, logger)
	if err != nil {
		logger.Fatal("Failed to initialize rate limiter", zap.Error(err))
	}
	defer closeLimiter()

	tokens, err := jwt.NewManager(config.JWT.Secret, config.JWT.Expiry(), clk)
	if err != nil {
		logger.Fatal("Failed to initialize token manager", zap.Error(err))
	}

	sender := mailer.NewSMTP(mailer.Config{
		Host:     config.Email.Host,
		Port:     config.Email.Port,
		Username: config.Email.User,
		Password: config.Email.Password,
		From:     config.Email.From,
		AppName:  config.App.Name,
		CodeTTL:  config.OTP.Expiry(),
	}, logger)

	// Wire all dependencies
	app := wire.Wiring(usecase.Deps{
		Repo:     repository.NewRepository(db, logger),
		Tokens:   tokens,
		Mailer:   sender,
		Renderer: admitcard.New(admitcard.DefaultLayout, clk.Now),
		Clock:    clk,
	}, limiter, config, logger)

	// Start server
	if err := cmd.APIServer(app.Router, config.App.Port, logger); err != nil {
		logger.Error("Server stopped", zap.Error(err))
	}
}

// newLimiter picks the rate limit backend; the returned func releases it.
func newLimiter(config *utils.Config, clk clock.Clocker, logger *zap.Logger) (ratelimit.Limiter, func(), error) {
	if config.RateLimit.Backend != "redis" {
		logger.Info("Rate limiter uses in-process memory")
		return ratelimit.NewMemory(clk), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Redis.Addr,
		Password: config.Redis.Password,
		DB:       config.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, err
	}

	logger.Info("Rate limiter uses redis", zap.String("addr", config.Redis.Addr))
	return ratelimit.NewRedis(client, "ratelimit:", clk), func() { client.Close() }, nil
}

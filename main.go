package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sjsage522/geardealworker/config"
	"sjsage522/geardealworker/internal/crawler"
	"sjsage522/geardealworker/logger"
	"sjsage522/geardealworker/services/evaluator"
	"sjsage522/geardealworker/services/notifier"
	"sjsage522/geardealworker/services/worker"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration before any network activity
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("Invalid configuration")
		os.Exit(1)
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("page_loader", cfg.PageLoader).
		Strs("categories", cfg.Categories).
		Msg("Starting gear deal run")

	// Cancel the run on SIGINT or SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Error().Err(err).Msg("Run failed")
		stop()
		os.Exit(1)
	}
}

// run owns every resource of the cycle so deferred cleanup always happens
func run(ctx context.Context, cfg *config.Config) error {
	services, err := initializeServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer services.Cleanup()

	categoryCrawler := crawler.NewCategoryCrawler(crawler.CrawlerConfig{
		BaseURL:       cfg.BaseURL,
		Categories:    cfg.Categories,
		RetryAttempts: cfg.RetryAttempts,
		RetryDelay:    cfg.RetryDelay,
		CategoryDelay: cfg.CategoryDelay,
		WaitTimeout:   cfg.WaitTimeout,
	}, services.Page)

	w := worker.NewWorker(categoryCrawler, evaluator.NewEvaluator(services.Reasoning), services.Notifier)
	w.RunOnce(ctx)
	return nil
}

// Services holds all the initialized services
type Services struct {
	Page      crawler.Page
	Reasoning evaluator.ReasoningService
	Notifier  notifier.Notifier
	redis     *notifier.RedisStreamNotifier
}

// Cleanup closes the page session and the Redis connection
func (s *Services) Cleanup() {
	if s.Page != nil {
		if err := s.Page.Close(); err != nil {
			logger.Warn("Failed to close page session: %v", err)
		}
	}
	if s.redis != nil {
		s.redis.Close()
	}
}

// initializeServices opens the page session and creates the evaluator and notifier clients
func initializeServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	services := &Services{}

	reasoning, err := evaluator.NewGeminiService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return nil, fmt.Errorf("failed to create reasoning service: %w", err)
	}
	services.Reasoning = reasoning

	sinks := []notifier.Notifier{
		notifier.NewTelegramNotifier(cfg.TelegramAPIURL, cfg.TelegramBotToken, cfg.TelegramChatID),
	}
	if cfg.RedisEnabled() {
		redisNotifier := notifier.NewRedisStreamNotifier(cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream, cfg.RedisStreamMaxLength)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := redisNotifier.Ping(pingCtx)
		cancel()
		if err != nil {
			logger.Warn("Redis at %s is unreachable, alerts will not be mirrored: %v", cfg.RedisAddr, err)
			redisNotifier.Close()
		} else {
			services.redis = redisNotifier
			sinks = append(sinks, redisNotifier)
			logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)", cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
		}
	}
	services.Notifier = notifier.NewMultiNotifier(sinks...)

	switch cfg.PageLoader {
	case config.LoaderHTTP:
		services.Page = crawler.NewHTTPPage()
	default:
		page, err := crawler.NewChromePage(ctx, crawler.ChromeOptions{
			ExecPath: cfg.ChromeBin,
			Headless: cfg.Headless,
		})
		if err != nil {
			services.Cleanup()
			return nil, fmt.Errorf("failed to start browser: %w", err)
		}
		services.Page = page
	}

	return services, nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/teammatch-backend/api"
	"github.com/rpupo63/teammatch-backend/config"
	"github.com/rpupo63/teammatch-backend/database"
	"github.com/rpupo63/teammatch-backend/services"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	c := config.New()
	if config.GetBool(c, "LOG_PRETTY", false) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	log.Info().Msg("Initializing app...")

	if config.NeedsSecrets(c) {
		if err := resolveSecrets(c); err != nil {
			log.Fatal().Err(err).Msg("Error resolving secrets")
		}
	}

	dsn, err := config.Require(c, "DATABASE_URL")
	if err != nil {
		log.Fatal().Err(err).Msg("Error reading database configuration")
	}

	db, err := database.Open(database.Config{
		DSN:           dsn,
		ReplicaDSNs:   config.GetStringSlice(c, "DATABASE_REPLICA_URLS", nil),
		LogLevel:      database.ParseLogLevel(config.GetString(c, "DB_LOG_LEVEL", "warn")),
		SlowThreshold: config.GetDuration(c, "DB_SLOW_THRESHOLD", 10*time.Second),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Error migrating database")
	}

	currentDB := database.New(db)
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	err = currentDB.Ping(pingCtx)
	cancelPing()
	if err != nil {
		log.Fatal().Err(err).Msg("Error testing database connection")
	}

	users := currentDB.UserRepo()
	projects := currentDB.ProjectRepo()
	matches := currentDB.MatchRepo()

	tokens, err := api.NewTokenIssuer(
		config.GetString(c, "JWT_SECRET", ""),
		time.Duration(config.GetInt(c, "TOKEN_TTL_MINUTES", 24*60))*time.Minute,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Error configuring access tokens")
	}

	deps := api.Dependencies{
		Accounts: services.NewAccountService(users, services.BcryptHasher{Cost: config.GetInt(c, "BCRYPT_COST", 0)}),
		Projects: services.NewProjectService(projects, currentDB.ProjectTagRepo()),
		Matches:  services.NewMatchService(users, projects, matches, newNotifier(c, users)),
		Tokens:   tokens,
		Store:    currentDB,
	}

	server, err := api.NewServer(deps, c)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing server")
	}

	// started last so no later log.Fatal skips its Stop
	stopJanitor, err := startJanitor(c, matches)
	if err != nil {
		log.Fatal().Err(err).Msg("Error starting janitor")
	}
	defer stopJanitor()

	errChannel := make(chan error, 2)
	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(30 * time.Second)
}

// startJanitor schedules the orphan sweep unless JANITOR_ENABLED is false. The
// returned stop is always safe to call.
func startJanitor(c map[string]string, matches services.MatchStore) (func(), error) {
	if !config.GetBool(c, "JANITOR_ENABLED", true) {
		return func() {}, nil
	}
	interval := time.Duration(config.GetInt(c, "JANITOR_INTERVAL_MINUTES", 60)) * time.Minute
	janitor, err := services.NewJanitor(matches, interval)
	if err != nil {
		return nil, err
	}
	if err := janitor.Start(); err != nil {
		return nil, err
	}
	return func() {
		if err := janitor.Stop(); err != nil {
			log.Error().Err(err).Msg("Error stopping janitor")
		}
	}, nil
}

// newNotifier mails match transitions through Resend when an API key is configured.
func newNotifier(c map[string]string, users services.UserStore) services.Notifier {
	apiKey := config.GetString(c, "RESEND_API_KEY", "")
	if apiKey == "" {
		log.Info().Msg("RESEND_API_KEY not set, match notifications disabled")
		return services.NopNotifier{}
	}
	from := config.GetString(c, "RESEND_FROM_EMAIL", "TeamMatch <noreply@teammatch.dev>")
	timeout := config.GetDuration(c, "NOTIFY_TIMEOUT", 15*time.Second)
	return services.NewAsyncNotifier(services.NewEmailNotifier(users, apiKey, from), timeout)
}

func resolveSecrets(c map[string]string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	resolver, err := config.NewSSMResolver(ctx, config.GetString(c, "AWS_REGION", ""))
	if err != nil {
		return err
	}
	return config.ResolveSecrets(ctx, c, resolver)
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-ch)
}

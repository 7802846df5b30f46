package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/teammatch/internal/config"
	"github.com/jonathan/teammatch/internal/logging"
	"github.com/jonathan/teammatch/internal/server"
	"github.com/jonathan/teammatch/internal/server/ratelimit"
	"github.com/jonathan/teammatch/internal/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// devSecret signs tokens when JWT_SECRET is unset. Development only.
const devSecret = "teammatch-development-secret-do-not-deploy"

// seedPassword is the password of every seeded account.
const seedPassword = "password123"

var (
	serveAddr     string
	serveBasePath string
	serveSeed     bool
)

var serveDevCmd = &cobra.Command{
	Use:   "serve-dev",
	Short: "Run an in-memory development backend",
	Long: `Run an in-memory backend that implements the platform API, for trying the
client without the production service. All data is lost on exit.

JWT_SECRET, JWT_EXPIRATION_HOURS, BCRYPT_COST, PASSWORD_PEPPER and the
TEAMMATCH_RATE_LIMIT_* variables are honoured.`,
	Args: cobra.NoArgs,
	RunE: runServeDev,
}

func init() {
	serveDevCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Address to listen on")
	serveDevCmd.Flags().StringVar(&serveBasePath, "base-path", "/api", "Path prefix of every route")
	serveDevCmd.Flags().BoolVar(&serveSeed, "seed", false, "Create demo accounts (alice, bob) and a posting")
	rootCmd.AddCommand(serveDevCmd)
}

func runServeDev(cmd *cobra.Command, _ []string) error {
	level := "info"
	if verbose {
		level = "debug"
	}
	logger, err := logging.New(level, verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	jwtCfg, err := config.NewJWTConfig(devSecret)
	if err != nil {
		return fmt.Errorf("invalid JWT configuration: %w", err)
	}
	pwCfg, err := config.NewPasswordConfig()
	if err != nil {
		return fmt.Errorf("invalid password configuration: %w", err)
	}

	srv, err := server.New(server.Config{
		Addr:      serveAddr,
		JWT:       jwtCfg,
		Password:  pwCfg,
		RateLimit: ratelimit.LoadConfig(),
		BasePath:  serveBasePath,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if serveSeed {
		if err := seed(ctx, srv, time.Now()); err != nil {
			return fmt.Errorf("failed to seed: %w", err)
		}
		logger.Info("seeded demo data", zap.Strings("users", []string{"alice", "bob"}), zap.String("password", seedPassword))
	}

	return srv.Start(ctx)
}

// seed registers two accounts and gives alice an open posting and bob a
// profile.
func seed(ctx context.Context, srv *server.Server, now time.Time) error {
	for _, name := range []string{"alice", "bob"} {
		if _, err := srv.Users().Register(ctx, &types.SignupRequest{
			Username: name,
			Email:    name + "@example.com",
			Password: seedPassword,
		}); err != nil {
			return err
		}
	}

	if _, err := srv.Store().CreatePosting("alice", types.PostingRequest{
		Title:       "Study group planner",
		Intro:       "Match classmates into weekly study groups",
		Description: "A small web app that groups students by course and free time.",
		Tags:        []string{"go", "react"},
		Deadline:    types.NewDate(now.AddDate(0, 0, 21)),
		Positions: []types.Position{
			{Role: "Backend", Headcount: 1},
			{Role: "Frontend", Headcount: 1},
		},
		WorkStyle: types.WorkOnline,
	}); err != nil {
		return err
	}

	_, err := srv.Store().CreateProfile("bob", types.ProfileRequest{
		Intro:        "Backend developer",
		Bio:          "Two years of Go services and PostgreSQL.",
		Skills:       []string{"Go", "PostgreSQL"},
		Availability: "Evenings",
	})
	return err
}

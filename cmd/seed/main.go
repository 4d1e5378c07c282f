// Command seed loads the reference catalog and, unless -catalog-only is set,
// generates demo users with workout history.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"spottr/internal/bootstrap"
	"spottr/internal/config"
	"spottr/internal/middleware"
	"spottr/internal/seed"
)

func main() {
	users := flag.Int("users", 20, "Number of demo users to create")
	days := flag.Int("days", 45, "Days of workout history per user")
	seedValue := flag.Int64("seed", time.Now().UnixNano(), "Random seed for reproducible data")
	clean := flag.Bool("clean", false, "Delete existing user data first")
	catalogOnly := flag.Bool("catalog-only", false, "Only load exercises, achievements and gyms")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{ApplySchema: true, SeedCatalog: true})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	defer func() { _ = rt.CloseAll(ctx) }()

	if *catalogOnly {
		return
	}

	summary, err := seed.Demo(ctx, rt.DB, seed.Options{
		Users:  *users,
		Days:   *days,
		Seed:   *seedValue,
		Clean:  *clean,
		Logger: middleware.Logger,
	})
	if err != nil {
		middleware.Logger.Error("Demo seeding failed", slog.String("error", err.Error()))
		_ = rt.CloseAll(ctx)
		os.Exit(1)
	}
	middleware.Logger.Info("Demo data ready",
		slog.Int("users", summary.Users),
		slog.Int("workouts", summary.Workouts),
		slog.Int("posts", summary.Posts),
		slog.String("password", seed.DemoPassword),
	)
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/greenloop/ecopickup/internal/models"
	"github.com/greenloop/ecopickup/internal/repositories/postgres"
	"github.com/greenloop/ecopickup/internal/simulator"
	"github.com/greenloop/ecopickup/internal/storage"
	"github.com/greenloop/ecopickup/internal/store"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "ecopickup",
	Short: "Simulates a waste pickup marketplace and its worker-side request store",
	Long: `ecopickup drives a waste pickup request store through simulated
marketplace activity: residents post pickup requests, a collection worker
accepts and completes them, and every change is streamed to the configured
output (console, JSON files, Parquet or Kafka).`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, log := mustSetup()
		st := mustOpenStore(cfg, log)

		sim := simulator.NewSimulator(cfg, st, log)
		if err := sim.Run(); err != nil {
			log.Fatal().Err(err).Msg("simulation failed")
		}
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate local storage with generated pickup requests",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, log := mustSetup()

		// Opening a store over empty storage seeds and persists the
		// initial batch as a side effect of the first load.
		st := mustOpenStore(cfg, log)
		all := st.RequestsByStatus(models.StatusAll)
		log.Info().Int("requests", len(all)).Str("path", cfg.StoragePath).Msg("storage seeded")
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print worker stats and recent activity from local storage",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, log := mustSetup()
		st := mustOpenStore(cfg, log)

		stats := st.WorkerStats()
		fmt.Printf("Today's pickups:   %d\n", stats.TodayPickups)
		fmt.Printf("Completed pickups: %d\n", stats.CompletedPickups)
		fmt.Printf("Active requests:   %d\n", stats.ActiveRequests)
		fmt.Printf("Total requests:    %d\n", stats.TotalRequests)
		fmt.Printf("Earnings today:    %.2f\n", stats.Earnings)
		fmt.Printf("Monthly earnings:  %.2f\n", stats.MonthlyEarnings)
		fmt.Printf("Waste processed:   %.1f kg\n", stats.WasteProcessedKg)
		fmt.Printf("Rating:            %.1f\n", stats.Rating)

		activity := st.RecentActivity()
		if len(activity) > 0 {
			fmt.Println("\nRecent activity:")
			for _, entry := range activity {
				line := fmt.Sprintf("  [%s] %s (%s)", entry.Type, entry.Title, entry.When)
				if entry.Amount > 0 {
					line += fmt.Sprintf(" +%.2f", entry.Amount)
				}
				fmt.Println(line)
			}
		}
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Mirror locally stored pickup requests into Postgres",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, log := mustSetup()
		st := mustOpenStore(cfg, log)

		requests := st.RequestsByStatus(models.StatusAll)
		if len(requests) == 0 {
			log.Info().Msg("nothing to sync")
			return
		}

		ctx := context.Background()
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()

		repo := postgres.NewRequestRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to ensure schema")
		}

		const batchSize = 50
		bar := progressbar.Default(int64(len(requests)), "syncing requests")
		for start := 0; start < len(requests); start += batchSize {
			end := start + batchSize
			if end > len(requests) {
				end = len(requests)
			}
			if err := repo.BulkCreate(ctx, requests[start:end]); err != nil {
				log.Fatal().Err(err).Msg("failed to sync batch")
			}
			_ = bar.Add(end - start)
		}

		count, err := repo.Count(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to count synced requests")
		}
		log.Info().Int("local", len(requests)).Int("database", count).Msg("sync complete")
	},
}

func mustSetup() (*models.Config, zerolog.Logger) {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	cfg, err := models.LoadConfig(cfgFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	return cfg, log
}

func mustOpenStore(cfg *models.Config, log zerolog.Logger) *store.RequestStore {
	fs, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.StoragePath).Msg("failed to open storage")
	}
	return store.New(fs, cfg, log)
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is examples/config.json)")

	rootCmd.Flags().Int("seed", 42, "Random seed for simulation")
	rootCmd.Flags().String("start-date", time.Now().Format(time.RFC3339), "Start date for simulation")
	rootCmd.Flags().String("end-date", time.Now().AddDate(0, 0, 1).Format(time.RFC3339), "End date for simulation")
	rootCmd.Flags().Int("initial-requests", 5, "Requests seeded into empty storage")
	rootCmd.Flags().Float64("request-frequency", 2.0, "New requests per simulated hour")
	rootCmd.Flags().Float64("cancellation-rate", 0.05, "Share of requests cancelled before acceptance")
	rootCmd.Flags().Float64("high-urgency-ratio", 0.2, "Share of requests generated with high urgency")
	rootCmd.Flags().Bool("legacy-transitions", false, "Allow any status write regardless of current state")
	rootCmd.Flags().Bool("kafka-enabled", false, "Enable Kafka output")
	rootCmd.Flags().String("kafka-broker-list", "localhost:9092", "Kafka broker list")
	rootCmd.Flags().String("output-format", "json", "Output format (json or parquet)")
	rootCmd.Flags().String("output-path", "", "Output directory (if not using Kafka)")
	rootCmd.Flags().Bool("continuous", false, "Run simulation in continuous mode")

	flagKeys := map[string]string{
		"seed":               "seed",
		"start_date":         "start-date",
		"end_date":           "end-date",
		"initial_requests":   "initial-requests",
		"request_frequency":  "request-frequency",
		"cancellation_rate":  "cancellation-rate",
		"high_urgency_ratio": "high-urgency-ratio",
		"legacy_transitions": "legacy-transitions",
		"kafka_enabled":      "kafka-enabled",
		"kafka_broker_list":  "kafka-broker-list",
		"output_format":      "output-format",
		"output_path":        "output-path",
		"continuous":         "continuous",
	}
	for key, flag := range flagKeys {
		viper.BindPFlag(key, rootCmd.Flags().Lookup(flag))
	}

	rootCmd.AddCommand(seedCmd, statsCmd, syncCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
	viper.AutomaticEnv()
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

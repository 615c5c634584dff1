package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"housesim/pkg/config"
	"housesim/pkg/experiment"
	"housesim/pkg/market"
	"housesim/pkg/policy"
	"housesim/pkg/report"
	"housesim/pkg/storage"
)

var (
	flagConfig      string
	flagExperiments int
	flagMaxRounds   int
	flagSeed        uint64
	flagWorkers     int
	flagCSV         string
	flagDB          string
	flagVerbose     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "housesim",
		Short: "housesim simulates round-based house matching under optimal-stopping policies.",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run an experiment and print its summary",
		RunE:  runExperiment,
	}
	runCmd.Flags().StringVarP(&flagConfig, "config", "c", "", "experiment YAML file (omit for the built-in comparison)")
	runCmd.Flags().IntVar(&flagExperiments, "experiments", 100, "number of independent simulation runs")
	runCmd.Flags().IntVar(&flagMaxRounds, "max-rounds", 0, "round cap per run (0 = engine default)")
	runCmd.Flags().Uint64Var(&flagSeed, "seed", 42, "base random seed")
	runCmd.Flags().IntVar(&flagWorkers, "workers", 0, "parallel workers (0 = GOMAXPROCS)")
	runCmd.Flags().StringVar(&flagCSV, "csv", "", "also write per-policy stats to this CSV file")
	runCmd.Flags().StringVar(&flagDB, "db", "", "also persist the summary to this sqlite database")
	runCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List experiments persisted in a sqlite database",
		RunE:  showHistory,
	}
	historyCmd.Flags().StringVar(&flagDB, "db", "", "sqlite database to read")
	historyCmd.MarkFlagRequired("db")

	// Provider keys for LLM-backed policies live in .env during
	// development, same lookup chain as running from a subdirectory.
	for _, envFile := range []string{
		".env",
		"../../.env",
	} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(historyCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runExperiment(cmd *cobra.Command, args []string) error {
	logger := log.New(os.Stderr)
	if flagVerbose {
		logger.SetLevel(log.DebugLevel)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	name := "basic-comparison"
	specs, generator, opts := defaultExperiment()
	if flagConfig != "" {
		cfg, err := config.LoadConfig(flagConfig)
		if err != nil {
			return err
		}
		if cfg.Name != "" {
			name = cfg.Name
		}
		specs, err = cfg.BuildAgentSpecs(ctx)
		if err != nil {
			return err
		}
		generator, err = cfg.BuildGenerator()
		if err != nil {
			return err
		}
		opts = experiment.Options{
			Experiments: cfg.Experiments,
			MaxRounds:   cfg.MaxRounds,
			Seed:        cfg.Seed,
			Workers:     cfg.Workers,
		}
	}

	if cmd.Flags().Changed("experiments") || opts.Experiments == 0 {
		opts.Experiments = flagExperiments
	}
	if cmd.Flags().Changed("max-rounds") {
		opts.MaxRounds = flagMaxRounds
	}
	if cmd.Flags().Changed("seed") {
		opts.Seed = flagSeed
	}
	if cmd.Flags().Changed("workers") {
		opts.Workers = flagWorkers
	}
	opts.Logger = logger

	summary, err := experiment.Run(ctx, specs, generator, opts)
	if err != nil {
		return fmt.Errorf("experiment failed: %w", err)
	}

	report.Write(os.Stdout, summary)

	if flagCSV != "" {
		f, err := os.Create(flagCSV)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := report.WriteCSV(f, summary); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		logger.Info("wrote per-policy stats", "path", flagCSV)
	}

	if flagDB != "" {
		store := storage.NewSQLiteStore(flagDB)
		if err := store.Init(ctx); err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer store.Close()

		record := storage.ExperimentRecord{
			ID:          uuid.NewString(),
			Name:        name,
			CreatedAt:   time.Now().UTC(),
			Seed:        opts.Seed,
			Experiments: opts.Experiments,
			MaxRounds:   opts.MaxRounds,
			Summary:     summary,
		}
		if err := store.SaveExperiment(ctx, record); err != nil {
			return fmt.Errorf("save experiment: %w", err)
		}
		logger.Info("persisted experiment", "id", record.ID, "db", flagDB)
	}

	return nil
}

func showHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	store := storage.NewSQLiteStore(flagDB)
	if err := store.Init(ctx); err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	records, err := store.ListExperiments(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("no experiments recorded")
		return nil
	}
	for _, record := range records {
		fmt.Printf("%s  %s  %s  runs=%d  seed=%d  mean_efficiency=%.3f\n",
			record.CreatedAt.Format(time.RFC3339),
			record.ID,
			record.Name,
			record.Experiments,
			record.Seed,
			experiment.Mean(record.Summary.EfficiencyScores),
		)
	}
	return nil
}

// defaultExperiment mirrors the policy comparison the tool is usually
// run with: greedy vs two thresholds vs the secretary rule, over a
// uniform market of 100 houses.
func defaultExperiment() ([]experiment.AgentSpec, market.Generator, experiment.Options) {
	specs := []experiment.AgentSpec{
		{Name: "Greedy", New: func() policy.Policy { return policy.NewGreedy() }, Count: 10},
		{Name: "Threshold_6", New: func() policy.Policy { return policy.NewThreshold(6.0) }, Count: 10},
		{Name: "Threshold_8", New: func() policy.Policy { return policy.NewThreshold(8.0) }, Count: 10},
		{Name: "Optimal_Stopping", New: func() policy.Policy { return policy.NewOptimalStopping(0.1) }, Count: 10},
	}
	generator := market.Uniform(100, 1.0, 10.0)
	opts := experiment.Options{
		Experiments: 100,
		MaxRounds:   30,
		Seed:        42,
	}
	return specs, generator, opts
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/Digital-Creators-Team/slot-machine-core/config"
	"github.com/Digital-Creators-Team/slot-machine-core/engine"
	"github.com/Digital-Creators-Team/slot-machine-core/events/kafka"
	"github.com/Digital-Creators-Team/slot-machine-core/logging"
	"github.com/Digital-Creators-Team/slot-machine-core/server"
	appwire "github.com/Digital-Creators-Team/slot-machine-core/wire"
)

var (
	version    = getVersion()
	configFile = ""
)

// getVersion returns the module version from build info
func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
	}
	return "dev"
}

// loadConfig loads the configured file or falls back to defaults
func loadConfig() (*config.Config, error) {
	if configFile == "" {
		return config.Default(), nil
	}
	return config.Load(configFile)
}

// buildEngine constructs a hydrated engine from configuration
func buildEngine(cfg *config.Config) (*engine.Engine, server.StorageInspector, error) {
	logger := appwire.ProvideLogger(cfg)

	rules, err := appwire.ProvideRules(cfg)
	if err != nil {
		return nil, nil, err
	}

	st, inspector, err := appwire.ProvideStore(cfg, rules, logger)
	if err != nil {
		return nil, nil, err
	}

	game := appwire.ProvideEngine(rules, st, logger)
	game.Hydrate(context.Background())
	return game, inspector, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:     "slotcore",
		Short:   "Slot machine engine - game state and progression service",
		Version: version,
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (YAML)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP game service",
		RunE:  runServe,
	}

	spinCmd := &cobra.Command{
		Use:   "spin",
		Short: "Run a single spin against the persisted state",
		RunE:  runSpin,
	}
	spinCmd.Flags().Int64P("bet", "b", 0, "Wager for this spin (default: current bet)")

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Print session statistics",
		RunE:  runStats,
	}

	backupCmd := &cobra.Command{
		Use:   "backup",
		Short: "Export or import a versioned backup",
	}
	exportCmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Write a backup document (default: dated filename)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runExport,
	}
	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Restore state from a backup document",
		Args:  cobra.ExactArgs(1),
		RunE:  runImport,
	}
	backupCmd.AddCommand(exportCmd, importCmd)

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Discard all progress and restore defaults",
		RunE:  runReset,
	}
	resetCmd.Flags().Bool("force", false, "Reset without confirmation")

	rootCmd.AddCommand(serveCmd, spinCmd, statsCmd, backupCmd, resetCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := logging.New(cfg.Logging)

	game, inspector, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	producer, err := kafka.NewProducer(kafka.ProducerConfig{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create telemetry producer: %w", err)
	}
	if producer != nil {
		game.Subscribe(producer.Listener())
	}

	app := server.New(server.Options{
		Config:  cfg,
		Logger:  logger,
		Game:    game,
		Storage: inspector,
	})
	app.UseCommonMiddlewares()
	app.RegisterRoutes()

	if producer != nil {
		app.OnShutdown(func() {
			if err := producer.Close(); err != nil {
				logger.Error().Err(err).Msg("Error closing telemetry producer")
			}
		})
	}

	return app.Run()
}

func runSpin(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	game, _, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if bet, _ := cmd.Flags().GetInt64("bet"); bet > 0 {
		if err := game.SetBet(ctx, bet); err != nil {
			return err
		}
	}

	outcome, err := game.Spin(ctx)
	if err != nil {
		return err
	}

	emojis := make([]string, 0, len(outcome.Symbols))
	for _, s := range outcome.Symbols {
		emojis = append(emojis, s.Emoji())
	}
	fmt.Printf("%s %s %s\n", emojis[0], emojis[1], emojis[2])
	if outcome.Payout > 0 {
		fmt.Printf("Won %s (bet %d)\n", engine.FormatAmount(outcome.Payout), outcome.Bet)
	} else {
		fmt.Printf("No win (bet %d)\n", outcome.Bet)
	}
	fmt.Printf("Balance: %d  Level: %d\n", outcome.Balance, outcome.Level)
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	game, _, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(game.Stats(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	game, _, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	data, filename, err := game.ExportBackup()
	if err != nil {
		return err
	}
	if len(args) > 0 {
		filename = args[0]
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return err
	}
	fmt.Printf("Backup written to %s\n", filename)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	game, _, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	if err := game.ImportBackup(context.Background(), data); err != nil {
		return err
	}

	state := game.State()
	fmt.Printf("Restored: balance %d, account %d, level %d\n",
		state.Balance, state.AccountBalance, state.PlayerLevel)
	return nil
}

func runReset(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	if !force {
		fmt.Print("Discard all progress? [y/N]: ")
		var response string
		fmt.Scanln(&response) //nolint:errcheck
		if response != "y" && response != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	game, _, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	if err := game.Reset(context.Background()); err != nil {
		return err
	}
	fmt.Println("Game reset to defaults.")
	return nil
}

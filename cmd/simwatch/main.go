package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/simwatch/internal/config"
)

var (
	configFile    string
	presetName    string
	logPath       string
	logLevel      string
	url           string
	recordSession bool
	speed         float64
	scrubStep     float64
	at            float64
	svgOut        string
	csvOut        string
	attackers     []string
	targets       []string
)

// main registers the commands and runs the root command. It exits with
// status 1 if the command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:           "simwatch",
		Short:         "live monitor for a remote agent simulation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&presetName, "preset", "", "deployment preset")
	rootCmd.PersistentFlags().StringVar(&logPath, "log", "", "log file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "minimum log level (debug, info, warn, error)")

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "connect to the simulation and open the monitor",
		Args:  cobra.NoArgs,
		RunE:  runWatch,
	}
	watchCmd.Flags().StringVar(&url, "url", "", "websocket url of the simulation")
	watchCmd.Flags().BoolVar(&recordSession, "record", false, "record the session")
	watchCmd.Flags().Float64Var(&scrubStep, "step", 1, "scrub step in simulation time")

	playbackCmd := &cobra.Command{
		Use:   "playback [recording]",
		Short: "replay a recorded session in the monitor",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlayback,
	}
	playbackCmd.Flags().Float64Var(&speed, "speed", 1, "playback speed factor (0 = as fast as possible)")
	playbackCmd.Flags().Float64Var(&scrubStep, "step", 1, "scrub step in simulation time")

	viewCmd := &cobra.Command{
		Use:   "view [recording]",
		Short: "print the event view of a recording at a time",
		Args:  cobra.ExactArgs(1),
		RunE:  runView,
	}
	viewCmd.Flags().Float64Var(&at, "at", -1, "timeline cursor (default: last time in the recording)")
	viewCmd.Flags().StringVar(&svgOut, "svg", "", "write the map at the end of the recording as svg")
	viewCmd.Flags().StringVar(&csvOut, "csv", "", "write events up to the cursor as csv")
	viewCmd.Flags().StringSliceVar(&attackers, "attacker", nil, "with --target, only list events by these attackers")
	viewCmd.Flags().StringSliceVar(&targets, "target", nil, "with --attacker, only list events against these agents")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded sessions",
		Args:  cobra.NoArgs,
		RunE:  listRecordings,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list deployment presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Printf("  %-10s %s (%d kinds, %d categories)\n", name, p.Description, len(p.Kinds), len(p.Categories))
			}
			return nil
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "manage configuration files",
	}
	configInitCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a config file with the defaults",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfig,
	}
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(watchCmd, playbackCmd, viewCmd, listCmd, presetsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig layers the config file, preset, environment and flags.
func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if presetName != "" {
		p := config.GetPreset(presetName)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", presetName, config.ListPresets())
		}
		cfg.ApplyPreset(p)
	}
	if err := cfg.ParseEnv(); err != nil {
		return nil, err
	}
	if url != "" {
		cfg.URL = url
	}
	if recordSession {
		cfg.Record = true
	}
	if logPath != "" {
		cfg.LogPath = logPath
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openLog sends structured logs to a file so they stay off the terminal the
// TUI draws on. The returned func closes the file.
func openLog(cfg *config.Config) (*slog.Logger, func(), error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		return nil, nil, fmt.Errorf("log level %q: %w", cfg.LogLevel, err)
	}
	if cfg.LogPath == "" || cfg.LogPath == "-" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := tea.LogToFile(cfg.LogPath, "simwatch")
	if err != nil {
		return nil, nil, fmt.Errorf("open log: %w", err)
	}
	log := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)
	return log, func() { f.Close() }, nil
}

func initConfig(cmd *cobra.Command, args []string) error {
	path := "simwatch.yaml"
	if len(args) > 0 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	cfg := config.DefaultConfig()
	if presetName != "" {
		p := config.GetPreset(presetName)
		if p == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", presetName, config.ListPresets())
		}
		cfg.ApplyPreset(p)
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

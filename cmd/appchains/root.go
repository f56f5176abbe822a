package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/adamwoolhether/appchains"
	"github.com/adamwoolhether/appchains/internal/config"
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath   string
	token        string
	host         string
	beaconHost   string
	scheme       string
	port         int
	pollInterval time.Duration
	timeout      time.Duration
	verbose      bool
}

var rootCmd = &cobra.Command{
	Use:          "appchains",
	Short:        "Run AppChains reports and beacon lookups",
	Long:         "appchains submits chains to the Sequencing.com AppChains service,\nwaits for the jobs to finish and prints their reports.",
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&rootFlags.configPath, "config", "", "Path to YAML config (default: user config dir)")
	f.StringVar(&rootFlags.token, "token", "", "OAuth bearer token")
	f.StringVar(&rootFlags.host, "host", "", "AppChains API host")
	f.StringVar(&rootFlags.beaconHost, "beacon-host", "", "Beacon host")
	f.StringVar(&rootFlags.scheme, "scheme", "", "URL scheme (http or https)")
	f.IntVar(&rootFlags.port, "port", 0, "API port")
	f.DurationVar(&rootFlags.pollInterval, "poll-interval", 0, "Pause between job status queries")
	f.DurationVar(&rootFlags.timeout, "timeout", 0, "Give up on a report after this long (0 = wait forever)")
	f.BoolVarP(&rootFlags.verbose, "verbose", "v", false, "Log every poll round")

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(beaconCmd)
	rootCmd.Version = version
}

// loadConfig resolves file, environment and flags, in that order.
func loadConfig(cmd *cobra.Command) (appchains.Config, error) {
	cfg, err := config.Load(rootFlags.configPath)
	if err != nil {
		return appchains.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("token") {
		cfg.Token = rootFlags.token
	}
	if flags.Changed("host") {
		cfg.Host = rootFlags.host
	}
	if flags.Changed("beacon-host") {
		cfg.BeaconHost = rootFlags.beaconHost
	}
	if flags.Changed("scheme") {
		cfg.Scheme = rootFlags.scheme
	}
	if flags.Changed("port") {
		cfg.Port = rootFlags.port
	}
	if flags.Changed("poll-interval") {
		cfg.PollInterval = rootFlags.pollInterval
	}
	if flags.Changed("timeout") {
		cfg.Timeout = rootFlags.timeout
	}

	return cfg, nil
}

func newClient(cmd *cobra.Command, opts ...appchains.Option) (*appchains.Client, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	level := slog.LevelWarn
	if rootFlags.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	c, err := appchains.New(cfg, append([]appchains.Option{appchains.WithLogger(logger)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("building client: %w", err)
	}

	return c, nil
}

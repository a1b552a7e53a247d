package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/claimsort/internal/config"
	"github.com/crimson-sun/claimsort/internal/logging"
	"github.com/crimson-sun/claimsort/internal/server"
	"github.com/crimson-sun/claimsort/internal/service"
)

const version = "0.2.0"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "claimsort",
	Short: "HTTP scoring service for insurance claim classification",
	Long: `claimsort serves a trained claim classification model over HTTP.

Claim descriptions are encoded against a fixed vocabulary, padded to the
model's row width, and scored as auto (1) or home (0) insurance claims.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("claimsort v%s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")
	rootCmd.AddCommand(versionCmd)
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	logging.Init(cfg.Log.Format, logging.ParseLevel(cfg.Log.Level))

	svc := service.New()
	defer svc.Close()

	// A failed Initialize is terminal for scoring but not for the process:
	// the server still comes up so the readiness probe reports the Failed
	// state instead of the listener disappearing.
	if err := svc.Initialize(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "claimsort: initialization failed: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(svc, cfg.Server.Addr)
	return srv.Run(ctx, cfg.Server.ShutdownTimeout)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "claimsort: %v\n", err)
		os.Exit(1)
	}
}

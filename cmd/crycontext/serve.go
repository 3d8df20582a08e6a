package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/SakshiKukreja04/BabyCare-sub002/internal/codec"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the CryContext gRPC API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	f := serveCmd.Flags()
	f.String("listen", "", "gRPC listen address")
	f.String("classifier", "", "classifier gRPC address; empty rejects audio requests")
	f.String("timeout", "", "per-request budget, e.g. 5s")
	f.String("lookback", "", "feeding/sleep history loaded per request, e.g. 24h")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	var classifier server.Classifier
	if cfg.ClassifierAddr != "" {
		client, err := codec.NewClassifierClient(cfg.ClassifierAddr)
		if err != nil {
			return err
		}
		defer client.Close()
		classifier = client
	}

	srv := server.New(st, newEngine(), newHarness(), classifier, logger, server.Options{
		Timeout:  cfg.RequestTimeout,
		Lookback: cfg.Lookback,
	})

	lis, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.ListenAddr, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("crycontext ready", "db", cfg.DBPath, "classifier", cfg.ClassifierAddr)
	return srv.Serve(ctx, lis)
}

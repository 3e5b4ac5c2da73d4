package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"orunmila/internal/agent"
	"orunmila/internal/config"
	"orunmila/internal/dispatch"
	"orunmila/internal/provider"
	"orunmila/internal/server"
	"orunmila/internal/telex"
)

var (
	version    = "0.1.0"
	configPath string // overridable via --config flag
)

func main() {
	root := &cobra.Command{
		Use:   "orunmila",
		Short: "Orunmila: Yoruba history & culture AI agent for Telex.im",
		Long:  "Orunmila relays Telex.im chat events to an LLM backend with a Yoruba history and culture persona and posts the generated replies back.",
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config file (optional; env vars always apply)")

	root.AddCommand(serveCmd())
	root.AddCommand(checkCmd())
	root.AddCommand(versionCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook relay server",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Server.SlogLevel()}))

	completer, err := provider.New(cfg.LLM, logger)
	if err != nil {
		return err
	}
	logger.Info("completion provider ready", "provider", completer.Name(), "model", cfg.LLM.Model)

	generator := agent.NewGenerator(completer, logger)

	messenger := telex.NewClient(telex.Config{
		APIURL: cfg.Telex.APIURL,
		APIKey: cfg.Telex.APIKey,
		BotID:  cfg.Telex.BotID,
		Logger: logger,
	})

	dispatcher := dispatch.New(dispatch.Config{
		Answerer:  generator,
		Sender:    messenger,
		Logger:    logger,
		Workers:   cfg.Dispatch.Workers,
		QueueSize: cfg.Dispatch.QueueSize,
	})
	defer dispatcher.Close()

	srv := server.New(server.Options{
		Config:     cfg,
		Dispatcher: dispatcher,
		Generator:  generator,
		Messenger:  messenger,
		Logger:     logger,
		Version:    version,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Start(ctx)
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify configuration and completion-service reachability",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				fmt.Printf("FAIL config: %v\n", err)
				return err
			}
			fmt.Println("ok   config: valid")

			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
			completer, err := provider.New(cfg.LLM, logger)
			if err != nil {
				fmt.Printf("FAIL provider: %v\n", err)
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := completer.Healthy(ctx); err != nil {
				fmt.Printf("FAIL %s: %v\n", completer.Name(), err)
				return err
			}
			fmt.Printf("ok   %s: reachable\n", completer.Name())

			if cfg.Telex.APIKey == "" {
				fmt.Println("warn telex: no API key configured, outbound delivery will fail")
			} else {
				fmt.Println("ok   telex: API key configured")
			}
			if cfg.Telex.WebhookSecret == "" {
				fmt.Println("warn telex: no webhook secret configured, signature verification disabled")
			}
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("orunmila v%s\n", version)
		},
	}
}

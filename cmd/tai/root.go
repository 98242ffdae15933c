package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/taigo/tai/pkg/chat"
	"github.com/taigo/tai/pkg/config"
	"github.com/taigo/tai/pkg/history"
	"github.com/taigo/tai/pkg/model"
	"github.com/taigo/tai/pkg/model/anthropic"
	"github.com/taigo/tai/pkg/tool"
	"github.com/taigo/tai/pkg/tool/builtin"
	"github.com/taigo/tai/pkg/workspace"
)

func newRootCmd() *cobra.Command {
	var (
		nocontext    bool
		contexts     []string
		clearHistory bool
	)

	cmd := &cobra.Command{
		Use:           "tai [message...]",
		Short:         "AI assistant for your terminal",
		Long:          "tai answers questions and performs tasks on this machine by calling tools. Shell commands always ask for confirmation before they run.",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			if clearHistory {
				if err := clearInteractionHistory(); err != nil {
					return err
				}
				if len(args) == 0 {
					return nil
				}
			}
			if len(args) == 0 {
				return cmd.Help()
			}
			return runChat(cmd.Context(), strings.Join(args, " "), nocontext, contexts)
		},
	}

	cmd.Flags().BoolVar(&nocontext, "nocontext", false, "skip context file discovery")
	cmd.Flags().StringSliceVar(&contexts, "context", nil, "named context(s) to include")
	cmd.Flags().BoolVar(&clearHistory, "clear-history", false, "clear the interaction history and exit")

	cmd.AddCommand(newConfigCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cmd.SetContext(ctx)
	cobra.OnFinalize(stop)
	return cmd
}

func runChat(ctx context.Context, message string, nocontext bool, named []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to resolve working directory: %w", err)
	}
	ws, err := workspace.New(cwd)
	if err != nil {
		return err
	}

	reg := tool.NewRegistry()
	if err := builtin.RegisterDefaults(reg, ws, builtin.NewTerminalConfirmer()); err != nil {
		return err
	}

	providers := model.NewProviderSet(anthropic.NewProvider(nil))
	temp := cfg.Temperature
	mdl, err := providers.Build(ctx, model.Config{
		Provider:    cfg.Provider,
		Model:       cfg.Model,
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.EffectiveAPIKey(),
		MaxTokens:   cfg.MaxTokens,
		Temperature: &temp,
	})
	if err != nil {
		return err
	}

	base := ""
	if cfg.BaseURL != "" {
		base = "; base: " + cfg.BaseURL
	}
	fmt.Printf("Using provider %s (model: %s%s)\n", cfg.Provider, cfg.Model, base)

	var contextFiles []config.ContextFile
	if !nocontext {
		contextFiles, err = config.DiscoverContexts(cfg, named)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to load context files: %v\n", err)
			contextFiles = nil
		}
	}
	if len(contextFiles) > 0 {
		names := make([]string, len(contextFiles))
		for i, c := range contextFiles {
			names[i] = c.Source
		}
		fmt.Printf("Using context files: [%s]\n", strings.Join(names, ", "))
	}

	hist, err := loadInteractionHistory(cfg.HistorySize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	session := chat.NewSession(mdl, reg, hist,
		chat.WithDisplay(newTerminalDisplay()),
		chat.WithMaxIterations(cfg.MaxToolIterations),
	)

	_, err = session.Step(ctx, message, contextFiles)
	return err
}

func loadInteractionHistory(limit int) (*history.History, error) {
	path, err := history.DefaultPath()
	if err != nil {
		return nil, fmt.Errorf("failed to locate history file: %w", err)
	}
	h, err := history.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	if limit > 0 {
		h.SetLimit(limit)
	}
	return h, nil
}

func clearInteractionHistory() error {
	path, err := history.DefaultPath()
	if err != nil {
		return err
	}
	h, err := history.Load(path)
	if err != nil {
		return err
	}
	if err := h.Clear(); err != nil {
		return err
	}
	fmt.Println("History cleared.")
	return nil
}

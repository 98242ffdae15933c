package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taigo/tai/pkg/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and change tai settings",
	}
	cmd.AddCommand(newConfigSetCmd(), newConfigShowCmd())
	return cmd
}

func newConfigSetCmd() *cobra.Command {
	var global bool
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a config value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Set(args[0], args[1], global); err != nil {
				return err
			}
			scope := "local"
			if global {
				scope = "global"
			}
			fmt.Printf("Set %s = %s (%s)\n", args[0], args[1], scope)
			return nil
		},
	}
	cmd.Flags().BoolVar(&global, "global", false, "write to the global config instead of the project config")
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the merged configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			fmt.Printf("provider            = %s\n", cfg.Provider)
			fmt.Printf("model               = %s\n", cfg.Model)
			fmt.Printf("temperature         = %g\n", cfg.Temperature)
			fmt.Printf("max_tokens          = %d\n", cfg.MaxTokens)
			fmt.Printf("history_size        = %d\n", cfg.HistorySize)
			fmt.Printf("max_tool_iterations = %d\n", cfg.MaxToolIterations)
			if cfg.BaseURL != "" {
				fmt.Printf("base_url            = %s\n", cfg.BaseURL)
			}
			if len(cfg.GlobalContexts) > 0 {
				fmt.Printf("global_contexts     = %v\n", cfg.GlobalContexts)
			}
			if cfg.EffectiveAPIKey() != "" {
				fmt.Println("anthropic_api_key   = ***")
			}
			return nil
		},
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"meridian-hq/saturn/pkg/boundary"
	"meridian-hq/saturn/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and boundaries",
	Long: `Check the configuration file and, when one is configured, the
boundaries document for structural and semantic errors.

Examples:
  # Validate the default config
  saturn validate

  # Validate a specific config file
  saturn validate --config /etc/saturn/config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	fmt.Printf("config ok: %s\n", cfgFile)

	if cfg.Boundaries.Path == "" {
		fmt.Println("boundaries: using built-in defaults")
		return nil
	}
	if _, err := os.Stat(cfg.Boundaries.Path); err != nil {
		return fmt.Errorf("boundaries file: %w", err)
	}
	doc, err := boundary.LoadDocument(cfg.Boundaries.Path)
	if err != nil {
		return fmt.Errorf("loading boundaries: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("invalid boundaries: %w", err)
	}

	effective := boundary.Apply(boundary.Default(), doc)
	fmt.Printf("boundaries ok: %s\n", cfg.Boundaries.Path)
	fmt.Printf("  max auto expense:       %.2f\n", effective.Financial.MaxAutoExpense)
	fmt.Printf("  max daily spend:        %.2f\n", effective.Financial.MaxDailySpend)
	fmt.Printf("  approval required over: %.2f\n", effective.Financial.RequireApprovalAbove)
	fmt.Printf("  max auto posts/day:     %d\n", effective.Content.MaxAutoPostsPerDay)
	fmt.Printf("  max auto blogs/week:    %d\n", effective.Content.MaxAutoBlogsPerWeek)
	return nil
}

package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"meridian-hq/saturn/pkg/action"
	"meridian-hq/saturn/pkg/boundary"
	"meridian-hq/saturn/pkg/clock"
	"meridian-hq/saturn/pkg/config"
	"meridian-hq/saturn/pkg/escalation"
	"meridian-hq/saturn/pkg/events"
	"meridian-hq/saturn/pkg/risk"
	"meridian-hq/saturn/pkg/routing"
)

var simulateFlags struct {
	actionType string
	engine     string
	params     []string
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Dry-run an action through classification and routing",
	Long: `Run a hypothetical action through risk classification, boundary
checks and routing, and print the decision. Nothing is executed,
queued or recorded.

Examples:
  # A small expense
  saturn simulate --type expense:pay --param amount=25

  # A production deploy with code changes
  saturn simulate --type deploy:production --param files_changed=12 --param lines_changed=400

  # A trade
  saturn simulate --type trade:buy --engine trading --param amount=100 --param token=SOL`,
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().StringVar(&simulateFlags.actionType, "type", "", "action type, e.g. expense:pay (required)")
	simulateCmd.Flags().StringVar(&simulateFlags.engine, "engine", "simulator", "originating engine")
	simulateCmd.Flags().StringArrayVar(&simulateFlags.params, "param", nil, "action parameter as key=value (repeatable)")
	_ = simulateCmd.MarkFlagRequired("type")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if _, statErr := os.Stat(cfgFile); statErr == nil {
		loaded, err := config.LoadConfigWithEnvOverrides(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	store := boundary.NewStore(boundary.Default())
	if cfg.Boundaries.Path != "" {
		if err := store.LoadFile(cfg.Boundaries.Path); err != nil {
			return fmt.Errorf("loading boundaries: %w", err)
		}
	}

	params, err := parseParams(simulateFlags.params)
	if err != nil {
		return err
	}
	a := &action.Action{
		ID:     "simulated",
		Type:   simulateFlags.actionType,
		Engine: simulateFlags.engine,
		Params: params,
		Status: action.StatusPending,
	}

	clk := clock.System()
	checker := boundary.NewChecker(store, clk)
	router := routing.NewRouter(
		risk.NewClassifier(clk),
		checker,
		store,
		escalation.NewManager(events.NewBus(), clk),
		events.NewBus(),
		clk,
	)
	decision := router.Route(a)

	fmt.Printf("action:  %s (engine %s)\n", a.Type, a.Engine)
	fmt.Printf("route:   %s\n", decision.Route)
	fmt.Printf("reason:  %s\n", decision.Reason)
	fmt.Printf("risk:    %d (%s)\n", decision.Risk.Score, decision.Risk.Level)
	if decision.Risk.Reversible {
		fmt.Printf("rollback: %s\n", decision.Risk.RollbackHint)
	}
	for _, f := range decision.Risk.Factors {
		fmt.Printf("  factor %-20s value=%-8.1f threshold=%-8.1f weight=%.1f\n",
			f.Name, f.Value, f.Threshold, f.Weight)
	}
	for _, v := range decision.Check.Violations {
		fmt.Printf("  violation: %s\n", v)
	}
	for _, w := range decision.Check.Warnings {
		fmt.Printf("  warning:   %s\n", w)
	}
	return nil
}

// parseParams turns key=value pairs into action params. Numeric
// values become float64 so the checker and classifier can read them.
func parseParams(pairs []string) (map[string]interface{}, error) {
	params := make(map[string]interface{}, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid --param %q, want key=value", pair)
		}
		if n, err := strconv.ParseFloat(value, 64); err == nil {
			params[key] = n
		} else {
			params[key] = value
		}
	}
	return params, nil
}

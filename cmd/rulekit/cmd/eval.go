package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/meridian-crm/rulekit/internal/engine"
	"github.com/meridian-crm/rulekit/internal/rulefile"
	"github.com/meridian-crm/rulekit/internal/types"
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Evaluate an event against a rule file without a server",
	Long: `Eval loads rules from a file and processes a single event read from
a JSON file (or stdin with -). Dispatch requests are printed instead of
delivered, making this the dry-run tool for new rules.`,
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().String("rules", "", "rule file (YAML or JSON)")
	evalCmd.Flags().String("event", "", "event JSON file, or - for stdin")
	evalCmd.Flags().Bool("test-mode", false, "force test mode on the event")
	evalCmd.MarkFlagRequired("rules")
	evalCmd.MarkFlagRequired("event")
}

func runEval(cmd *cobra.Command, args []string) error {
	rulesPath, _ := cmd.Flags().GetString("rules")
	eventPath, _ := cmd.Flags().GetString("event")
	testMode, _ := cmd.Flags().GetBool("test-mode")

	rules, err := rulefile.LoadFile(rulesPath)
	if err != nil {
		return err
	}

	var eventData []byte
	if eventPath == "-" {
		eventData, err = io.ReadAll(os.Stdin)
	} else {
		eventData, err = os.ReadFile(eventPath)
	}
	if err != nil {
		return fmt.Errorf("failed to read event: %w", err)
	}

	var pc types.ProcessingContext
	if err := json.Unmarshal(eventData, &pc); err != nil {
		return fmt.Errorf("failed to parse event: %w", err)
	}
	if testMode {
		pc.TestMode = true
	}

	ruleRefs := make([]*types.BusinessRule, len(rules))
	for i := range rules {
		if rules[i].ID == "" {
			rules[i].ID = types.NewRuleID()
		}
		ruleRefs[i] = &rules[i]
	}

	collector := &engine.CollectDispatcher{}
	eng := engine.New(collector)

	results, err := eng.Process(context.Background(), &pc, ruleRefs)
	if err != nil {
		return err
	}

	output := struct {
		Results    []types.ExecutionResult `json:"results"`
		Dispatched []types.DispatchRequest `json:"dispatched"`
	}{
		Results:    results,
		Dispatched: collector.Collected(),
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

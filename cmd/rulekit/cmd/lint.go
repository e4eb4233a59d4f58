package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meridian-crm/rulekit/internal/engine"
	"github.com/meridian-crm/rulekit/internal/rulefile"
)

var lintCmd = &cobra.Command{
	Use:   "lint <rule-file>...",
	Short: "Validate rule files without touching a database",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runLint,
}

func init() {
	rootCmd.AddCommand(lintCmd)
}

func runLint(cmd *cobra.Command, args []string) error {
	failed := 0

	for _, path := range args {
		rules, err := rulefile.LoadFile(path)
		if err != nil {
			fmt.Printf("%s: %v\n", path, err)
			failed++
			continue
		}

		for _, rule := range rules {
			findings := engine.ValidateRule(&rule)
			if len(findings) == 0 {
				fmt.Printf("%s: %q ok\n", path, rule.Name)
				continue
			}
			failed++
			fmt.Printf("%s: %q invalid\n", path, rule.Name)
			for _, finding := range findings {
				fmt.Printf("  - %s\n", finding)
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d rule(s) failed validation", failed)
	}
	return nil
}

package main

import (
	"os"

	"github.com/meridian-crm/rulekit/cmd/rulekit/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

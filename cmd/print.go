package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func printField(label, value string) {
	color.Set(color.FgCyan)
	fmt.Print(label)
	color.Unset()
	fmt.Printf(": %s\n", value)
}

// checkMissingFlags reports the required flags that were not set. It
// returns true when any is missing.
func checkMissingFlags(cmd *cobra.Command, flags []string) bool {
	var missingFlags []string
	var providedFlags []string
	for _, required := range flags {
		if !cmd.Flag(required).Changed {
			missingFlags = append(missingFlags, "--"+required)
		} else {
			providedFlags = append(providedFlags, fmt.Sprintf("--%s=%s", required, cmd.Flag(required).Value.String()))
		}
	}

	if len(missingFlags) == 0 {
		return false
	}

	color.Red("missing: %s\n", strings.Join(missingFlags, " "))
	if len(providedFlags) > 0 {
		color.Green("provided: %s\n", strings.Join(providedFlags, " "))
	}
	return true
}

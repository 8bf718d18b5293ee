package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pxkundu/awdx"
)

var explainCmd = &cobra.Command{
	Use:   "explain <RULE_ID>",
	Short: "Show detailed information about a detection rule",
	Args:  cobra.ExactArgs(1),
	RunE:  runExplain,
}

func init() {
	rootCmd.AddCommand(explainCmd)
}

func runExplain(cmd *cobra.Command, args []string) error {
	found, err := awdx.ExplainRule(args[0], awdx.WithCustomRules(flagRules))
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()

	if strings.ToLower(flagFormat) == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(found)
	}

	color := func(code, text string) string {
		if flagNoColor {
			return text
		}
		return code + text + "\033[0m"
	}

	bold := "\033[1m"
	dim := "\033[2m"
	yellow := "\033[33m"
	cyan := "\033[36m"
	red := "\033[31m"
	green := "\033[32m"

	sevColor := cyan
	switch found.Severity {
	case "CRITICAL":
		sevColor = red + bold
	case "HIGH":
		sevColor = red
	case "MEDIUM":
		sevColor = yellow
	}

	fmt.Fprintf(w, "\n%s %s\n", color(dim, "Rule:"), color(bold, found.ID))
	fmt.Fprintf(w, "%s %s\n", color(dim, "Name:"), found.Name)
	fmt.Fprintf(w, "%s %s\n", color(dim, "Severity:"), color(sevColor, found.Severity))
	fmt.Fprintf(w, "%s %s\n", color(dim, "Category:"), found.Category)

	if found.Description != "" {
		fmt.Fprintf(w, "\n%s\n%s\n", color(bold, "Description:"), found.Description)
	}
	if found.Remediation != "" {
		fmt.Fprintf(w, "\n%s\n%s\n", color(bold, "Fix:"), found.Remediation)
	}

	if len(found.Patterns) > 0 {
		fmt.Fprintf(w, "\n%s\n", color(bold, "Patterns:"))
		for i, p := range found.Patterns {
			fmt.Fprintf(w, "  %d. %s\n", i+1, color(dim, p))
		}
	}
	if len(found.ExcludePatterns) > 0 {
		fmt.Fprintf(w, "\n%s\n", color(bold, "Exclusions:"))
		for i, p := range found.ExcludePatterns {
			fmt.Fprintf(w, "  %d. %s\n", i+1, color(dim, p))
		}
	}

	if len(found.TruePositives) > 0 {
		fmt.Fprintf(w, "\n%s\n", color(bold, "True Positives:"))
		for _, ex := range found.TruePositives {
			fmt.Fprintf(w, "  %s %s\n", color(red, "✖"), ex)
		}
	}
	if len(found.FalsePositives) > 0 {
		fmt.Fprintf(w, "\n%s\n", color(bold, "False Positives:"))
		for _, ex := range found.FalsePositives {
			fmt.Fprintf(w, "  %s %s\n", color(green, "✔"), ex)
		}
	}

	fmt.Fprintln(w)
	return nil
}

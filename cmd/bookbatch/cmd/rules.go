package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inkwhale/bookbatch/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage the stored validation rules",
}

// rulesInstallCmd replaces the stored rule set from a YAML document.
var rulesInstallCmd = &cobra.Command{
	Use:   "install <file>",
	Short: "Install validation rules from a YAML file",
	Long: `Install validation rules from a YAML file, replacing the stored set.

The document groups rule trees per site:

  sites:
    nlgo:
      - name: registry-record
        operator: AND
        children:
          - name: isbn-shape
            property: ea_isbn
            pattern: "^[0-9]{13}$"

The document is compiled before anything is written; a broken pattern
leaves the stored rules untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: runRulesInstall,
}

func init() {
	rulesCmd.AddCommand(rulesInstallCmd)
	rootCmd.AddCommand(rulesCmd)
}

func runRulesInstall(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	doc, err := rules.ParseFile(args[0])
	if err != nil {
		return err
	}
	if err := rules.Install(cmd.Context(), a.rules, doc); err != nil {
		return err
	}

	rows, err := doc.Flatten()
	if err != nil {
		return err
	}
	fmt.Printf("installed %d rules from %s\n", len(rows), args[0])
	return nil
}

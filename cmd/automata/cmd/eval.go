package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/solatis/automata/internal/automation"
	"github.com/solatis/automata/internal/provider"
)

var (
	evalTrigger   string
	evalVariables string
	evalLocale    string
)

// evalCmd evaluates a definition locally without a server or database.
var evalCmd = &cobra.Command{
	Use:   "eval DEFINITION",
	Short: "Compile and evaluate an automation definition file",
	Args:  cobra.ExactArgs(1),
	RunE:  runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().StringVar(&evalTrigger, "trigger", "", "JSON trigger payload file")
	evalCmd.Flags().StringVar(&evalVariables, "variables", "", "JSON object of variable overrides")
	evalCmd.Flags().StringVar(&evalLocale, "locale", "en", "locale for error messages")
}

func runEval(cmd *cobra.Command, args []string) error {
	definition, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read definition: %w", err)
	}
	trigger, err := readOptional(evalTrigger)
	if err != nil {
		return err
	}
	variables, err := readOptional(evalVariables)
	if err != nil {
		return err
	}

	logger := newCLILogger(cmd)
	tag := automation.ParseLanguage(evalLocale)

	engine, err := automation.NewEngine(automation.WithLogger(logger))
	if err != nil {
		return err
	}
	compiled, err := engine.Compile(definition)
	if err != nil {
		return fmt.Errorf("%s", automation.Localize(err, tag))
	}
	data, err := provider.ParseDataContext(trigger, variables)
	if err != nil {
		return fmt.Errorf("%s", automation.Localize(err, tag))
	}
	result, err := compiled.Evaluate(cmd.Context(), data)
	if err != nil {
		return fmt.Errorf("%s", automation.Localize(err, tag))
	}

	fmt.Fprintln(cmd.OutOrStdout(), result)
	return nil
}

func readOptional(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return b, nil
}

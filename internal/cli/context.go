package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var contextName string

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Manage your user context on the server",
	Long: `The user context describes you (location, offerings, needs, network) and
drives opportunity detection. Contexts are stored by name; "default" is used
when none is given.

Examples:
  circlemap context set me.yaml
  circlemap context get
  circlemap context set work.yaml --name work`,
}

var contextSetCmd = &cobra.Command{
	Use:   "set <file>",
	Short: "Store a user context from a YAML or JSON file",
	Args:  cobra.ExactArgs(1),
	RunE:  runContextSet,
}

var contextGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show a stored user context",
	Args:  cobra.NoArgs,
	RunE:  runContextGet,
}

func init() {
	contextCmd.PersistentFlags().StringVar(&contextName, "name", "default", "context name")
	contextCmd.AddCommand(contextSetCmd)
	contextCmd.AddCommand(contextGetCmd)
}

func runContextSet(cmd *cobra.Command, args []string) error {
	uc, err := readUserContext(args[0])
	if err != nil {
		return err
	}
	if err := apiClient().PutContext(cmd.Context(), contextName, uc); err != nil {
		return fmt.Errorf("store context: %w", err)
	}
	return emit(uc, func() { fmt.Printf("Stored context %q\n", contextName) })
}

func runContextGet(cmd *cobra.Command, args []string) error {
	uc, err := apiClient().GetContext(cmd.Context(), contextName)
	if err != nil {
		return fmt.Errorf("get context: %w", err)
	}
	if jsonOut {
		return printJSON(uc)
	}
	out, err := yaml.Marshal(uc)
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}

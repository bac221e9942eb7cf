package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/raphaelgruber/circlemap/internal/models"
	"github.com/raphaelgruber/circlemap/internal/parser"
)

var overlaySource string

var overlayCmd = &cobra.Command{
	Use:   "overlay",
	Short: "Manage profile overlays stored on the server",
	Long: `Overlays are enrichment records merged into a member's profile before
matching: contact notes, manual edits and LLM output.

Examples:
  circlemap overlay list
  circlemap overlay set sarah-kim sarah.yaml
  circlemap overlay set sarah-kim notes/sarah.md
  circlemap overlay get sarah-kim
  circlemap overlay delete sarah-kim`,
}

var overlaySetCmd = &cobra.Command{
	Use:   "set <profile-id> <file>",
	Short: "Store an overlay from a YAML, JSON or Markdown contact note file",
	Args:  cobra.ExactArgs(2),
	RunE:  runOverlaySet,
}

var overlayGetCmd = &cobra.Command{
	Use:   "get <profile-id>",
	Short: "Show a stored overlay",
	Args:  cobra.ExactArgs(1),
	RunE:  runOverlayGet,
}

var overlayListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profile ids with an overlay",
	Args:  cobra.NoArgs,
	RunE:  runOverlayList,
}

var overlayDeleteCmd = &cobra.Command{
	Use:   "delete <profile-id>",
	Short: "Delete a stored overlay",
	Args:  cobra.ExactArgs(1),
	RunE:  runOverlayDelete,
}

func init() {
	overlaySetCmd.Flags().StringVar(&overlaySource, "source", "", "overlay source: manual, note or llm (default manual, note for .md files)")

	overlayCmd.AddCommand(overlaySetCmd)
	overlayCmd.AddCommand(overlayGetCmd)
	overlayCmd.AddCommand(overlayListCmd)
	overlayCmd.AddCommand(overlayDeleteCmd)
}

func runOverlaySet(cmd *cobra.Command, args []string) error {
	id, path := args[0], args[1]
	data, err := readInput(path)
	if err != nil {
		return err
	}

	source := overlaySource
	if strings.EqualFold(filepath.Ext(path), ".md") {
		note, err := parser.ParseContactNote(string(data))
		if err != nil {
			return err
		}
		if data, err = yaml.Marshal(note.Overlay()); err != nil {
			return fmt.Errorf("encode note overlay: %w", err)
		}
		if source == "" {
			source = models.OverlaySourceNote
		}
	}

	o, err := apiClient().PutOverlay(cmd.Context(), id, source, data)
	if err != nil {
		return fmt.Errorf("store overlay: %w", err)
	}
	return emit(o, func() { fmt.Printf("Stored overlay for %s\n", id) })
}

func runOverlayGet(cmd *cobra.Command, args []string) error {
	o, err := apiClient().GetOverlay(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("get overlay: %w", err)
	}
	if jsonOut {
		return printJSON(o)
	}
	out, err := yaml.Marshal(o)
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}

func runOverlayList(cmd *cobra.Command, args []string) error {
	ids, err := apiClient().ListOverlays(cmd.Context())
	if err != nil {
		return fmt.Errorf("list overlays: %w", err)
	}
	return emit(ids, func() {
		if len(ids) == 0 {
			fmt.Println("No overlays stored")
			return
		}
		for _, id := range ids {
			fmt.Println(id)
		}
	})
}

func runOverlayDelete(cmd *cobra.Command, args []string) error {
	if err := apiClient().DeleteOverlay(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("delete overlay: %w", err)
	}
	if !jsonOut {
		fmt.Printf("Deleted overlay for %s\n", args[0])
	}
	return nil
}

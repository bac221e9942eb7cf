package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/circlemap/internal/deep"
	"github.com/raphaelgruber/circlemap/internal/models"
	"github.com/raphaelgruber/circlemap/internal/service"
)

var (
	matchMinScore int
	matchLimit    int

	oppContextFile string
	oppMax         int

	connectLimit int

	normalizeOverlay string
)

var matchCmd = &cobra.Command{
	Use:   "match <chat.txt> [person-a person-b]",
	Short: "Score introductions between members",
	Long: `Score how serendipitous an introduction would be. With two names, score
that pair in detail; otherwise rank every pair in the group.

Overlays from --overlays deepen the profiles (career, scenes, obsessions),
which is where most connections come from.

Examples:
  circlemap match _chat.txt --overlays notes/
  circlemap match _chat.txt "Mike Chen" "Sarah Kim" --overlays notes/
  circlemap match _chat.txt --min-score 50 --limit 5`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 && len(args) != 3 {
			return errors.New("expected a chat file, optionally followed by two names")
		}
		return nil
	},
	RunE: runMatch,
}

var opportunitiesCmd = &cobra.Command{
	Use:   "opportunities <chat.txt>",
	Short: "Find members you can help or who can help you",
	Long: `Rank members against your user context: what you offer, need and know,
and where you are.

The context is a YAML or JSON file:

  name: Raphael
  location: Bangkok
  offerings: [AI mentorship]
  needs: [designer]

Examples:
  circlemap opportunities _chat.txt --context me.yaml --overlays notes/`,
	Args: cobra.ExactArgs(1),
	RunE: runOpportunities,
}

var connectCmd = &cobra.Command{
	Use:   "connect [chat.txt]",
	Short: "Suggest introductions between contacts",
	Long: `Suggest introductions where one person's needs meet another's offering,
or where location, industry, roles or interests line up. Without a chat file
only the contacts in --overlays are considered.

Examples:
  circlemap connect _chat.txt --overlays notes/
  circlemap connect --overlays notes/ --limit 20`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConnect,
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize [chat.txt] [name]",
	Short: "Show the deep profile the matcher works on",
	Long: `Print the normalized deep profile of a member, or of a standalone overlay
file with --overlay.

Examples:
  circlemap normalize _chat.txt "Sarah Kim" --overlays notes/
  circlemap normalize --overlay sarah.yaml`,
	Args: cobra.MaximumNArgs(2),
	RunE: runNormalize,
}

func init() {
	for _, c := range []*cobra.Command{matchCmd, opportunitiesCmd, connectCmd, normalizeCmd} {
		c.Flags().StringVar(&overlayDir, "overlays", "", "directory of contact notes (*.md) and overlays (*.yaml, *.json)")
	}

	matchCmd.Flags().IntVar(&matchMinScore, "min-score", 0, "drop pairs scoring below this (0-100)")
	matchCmd.Flags().IntVarP(&matchLimit, "limit", "n", 10, "max pairs to show")

	opportunitiesCmd.Flags().StringVarP(&oppContextFile, "context", "c", "", "user context file (YAML or JSON)")
	opportunitiesCmd.Flags().IntVarP(&oppMax, "max", "n", 0, "max candidates (default from config)")
	_ = opportunitiesCmd.MarkFlagRequired("context")

	connectCmd.Flags().IntVarP(&connectLimit, "limit", "n", 10, "max introductions to show")

	normalizeCmd.Flags().StringVar(&normalizeOverlay, "overlay", "", "normalize a standalone overlay file")
}

func runMatch(cmd *cobra.Command, args []string) error {
	if matchMinScore < 0 || matchMinScore > 100 {
		return fmt.Errorf("--min-score must be 0-100, got %d", matchMinScore)
	}

	svc, _, err := analyzeChat(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if len(args) == 3 {
		a, ok := svc.Registry.Deep(args[1])
		if !ok {
			return fmt.Errorf("person not found: %s", args[1])
		}
		b, ok := svc.Registry.Deep(args[2])
		if !ok {
			return fmt.Errorf("person not found: %s", args[2])
		}
		res := svc.Match.Pair(a, b)
		return emit(res, func() { printMatch(res, a.Name, b.Name) })
	}

	roster := svc.Registry.DeepAll()
	results, err := svc.Match.ScoreAll(cmd.Context(), roster, service.MatchOptions{
		MinScore: matchMinScore,
		Limit:    matchLimit,
	})
	if err != nil {
		return err
	}

	names := make(map[string]string, len(roster))
	for _, d := range roster {
		names[d.ID] = d.Name
	}
	return emit(results, func() {
		if len(results) == 0 {
			fmt.Println("No connections found")
			fmt.Println(hint("Add overlays with --overlays to give the matcher more to work with"))
			return
		}
		for i, r := range results {
			if i > 0 {
				fmt.Println()
			}
			printMatch(r, names[r.ProfileA], names[r.ProfileB])
		}
	})
}

func printMatch(r models.MatchResult, nameA, nameB string) {
	fmt.Printf("%s  %s\n",
		heading(fmt.Sprintf("%s ↔ %s", orDash(nameA), orDash(nameB))),
		styled(defaultTheme.statusStyle(), fmt.Sprintf("serendipity %d, confidence %d", r.SerendipityScore, r.ConfidenceScore)))
	for _, c := range r.Connections {
		fmt.Printf("  %-22s %3d  %s\n", c.Dimension, c.Strength, c.Detail)
	}
	if r.BestHook != "" {
		fmt.Printf("  Hook: %s\n", r.BestHook)
	}
	if r.IntroMessage != "" {
		fmt.Printf("  %s\n", hint(r.IntroMessage))
	}
}

func runOpportunities(cmd *cobra.Command, args []string) error {
	uc, err := readUserContext(oppContextFile)
	if err != nil {
		return err
	}

	svc, _, err := analyzeChat(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	limit := oppMax
	if limit <= 0 {
		limit = cfg.MaxResults
	}
	out, err := svc.Match.Opportunities(cmd.Context(), uc, svc.Registry.DeepAll(), limit)
	if err != nil {
		return err
	}

	return emit(out, func() {
		if len(out) == 0 {
			fmt.Println("No opportunities found")
			return
		}
		fmt.Printf("%-22s %-5s %-17s %s\n", "NAME", "SCORE", "TYPE", "REASON")
		fmt.Println("------------------------------------------------------------------------")
		for _, o := range out {
			fmt.Printf("%-22s %-5d %-17s %s\n", o.Name, o.Score, o.Primary.Type, o.Reason)
		}
	})
}

func runConnect(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" && overlayDir == "" {
		return errors.New("give a chat file, --overlays, or both")
	}

	svc, _, err := analyzeChat(cmd.Context(), path)
	if err != nil {
		return err
	}

	out, err := svc.Match.CrossConnections(cmd.Context(), svc.Registry.Contacts())
	if err != nil {
		return err
	}
	if connectLimit > 0 && len(out) > connectLimit {
		out = out[:connectLimit]
	}

	return emit(out, func() {
		if len(out) == 0 {
			fmt.Println("No introductions found")
			return
		}
		for _, c := range out {
			fmt.Printf("%s  %s\n", heading(c.PersonA+" ↔ "+c.PersonB), styled(defaultTheme.statusStyle(), fmt.Sprintf("score %d", c.Score)))
			for _, r := range c.Reasons {
				fmt.Printf("  • %s\n", r)
			}
			fmt.Printf("  %s\n\n", hint(c.IntroMessage))
		}
	})
}

func runNormalize(cmd *cobra.Command, args []string) error {
	if normalizeOverlay != "" {
		data, err := readInput(normalizeOverlay)
		if err != nil {
			return err
		}
		o, err := deep.ParseOverlay(data)
		if err != nil {
			return err
		}
		return printJSON(deep.Normalize(deep.Partial{Overlay: &o}))
	}

	if len(args) != 2 {
		return errors.New("give a chat file and a name, or --overlay")
	}
	svc, _, err := analyzeChat(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	d, ok := svc.Registry.Deep(args[1])
	if !ok {
		return fmt.Errorf("person not found: %s", strings.TrimSpace(args[1]))
	}
	// deep profiles are nested; JSON is the readable form
	return printJSON(d)
}

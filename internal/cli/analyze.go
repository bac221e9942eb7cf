package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/circlemap/internal/models"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <chat.txt>",
	Short: "Summarize a WhatsApp group export",
	Long: `Parse a WhatsApp export and print the group summary: stats, members,
network roles and meetup suggestions. Use "-" to read from stdin.

Examples:
  circlemap analyze _chat.txt
  circlemap analyze _chat.txt --json > analysis.json`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var profilesCmd = &cobra.Command{
	Use:   "profiles <chat.txt> [name]",
	Short: "Show member profiles",
	Long: `Show every member profile, or the full profile of one member by name or id.

Examples:
  circlemap profiles _chat.txt
  circlemap profiles _chat.txt "Sarah Kim"`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runProfiles,
}

var graphCmd = &cobra.Command{
	Use:   "graph <chat.txt> [name]",
	Short: "Show the interaction graph",
	Long: `Show relationship edges between members, strongest first. With a name,
only the edges touching that member.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runGraph,
}

var networkCmd = &cobra.Command{
	Use:   "network <chat.txt>",
	Short: "Show hubs, connectors and lurkers",
	Args:  cobra.ExactArgs(1),
	RunE:  runNetwork,
}

var suggestCmd = &cobra.Command{
	Use:   "suggest <chat.txt>",
	Short: "Suggest meetups for members sharing a city and an interest",
	Args:  cobra.ExactArgs(1),
	RunE:  runSuggest,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	_, a, err := analyzeChat(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	return emit(a, func() {
		s := a.Stats
		fmt.Println(heading("Group"))
		fmt.Printf("  Messages: %d\n", s.TotalMessages)
		fmt.Printf("  Members:  %d\n", s.TotalMembers)
		if s.FirstDate != "" {
			fmt.Printf("  Period:   %s - %s\n", s.FirstDate, s.LastDate)
		}
		fmt.Println()

		printProfileTable(a.Profiles)
		fmt.Println()
		printRoles(a.Roles)
		fmt.Println()
		printSuggestions(a.Suggestions)
	})
}

func runProfiles(cmd *cobra.Command, args []string) error {
	svc, a, err := analyzeChat(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if len(args) == 1 {
		return emit(a.Profiles, func() { printProfileTable(a.Profiles) })
	}

	p, ok := svc.Registry.Get(args[1])
	if !ok {
		return fmt.Errorf("member not found: %s", args[1])
	}
	return emit(p, func() { printProfile(p) })
}

func runGraph(cmd *cobra.Command, args []string) error {
	svc, a, err := analyzeChat(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	edges := append([]models.RelationshipEdge(nil), a.Edges...)
	if len(args) == 2 {
		name := args[1]
		if p, ok := svc.Registry.Get(name); ok {
			name = p.DisplayName
		}
		edges = edges[:0]
		for _, e := range a.Edges {
			if e.Involves(name) {
				edges = append(edges, e)
			}
		}
	}
	sort.SliceStable(edges, func(i, j int) bool { return edges[i].Strength > edges[j].Strength })

	return emit(edges, func() {
		if len(edges) == 0 {
			fmt.Println("No interactions found")
			return
		}
		fmt.Printf("%-20s %-20s %-8s %-9s %-8s %-7s %s\n", "PERSON A", "PERSON B", "STRENGTH", "LABEL", "REPLIES", "SPEED", "TONE")
		fmt.Println("----------------------------------------------------------------------------------------")
		for _, e := range edges {
			fmt.Printf("%-20s %-20s %-8d %-9s %-8d %-7s %s\n",
				e.PersonA, e.PersonB, e.Strength, e.Label, e.Interactions, e.ResponseSpeed, e.Informality)
		}
	})
}

func runNetwork(cmd *cobra.Command, args []string) error {
	_, a, err := analyzeChat(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return emit(a.Roles, func() { printRoles(a.Roles) })
}

func runSuggest(cmd *cobra.Command, args []string) error {
	_, a, err := analyzeChat(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return emit(a.Suggestions, func() { printSuggestions(a.Suggestions) })
}

func printProfileTable(profiles []models.Profile) {
	fmt.Println(heading("Members"))
	fmt.Printf("%-22s %-8s %-8s %-14s %s\n", "NAME", "MSGS", "ACTIVITY", "LOCATION", "INTERESTS")
	fmt.Println("------------------------------------------------------------------------")
	for _, p := range profiles {
		fmt.Printf("%-22s %-8d %-8s %-14s %s\n",
			p.DisplayName, p.MessageCount, p.ActivityLevel, orDash(p.Location.Primary), list(p.InterestCategories(), 3))
	}
}

func printProfile(p models.Profile) {
	fmt.Println(heading(p.DisplayName))
	fmt.Printf("  ID: %s\n", p.ID)
	fmt.Printf("  Messages: %d (%s activity)\n", p.MessageCount, p.ActivityLevel)
	fmt.Printf("  Seen: %s - %s\n", p.FirstSeen, p.LastSeen)
	if p.Location.Primary != "" {
		fmt.Printf("  Location: %s (%.1f) %s\n", p.Location.Primary, p.Location.Confidence, hint(list(p.Location.Cities, 0)))
	}
	fmt.Printf("  Timing: %s\n", p.Timing.Pattern)

	if len(p.Interests) > 0 {
		fmt.Println("\n  Interests:")
		for _, in := range p.Interests {
			fmt.Printf("    %-16s %.2f  %s\n", in.Category, in.Confidence, hint(list(in.Keywords, 5)))
		}
	}
	if len(p.Affinities) > 0 {
		fmt.Println("\n  Affinities:")
		keys := make([]string, 0, len(p.Affinities))
		for k := range p.Affinities {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("    %-16s %s\n", k, list(p.Affinities[k], 5))
		}
	}
	if len(p.Mentions) > 0 || len(p.MentionedBy) > 0 {
		fmt.Printf("\n  Mentions: %s\n", list(p.Mentions, 0))
		fmt.Printf("  Mentioned by: %s\n", list(p.MentionedBy, 0))
	}
	if len(p.Emoji.Top) > 0 {
		fmt.Print("\n  Emoji:")
		for _, e := range p.Emoji.Top {
			fmt.Printf(" %s×%d", e.Emoji, e.Count)
		}
		fmt.Println()
	}
	if len(p.Links) > 0 {
		fmt.Println("\n  Links:")
		for _, l := range p.Links {
			fmt.Printf("    [%s] %s\n", l.Type, l.URL)
		}
	}
}

func printRoles(r models.NetworkRoles) {
	printRole := func(title string, entries []models.RoleEntry) {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, fmt.Sprintf("%s (%d)", e.Name, e.Count))
		}
		fmt.Printf("  %-11s %s\n", title+":", list(names, 0))
	}

	fmt.Println(heading("Network"))
	printRole("Hubs", r.Hubs)
	printRole("Connectors", r.Connectors)
	printRole("Lurkers", r.Lurkers)
}

func printSuggestions(suggestions []models.Suggestion) {
	fmt.Println(heading("Meetup ideas"))
	if len(suggestions) == 0 {
		fmt.Println(hint("  none yet: no city and interest shared by two members"))
		return
	}
	for _, s := range suggestions {
		fmt.Printf("  %s %s (%d%%)\n", s.Emoji, s.Title, s.Confidence)
		fmt.Printf("    %s\n", hint(list(s.Participants, 0)))
	}
}

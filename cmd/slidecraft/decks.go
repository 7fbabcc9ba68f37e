package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/Rrens/slidecraft/internal/domain"
	"github.com/Rrens/slidecraft/internal/service"
	"github.com/spf13/cobra"
)

var searchQuery string

var decksCmd = &cobra.Command{
	Use:   "decks",
	Short: "Manage saved decks",
	Long: `List and manage saved decks.

Subcommands:
  list    - List saved decks
  show    - Print a deck
  delete  - Delete a deck
  export  - Write a deck to a text file`,
}

var decksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved decks",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		decks, err := a.decks.List(ctx, localOwner, domain.DeckFilter{Query: searchQuery})
		if err != nil {
			return err
		}

		if len(decks) == 0 {
			fmt.Println("No saved decks found.")
			return nil
		}

		fmt.Println(strings.Repeat("─", 72))
		for _, d := range decks {
			saved := ""
			if d.SavedAt != nil {
				saved = d.SavedAt.Local().Format("2006-01-02 15:04")
			}
			fmt.Printf("  %s  %-8s %2d slides  %s  %s\n", d.ID, d.Mode, d.SlideCount, saved, d.Title)
		}
		fmt.Println(strings.Repeat("─", 72))
		fmt.Printf("Total: %d decks\n", len(decks))
		return nil
	}),
}

var decksShowCmd = &cobra.Command{
	Use:   "show <deck-id>",
	Short: "Print a saved deck",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		_, text, err := a.decks.Export(ctx, localOwner, args[0])
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	}),
}

var decksDeleteCmd = &cobra.Command{
	Use:   "delete <deck-id>",
	Short: "Delete a saved deck",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		if err := a.decks.Delete(ctx, localOwner, args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	}),
}

var decksExportCmd = &cobra.Command{
	Use:   "export <deck-id>",
	Short: "Write a saved deck to a text file",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		deck, err := a.decks.Get(ctx, localOwner, args[0])
		if err != nil {
			return err
		}

		filename, text := service.ExportDeck(deck)
		if outFile != "" {
			filename = outFile
		}
		if err := os.WriteFile(filename, []byte(text), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", filename, err)
		}
		fmt.Printf("Wrote %s\n", filename)
		return nil
	}),
}

func init() {
	decksListCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "Only decks whose title contains this text")
	decksExportCmd.Flags().StringVarP(&outFile, "out", "o", "", "Output file (default derived from the title)")

	decksCmd.AddCommand(decksListCmd)
	decksCmd.AddCommand(decksShowCmd)
	decksCmd.AddCommand(decksDeleteCmd)
	decksCmd.AddCommand(decksExportCmd)
}

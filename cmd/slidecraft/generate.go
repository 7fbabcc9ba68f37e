package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Rrens/slidecraft/internal/domain"
	"github.com/Rrens/slidecraft/internal/export"
	"github.com/spf13/cobra"
)

var (
	tone       string
	slideCount int
	focus      []string
	inputFile  string
	save       bool
	outFile    string
)

var generateCmd = &cobra.Command{
	Use:   "generate <topic>",
	Short: "Create a new deck on a topic",
	Args:  cobra.MinimumNArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		result, err := a.generation.Create(ctx, localOwner, domain.GenerationRequest{
			Topic:            strings.Join(args, " "),
			Tone:             domain.Tone(tone),
			TargetSlideCount: slideCount,
			Provider:         provider,
			Model:            model,
		})
		if err != nil {
			return err
		}
		return finish(ctx, a, result)
	}),
}

var improveCmd = &cobra.Command{
	Use:   "improve",
	Short: "Improve an existing draft read from --file or stdin",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		content, err := readDraft(inputFile)
		if err != nil {
			return err
		}

		areas := make([]domain.FocusArea, len(focus))
		for i, f := range focus {
			areas[i] = domain.FocusArea(f)
		}

		result, err := a.generation.Improve(ctx, localOwner, domain.GenerationRequest{
			SourceContent: content,
			FocusAreas:    areas,
			Provider:      provider,
			Model:         model,
		})
		if err != nil {
			return err
		}
		return finish(ctx, a, result)
	}),
}

func readDraft(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read draft: %w", err)
	}
	return string(data), nil
}

// finish prints or writes the deck and optionally saves it
func finish(ctx context.Context, a *app, result *domain.GenerationResult) error {
	text := export.Format(result.Deck)

	if outFile != "" {
		if err := os.WriteFile(outFile, []byte(text), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", outFile, err)
		}
		fmt.Printf("Wrote %s\n", outFile)
	} else {
		fmt.Println(text)
	}

	if save {
		saved, err := a.decks.Save(ctx, localOwner, result.Deck)
		if err != nil {
			return err
		}
		fmt.Printf("Saved deck %s\n", saved.ID)
	}

	fmt.Fprintf(os.Stderr, "%s via %s/%s, %d tokens, %dms\n",
		result.Charge.Kind, result.Provider, result.Model, result.TokensUsed, result.LatencyMs)
	return nil
}

func init() {
	for _, cmd := range []*cobra.Command{generateCmd, improveCmd} {
		cmd.Flags().StringVar(&provider, "provider", "", "LLM provider (default from config)")
		cmd.Flags().StringVar(&model, "model", "", "Model name (default per provider)")
		cmd.Flags().BoolVar(&save, "save", false, "Save the deck after generation")
		cmd.Flags().StringVarP(&outFile, "out", "o", "", "Write the text export to a file")
	}

	generateCmd.Flags().StringVar(&tone, "tone", "", "professional, academic, persuasive or simple")
	generateCmd.Flags().IntVarP(&slideCount, "slides", "n", 0, "Number of slides (default 10)")

	improveCmd.Flags().StringVarP(&inputFile, "file", "f", "", "Draft file (default stdin)")
	improveCmd.Flags().StringSliceVar(&focus, "focus", nil, "Focus areas: clarity, design, speaker_notes, structure")
}

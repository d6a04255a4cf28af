package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"editzen-backend/internal/client"
	"editzen-backend/internal/models"
	"editzen-backend/internal/widget"
)

var errNoSuggestions = errors.New("no suggestions for this image")

func runAnalyze(ctx context.Context, api *client.Client, out io.Writer, imageURL string) error {
	panel := widget.NewAnalysisPanel(api, func(models.TransformationKind) {})
	defer panel.Close()

	done := panel.SetImage(ctx, imageURL)
	fmt.Fprintln(out, widget.AnalysisLoadingText)

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	return renderAnalysis(out, panel.View())
}

func renderAnalysis(out io.Writer, view widget.AnalysisView) error {
	if view.Error != "" {
		return errors.New(view.Error)
	}
	if view.Hidden {
		return nil
	}

	fmt.Fprintf(out, "\n%s\n", view.Description)
	if len(view.Objects) > 0 {
		fmt.Fprintf(out, "\nObjects Detected: %s\n", strings.Join(view.Objects, ", "))
	}
	if len(view.Colors) > 0 {
		fmt.Fprintf(out, "Dominant Colors:  %s\n", strings.Join(view.Colors, ", "))
	}
	for _, kind := range view.Actions {
		fmt.Fprintf(out, "  -> Try %s\n", kind)
	}
	return nil
}

func runSuggest(ctx context.Context, api *client.Client, out io.Writer, imageURL string, t models.SuggestionType) error {
	if !t.Valid() {
		return fmt.Errorf("transformation type must be remove or recolor, got %q", t)
	}

	panel := widget.NewSuggestionPanel(api, nil)
	defer panel.Close()

	done := panel.SetImage(ctx, imageURL, t)
	fmt.Fprintln(out, widget.SuggestionsLoadingText)

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	return renderSuggestions(out, panel.View())
}

func renderSuggestions(out io.Writer, view widget.SuggestionsView) error {
	if view.Hidden || len(view.Buttons) == 0 {
		return errNoSuggestions
	}

	fmt.Fprintln(out)
	for i, b := range view.Buttons {
		line := fmt.Sprintf("%d. %s (%s)", i+1, b.Label, b.Value)
		if b.Color != "" {
			line += " color: " + b.Color
		}
		if b.HighConfidence {
			line += " *"
		}
		fmt.Fprintln(out, line)
	}
	return nil
}

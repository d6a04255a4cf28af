package widget

import (
	"context"

	"editzen-backend/internal/models"
)

const SuggestionsLoadingText = "Analyzing image for suggestions..."

type suggester interface {
	Suggest(ctx context.Context, imageURL string, t models.SuggestionType) ([]models.PromptSuggestion, error)
}

type suggestionKey struct {
	imageURL string
	t        models.SuggestionType
}

type SuggestionButton struct {
	Label          string
	Value          string
	Color          string // only set for recolor
	HighConfidence bool
}

type SuggestionsView struct {
	Hidden      bool
	Loading     bool
	LoadingText string
	Buttons     []SuggestionButton
}

// SuggestionPanel shows smart prompts for the active tool. Errors and empty
// results render nothing.
type SuggestionPanel struct {
	p      panel[suggestionKey, []models.PromptSuggestion]
	onPick func(value, color string)
}

func NewSuggestionPanel(api suggester, onPick func(value, color string)) *SuggestionPanel {
	return &SuggestionPanel{
		p: panel[suggestionKey, []models.PromptSuggestion]{
			fetch: func(ctx context.Context, k suggestionKey) ([]models.PromptSuggestion, error) {
				return api.Suggest(ctx, k.imageURL, k.t)
			},
		},
		onPick: onPick,
	}
}

// SetImage reacts to a new (image, transformation) pair. Types other than
// remove and recolor clear the panel.
func (s *SuggestionPanel) SetImage(ctx context.Context, imageURL string, t models.SuggestionType) <-chan struct{} {
	key := suggestionKey{imageURL: imageURL, t: t}
	return s.p.update(ctx, key, imageURL == "" || !t.Valid())
}

func (s *SuggestionPanel) View() SuggestionsView {
	key, state, result, _ := s.p.snapshot()

	switch state {
	case stateLoading:
		return SuggestionsView{Loading: true, LoadingText: SuggestionsLoadingText}
	case stateReady:
		if len(result) == 0 {
			return SuggestionsView{Hidden: true}
		}
		recolor := key.t == models.SuggestRecolor

		buttons := make([]SuggestionButton, 0, len(result))
		for _, sug := range result {
			b := SuggestionButton{
				Label:          sug.Label,
				Value:          sug.Value,
				HighConfidence: sug.IsHighConfidence(),
			}
			if recolor {
				b.Color = sug.SuggestedColor
			}
			buttons = append(buttons, b)
		}
		return SuggestionsView{Buttons: buttons}
	default:
		return SuggestionsView{Hidden: true}
	}
}

// Pick forwards the i-th rendered suggestion to the editing surface.
func (s *SuggestionPanel) Pick(i int) bool {
	view := s.View()
	if i < 0 || i >= len(view.Buttons) || s.onPick == nil {
		return false
	}
	b := view.Buttons[i]
	s.onPick(b.Value, b.Color)
	return true
}

func (s *SuggestionPanel) Close() { s.p.close() }

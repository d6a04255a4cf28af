package widget

import (
	"context"
	"errors"

	"editzen-backend/internal/client"
	"editzen-backend/internal/models"
)

const (
	AnalysisLoadingText = "Analyzing image with AI..."
	AnalysisFailedText  = "Failed to analyze image"
)

type analyzer interface {
	Analyze(ctx context.Context, imageURL string) (*models.ImageAnalysisResult, error)
}

// AnalysisView is what the analysis panel renders. Hidden means render
// nothing at all.
type AnalysisView struct {
	Hidden      bool
	Loading     bool
	LoadingText string
	Error       string
	Description string
	Objects     []string
	Colors      []string
	// Actions lists the suggested transformations as buttons. It is only
	// populated when a select handler is attached.
	Actions []models.TransformationKind
}

type AnalysisPanel struct {
	p        panel[string, *models.ImageAnalysisResult]
	onSelect func(models.TransformationKind)
}

// NewAnalysisPanel builds a panel. onSelect may be nil, in which case no
// transformation buttons are offered.
func NewAnalysisPanel(api analyzer, onSelect func(models.TransformationKind)) *AnalysisPanel {
	return &AnalysisPanel{
		p:        panel[string, *models.ImageAnalysisResult]{fetch: api.Analyze},
		onSelect: onSelect,
	}
}

// SetImage reacts to a new image URL. An unchanged URL issues no request.
func (a *AnalysisPanel) SetImage(ctx context.Context, imageURL string) <-chan struct{} {
	return a.p.update(ctx, imageURL, imageURL == "")
}

func (a *AnalysisPanel) View() AnalysisView {
	_, state, result, err := a.p.snapshot()

	switch state {
	case stateLoading:
		return AnalysisView{Loading: true, LoadingText: AnalysisLoadingText}
	case stateFailed:
		return AnalysisView{Error: analysisErrorText(err)}
	case stateReady:
		view := AnalysisView{
			Description: result.Description,
			Objects:     result.Objects,
			Colors:      result.Colors,
		}
		if a.onSelect != nil {
			view.Actions = result.SuggestedTransformations
		}
		return view
	default:
		return AnalysisView{Hidden: true}
	}
}

// Select forwards a clicked transformation to the editing surface.
func (a *AnalysisPanel) Select(kind models.TransformationKind) {
	if a.onSelect != nil && kind.Valid() {
		a.onSelect(kind)
	}
}

func (a *AnalysisPanel) Close() { a.p.close() }

func analysisErrorText(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return AnalysisFailedText
}

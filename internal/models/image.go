package models

// TransformationKind is one of the editing operations EditZen offers.
type TransformationKind string

const (
	TransformationRestore          TransformationKind = "restore"
	TransformationFill             TransformationKind = "fill"
	TransformationRemove           TransformationKind = "remove"
	TransformationRecolor          TransformationKind = "recolor"
	TransformationRemoveBackground TransformationKind = "removeBackground"
)

var transformationKinds = map[TransformationKind]bool{
	TransformationRestore:          true,
	TransformationFill:             true,
	TransformationRemove:           true,
	TransformationRecolor:          true,
	TransformationRemoveBackground: true,
}

func (k TransformationKind) Valid() bool { return transformationKinds[k] }

// SuggestionType is the subset of transformations that accept a
// prompt suggestion.
type SuggestionType string

const (
	SuggestRemove  SuggestionType = "remove"
	SuggestRecolor SuggestionType = "recolor"
)

func (t SuggestionType) Valid() bool {
	return t == SuggestRemove || t == SuggestRecolor
}

const (
	MaxDetectedObjects = 5
	MaxDominantColors  = 4

	// HighConfidenceThreshold is the minimum confidence at which a
	// suggestion is flagged as high confidence.
	HighConfidenceThreshold = 0.8
)

type ImageAnalysisResult struct {
	Description              string               `json:"description"`
	Objects                  []string             `json:"objects"`
	Colors                   []string             `json:"colors"`
	SuggestedTransformations []TransformationKind `json:"suggestedTransformations"`
}

// Normalize caps the label lists, drops unknown transformation kinds and
// replaces nil slices so the result always encodes as JSON arrays.
func (r *ImageAnalysisResult) Normalize() {
	r.Objects = capLabels(r.Objects, MaxDetectedObjects)
	r.Colors = capLabels(r.Colors, MaxDominantColors)

	seen := make(map[TransformationKind]bool)
	kinds := make([]TransformationKind, 0, len(r.SuggestedTransformations))
	for _, k := range r.SuggestedTransformations {
		if !k.Valid() || seen[k] {
			continue
		}
		seen[k] = true
		kinds = append(kinds, k)
	}
	r.SuggestedTransformations = kinds
}

func capLabels(labels []string, limit int) []string {
	if labels == nil {
		return []string{}
	}
	if len(labels) > limit {
		return labels[:limit]
	}
	return labels
}

type PromptSuggestion struct {
	Label          string  `json:"label"`
	Value          string  `json:"value"`
	SuggestedColor string  `json:"suggestedColor,omitempty"`
	Confidence     float64 `json:"confidence"`
}

func (s PromptSuggestion) IsHighConfidence() bool {
	return s.Confidence >= HighConfidenceThreshold
}

// NormalizeSuggestions clamps confidences, strips colors outside recolor
// and drops entries with no prompt value.
func NormalizeSuggestions(in []PromptSuggestion, t SuggestionType) []PromptSuggestion {
	out := make([]PromptSuggestion, 0, len(in))
	for _, s := range in {
		if s.Value == "" {
			continue
		}
		if s.Label == "" {
			s.Label = s.Value
		}
		if t != SuggestRecolor {
			s.SuggestedColor = ""
		}
		switch {
		case s.Confidence < 0:
			s.Confidence = 0
		case s.Confidence > 1:
			s.Confidence = 1
		}
		out = append(out, s)
	}
	return out
}

type AnalyzeRequest struct {
	ImageURL string `json:"imageUrl"`
}

type SuggestRequest struct {
	ImageURL           string         `json:"imageUrl"`
	TransformationType SuggestionType `json:"transformationType"`
}

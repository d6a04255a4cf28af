package services

import (
	"strings"

	"editzen-backend/internal/models"
)

const analysisPrompt = `Analyze this image and provide:
1. A brief description (2-3 sentences)
2. List of main objects detected (up to 5)
3. Dominant colors (up to 4)
4. Suggested transformations from: restore, fill, remove, recolor, removeBackground

Respond in JSON format:
{
  "description": "...",
  "objects": ["object1", "object2"],
  "colors": ["color1", "color2"],
  "suggestedTransformations": ["transform1", "transform2"]
}`

const removeSuggestionPrompt = `Analyze this image and suggest 4-5 objects that could be removed to improve the image.
Focus on: distracting elements, unwanted objects, photobombers, text/watermarks, clutter.

Respond in JSON array format:
[
  {"label": "Display Name", "value": "prompt to use", "confidence": 0.9},
  ...
]`

const recolorSuggestionPrompt = `Analyze this image and suggest 4-5 objects that could be recolored with recommended colors.
Focus on: clothing, accessories, vehicles, furniture, backgrounds.

Respond in JSON array format:
[
  {"label": "Blue Shirt", "value": "shirt", "suggestedColor": "navy blue", "confidence": 0.9},
  ...
]`

const chatSystemPrompt = `You are a helpful AI assistant for EditZen, an AI-powered image editing application.
You help users with:
- Image restoration (removing noise/imperfections)
- Generative fill (extending image dimensions)
- Object removal (removing unwanted objects)
- Object recoloring (changing colors of objects)
- Background removal

IMPORTANT: Respond in plain text only. Do NOT use markdown formatting like asterisks, bullet points, or bold text. Keep responses short and conversational.

Be concise, friendly, and helpful. If users ask about features outside this scope,
politely redirect them to the available editing features.`

const chatAcknowledgement = "Understood! I'm ready to help users with EditZen's image editing features."

func suggestionPrompt(t models.SuggestionType) string {
	if t == models.SuggestRecolor {
		return recolorSuggestionPrompt
	}
	return removeSuggestionPrompt
}

func buildChatSystemPrompt(chatCtx *models.ChatContext) string {
	var b strings.Builder
	b.WriteString(chatSystemPrompt)
	if chatCtx != nil && strings.TrimSpace(chatCtx.TransformationType) != "" {
		b.WriteString("\n\nCurrent transformation: ")
		b.WriteString(strings.TrimSpace(chatCtx.TransformationType))
	}
	return b.String()
}

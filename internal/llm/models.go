package llm

import "celestialview/internal/config"

// AvailableModels lists models known to honour a response schema.
var AvailableModels = []ModelInfo{
	{
		ID:       "gemini-2.5-flash",
		Name:     "Gemini 2.5 Flash",
		Provider: config.ProviderGemini,
	},
	{
		ID:       "gemini-2.5-pro",
		Name:     "Gemini 2.5 Pro",
		Provider: config.ProviderGemini,
	},
	{
		ID:       "gemini-2.0-flash",
		Name:     "Gemini 2.0 Flash",
		Provider: config.ProviderGemini,
	},
	{
		ID:       "google/gemini-2.5-flash",
		Name:     "Gemini 2.5 Flash (OpenRouter)",
		Provider: config.ProviderOpenRouter,
	},
	{
		ID:       "openai/gpt-4o-mini",
		Name:     "GPT-4o mini",
		Provider: config.ProviderOpenRouter,
	},
}

// ModelInfo describes a model.
type ModelInfo struct {
	ID       string
	Name     string
	Provider string
}

// GetModelByID returns model info or nil.
func GetModelByID(modelID string) *ModelInfo {
	for _, m := range AvailableModels {
		if m.ID == modelID {
			return &m
		}
	}
	return nil
}

// IsKnownModel reports whether modelID is catalogued for provider.
func IsKnownModel(provider, modelID string) bool {
	info := GetModelByID(modelID)
	return info != nil && info.Provider == provider
}

// GetModelName returns the display name, or the ID itself when unknown.
func GetModelName(modelID string) string {
	if info := GetModelByID(modelID); info != nil {
		return info.Name
	}
	return modelID
}

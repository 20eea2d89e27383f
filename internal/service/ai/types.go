package ai

import "context"

// ModelPreset represents the model usage preset
type ModelPreset string

// PresetPrecise keeps sampling tight for outputs that must stay inside a
// fixed vocabulary such as the allowed exercise list.
const (
	PresetPrecise  ModelPreset = "precise"
	PresetBalanced ModelPreset = "balanced"
)

// ModelConfig holds model configuration
type ModelConfig struct {
	Temperature      float32
	TopP             float32
	TopK             int
	MaxOutputTokens  int
	ResponseMimeType string // "application/json" or "text/plain"
}

// OpenAIConfig holds OpenAI-specific configuration
type OpenAIConfig struct {
	Temperature float32
	MaxTokens   int
	TopP        float32
}

// GenerateOptions holds options for a single generation.
type GenerateOptions struct {
	JSONMode          bool
	SystemInstruction string
}

// Generation is the raw text produced by a provider plus its provenance.
type Generation struct {
	Text         string
	Provider     string
	Model        string
	UsedFallback bool
}

// ProviderResult is what a single provider call returns.
type ProviderResult struct {
	Text  string
	Model string
}

// Provider is one generative model backend.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string, preset ModelPreset, opts *GenerateOptions) (ProviderResult, error)
	Ping(ctx context.Context) bool
}

// TextGenerator is the narrow interface the plan gateway depends on.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, preset ModelPreset, opts *GenerateOptions) (*Generation, error)
}

// GetPresetConfig returns the configuration for a preset. Gemini 2.5 counts
// thinking tokens against MaxOutputTokens, so the plan presets are generous.
func GetPresetConfig(preset ModelPreset) ModelConfig {
	switch preset {
	case PresetPrecise:
		return ModelConfig{
			Temperature:     0.1,
			TopP:            0.9,
			TopK:            20,
			MaxOutputTokens: 16384,
		}
	case PresetBalanced:
		return ModelConfig{
			Temperature:     0.4,
			TopP:            0.95,
			TopK:            40,
			MaxOutputTokens: 16384,
		}
	default:
		return GetPresetConfig(PresetBalanced)
	}
}

// GetOpenAIPresetConfig returns OpenAI configuration for a preset
func GetOpenAIPresetConfig(preset ModelPreset) OpenAIConfig {
	switch preset {
	case PresetPrecise:
		return OpenAIConfig{
			Temperature: 0.1,
			MaxTokens:   8192,
			TopP:        0.9,
		}
	case PresetBalanced:
		return OpenAIConfig{
			Temperature: 0.4,
			MaxTokens:   8192,
			TopP:        0.95,
		}
	default:
		return GetOpenAIPresetConfig(PresetBalanced)
	}
}

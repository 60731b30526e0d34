package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	genai "google.golang.org/genai"

	"github.com/thywilljoshua/itinerary-architect/internal/model"
)

const (
	DefaultTextModel  = "gemini-3-pro-preview"
	DefaultImageModel = "gemini-2.5-flash-image"
	imageAspectRatio  = "16:9"
)

// models is the part of *genai.Models the adapter calls.
type models interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type connector func(ctx context.Context, apiKey string) (models, error)

// Gemini implements Structurer and Imager. A client is built per call from the current key,
// so a key selected mid-session applies to the next request.
type Gemini struct {
	keys       KeySource
	textModel  string
	imageModel string
	connect    connector
	log        zerolog.Logger
}

type GeminiConfig struct {
	Keys       KeySource
	TextModel  string
	ImageModel string
	Logger     zerolog.Logger
}

func NewGemini(cfg GeminiConfig) *Gemini {
	if cfg.TextModel == "" {
		cfg.TextModel = DefaultTextModel
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = DefaultImageModel
	}
	return &Gemini{
		keys:       cfg.Keys,
		textModel:  cfg.TextModel,
		imageModel: cfg.ImageModel,
		connect:    connectGenAI,
		log:        cfg.Logger,
	}
}

func connectGenAI(ctx context.Context, apiKey string) (models, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, err
	}
	return c.Models, nil
}

func (g *Gemini) client(ctx context.Context) (models, error) {
	key := ""
	if g.keys != nil {
		key = g.keys.APIKey()
	}
	if key == "" {
		return nil, fmt.Errorf("%w: missing GEMINI_API_KEY", ErrAuth)
	}
	m, err := g.connect(ctx, key)
	if err != nil {
		return nil, classify(err)
	}
	return m, nil
}

// Structure asks the text model for the package fields constrained to packageSchema.
func (g *Gemini) Structure(ctx context.Context, text string) (model.Draft, error) {
	var out model.Draft
	m, err := g.client(ctx)
	if err != nil {
		return out, err
	}
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   packageSchema(),
	}
	res, err := m.GenerateContent(ctx, g.textModel, []*genai.Content{
		genai.NewContentFromText(structurePrompt+text, genai.RoleUser),
	}, cfg)
	if err != nil {
		g.log.Error().Err(err).Str("model", g.textModel).Msg("gemini structuring call failed")
		return out, classify(err)
	}
	if reason := blocked(res); reason != "" {
		return out, fmt.Errorf("%w: %s", ErrContentFiltered, reason)
	}

	js := strings.TrimSpace(res.Text())
	g.log.Debug().Int("bytes", len(js)).Msg("gemini structuring response")
	if js == "" {
		return out, ErrEmptyResponse
	}

	js = stripCodeFences(js)
	if err := json.Unmarshal([]byte(js), &out); err != nil {
		// Try to find first JSON object in the text
		s := findFirstJSON(js)
		if s == "" {
			g.log.Warn().Str("response", preview(js)).Msg("no JSON object in model output")
			return model.Draft{}, fmt.Errorf("%w: %w", ErrMalformedOutput, err)
		}
		out = model.Draft{}
		if err2 := json.Unmarshal([]byte(s), &out); err2 != nil {
			return model.Draft{}, fmt.Errorf("%w: %w", ErrMalformedOutput, err2)
		}
	}
	g.log.Info().Int("days", len(out.Itinerary)).Str("package", out.PackageName).Msg("structured itinerary")
	return out, nil
}

// GenerateImage asks the image model for one 16:9 picture of the day.
func (g *Gemini) GenerateImage(ctx context.Context, req ImageRequest) (string, error) {
	m, err := g.client(ctx)
	if err != nil {
		return "", err
	}
	cfg := &genai.GenerateContentConfig{
		ImageConfig: &genai.ImageConfig{AspectRatio: imageAspectRatio},
	}
	res, err := m.GenerateContent(ctx, g.imageModel, []*genai.Content{
		genai.NewContentFromText(ImagePrompt(req), genai.RoleUser),
	}, cfg)
	if err != nil {
		g.log.Error().Err(err).Str("model", g.imageModel).Msg("gemini image call failed")
		return "", classify(err)
	}

	for _, c := range res.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if p == nil || p.InlineData == nil || len(p.InlineData.Data) == 0 {
				continue
			}
			mime := p.InlineData.MIMEType
			if mime == "" {
				mime = "image/png"
			}
			return model.DataURL(mime, p.InlineData.Data), nil
		}
		break
	}
	if reason := blocked(res); reason != "" {
		return "", fmt.Errorf("%w: %s", ErrContentFiltered, reason)
	}
	return "", ErrNoImageReturned
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if i := strings.Index(s, "\n"); i != -1 {
			s = s[i+1:]
		}
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}

// findFirstJSON returns the first balanced {...} object in s.
func findFirstJSON(s string) string {
	start := -1
	depth := 0
	inString := false
	escaped := false
	for i, r := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			if start != -1 {
				inString = true
			}
		case '{':
			if start == -1 {
				start = i
			}
			depth++
		case '}':
			if start != -1 {
				depth--
				if depth == 0 {
					return s[start : i+1]
				}
			}
		}
	}
	return ""
}

func preview(s string) string {
	if len(s) > 500 {
		return s[:500] + "..."
	}
	return s
}

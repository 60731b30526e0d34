package main

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/thywilljoshua/itinerary-architect/internal/ai"
	"github.com/thywilljoshua/itinerary-architect/internal/config"
	"github.com/thywilljoshua/itinerary-architect/internal/credentials"
	"github.com/thywilljoshua/itinerary-architect/internal/extract"
	"github.com/thywilljoshua/itinerary-architect/internal/render"
	"github.com/thywilljoshua/itinerary-architect/internal/studio"
)

// app holds what every command shares once flags and config are resolved.
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	keys    *credentials.Store
	session string
}

// controller wires the adapters selected by the configuration. prompt asks the user for a
// new API key and may be nil when nobody can answer.
func (a *app) controller(prompt credentials.PromptFunc) *studio.Controller {
	var (
		structurer ai.Structurer = ai.Heuristic{}
		imager     ai.Imager     = ai.Noop{}
	)
	if a.cfg.AI.Provider == config.ProviderGemini {
		g := ai.NewGemini(ai.GeminiConfig{
			Keys:       a.keys,
			TextModel:  a.cfg.AI.TextModel,
			ImageModel: a.cfg.AI.ImageModel,
			Logger:     a.log,
		})
		structurer, imager = g, g
	}

	return studio.NewController(studio.Deps{
		Extractor:  extract.New(extract.Config{MaxSize: a.cfg.Limits.Document, Logger: a.log}),
		Structurer: structurer,
		Imager:     imager,
		Exporter: render.New(render.Config{
			Scale:    a.cfg.Render.Scale,
			Client:   &http.Client{Timeout: a.cfg.Render.Timeout},
			CacheTTL: a.cfg.Render.CacheTTL,
			Logger:   a.log,
		}),
		Sink:        render.DirSink{Dir: a.cfg.Output.Dir},
		Credentials: &credentials.Prompter{Store: a.keys, Prompt: prompt},
		Limits: studio.Limits{
			Logo:  a.cfg.Limits.Logo,
			Cover: a.cfg.Limits.Cover,
			Day:   a.cfg.Limits.Day,
		},
		Logger: a.log,
	})
}

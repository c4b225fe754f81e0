package main

import (
	"time"

	"github.com/tsawler/pdflayer/config"
	"github.com/tsawler/pdflayer/document"
	"github.com/tsawler/pdflayer/engine"
	"github.com/tsawler/pdflayer/engine/pdfium"
	"github.com/tsawler/pdflayer/fetch"
	"github.com/tsawler/pdflayer/inspect"
	"github.com/tsawler/pdflayer/ocr"
	"github.com/tsawler/pdflayer/render"
)

// newLoader wires a loader from configuration. The PDFium engine is
// installed into the shared cell and started on first use.
func newLoader(cfg *config.Config, opts ...document.Option) (*document.Loader, error) {
	engine.Default.SetInit(pdfium.Init(pdfium.Config{
		MinIdle:         cfg.Engine.MinIdle,
		MaxIdle:         cfg.Engine.MaxIdle,
		MaxTotal:        cfg.Engine.MaxTotal,
		InstanceTimeout: config.Duration(cfg.Engine.InstanceTimeout, 30*time.Second),
	}))

	fetcher, err := fetch.NewRouter(config.Duration(cfg.Fetch.Timeout, 30*time.Second), cfg.Fetch.FileRoot)
	if err != nil {
		return nil, err
	}

	pipeline := render.NewPipeline()
	if cfg.OCR.Enabled {
		pipeline.Fallback = &ocr.Source{
			Language:      cfg.OCR.Language,
			MinDPI:        cfg.OCR.MinDPI,
			MinConfidence: cfg.OCR.MinConfidence,
		}
		logger.Info().Str("language", cfg.OCR.Language).Msg("OCR fallback enabled")
	}

	base := []document.Option{
		document.WithEngine(engine.Default),
		document.WithFetcher(fetcher),
		document.WithPipeline(pipeline),
	}
	if cfg.Fetch.Inspect {
		base = append(base, document.WithInspector(inspect.New()))
	}
	return document.NewLoader(append(base, opts...)...), nil
}

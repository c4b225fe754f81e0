package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/tsawler/pdflayer/document"
	"github.com/tsawler/pdflayer/engine"
	"github.com/tsawler/pdflayer/model"
	"github.com/tsawler/pdflayer/overlay"
)

// pageFile is written next to each page PNG.
type pageFile struct {
	Index     int                       `json:"index"`
	Scale     float64                   `json:"scale"`
	Width     int                       `json:"width"`
	Height    int                       `json:"height"`
	Fragments []model.ProjectedFragment `json:"fragments"`
	Warnings  []string                  `json:"warnings,omitempty"`
}

func runRender(args []string) error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	out := fs.String("out", ".", "Output directory")
	password := fs.String("password", "", "Document password")
	scale := fs.Float64("scale", 0, "Zoom factor (overrides config)")
	width := fs.Float64("width", 0, "Container width in pixels; enables fit-width")
	debug := fs.Bool("overlay", false, "Draw text layer boxes over each page")
	stack := fs.Bool("stack", false, "Also write all pages stacked into document.png")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("render needs exactly one source, got %d", fs.NArg())
	}
	source := fs.Arg(0)

	layout := cfg.ViewerLayout()
	container := cfg.Layout.ContainerWidth
	if *scale > 0 {
		layout.Scale = *scale
		layout.FitWidth = false
	}
	if *width > 0 {
		layout.FitWidth = true
		container = *width
	}
	textLayer, err := cfg.TextLayerConfig()
	if err != nil {
		return err
	}

	loader, err := newLoader(cfg)
	if err != nil {
		return err
	}
	defer engine.Default.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	doc, err := loader.Load(ctx, document.Request{
		Source:         source,
		Password:       *password,
		Layout:         layout,
		ContainerWidth: container,
		TextLayer:      textLayer,
		CaptureText:    cfg.TextLayer.CaptureText,
	})
	if err != nil {
		return err
	}
	defer doc.Close()

	if err := os.MkdirAll(*out, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	opts := overlay.DefaultOptions()
	var stacked []overlay.Page
	for _, p := range doc.Pages() {
		switch {
		case p.Deferred:
			logger.Warn().Int("page", p.Index+1).Msg("Page deferred: fit-width needs -width")
			continue
		case p.Err != nil:
			logger.Warn().Int("page", p.Index+1).Err(p.Err).Msg("Page failed")
			continue
		}
		if err := writePage(*out, p, *debug, opts); err != nil {
			return err
		}
		stacked = append(stacked, overlay.Page{Raster: p.Result.Raster, Projected: p.Result.Projected})
	}

	if *stack {
		if !*debug {
			for i := range stacked {
				stacked[i].Projected = nil
			}
		}
		img, err := overlay.Stack(stacked, layout, opts)
		if err != nil {
			return err
		}
		if err := writePNG(filepath.Join(*out, "document.png"), img); err != nil {
			return err
		}
	}

	if cfg.TextLayer.CaptureText {
		text := strings.Join(doc.Text(), "\f")
		if err := os.WriteFile(filepath.Join(*out, "document.txt"), []byte(text), 0o644); err != nil {
			return fmt.Errorf("failed to write text: %w", err)
		}
	}

	if warnings := doc.Warnings(); len(warnings) > 0 {
		fmt.Fprintln(os.Stderr, model.FormatWarnings(warnings))
	}
	logger.Info().
		Str("source", source).
		Int("pages", doc.PageCount).
		Str("out", *out).
		Msg("Render complete")
	return nil
}

func writePage(dir string, p document.Page, debug bool, opts overlay.Options) error {
	r := p.Result
	var img image.Image = r.Raster.Image()
	if debug {
		composite, err := overlay.Composite(r.Raster, r.Projected, opts)
		if err != nil {
			return err
		}
		img = composite
	}
	base := filepath.Join(dir, fmt.Sprintf("page-%d", p.Index+1))
	if err := writePNG(base+".png", img); err != nil {
		return err
	}

	pf := pageFile{
		Index:     p.Index,
		Scale:     r.Scale,
		Width:     r.Raster.Width,
		Height:    r.Raster.Height,
		Fragments: r.Projected,
	}
	if pf.Fragments == nil {
		pf.Fragments = []model.ProjectedFragment{}
	}
	for _, w := range r.Warnings {
		pf.Warnings = append(pf.Warnings, w.String())
	}
	data, err := json.MarshalIndent(pf, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(base+".json", data, 0o644)
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := overlay.EncodePNG(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}

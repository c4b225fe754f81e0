package pdflayer

import "github.com/tsawler/pdflayer/model"

// ViewOptions holds configuration for one render.
type ViewOptions struct {
	// Page selection (1-indexed in API, stored as-is)
	pages []int

	password       string
	layout         model.ViewerLayout
	containerWidth float64

	// nil disables the text layer
	textLayer   *model.TextLayerConfig
	captureText bool
}

// defaultOptions returns the default view options.
func defaultOptions() ViewOptions {
	cfg := model.DefaultTextLayerConfig()
	return ViewOptions{
		pages:       nil, // nil means all pages
		layout:      model.DefaultViewerLayout(),
		textLayer:   &cfg,
		captureText: true,
	}
}

// clone creates a deep copy of ViewOptions.
func (o ViewOptions) clone() ViewOptions {
	newOpts := o

	// Deep copy pages slice
	if o.pages != nil {
		newOpts.pages = make([]int, len(o.pages))
		copy(newOpts.pages, o.pages)
	}
	if o.textLayer != nil {
		cfg := *o.textLayer
		newOpts.textLayer = &cfg
	}

	return newOpts
}

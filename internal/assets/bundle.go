package assets

import "fmt"

// Bundle is everything a run prints with.
type Bundle struct {
	PrintCSS  string
	Templates *TemplateSet
	Custom    bool // read from a base path, with embedded fallback
}

// Load resolves the default print stylesheet and template set, from
// basePath first when it is set.
func Load(basePath string) (*Bundle, error) {
	r, err := NewAssetResolver(basePath)
	if err != nil {
		return nil, err
	}
	css, err := r.LoadStyle(DefaultStyleName)
	if err != nil {
		return nil, fmt.Errorf("print stylesheet: %w", err)
	}
	ts, err := r.LoadTemplateSet(DefaultTemplateSetName)
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}
	return &Bundle{PrintCSS: css, Templates: ts, Custom: r.Custom()}, nil
}

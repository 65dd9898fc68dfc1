package assets

import "errors"

// AssetResolver reads from the custom directory when one is configured and
// falls back to the embedded assets for anything it does not provide.
type AssetResolver struct {
	custom   AssetLoader // nil without a base path
	embedded AssetLoader
}

// NewAssetResolver uses only embedded assets when basePath is empty.
func NewAssetResolver(basePath string) (*AssetResolver, error) {
	r := &AssetResolver{embedded: NewEmbeddedLoader()}
	if basePath != "" {
		custom, err := NewFilesystemLoader(basePath)
		if err != nil {
			return nil, err
		}
		r.custom = custom
	}
	return r, nil
}

func (r *AssetResolver) LoadStyle(name string) (string, error) {
	if r.custom != nil {
		css, err := r.custom.LoadStyle(name)
		if !errors.Is(err, ErrStyleNotFound) {
			return css, err
		}
	}
	return r.embedded.LoadStyle(name)
}

// LoadTemplateSet prefers the custom set. Optional templates it lacks come
// from the embedded default set; a missing required one is an error, not a
// fallback.
func (r *AssetResolver) LoadTemplateSet(name string) (*TemplateSet, error) {
	if r.custom == nil {
		return r.embedded.LoadTemplateSet(name)
	}

	ts, err := r.custom.LoadTemplateSet(name)
	if errors.Is(err, ErrTemplateSetNotFound) {
		return r.embedded.LoadTemplateSet(name)
	}
	if err != nil {
		return nil, err
	}

	def, err := r.embedded.LoadTemplateSet(DefaultTemplateSetName)
	if err != nil {
		return nil, err
	}
	return ts.withDefaults(def), nil
}

// Custom reports whether a base path was configured.
func (r *AssetResolver) Custom() bool {
	return r.custom != nil
}

var _ AssetLoader = (*AssetResolver)(nil)

package docs2pdf

import (
	"encoding/json"
	"fmt"

	"github.com/alnah/go-docs2pdf/internal/fileutil"
	"github.com/alnah/go-docs2pdf/internal/pipeline"
)

// Manifest lets the download menu find the PDFs of the page being viewed.
type Manifest struct {
	Button Button                   `json:"button"`
	Pages  map[string]ManifestEntry `json:"pages"`
}

// Button configures the client download menu.
type Button struct {
	Enabled   bool   `json:"enabled"`
	Label     string `json:"label"`
	ScriptURL string `json:"scriptURL,omitempty"`
}

// ManifestEntry lists the PDFs covering one page. File names are relative
// to Dir.
type ManifestEntry struct {
	Dir      string   `json:"dir"`
	File     string   `json:"file"`     // the page itself, or its category for linked pages
	Sections []string `json:"sections"` // enclosing categories, outermost first
	Root     string   `json:"root"`     // whole tree of the sidebar
}

type manifestBuilder struct {
	m Manifest
}

func newManifest(cfg *Config) *manifestBuilder {
	return &manifestBuilder{
		m: Manifest{
			Button: Button{
				Enabled:   cfg.AddDownloadButton,
				Label:     cfg.DownloadButtonText,
				ScriptURL: cfg.JQueryURL,
			},
			Pages: make(map[string]ManifestEntry),
		},
	}
}

// add records the units of one version. A page listed in several sidebars
// keeps the entry of the last one.
func (b *manifestBuilder) add(jobs []unitJob) {
	roots := make(map[string]string)
	for _, job := range jobs {
		if job.unit.IsRoot {
			roots[rootKey(job)] = job.unit.Slug + ".pdf"
		}
	}

	for _, job := range jobs {
		u := job.unit
		sections := make([]string, 0, len(u.Ancestors))
		for _, a := range u.Ancestors {
			sections = append(sections, a+".pdf")
		}
		entry := ManifestEntry{
			Dir:      job.urlDir,
			File:     u.Slug + ".pdf",
			Sections: sections,
			Root:     roots[rootKey(job)],
		}

		switch u.Kind {
		case pipeline.UnitDoc:
			for _, p := range u.PagePaths {
				b.m.Pages[p] = entry
			}
		case pipeline.UnitCategory:
			if u.LinkedPage != "" {
				b.m.Pages[u.LinkedPage] = entry
			}
		}
	}
}

func rootKey(job unitJob) string {
	return job.urlDir + "\x00" + job.sidebar
}

// write stores the manifest atomically.
func (b *manifestBuilder) write(path string) error {
	data, err := json.MarshalIndent(b.m, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, append(data, '\n')); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

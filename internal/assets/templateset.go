package assets

// TemplateSet holds the HTML templates printed around every PDF.
// Header and footer templates follow the browser's print template rules:
// inline styles only, and the classes pageNumber, totalPages, title and date
// are filled in by the browser.
type TemplateSet struct {
	Name        string // Identifier (name or directory path)
	Cover       string // full HTML page rendered as the first sheet
	Header      string // content pages
	Footer      string // content pages; must print the stamp the footer pattern matches
	CoverHeader string // optional, empty falls back to the embedded one
	CoverFooter string // optional, empty falls back to the embedded one
}

// DefaultTemplateSetName is the name of the built-in template set.
const DefaultTemplateSetName = "default"

// DefaultStyleName is the name of the built-in print stylesheet.
const DefaultStyleName = "print"

type templateFile struct {
	file     string
	dst      *string
	required bool
}

func (ts *TemplateSet) files() []templateFile {
	return []templateFile{
		{"cover.html", &ts.Cover, true},
		{"header.html", &ts.Header, true},
		{"footer.html", &ts.Footer, true},
		{"cover-header.html", &ts.CoverHeader, false},
		{"cover-footer.html", &ts.CoverFooter, false},
	}
}

// withDefaults fills optional templates missing from ts with those of def.
func (ts *TemplateSet) withDefaults(def *TemplateSet) *TemplateSet {
	out := *ts
	if out.CoverHeader == "" {
		out.CoverHeader = def.CoverHeader
	}
	if out.CoverFooter == "" {
		out.CoverFooter = def.CoverFooter
	}
	return &out
}

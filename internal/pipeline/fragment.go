package pipeline

import (
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoStylesheet indicates a page without a discoverable site stylesheet.
var ErrNoStylesheet = errors.New("no styles*.css reference found")

// Site bundles follow the "styles.<hash>.css" / "styles.<hash>.js" naming.
var (
	stylesheetPattern = regexp.MustCompile(`href="([^<>"]*styles[^<>"]*?\.css)"`)
	scriptPattern     = regexp.MustCompile(`src="([^<>"]*styles[^<>"]*?\.js)"`)
)

// contentWrapper narrows an article to the rendered Markdown body,
// leaving breadcrumbs, edit links and pagination behind.
const contentWrapper = ".theme-doc-markdown"

// Fragment is the normalized content of one rendered page.
type Fragment struct {
	DocID        string
	ArticleHTML  string
	StylePath    string   // absolute URL of the site stylesheet
	ScriptPath   string   // absolute URL of the site script, may be empty
	ParentTitles []string // ancestor titles, outermost first
	Title        string   // page title without the ancestor prefix
	HasTitle     bool     // false when the page had no h1
	HasArticle   bool     // false when the page had no article element
}

// ExtractOptions configure ExtractFragment.
type ExtractOptions struct {
	Origin       string // local origin serving the build, e.g. http://127.0.0.1:43121
	ParentTitles []string
	Links        LinkOptions
}

// ExtractFragment isolates the article of a rendered page and normalizes it
// for merging: lazy images load eagerly, the first h1 is prefixed with the
// ancestor titles and relative links become absolute.
func ExtractFragment(docID, rawHTML string, opts ExtractOptions) (*Fragment, error) {
	stylePath, ok := firstMatch(stylesheetPattern, rawHTML)
	if !ok {
		return nil, fmt.Errorf("%w in %s", ErrNoStylesheet, docID)
	}

	frag := &Fragment{
		DocID:        docID,
		StylePath:    resolveAsset(opts.Origin, stylePath),
		ParentTitles: append([]string(nil), opts.ParentTitles...),
	}
	if scriptPath, ok := firstMatch(scriptPattern, rawHTML); ok {
		frag.ScriptPath = resolveAsset(opts.Origin, scriptPath)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", docID, err)
	}

	article := doc.Find("article").First()
	if article.Length() == 0 {
		return frag, nil
	}
	frag.HasArticle = true

	if inner := article.Find(contentWrapper).First(); inner.Length() > 0 {
		article = inner
	}

	article.Find(`img[loading="lazy"]`).SetAttr("loading", "eager")

	if h1 := article.Find("h1").First(); h1.Length() > 0 {
		frag.Title = strings.Join(strings.Fields(h1.Text()), " ")
		frag.HasTitle = frag.Title != ""
		if len(opts.ParentTitles) > 0 {
			h1.PrependHtml(html.EscapeString(strings.Join(opts.ParentTitles, " / ") + " / "))
		}
	}

	body, err := goquery.OuterHtml(article)
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", docID, err)
	}
	if frag.ArticleHTML, err = RewriteLinks(body, opts.Links); err != nil {
		return nil, fmt.Errorf("rewriting links in %s: %w", docID, err)
	}
	return frag, nil
}

func firstMatch(re *regexp.Regexp, s string) (string, bool) {
	m := re.FindStringSubmatch(s)
	if m == nil || m[1] == "" {
		return "", false
	}
	return m[1], true
}

// resolveAsset joins a site-absolute asset path to origin.
// Already absolute URLs are returned unchanged.
func resolveAsset(origin, path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(origin, "/") + "/" + strings.TrimPrefix(path, "/")
}

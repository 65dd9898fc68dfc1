package pipeline

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// LinkOptions locate the published site that links must point to once a page
// has been lifted out of its original location.
type LinkOptions struct {
	SiteURL     string // https://docs.example.com (no trailing slash needed)
	BaseURL     string // "/" or "/product/"
	VersionPath string // "" for the latest release, "2.0" otherwise
}

// docsPrefix returns <siteURL><baseURL>docs/<version>/.
func (o LinkOptions) docsPrefix() string {
	prefix := o.siteURL() + o.baseURL() + "docs/"
	if o.VersionPath != "" {
		prefix += strings.Trim(o.VersionPath, "/") + "/"
	}
	return prefix
}

func (o LinkOptions) siteURL() string {
	return strings.TrimRight(o.SiteURL, "/")
}

func (o LinkOptions) baseURL() string {
	b := o.BaseURL
	if !strings.HasPrefix(b, "/") {
		b = "/" + b
	}
	if !strings.HasSuffix(b, "/") {
		b += "/"
	}
	return b
}

// RewriteLink returns the absolute form of href.
//
// Left untouched:
//   - anchors (#...) since merged output has no single target file
//   - dot-relative links (./x, ../x), which are hand-written
//   - anything starting with "http", protocol-relative, mailto:, tel:, data:, javascript:
//
// Links starting with the base URL get the site URL prepended; all others are
// resolved under the docs/ tree of the version. The result always starts
// with "http", so the transform is idempotent.
func (o LinkOptions) RewriteLink(href string) string {
	if !needsRewrite(href) {
		return href
	}
	if strings.HasPrefix(href, o.baseURL()) {
		return o.siteURL() + href
	}
	return o.docsPrefix() + strings.TrimPrefix(href, "/")
}

func needsRewrite(href string) bool {
	if href == "" {
		return false
	}
	for _, prefix := range []string{"#", ".", "http", "//", "mailto:", "tel:", "data:", "javascript:"} {
		if strings.HasPrefix(href, prefix) {
			return false
		}
	}
	return true
}

// RewriteLinks rewrites every a[href] in htmlContent with RewriteLink.
// Only anchors are touched: images and stylesheets keep resolving against
// the local origin the page is rendered from.
func RewriteLinks(htmlContent string, opts LinkOptions) (string, error) {
	if strings.TrimSpace(htmlContent) == "" {
		return htmlContent, nil
	}

	doc, isFragment, err := parseHTML(htmlContent)
	if err != nil {
		return "", err
	}

	rewriteNode(doc, opts)

	return renderHTML(doc, isFragment)
}

// parseHTML parses HTML content, handling both full documents and fragments.
// Returns the parsed node, whether it was a fragment, and any error.
func parseHTML(content string) (*html.Node, bool, error) {
	trimmed := strings.ToLower(strings.TrimSpace(content))

	if strings.HasPrefix(trimmed, "<!doctype") || strings.HasPrefix(trimmed, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	// Parse with body context to avoid the implicit html/head/body wrapper.
	context := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), context)
	if err != nil {
		return nil, true, err
	}

	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, true, nil
}

// renderHTML renders the document back to string.
// For fragments, only renders the children (avoids adding <html><body> wrapper).
func renderHTML(doc *html.Node, isFragment bool) (string, error) {
	var buf strings.Builder

	if isFragment {
		for c := doc.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&buf, c); err != nil {
				return "", err
			}
		}
		return buf.String(), nil
	}

	if err := html.Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func rewriteNode(n *html.Node, opts LinkOptions) {
	if n.Type == html.ElementNode && n.DataAtom == atom.A {
		for i, attr := range n.Attr {
			if attr.Key == "href" {
				n.Attr[i].Val = opts.RewriteLink(attr.Val)
			}
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rewriteNode(c, opts)
	}
}

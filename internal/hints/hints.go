// Package hints turns common failures into one-line suggestions, appended
// to error messages as "\n  hint: <text>". Environment lookups go through
// a getenv function so callers and tests control what is seen.
package hints

import (
	"strings"

	"github.com/alnah/go-docs2pdf/internal/fileutil"
)

// dockerenv is created by Docker in every container.
var dockerenv = "/.dockerenv"

// Container reports whether the process appears to run in a container and
// which signal said so.
func Container(getenv func(string) string) (bool, string) {
	switch {
	case getenv("DOCS2PDF_CONTAINER") == "1":
		return true, "DOCS2PDF_CONTAINER=1"
	case fileutil.FileExists(dockerenv):
		return true, dockerenv
	case getenv("container") != "":
		return true, "container=" + getenv("container")
	case getenv("KUBERNETES_SERVICE_HOST") != "":
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

var ciVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}

// CI reports whether a known CI variable is set.
func CI(getenv func(string) string) bool {
	for _, v := range ciVars {
		if getenv(v) != "" {
			return true
		}
	}
	return false
}

// ForBrowserConnect covers the usual reasons Chrome fails to start.
func ForBrowserConnect(getenv func(string) string) string {
	var hints []string
	if inContainer, _ := Container(getenv); inContainer || CI(getenv) {
		hints = append(hints, "the image needs Chromium and its shared libraries")
	}
	if getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use an installed Chrome")
	}
	return format(strings.Join(hints, "; "))
}

func ForTimeout() string {
	return format("for large documentation trees, raise timeouts.render or use --timeout")
}

func ForConfigNotFound() string {
	return format("pass --config, set DOCS2PDF_CONFIG, or add docs2pdf.yaml to the working directory")
}

// ForBuildDir names the files the site build must have produced in dir.
func ForBuildDir(dir string) string {
	return format("build the site first; expected index.html and 404.html in " + dir)
}

func ForNoStylesheet() string {
	return format("pages must link a styles*.css bundle; list custom ones under stylesheets with alwaysIncludeSiteStyles: false")
}

func ForMissingHTML() string {
	return format("rebuild the site and check that sidebar ids match document ids")
}

func ForFooterPattern() string {
	return format("footerParser must be a regular expression matching one footer stamp per page")
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

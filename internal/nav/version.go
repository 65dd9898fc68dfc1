package nav

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/alnah/go-docs2pdf/internal/fileutil"
	"github.com/alnah/go-docs2pdf/internal/yamlutil"
)

// NextVersion labels the unreleased documentation version.
const NextVersion = "next"

// ErrNoSidebarFile is returned when no sidebar file exists for a version.
var ErrNoSidebarFile = errors.New("no sidebar file found")

// sidebarFileNames are tried in order for the current (unversioned) docs.
var sidebarFileNames = []string{"sidebars.json", "sidebars.yaml", "sidebars.yml"}

// VersionInfo describes one documentation version.
type VersionInfo struct {
	Label       string // "next", "2.0", ...
	URLPath     string // path segment after docs/; empty for the latest release
	SidebarFile string
	HTMLDir     string // <build>/docs/<URLPath>
}

// PathPrefix returns URLPath followed by a slash, or "" for the latest release.
func (v VersionInfo) PathPrefix() string {
	if v.URLPath == "" {
		return ""
	}
	return v.URLPath + "/"
}

// DiscoverVersions lists the versions to render. Without a versions.json
// there is a single "next" version served at docs/. Otherwise "next" is
// included when <build>/docs/next exists, the first released version is
// served at docs/ and every other release at docs/<label>/.
//
// navFile, when set, replaces the sidebars of every version.
func DiscoverVersions(siteDir, buildDir, navFile string) ([]VersionInfo, error) {
	labels, err := readVersions(filepath.Join(siteDir, "versions.json"))
	if err != nil {
		return nil, err
	}

	docsDir := filepath.Join(buildDir, "docs")
	current := navFile
	if current == "" {
		current = findSidebarFile(siteDir)
	}

	if len(labels) == 0 {
		return []VersionInfo{{
			Label:       NextVersion,
			SidebarFile: current,
			HTMLDir:     docsDir,
		}}, nil
	}

	var infos []VersionInfo
	if fileutil.DirExists(filepath.Join(docsDir, NextVersion)) {
		infos = append(infos, VersionInfo{
			Label:       NextVersion,
			URLPath:     NextVersion,
			SidebarFile: current,
			HTMLDir:     filepath.Join(docsDir, NextVersion),
		})
	}
	for i, label := range labels {
		urlPath := label
		if i == 0 {
			urlPath = ""
		}
		sidebarFile := navFile
		if sidebarFile == "" {
			sidebarFile = filepath.Join(siteDir, "versioned_sidebars", "version-"+label+"-sidebars.json")
		}
		infos = append(infos, VersionInfo{
			Label:       label,
			URLPath:     urlPath,
			SidebarFile: sidebarFile,
			HTMLDir:     filepath.Join(docsDir, urlPath),
		})
	}
	return infos, nil
}

// FilterVersions keeps the versions whose label is listed, in discovery order.
// An empty list keeps everything.
func FilterVersions(infos []VersionInfo, labels []string) []VersionInfo {
	if len(labels) == 0 {
		return infos
	}
	want := make(map[string]bool, len(labels))
	for _, l := range labels {
		want[l] = true
	}
	var kept []VersionInfo
	for _, v := range infos {
		if want[v.Label] {
			kept = append(kept, v)
		}
	}
	return kept
}

// LoadSidebars reads the sidebar file of v.
func (v VersionInfo) LoadSidebars() (Sidebars, error) {
	if v.SidebarFile == "" {
		return nil, fmt.Errorf("%w for version %q", ErrNoSidebarFile, v.Label)
	}
	return LoadSidebars(v.SidebarFile)
}

// Lookup finds sidebar name for v. Versioned sidebar files may prefix names
// with "version-<label>/", so that form is tried first.
func (v VersionInfo) Lookup(sb Sidebars, name string) ([]Node, bool) {
	if v.Label != NextVersion {
		if items, ok := sb["version-"+v.Label+"/"+name]; ok {
			return items, true
		}
	}
	items, ok := sb[name]
	return items, ok
}

// UnversionedID strips a leading "version-<label>/" from a doc id.
// Other path segments are part of the id and are kept.
func (v VersionInfo) UnversionedID(id string) string {
	return strings.TrimPrefix(id, "version-"+v.Label+"/")
}

func readVersions(path string) ([]string, error) {
	var labels []string
	err := yamlutil.ReadFile(path, &labels, yamlutil.Unmarshal)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading versions %s: %w", path, err)
	}
	return labels, nil
}

func findSidebarFile(siteDir string) string {
	for _, name := range sidebarFileNames {
		p := filepath.Join(siteDir, name)
		if fileutil.FileExists(p) {
			return p
		}
	}
	return ""
}

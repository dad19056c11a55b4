// Package templates serves the boilerplate Bicep catalog behind the
// get_boilerplate_template tool and the template CLI command.
//
// Three boilerplates ship compiled into the binary. When the operator
// configures a templates directory, its .bicep files override same-named
// embedded boilerplates and add new entries, so enterprises can replace
// individual stock templates with their own golden copies while the rest
// of the catalog stays available.
package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"stanchion/internal/logging"
	"stanchion/pkg/fileops"
)

//go:embed assets/*.bicep
var defaultsFS embed.FS

// MaxTemplateSize bounds a single template file read from an operator
// directory.
const MaxTemplateSize = fileops.MaxPromptFileSize

// DefaultDescription is attached to templates the catalog has no richer
// description for.
const DefaultDescription = "Azure infrastructure template"

// Template is one catalog entry.
type Template struct {
	// Name is the template's filename, e.g. "azure-webapp.bicep".
	Name string

	// Description is shown to the LLM during selection and to users in
	// listings.
	Description string

	// Keywords drive the fallback matcher when no LLM is available.
	Keywords []string

	// Embedded is true when the content ships with the binary.
	Embedded bool
}

// known holds the stock catalog metadata, in fallback matching order.
var known = []Template{
	{
		Name:        "azure-webapp.bicep",
		Description: "Azure Web App with App Service Plan - for hosting web applications, APIs, and websites with scalable hosting environment",
		Keywords:    []string{"web", "webapp", "app", "website", "api", "http"},
	},
	{
		Name:        "azure-vm.bicep",
		Description: "Azure Virtual Machine - for creating secure Linux virtual machines with managed disks and network security",
		Keywords:    []string{"vm", "virtual machine", "server", "compute", "linux"},
	},
	{
		Name:        "azure-aks.bicep",
		Description: "Azure Kubernetes Service (AKS) cluster - for container orchestration and microservices deployment with production-ready features",
		Keywords:    []string{"aks", "kubernetes", "k8s", "container", "cluster", "microservice"},
	},
}

// Catalog resolves template listings and content.
type Catalog struct {
	dir    string
	logger *logging.AppLogger
}

// NewCatalog builds a catalog. dir may be empty, in which case the embedded
// boilerplates are served.
func NewCatalog(dir string, logger *logging.AppLogger) *Catalog {
	if logger == nil {
		logger = logging.GetDefault()
	}
	return &Catalog{dir: dir, logger: logger}
}

// Dir returns the configured templates directory, empty in embedded mode.
func (c *Catalog) Dir() string {
	return c.dir
}

// List returns the available templates sorted by name. Directory templates
// override embedded ones with the same filename; the embedded boilerplates
// fill the gaps, so a missing or empty directory still yields the stock
// catalog.
func (c *Catalog) List() ([]Template, error) {
	templates, err := c.listEmbedded()
	if err != nil {
		return nil, err
	}
	if c.dir == "" {
		return templates, nil
	}

	files, err := fileops.ScanWithFilter(fileops.ExpandPath(c.dir), func(name string) bool {
		return strings.HasSuffix(strings.ToLower(name), ".bicep")
	}, 1)
	if err != nil {
		c.logger.Debug("Templates directory not usable, serving embedded defaults", "dir", c.dir, "error", err)
		return templates, nil
	}

	index := make(map[string]int, len(templates))
	for i, t := range templates {
		index[t.Name] = i
	}
	for _, file := range files {
		t := describe(file.Name)
		if i, ok := index[t.Name]; ok {
			templates[i] = t
			continue
		}
		templates = append(templates, t)
	}
	sortTemplates(templates)
	return templates, nil
}

func (c *Catalog) listEmbedded() ([]Template, error) {
	entries, err := fs.ReadDir(defaultsFS, "assets")
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}

	templates := make([]Template, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".bicep") {
			continue
		}
		t := describe(entry.Name())
		t.Embedded = true
		templates = append(templates, t)
	}
	sortTemplates(templates)
	return templates, nil
}

// describe attaches the stock metadata to known filenames and the default
// description to everything else.
func describe(name string) Template {
	for _, t := range known {
		if t.Name == name {
			return t
		}
	}
	return Template{Name: name, Description: DefaultDescription}
}

func sortTemplates(templates []Template) {
	sort.Slice(templates, func(i, j int) bool { return templates[i].Name < templates[j].Name })
}

// Get returns the content of the named template. The name must be a bare
// filename from the catalog; path components are rejected. A directory copy
// wins over an embedded one with the same name.
func (c *Catalog) Get(name string) (string, error) {
	if name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid template name %q", name)
	}

	if c.dir != "" {
		path := filepath.Join(fileops.ExpandPath(c.dir), name)
		if _, statErr := os.Stat(path); statErr == nil {
			content, err := fileops.ReadTextFile(path, MaxTemplateSize)
			if err != nil {
				return "", fmt.Errorf("template %s: %w", name, err)
			}
			return content, nil
		}
	}

	content, err := defaultsFS.ReadFile("assets/" + name)
	if err != nil {
		return "", fmt.Errorf("template %s: %w", name, err)
	}
	return string(content), nil
}

// MatchKeywords picks a template name for the query using the stock keyword
// groups, checked in catalog order. Queries matching nothing (or matching a
// template that is not available) get the first available template. The
// available slice must be non-empty and sorted.
func MatchKeywords(query string, available []string) string {
	q := strings.ToLower(query)

	selected := ""
	for _, t := range known {
		for _, keyword := range t.Keywords {
			if strings.Contains(q, keyword) {
				selected = t.Name
				break
			}
		}
		if selected != "" {
			break
		}
	}

	if selected == "" || !contains(available, selected) {
		return available[0]
	}
	return selected
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

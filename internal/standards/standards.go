// Package standards manages the enterprise standards library: the markdown
// documents describing naming, shared-resource, and security rules, and the
// prompt template that turns them into the system prompt for an assessment.
//
// Documents are markdown files with optional YAML frontmatter carrying
// metadata (name, description, category). A compiled-in default set ships
// with the binary; a library directory, when configured, overrides the
// defaults document by document so operators can maintain their own rules.
package standards

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"stanchion/internal/logging"
	"stanchion/internal/repository"
	"stanchion/pkg/fileops"

	"github.com/adrg/frontmatter"
)

//go:embed assets/*.md
var defaultsFS embed.FS

// Well-known document names. The prompt template references each of them by
// a {name} placeholder.
const (
	DocNamingConvention  = "naming_convention"
	DocSharedResources   = "shared_resources"
	DocSecurityStandards = "security_standards"

	// PromptTemplateName identifies the system prompt template document.
	PromptTemplateName = "system_prompt"
)

// wellKnownDocs are the documents substituted into the prompt template, in
// substitution order.
var wellKnownDocs = []string{DocNamingConvention, DocSharedResources, DocSecurityStandards}

// MaxDocumentSize bounds a single standards document. Documents are embedded
// into prompts, so the cap mirrors the prompt file cap.
const MaxDocumentSize = fileops.MaxPromptFileSize

// docFrontmatter is the YAML frontmatter accepted in standards documents.
// All fields are optional; name falls back to the filename stem.
type docFrontmatter struct {
	Name        string `yaml:"name,omitempty"`
	Description string `yaml:"description,omitempty"`
	Category    string `yaml:"category,omitempty"`
}

// Document is one parsed standards document.
type Document struct {
	// Name identifies the document and doubles as the placeholder key in
	// the prompt template.
	Name        string
	Description string
	Category    string

	// FileName is the base name the document was loaded from.
	FileName string

	// Body is the markdown content without frontmatter.
	Body string

	// Embedded is true when the document came from the compiled-in
	// defaults rather than the library directory.
	Embedded bool
}

// Title, Description and FilterValue on Document would shadow fields; the
// TUI wraps documents in its own list items instead.

// Library is the resolved standards set: embedded defaults overlaid with the
// contents of an optional library directory.
type Library struct {
	dir    string
	logger *logging.AppLogger
	docs   map[string]Document
	prompt Document
}

// Load builds a Library. dir may be empty, in which case only the embedded
// defaults are served. When dir is set but missing or empty the embedded
// defaults are used as well; individual unparsable files are skipped, never
// fatal.
func Load(dir string, logger *logging.AppLogger) (*Library, error) {
	if logger == nil {
		logger = logging.GetDefault()
	}

	lib := &Library{
		dir:    dir,
		logger: logger,
		docs:   make(map[string]Document),
	}

	if err := lib.loadEmbedded(); err != nil {
		return nil, err
	}

	if dir != "" {
		// The directory is resolved like any other library source; git-backed
		// libraries point here at their local clone.
		var source repository.Source = repository.NewLocalSource(dir)
		path, _, err := source.Prepare(logger)
		if err != nil {
			logger.Debug("Standards directory not usable, serving embedded defaults", "dir", dir, "error", err)
		} else {
			lib.overlayDirectory(path)
		}
	}

	return lib, nil
}

// loadEmbedded parses the compiled-in default documents. A failure here is a
// packaging bug, not an operator error.
func (l *Library) loadEmbedded() error {
	entries, err := fs.ReadDir(defaultsFS, "assets")
	if err != nil {
		return fmt.Errorf("read embedded standards: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		content, err := defaultsFS.ReadFile("assets/" + entry.Name())
		if err != nil {
			return fmt.Errorf("read embedded document %s: %w", entry.Name(), err)
		}
		doc, err := parseDocument(entry.Name(), content)
		if err != nil {
			return fmt.Errorf("parse embedded document %s: %w", entry.Name(), err)
		}
		doc.Embedded = true
		l.add(doc)
	}

	if l.prompt.Body == "" {
		return fmt.Errorf("embedded standards are missing the %s template", PromptTemplateName)
	}
	for _, name := range wellKnownDocs {
		if _, ok := l.docs[name]; !ok {
			return fmt.Errorf("embedded standards are missing %s", name)
		}
	}
	return nil
}

// overlayDirectory replaces embedded documents with same-named documents
// found in dir. Unreadable or oversized files are skipped with a log entry.
func (l *Library) overlayDirectory(dir string) {
	expanded := fileops.ExpandPath(dir)

	files, err := fileops.ScanWithFilter(expanded, func(name string) bool {
		return strings.HasSuffix(strings.ToLower(name), ".md")
	}, 3)
	if err != nil {
		l.logger.Debug("Standards directory not usable, serving embedded defaults", "dir", dir, "error", err)
		return
	}

	loaded := 0
	for _, file := range files {
		path := filepath.Join(expanded, file.Path)
		content, err := fileops.ReadTextFile(path, MaxDocumentSize)
		if err != nil {
			l.logger.Warn("Skipping standards document", "path", path, "error", err)
			continue
		}
		doc, err := parseDocument(file.Name, []byte(content))
		if err != nil {
			l.logger.Warn("Skipping standards document", "path", path, "error", err)
			continue
		}
		l.add(doc)
		loaded++
	}

	l.logger.Debug("Standards library loaded", "dir", dir, "documents", loaded)
}

// add stores a document, routing the prompt template to its own slot.
func (l *Library) add(doc Document) {
	if doc.Name == PromptTemplateName {
		l.prompt = doc
		return
	}
	l.docs[doc.Name] = doc
}

// parseDocument extracts frontmatter metadata and the markdown body. Files
// without frontmatter are accepted; the name falls back to the filename stem.
func parseDocument(fileName string, content []byte) (Document, error) {
	var matter docFrontmatter
	body, err := frontmatter.Parse(bytes.NewReader(content), &matter)
	if err != nil {
		return Document{}, fmt.Errorf("frontmatter: %w", err)
	}

	if err := fileops.ValidateTextContent(string(body)); err != nil {
		return Document{}, fmt.Errorf("content validation: %w", err)
	}

	name := matter.Name
	if name == "" {
		name = strings.TrimSuffix(fileName, filepath.Ext(fileName))
	}

	return Document{
		Name:        name,
		Description: matter.Description,
		Category:    matter.Category,
		FileName:    fileName,
		Body:        strings.TrimSpace(string(body)),
	}, nil
}

// Dir returns the configured library directory, empty when only embedded
// defaults are in play.
func (l *Library) Dir() string {
	return l.dir
}

// Documents lists all standards documents sorted by name. The prompt
// template is not included.
func (l *Library) Documents() []Document {
	docs := make([]Document, 0, len(l.docs))
	for _, doc := range l.docs {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })
	return docs
}

// Get returns the named document.
func (l *Library) Get(name string) (Document, bool) {
	doc, ok := l.docs[name]
	return doc, ok
}

// PromptTemplate returns the raw prompt template document.
func (l *Library) PromptTemplate() Document {
	return l.prompt
}

// BuildSystemPrompt substitutes each well-known document body into its
// {name} placeholder in the prompt template. Substitution is plain string
// replacement; document bodies are inserted verbatim.
func (l *Library) BuildSystemPrompt() (string, error) {
	prompt := l.prompt.Body
	if prompt == "" {
		return "", fmt.Errorf("standards library has no %s template", PromptTemplateName)
	}

	for _, name := range wellKnownDocs {
		doc, ok := l.docs[name]
		if !ok {
			return "", fmt.Errorf("standards library is missing %s", name)
		}
		prompt = strings.ReplaceAll(prompt, "{"+name+"}", doc.Body)
	}
	return prompt, nil
}

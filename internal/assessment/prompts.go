package assessment

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"
)

// Prompt names every catalog must define.
const (
	PromptQuestions       = "questions"
	PromptRecommendations = "recommendations"
	PromptReadinessReport = "readiness_report"
)

//go:embed prompts.yaml
var defaultCatalogYAML []byte

// PromptTemplate is one catalog entry.
type PromptTemplate struct {
	Name      string `yaml:"name"`
	MaxTokens int    `yaml:"max_tokens"`
	Template  string `yaml:"template"`

	tmpl *template.Template
}

// PromptCatalog holds the compiled prompt templates.
type PromptCatalog struct {
	Prompts map[string]*PromptTemplate `yaml:"prompts"`
}

// PromptData is what templates can reference.
type PromptData struct {
	Industry      string
	Size          string
	Country       string
	Answers       string
	QuestionCount int
}

// DefaultPromptCatalog returns the embedded catalog.
func DefaultPromptCatalog() (*PromptCatalog, error) {
	return ParsePromptCatalog(defaultCatalogYAML)
}

// LoadPromptCatalog reads a catalog file, or the embedded one when path is empty.
func LoadPromptCatalog(path string) (*PromptCatalog, error) {
	if path == "" {
		return DefaultPromptCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt catalog %s: %w", path, err)
	}
	return ParsePromptCatalog(data)
}

// ParsePromptCatalog decodes YAML and compiles every template. All three
// pipeline prompts must be present.
func ParsePromptCatalog(data []byte) (*PromptCatalog, error) {
	var catalog PromptCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse prompt catalog: %w", err)
	}

	for _, name := range []string{PromptQuestions, PromptRecommendations, PromptReadinessReport} {
		if _, ok := catalog.Prompts[name]; !ok {
			return nil, fmt.Errorf("prompt catalog is missing %q", name)
		}
	}

	for key, p := range catalog.Prompts {
		if p == nil || p.Template == "" {
			return nil, fmt.Errorf("prompt %q has no template", key)
		}
		tmpl, err := template.New(key).Option("missingkey=error").Parse(p.Template)
		if err != nil {
			return nil, fmt.Errorf("prompt %q: %w", key, err)
		}
		p.tmpl = tmpl
	}
	return &catalog, nil
}

// Render executes the named prompt.
func (c *PromptCatalog) Render(name string, data PromptData) (string, error) {
	p, ok := c.Prompts[name]
	if !ok {
		return "", fmt.Errorf("unknown prompt %q", name)
	}
	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt %q: %w", name, err)
	}
	return buf.String(), nil
}

// MaxTokens returns the catalog budget for name, or 0 when unset.
func (c *PromptCatalog) MaxTokens(name string) int {
	if p, ok := c.Prompts[name]; ok {
		return p.MaxTokens
	}
	return 0
}

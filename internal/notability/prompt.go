package notability

import (
	"bytes"
	"encoding/json"
	"strings"
	"text/template"
	"time"

	"modelwire/internal/model"
)

const defaultSystemPrompt = `You are an expert AI news curator. Assess each item for whether it is highly notable for practitioners and researchers.
Respond in a strict JSON array with one object per input item, in the same order, containing:
'decision' ('include'|'exclude'), 'reason', and 'summary' (1-2 sentences).`

const defaultUserPrompt = `Review the following items and decide which are notable. Only include if strongly justified.

Items:
{{.Items}}

Categories of interest: {{.Categories}}.`

// compactItem is the per-item projection sent to the LLM.
type compactItem struct {
	Title      string   `json:"title"`
	Source     string   `json:"source"`
	Summary    string   `json:"summary"`
	Link       string   `json:"link"`
	Published  string   `json:"published"`
	Categories []string `json:"categories"`
}

type promptData struct {
	Items      string
	Categories string
}

// Prompt renders the system and user messages for a batch.
type Prompt struct {
	system     string
	user       *template.Template
	categories []string
}

// NewPrompt parses the user template. Empty inputs fall back to built-in
// defaults.
func NewPrompt(system, user string, categories []string) (*Prompt, error) {
	if strings.TrimSpace(system) == "" {
		system = defaultSystemPrompt
	}
	if strings.TrimSpace(user) == "" {
		user = defaultUserPrompt
	}
	tpl, err := template.New("user").Option("missingkey=error").Parse(user)
	if err != nil {
		return nil, err
	}
	return &Prompt{system: strings.TrimSpace(system), user: tpl, categories: categories}, nil
}

// System returns the system instruction.
func (p *Prompt) System() string { return p.system }

// User renders the user message for items.
func (p *Prompt) User(items []model.NewsItem) (string, error) {
	compact := make([]compactItem, 0, len(items))
	for _, it := range items {
		cats := it.Categories
		if cats == nil {
			cats = []string{}
		}
		compact = append(compact, compactItem{
			Title:      it.Title,
			Source:     it.Source,
			Summary:    it.Summary,
			Link:       it.Link,
			Published:  it.Published.UTC().Format(time.RFC3339),
			Categories: cats,
		})
	}
	js, err := json.MarshalIndent(compact, "", "  ")
	if err != nil {
		return "", err
	}
	cats := "general AI/ML"
	if len(p.categories) > 0 {
		cats = strings.Join(p.categories, ", ")
	}
	var buf bytes.Buffer
	if err := p.user.Execute(&buf, promptData{Items: string(js), Categories: cats}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

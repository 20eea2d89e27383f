package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed templates/*.yaml
var templateFS embed.FS

type TemplateName string

const (
	TemplateMealPlan    TemplateName = "meal_plan.yaml"
	TemplateWorkoutPlan TemplateName = "workout_plan.yaml"
)

// Prompt is a rendered system instruction plus user message.
type Prompt struct {
	System string
	User   string
}

// templateFile is the on-disk shape of a prompt template.
type templateFile struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

type compiledTemplate struct {
	system *template.Template
	user   *template.Template
}

var funcs = template.FuncMap{
	"join": strings.Join,
	"num": func(v float64) string {
		return strconv.FormatFloat(v, 'f', -1, 64)
	},
}

type PromptBuilder struct {
	mu        sync.RWMutex
	templates map[TemplateName]*compiledTemplate
}

var (
	defaultBuilderOnce sync.Once
	defaultBuilder     *PromptBuilder
)

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{
		templates: make(map[TemplateName]*compiledTemplate),
	}
}

func DefaultPromptBuilder() *PromptBuilder {
	defaultBuilderOnce.Do(func() {
		defaultBuilder = NewPromptBuilder()
	})
	return defaultBuilder
}

func (pb *PromptBuilder) Render(name TemplateName, data any) (Prompt, error) {
	tmpl, err := pb.getTemplate(name)
	if err != nil {
		return Prompt{}, err
	}

	var system, user bytes.Buffer
	if err := tmpl.system.Execute(&system, data); err != nil {
		return Prompt{}, fmt.Errorf("render prompt %s (system): %w", name, err)
	}
	if err := tmpl.user.Execute(&user, data); err != nil {
		return Prompt{}, fmt.Errorf("render prompt %s (user): %w", name, err)
	}

	return Prompt{
		System: strings.TrimSpace(system.String()),
		User:   strings.TrimSpace(user.String()),
	}, nil
}

func (pb *PromptBuilder) getTemplate(name TemplateName) (*compiledTemplate, error) {
	pb.mu.RLock()
	if tmpl, ok := pb.templates[name]; ok {
		pb.mu.RUnlock()
		return tmpl, nil
	}
	pb.mu.RUnlock()

	filename := filepath.ToSlash(filepath.Join("templates", string(name)))
	content, err := templateFS.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("load prompt template %s: %w", name, err)
	}

	var file templateFile
	if err := yaml.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("decode prompt template %s: %w", name, err)
	}
	if strings.TrimSpace(file.User) == "" {
		return nil, fmt.Errorf("prompt template %s has no user section", name)
	}

	system, err := template.New(string(name) + ":system").Funcs(funcs).Option("missingkey=error").Parse(file.System)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template %s (system): %w", name, err)
	}
	user, err := template.New(string(name) + ":user").Funcs(funcs).Option("missingkey=error").Parse(file.User)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template %s (user): %w", name, err)
	}

	tmpl := &compiledTemplate{system: system, user: user}

	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.templates[name] = tmpl

	return tmpl, nil
}

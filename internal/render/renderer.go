// Package render turns a managed table into generated source artifacts.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"regexp"
	"text/template"
)

//go:embed templates/*/*.tmpl
var templateFS embed.FS

// artifact binds a template to its preview key and archive path.
type artifact struct {
	key      string
	template string
	path     func(m RenderModel) string
	collapse bool
}

var artifacts = []artifact{
	{
		key:      "nestjs/service.ts",
		template: "templates/nestjs/service.ts.tmpl",
		path:     func(m RenderModel) string { return "nestjs/" + m.FileName + ".service.ts" },
		collapse: true,
	},
	{
		key:      "nestjs/controller.ts",
		template: "templates/nestjs/controller.ts.tmpl",
		path:     func(m RenderModel) string { return "nestjs/" + m.FileName + ".controller.ts" },
	},
	{
		key:      "nestjs/dto.ts",
		template: "templates/nestjs/dto.ts.tmpl",
		path:     func(m RenderModel) string { return "nestjs/" + m.FileName + ".dto.ts" },
		collapse: true,
	},
	{
		key:      "nestjs/module.ts",
		template: "templates/nestjs/module.ts.tmpl",
		path:     func(m RenderModel) string { return "nestjs/" + m.FileName + ".module.ts" },
	},
	{
		key:      "vue/index.vue",
		template: "templates/vue/index.vue.tmpl",
		path:     func(m RenderModel) string { return "vue/" + m.BusinessName + "/index.vue" },
		collapse: true,
	},
	{
		key:      "vue/api.js",
		template: "templates/vue/api.js.tmpl",
		path:     func(m RenderModel) string { return "vue/" + m.BusinessName + ".js" },
	},
	{
		key:      "sql/menu.sql",
		template: "templates/sql/menu.sql.tmpl",
		path:     func(m RenderModel) string { return m.BusinessName + ".sql" },
	},
	{
		key:      "prisma/data.ts",
		template: "templates/prisma/data.ts.tmpl",
		path:     func(m RenderModel) string { return "prisma/" + m.FileName + ".data.ts" },
	},
}

// RenderError reports a template that failed to render.
type RenderError struct {
	Artifact string
	Table    string
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s for table %s: %v", e.Artifact, e.Table, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// File is a rendered artifact placed at its archive path.
type File struct {
	Path    string
	Content string
}

type Renderer struct {
	templates map[string]*template.Template
}

// New parses every embedded artifact template.
func New() (*Renderer, error) {
	r := &Renderer{templates: make(map[string]*template.Template, len(artifacts))}
	for _, a := range artifacts {
		src, err := templateFS.ReadFile(a.template)
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", a.template, err)
		}
		tmpl, err := template.New(a.key).
			Funcs(templateFuncs()).
			Option("missingkey=error").
			Parse(string(src))
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", a.template, err)
		}
		r.templates[a.key] = tmpl
	}
	return r, nil
}

// MustNew is New for callers that cannot continue without templates.
func MustNew() *Renderer {
	r, err := New()
	if err != nil {
		panic(err)
	}
	return r
}

// Keys lists the artifact keys in render order.
func Keys() []string {
	keys := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		keys = append(keys, a.key)
	}
	return keys
}

// Render renders every artifact, keyed by artifact name.
func (r *Renderer) Render(m RenderModel) (map[string]string, error) {
	out := make(map[string]string, len(artifacts))
	for _, a := range artifacts {
		content, err := r.renderOne(a, m)
		if err != nil {
			return nil, err
		}
		out[a.key] = content
	}
	return out, nil
}

// Files renders every artifact and places it at its archive path.
func (r *Renderer) Files(m RenderModel) ([]File, error) {
	files := make([]File, 0, len(artifacts))
	for _, a := range artifacts {
		content, err := r.renderOne(a, m)
		if err != nil {
			return nil, err
		}
		files = append(files, File{Path: a.path(m), Content: content})
	}
	return files, nil
}

func (r *Renderer) renderOne(a artifact, m RenderModel) (string, error) {
	var buf bytes.Buffer
	if err := r.templates[a.key].Execute(&buf, m); err != nil {
		return "", &RenderError{Artifact: a.key, Table: m.TableName, Err: err}
	}
	if a.collapse {
		return CollapseBlankLines(buf.String()), nil
	}
	return buf.String(), nil
}

var blankRun = regexp.MustCompile(`\n([ \t]*\n){2,}`)

// CollapseBlankLines reduces every run of two or more blank lines to one.
func CollapseBlankLines(s string) string {
	return blankRun.ReplaceAllString(s, "\n\n")
}

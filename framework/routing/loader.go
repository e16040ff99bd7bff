package routing

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/km-arc/go-neatbox/framework/http/validation"
)

// ── YAML route files ──────────────────────────────────────────────────────────

// routeEntry is one route in a route file:
//
//	blog_show:
//	  url: /blog/{id}::/{slug}
//	  controller: blog:PostController:show
//	  method: GET
//	  protocol: http|https
//	  cachefor: 300
//	  placeholders: {id: int, slug: slug}
//	  defaults: {slug: latest}
//	  options: {layout: wide}
type routeEntry struct {
	URL          string            `yaml:"url"`
	Controller   string            `yaml:"controller"`
	Method       string            `yaml:"method"`
	Protocol     string            `yaml:"protocol"`
	CacheFor     *int              `yaml:"cachefor"`
	Placeholders map[string]string `yaml:"placeholders"`
	Defaults     map[string]string `yaml:"defaults"`
	Options      map[string]any    `yaml:"options"`
}

var entryRules = validation.Rules{
	"name":       `required|regex:^[a-zA-Z0-9_.\-]+$`,
	"url":        "required|regex:^/",
	"controller": "required|regex:^[^:]+:[^:]+:[^:]+$",
	"method":     "sometimes|regex:^(?i)(GET|POST|PUT|PATCH|DELETE|HEAD|OPTIONS)(\\|(GET|POST|PUT|PATCH|DELETE|HEAD|OPTIONS))*$",
	"protocol":   "sometimes|regex:^(?i)https?(\\|https?)*$",
	"cachefor":   "sometimes|integer|gte:0",
}

// LoadFile reads a route file into a new table.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("routing: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load reads routes from YAML. Routes keep their order in the document,
// which is the order they are matched in.
func Load(r io.Reader) (*Table, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return NewTable(), nil
		}
		return nil, fmt.Errorf("routing: parsing routes: %w", err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("routing: parsing routes: line %d: expected a mapping of route names", root.Line)
	}

	table := NewTable()
	for i := 0; i+1 < len(root.Content); i += 2 {
		name := root.Content[i].Value

		var e routeEntry
		if err := root.Content[i+1].Decode(&e); err != nil {
			return nil, fmt.Errorf("routing: route %q: %w", name, err)
		}
		if err := e.validate(name); err != nil {
			return nil, fmt.Errorf("routing: route %q: %w", name, err)
		}

		route := &Route{
			Name:         name,
			URL:          e.URL,
			Controller:   e.Controller,
			Method:       e.Method,
			Protocol:     e.Protocol,
			Placeholders: e.Placeholders,
			Defaults:     e.Defaults,
			CacheFor:     e.CacheFor,
			Options:      e.Options,
		}
		if err := route.Compile(); err != nil {
			return nil, fmt.Errorf("routing: route %q: %w", name, err)
		}
		table.Add(route)
	}
	return table, nil
}

func (e *routeEntry) validate(name string) error {
	data := map[string]string{
		"name":       name,
		"url":        e.URL,
		"controller": e.Controller,
	}
	if e.Method != "" {
		data["method"] = e.Method
	}
	if e.Protocol != "" {
		data["protocol"] = e.Protocol
	}
	if e.CacheFor != nil {
		data["cachefor"] = strconv.Itoa(*e.CacheFor)
	}
	return validation.Validate(data, entryRules)
}

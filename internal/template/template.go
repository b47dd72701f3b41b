// Package template detects a project's type and renders starter
// Razdfiles for razd init.
package template

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/klauern/razd/internal/parser"
	"github.com/klauern/razd/internal/util"
)

// ProjectType identifies the kind of project in a directory.
type ProjectType string

const (
	Node    ProjectType = "node"
	Python  ProjectType = "python"
	Rust    ProjectType = "rust"
	Go      ProjectType = "go"
	Docker  ProjectType = "docker"
	Generic ProjectType = "generic"
)

// ErrExists is returned when a Razdfile already exists and overwriting
// was not requested.
var ErrExists = errors.New("Razdfile.yml already exists")

// markers lists the files that identify each project type, in the order
// they are checked.
var markers = []struct {
	typ   ProjectType
	files []string
}{
	{Node, []string{"package.json"}},
	{Python, []string{"requirements.txt", "pyproject.toml", "setup.py"}},
	{Rust, []string{"Cargo.toml"}},
	{Go, []string{"go.mod"}},
	{Docker, []string{"Dockerfile"}},
}

// Detect returns the project type of dir, Generic when nothing matches.
func Detect(dir string) ProjectType {
	for _, m := range markers {
		for _, f := range m.files {
			if util.FileExists(filepath.Join(dir, f)) {
				return m.typ
			}
		}
	}
	return Generic
}

// ParseProjectType validates a user supplied project type.
func ParseProjectType(s string) (ProjectType, error) {
	for _, t := range AllProjectTypes() {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown project type %q", s)
}

// AllProjectTypes returns every known project type.
func AllProjectTypes() []ProjectType {
	return []ProjectType{Node, Python, Rust, Go, Docker, Generic}
}

// Title returns the display name of t.
func (t ProjectType) Title() string {
	return cases.Title(language.English).String(string(t))
}

// Tool is a tool pinned by a starter Razdfile.
type Tool struct {
	Name    string
	Version string
}

// Task is a starter task.
type Task struct {
	Name string
	Desc string
	Cmd  string
}

// Data holds the data passed to the Razdfile template.
type Data struct {
	Type        ProjectType
	Title       string
	Tools       []Tool
	DefaultDesc string
	DefaultCmd  string
	Tasks       []Task
}

var starters = map[ProjectType]Data{
	Node: {
		Tools:       []Tool{{"node", "lts"}},
		DefaultDesc: "Run development server",
		DefaultCmd:  "npm run dev",
		Tasks: []Task{
			{"setup", "Install dependencies", "npm install"},
			{"build", "Build for production", "npm run build"},
			{"test", "Run tests", "npm test"},
		},
	},
	Python: {
		Tools:       []Tool{{"python", "3.11"}},
		DefaultDesc: "Run application",
		DefaultCmd:  "python -m src.main",
		Tasks: []Task{
			{"setup", "Install dependencies", "pip install -r requirements.txt"},
			{"build", "Build package", "python -m build"},
			{"test", "Run tests", "pytest"},
		},
	},
	Rust: {
		Tools:       []Tool{{"rust", "stable"}},
		DefaultDesc: "Run application",
		DefaultCmd:  "cargo run",
		Tasks: []Task{
			{"setup", "Build dependencies", "cargo build"},
			{"build", "Build for production", "cargo build --release"},
			{"test", "Run tests", "cargo test"},
		},
	},
	Go: {
		Tools:       []Tool{{"go", "latest"}},
		DefaultDesc: "Run application",
		DefaultCmd:  "go run .",
		Tasks: []Task{
			{"setup", "Download dependencies", "go mod download"},
			{"build", "Build binary", "go build -o bin/app"},
			{"test", "Run tests", "go test ./..."},
		},
	},
	Docker: {
		DefaultDesc: "Start containers",
		DefaultCmd:  "docker compose up",
		Tasks: []Task{
			{"setup", "Pull images", "docker compose pull"},
			{"build", "Build images", "docker compose build"},
			{"test", "Run tests", "echo \"Run your tests here\""},
		},
	},
	Generic: {
		DefaultDesc: "Default task",
		DefaultCmd:  "echo \"Please configure your tasks\"",
		Tasks: []Task{
			{"setup", "Setup project", "echo \"Setup your project here\""},
			{"build", "Build project", "echo \"Build your project here\""},
			{"test", "Run tests", "echo \"Run your tests here\""},
		},
	},
}

// Generator renders starter Razdfiles.
type Generator struct {
	tmpl *template.Template
}

// New creates a generator with the built-in template.
func New() (*Generator, error) {
	tmpl, err := template.New("Razdfile.yml").Parse(razdfileTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Razdfile template: %w", err)
	}
	return &Generator{tmpl: tmpl}, nil
}

// DataFor returns the template data for a project type.
func DataFor(t ProjectType) Data {
	data, ok := starters[t]
	if !ok {
		data = starters[Generic]
		t = Generic
	}
	data.Type = t
	data.Title = t.Title()
	return data
}

// Generate renders the starter Razdfile for t and checks that it parses.
func (g *Generator) Generate(t ProjectType) ([]byte, error) {
	var buf bytes.Buffer
	if err := g.tmpl.Execute(&buf, DataFor(t)); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	if _, err := parser.Parse(buf.Bytes(), parser.FormatRazdfile); err != nil {
		return nil, fmt.Errorf("generated Razdfile is invalid: %w", err)
	}
	return buf.Bytes(), nil
}

// CreateRazdfile writes the starter Razdfile for t into dir and returns
// its path. An existing file is only replaced when force is set.
func (g *Generator) CreateRazdfile(dir string, t ProjectType, force bool) (string, error) {
	path := filepath.Join(dir, parser.RazdfileName)
	if util.FileExists(path) && !force {
		return path, ErrExists
	}

	content, err := g.Generate(t)
	if err != nil {
		return "", err
	}
	if err := util.WriteFileAtomic(path, content, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

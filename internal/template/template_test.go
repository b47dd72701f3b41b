package template

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauern/razd/internal/parser"
	"github.com/klauern/razd/internal/util"
)

func TestDetect(t *testing.T) {
	tests := map[string]struct {
		files []string
		want  ProjectType
	}{
		"empty":               {nil, Generic},
		"node":                {[]string{"package.json"}, Node},
		"python requirements": {[]string{"requirements.txt"}, Python},
		"python pyproject":    {[]string{"pyproject.toml"}, Python},
		"python setup.py":     {[]string{"setup.py"}, Python},
		"rust":                {[]string{"Cargo.toml"}, Rust},
		"go":                  {[]string{"go.mod"}, Go},
		"docker":              {[]string{"Dockerfile"}, Docker},
		"node wins over go":   {[]string{"go.mod", "package.json"}, Node},
		"go wins over docker": {[]string{"Dockerfile", "go.mod"}, Go},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			for _, f := range tt.files {
				util.WriteFile(t, filepath.Join(dir, f), "")
			}
			if got := Detect(dir); got != tt.want {
				t.Errorf("Detect() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProjectTypeTitle(t *testing.T) {
	util.AssertEqual(t, Node.Title(), "Node")
	util.AssertEqual(t, Go.Title(), "Go")
	util.AssertEqual(t, Generic.Title(), "Generic")
}

func TestParseProjectType(t *testing.T) {
	got, err := ParseProjectType("rust")
	util.AssertNoError(t, err)
	util.AssertEqual(t, got, Rust)

	if _, err := ParseProjectType("cobol"); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestGenerateAllTypesParse(t *testing.T) {
	gen, err := New()
	util.AssertNoError(t, err)

	wantTool := map[ProjectType]string{
		Node:   "node",
		Python: "python",
		Rust:   "rust",
		Go:     "go",
	}

	for _, typ := range AllProjectTypes() {
		t.Run(string(typ), func(t *testing.T) {
			out, err := gen.Generate(typ)
			util.AssertNoError(t, err)

			m, err := parser.Parse(out, parser.FormatRazdfile)
			util.AssertNoError(t, err)

			util.AssertEqual(t, m.Version, "3")
			for _, task := range []string{"default", "setup", "build", "test", "install-tools"} {
				if !m.Tasks.Has(task) {
					t.Errorf("missing task %q", task)
				}
			}
			install, _ := m.Tasks.Get("install-tools")
			util.AssertEqual(t, install.Internal, true)

			if tool, ok := wantTool[typ]; ok {
				if !m.Tools.Tools.Has(tool) {
					t.Errorf("missing tool %q in:\n%s", tool, out)
				}
			} else if m.HasTools() {
				t.Errorf("%s starter should not pin tools", typ)
			}

			if !strings.HasPrefix(string(out), "# Razdfile for a "+typ.Title()+" project\n") {
				t.Errorf("missing header comment:\n%s", out)
			}
		})
	}
}

func TestGenerateQuotesCommands(t *testing.T) {
	gen, err := New()
	util.AssertNoError(t, err)

	out, err := gen.Generate(Generic)
	util.AssertNoError(t, err)

	m, err := parser.Parse(out, parser.FormatRazdfile)
	util.AssertNoError(t, err)
	def, _ := m.Tasks.Get("default")
	util.AssertEqual(t, len(def.Cmds), 2)
	util.AssertEqual(t, def.Cmds[0].Task, "setup")
	util.AssertEqual(t, def.Cmds[1].Cmd, `echo "Please configure your tasks"`)
}

func TestCreateRazdfile(t *testing.T) {
	gen, err := New()
	util.AssertNoError(t, err)
	dir := t.TempDir()

	path, err := gen.CreateRazdfile(dir, Go, false)
	util.AssertNoError(t, err)
	util.AssertEqual(t, path, filepath.Join(dir, "Razdfile.yml"))
	if !strings.Contains(util.ReadFile(t, path), "go mod download") {
		t.Error("Razdfile does not contain the Go starter")
	}

	util.WriteFile(t, path, "custom\n")
	if _, err := gen.CreateRazdfile(dir, Node, false); !errors.Is(err, ErrExists) {
		t.Errorf("CreateRazdfile() error = %v, want ErrExists", err)
	}
	util.AssertEqual(t, util.ReadFile(t, path), "custom\n")

	_, err = gen.CreateRazdfile(dir, Node, true)
	util.AssertNoError(t, err)
	if !strings.Contains(util.ReadFile(t, path), "npm install") {
		t.Error("force should overwrite the Razdfile")
	}
}

package razdfile

import (
	"errors"
	"slices"
	"strings"
	"testing"

	rerrors "github.com/klauern/razd/internal/errors"
	"github.com/klauern/razd/internal/model"
	"github.com/klauern/razd/internal/util"
)

const sample = `version: "3"

mise:
  tools:
    node: "22"
    python:
      version: "3.11"
      postinstall: pip install -U pip
      os: [linux, macos]
      install_env:
        CFLAGS: -O2
  plugins:
    node: https://github.com/asdf-vm/asdf-nodejs.git

env:
  APP_ENV: dev

tasks:
  default:
    desc: Set up and run
    cmds:
      - task: setup
      - echo ready
  setup:
    internal: true
    cmds:
      - mise install
  deploy:
    deps: [build, {task: lint, vars: {STRICT: true}}]
    cmds:
      - task: upload
        vars:
          TARGET: prod
          RETRIES: 3
      - cmd: rm -rf dist
        silent: true
        platforms: [linux]
        ignore_error: true
`

func TestParse(t *testing.T) {
	m, err := Parse([]byte(sample))
	util.AssertNoError(t, err)

	util.AssertEqual(t, m.Version, "3")
	if got, want := m.Tools.Tools.Keys(), []string{"node", "python"}; !slices.Equal(got, want) {
		t.Errorf("tool order = %v, want %v", got, want)
	}

	node, _ := m.Tools.Tools.Get("node")
	util.AssertEqual(t, node.Kind, model.ToolSimple)
	util.AssertEqual(t, node.Version, "22")

	python, _ := m.Tools.Tools.Get("python")
	util.AssertEqual(t, python.Kind, model.ToolComplex)
	util.AssertEqual(t, python.Version, "3.11")
	util.AssertEqual(t, python.Postinstall, "pip install -U pip")
	if !slices.Equal(python.OS, []string{"linux", "macos"}) {
		t.Errorf("os = %v", python.OS)
	}
	if v, _ := python.InstallEnv.Get("CFLAGS"); v != "-O2" {
		t.Errorf("install_env CFLAGS = %q", v)
	}

	if url, _ := m.Tools.Plugins.Get("node"); url != "https://github.com/asdf-vm/asdf-nodejs.git" {
		t.Errorf("plugin url = %q", url)
	}
	if v, _ := m.Env.Get("APP_ENV"); v.Str != "dev" {
		t.Errorf("env APP_ENV = %v", v)
	}

	if got, want := m.Tasks.Keys(), []string{"default", "setup", "deploy"}; !slices.Equal(got, want) {
		t.Errorf("task order = %v, want %v", got, want)
	}

	def, _ := m.Tasks.Get("default")
	util.AssertEqual(t, def.Desc, "Set up and run")
	util.AssertEqual(t, len(def.Cmds), 2)
	util.AssertEqual(t, def.Cmds[0].Kind, model.CommandTaskRef)
	util.AssertEqual(t, def.Cmds[0].Task, "setup")
	util.AssertEqual(t, def.Cmds[1].Kind, model.CommandLiteral)
	util.AssertEqual(t, def.Cmds[1].Cmd, "echo ready")

	setup, _ := m.Tasks.Get("setup")
	util.AssertEqual(t, setup.Internal, true)

	deploy, _ := m.Tasks.Get("deploy")
	util.AssertEqual(t, len(deploy.Deps), 2)
	util.AssertEqual(t, deploy.Deps[0].Task, "build")
	util.AssertEqual(t, deploy.Deps[1].Task, "lint")
	if v, _ := deploy.Deps[1].Vars.Get("STRICT"); v.Kind != model.ValueBool || !v.Bool {
		t.Errorf("dep var STRICT = %v", v)
	}

	upload := deploy.Cmds[0]
	if got := upload.Vars.Keys(); !slices.Equal(got, []string{"TARGET", "RETRIES"}) {
		t.Errorf("var order = %v", got)
	}
	if v, _ := upload.Vars.Get("RETRIES"); v.Kind != model.ValueNumber || v.Str != "3" {
		t.Errorf("RETRIES = %+v", v)
	}

	rm := deploy.Cmds[1]
	util.AssertEqual(t, rm.Kind, model.CommandLiteral)
	util.AssertEqual(t, rm.Cmd, "rm -rf dist")
	if rm.Silent == nil || !*rm.Silent {
		t.Error("expected silent: true")
	}
	util.AssertEqual(t, rm.IgnoreError, true)
	if !slices.Equal(rm.Platforms, []string{"linux"}) {
		t.Errorf("platforms = %v", rm.Platforms)
	}
}

func TestParseDefaults(t *testing.T) {
	tests := map[string]string{
		"empty document": "",
		"only comments":  "# nothing here\n",
		"no version":     "tasks: {}\n",
		"null version":   "version:\ntasks:\n",
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			m, err := Parse([]byte(input))
			util.AssertNoError(t, err)
			util.AssertEqual(t, m.Version, model.DefaultVersion)
			util.AssertEqual(t, m.HasTools(), false)
			util.AssertEqual(t, m.Tasks.Len(), 0)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := map[string]struct {
		input string
		want  error
	}{
		"invalid yaml":           {"tasks: [unclosed\n", rerrors.ErrParse},
		"top level list":         {"- a\n- b\n", rerrors.ErrParse},
		"command without task":   {"tasks:\n  a:\n    cmds:\n      - foo: bar\n", rerrors.ErrParse},
		"nested list command":    {"tasks:\n  a:\n    cmds:\n      - [x, y]\n", rerrors.ErrParse},
		"cmds not a list":        {"tasks:\n  a:\n    cmds: echo\n", rerrors.ErrParse},
		"internal not bool":      {"tasks:\n  a:\n    internal: maybe\n", rerrors.ErrParse},
		"tool without version":   {"mise:\n  tools:\n    node:\n      os: linux\n", rerrors.ErrParse},
		"tool is a list":         {"mise:\n  tools:\n    node: [20, 22]\n", rerrors.ErrParse},
		"unprefixed slash name":  {"mise:\n  tools:\n    my/tool: '1'\n", rerrors.ErrValidation},
		"bad plugin url":         {"mise:\n  plugins:\n    node: ftp://x/y\n", rerrors.ErrValidation},
		"duplicate task":         {"tasks:\n  a: {}\n  a: {}\n", rerrors.ErrParse},
		"dependency is a list":   {"tasks:\n  a:\n    deps: [[x]]\n", rerrors.ErrParse},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			if !errors.Is(err, tt.want) {
				t.Errorf("Parse() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseValidationNamesEntry(t *testing.T) {
	_, err := Parse([]byte("mise:\n  tools:\n    my/tool: '1'\n"))
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "tools.my/tool") {
		t.Errorf("error %q does not name the entry", err)
	}
}

func TestRenderRoundTrip(t *testing.T) {
	m, err := Parse([]byte(sample))
	util.AssertNoError(t, err)

	out, err := Render(m)
	util.AssertNoError(t, err)

	again, err := Parse(out)
	util.AssertNoError(t, err)

	util.AssertEqual(t, again.Version, m.Version)
	if !slices.Equal(again.Tools.Tools.Keys(), m.Tools.Tools.Keys()) {
		t.Errorf("tools changed: %v", again.Tools.Tools.Keys())
	}
	if !slices.Equal(again.Tasks.Keys(), m.Tasks.Keys()) {
		t.Errorf("tasks changed: %v", again.Tasks.Keys())
	}
	deploy, _ := again.Tasks.Get("deploy")
	if deploy.Cmds[1].Cmd != "rm -rf dist" || !deploy.Cmds[1].IgnoreError {
		t.Errorf("long-form command lost: %+v", deploy.Cmds[1])
	}
	if v, _ := deploy.Cmds[0].Vars.Get("RETRIES"); v.Kind != model.ValueNumber {
		t.Errorf("number became %v", v.Kind)
	}

	// A second render of the re-parsed manifest is byte-identical.
	out2, err := Render(again)
	util.AssertNoError(t, err)
	util.AssertEqual(t, string(out2), string(out))
}

func TestRenderOmitsInternalFalse(t *testing.T) {
	m := model.NewRazdfile()
	m.Tasks.Set("build", model.Task{Cmds: []model.Command{model.Literal("go build ./...")}})
	m.Tasks.Set("setup", model.Task{Cmds: []model.Command{model.Literal("mise install")}, Internal: true})

	out, err := Render(m)
	util.AssertNoError(t, err)
	text := string(out)

	if strings.Contains(text, "internal: false") {
		t.Errorf("internal: false should never be written:\n%s", text)
	}
	if strings.Count(text, "internal: true") != 1 {
		t.Errorf("expected one internal: true:\n%s", text)
	}
	if !strings.HasPrefix(text, "version: '3'\n") {
		t.Errorf("expected quoted version first:\n%s", text)
	}
}

func TestRenderQuotesNumericVersions(t *testing.T) {
	m := model.NewRazdfile()
	m.Tools = model.NewToolSection()
	m.Tools.Tools.Set("node", model.SimpleTool("20"))

	out, err := Render(m)
	util.AssertNoError(t, err)
	if !strings.Contains(string(out), `node: "20"`) {
		t.Errorf("numeric version must stay a string:\n%s", out)
	}

	again, err := Parse(out)
	util.AssertNoError(t, err)
	node, _ := again.Tools.Tools.Get("node")
	util.AssertEqual(t, node.Version, "20")
}

func TestRenderSpacing(t *testing.T) {
	m := model.NewRazdfile()
	m.Tools = model.NewToolSection()
	m.Tools.Tools.Set("node", model.SimpleTool("22"))
	m.Tasks.Set("a", model.Task{Cmds: []model.Command{model.Literal("echo a")}})
	m.Tasks.Set("b", model.Task{Cmds: []model.Command{model.Literal("echo b")}})

	out, err := Render(m)
	util.AssertNoError(t, err)
	text := string(out)

	for _, want := range []string{"'3'\n\nmise:", "\n\ntasks:\n  a:\n", "\n\n  b:\n"} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in:\n%s", want, text)
		}
	}
	if strings.Contains(text, "\n\n\n") {
		t.Errorf("double blank line in:\n%s", text)
	}
}

func TestAddSpacingKeepsBlockScalars(t *testing.T) {
	in := "tasks:\n  a:\n    cmds:\n      - |\n        echo one\n\n        echo two\n  b:\n    cmds: []\n"
	got := string(addSpacing([]byte(in)))
	want := "tasks:\n  a:\n    cmds:\n      - |\n        echo one\n\n        echo two\n\n  b:\n    cmds: []\n"
	util.AssertEqual(t, got, want)
}

func TestAddSpacingKeepsCommentsAttached(t *testing.T) {
	in := "version: '3'\n# tasks below\ntasks:\n  a: {}\n  # second\n  b: {}\n"
	got := string(addSpacing([]byte(in)))
	want := "version: '3'\n\n# tasks below\ntasks:\n  a: {}\n\n  # second\n  b: {}\n"
	util.AssertEqual(t, got, want)
}

func TestAddSpacingIgnoresBlockIndicatorInComment(t *testing.T) {
	in := "tasks:\n  a:\n    cmds: []\n  # usage: b |\n    desc: x\n  c:\n    cmds: []\n"
	got := string(addSpacing([]byte(in)))
	want := "tasks:\n  a:\n    cmds: []\n\n  # usage: b |\n    desc: x\n\n  c:\n    cmds: []\n"
	util.AssertEqual(t, got, want)
}

func TestReplaceToolSection(t *testing.T) {
	existing := `version: '3'
# project tasks
tasks:
  build:
    cmds:
      - go build ./...
mise:
  tools:
    node: "18"
includes:
  docs: ./docs/Taskfile.yml
`
	ts := model.NewToolSection()
	ts.Tools.Set("node", model.SimpleTool("22"))
	ts.Tools.Set("go", model.SimpleTool("1.23"))

	out, err := ReplaceToolSection([]byte(existing), ts)
	util.AssertNoError(t, err)
	text := string(out)

	if !strings.Contains(text, "# project tasks") {
		t.Errorf("comment lost:\n%s", text)
	}
	if !strings.Contains(text, "includes:") || !strings.Contains(text, "docs: ./docs/Taskfile.yml") {
		t.Errorf("unknown key lost:\n%s", text)
	}
	if strings.Index(text, "tasks:") > strings.Index(text, "mise:") {
		t.Errorf("key order changed:\n%s", text)
	}

	m, err := Parse(out)
	util.AssertNoError(t, err)
	node, _ := m.Tools.Tools.Get("node")
	util.AssertEqual(t, node.Version, "22")
	util.AssertEqual(t, m.Tools.Tools.Len(), 2)
	util.AssertEqual(t, m.Tasks.Len(), 1)
	util.AssertEqual(t, m.Extra.Has("includes"), true)
}

func TestReplaceToolSectionInsertAndRemove(t *testing.T) {
	existing := "version: '3'\ntasks:\n  a:\n    cmds: [echo a]\n"
	ts := model.NewToolSection()
	ts.Tools.Set("node", model.SimpleTool("22"))

	out, err := ReplaceToolSection([]byte(existing), ts)
	util.AssertNoError(t, err)
	text := string(out)
	if v, m := strings.Index(text, "version:"), strings.Index(text, "mise:"); m < v || m > strings.Index(text, "tasks:") {
		t.Errorf("mise should follow version:\n%s", text)
	}

	removed, err := ReplaceToolSection(out, model.NewToolSection())
	util.AssertNoError(t, err)
	if strings.Contains(string(removed), "mise:") {
		t.Errorf("empty section should remove the key:\n%s", removed)
	}
}

func TestReplaceToolSectionEmptyDocument(t *testing.T) {
	ts := model.NewToolSection()
	ts.Tools.Set("node", model.SimpleTool("20"))

	out, err := ReplaceToolSection(nil, ts)
	util.AssertNoError(t, err)

	m, err := Parse(out)
	util.AssertNoError(t, err)
	util.AssertEqual(t, m.Version, "3")
	node, _ := m.Tools.Tools.Get("node")
	util.AssertEqual(t, node.Version, "20")
}

func TestReplaceToolSectionInlinesAliasesIntoOldSection(t *testing.T) {
	tests := map[string]struct {
		existing string
		check    func(t *testing.T, m *model.Manifest)
	}{
		"aliased tool version": {
			existing: "version: '3'\nmise:\n  tools:\n    node: &nodever \"22\"\ntasks:\n  build:\n    vars:\n      NODE: *nodever\n    cmds: [echo build]\n",
			check: func(t *testing.T, m *model.Manifest) {
				build, _ := m.Tasks.Get("build")
				v, _ := build.Vars.Get("NODE")
				util.AssertEqual(t, v.Str, "22")
			},
		},
		"aliased tools mapping": {
			existing: "version: '3'\nmise:\n  tools: &tools\n    node: \"22\"\nx-tools: *tools\ntasks: {}\n",
			check: func(t *testing.T, m *model.Manifest) {
				util.AssertEqual(t, m.Extra.Has("x-tools"), true)
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			ts := model.NewToolSection()
			ts.Tools.Set("node", model.SimpleTool("20"))

			out, err := ReplaceToolSection([]byte(tt.existing), ts)
			util.AssertNoError(t, err)
			if strings.Contains(string(out), "*") {
				t.Errorf("dangling alias left in:\n%s", out)
			}

			m, err := Parse(out)
			util.AssertNoError(t, err)
			node, _ := m.Tools.Tools.Get("node")
			util.AssertEqual(t, node.Version, "20")
			tt.check(t, m)
		})
	}
}

func TestRenderInlinesAliasesInPassthroughKeys(t *testing.T) {
	in := "version: '3'\nvars:\n  REGION: &region eu-west-1\ntasks: {}\nx-deploy:\n  region: *region\n"
	m, err := Parse([]byte(in))
	util.AssertNoError(t, err)

	out, err := Render(m)
	util.AssertNoError(t, err)
	if !strings.Contains(string(out), "region: eu-west-1") {
		t.Errorf("alias not expanded:\n%s", out)
	}

	again, err := Parse(out)
	util.AssertNoError(t, err)
	util.AssertEqual(t, again.Extra.Has("x-deploy"), true)
}

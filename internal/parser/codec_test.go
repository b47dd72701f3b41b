package parser

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	rerrors "github.com/klauern/razd/internal/errors"
	"github.com/klauern/razd/internal/model"
	"github.com/klauern/razd/internal/util"
)

func TestFormatForPath(t *testing.T) {
	tests := map[string]struct {
		path   string
		want   Format
		wantOK bool
	}{
		"razdfile":        {"/p/Razdfile.yml", FormatRazdfile, true},
		"razdfile yaml":   {"Razdfile.yaml", FormatRazdfile, true},
		"mise":            {"/p/mise.toml", FormatMise, true},
		"hidden mise":     {".mise.toml", FormatMise, true},
		"unrelated":       {"/p/Taskfile.yml", 0, false},
		"backup file":     {"/p/mise.toml.backup", 0, false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := FormatForPath(tt.path)
			util.AssertEqual(t, ok, tt.wantOK)
			if ok {
				util.AssertEqual(t, got, tt.want)
			}
		})
	}
}

func TestFormatString(t *testing.T) {
	util.AssertEqual(t, FormatRazdfile.String(), "Razdfile.yml")
	util.AssertEqual(t, FormatMise.FileName(), "mise.toml")
	util.AssertEqual(t, Format(9).String(), "unknown")
}

func TestParseDispatch(t *testing.T) {
	razd, err := Parse([]byte("mise:\n  tools:\n    node: '22'\n"), FormatRazdfile)
	util.AssertNoError(t, err)
	util.AssertEqual(t, razd.Version, "3")

	mise, err := Parse([]byte("[tools]\nnode = \"22\"\n"), FormatMise)
	util.AssertNoError(t, err)
	util.AssertEqual(t, mise.Tools.Tools.Len(), 1)

	if _, err := Parse(nil, Format(9)); !errors.Is(err, rerrors.ErrConfig) {
		t.Errorf("unknown format error = %v", err)
	}
}

func TestGenerateMiseFromRazdfile(t *testing.T) {
	razd, err := Parse([]byte("mise:\n  tools:\n    node: '22'\n"), FormatRazdfile)
	util.AssertNoError(t, err)

	out, err := Render(MiseFromTools(razd.Tools, nil), FormatMise)
	util.AssertNoError(t, err)
	util.AssertEqual(t, string(out), "[tools]\nnode = \"22\"\n")
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, MiseName)
	util.WriteFile(t, path, "[tools]\nnode = 20\n")

	_, data, err := ParseFile(path, FormatMise)
	if !errors.Is(err, rerrors.ErrParse) {
		t.Fatalf("expected parse error, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), path+": ") {
		t.Errorf("error should start with the path: %v", err)
	}
	if len(data) == 0 {
		t.Error("raw content should be returned with a parse error")
	}

	_, _, err = ParseFile(filepath.Join(dir, "missing.toml"), FormatMise)
	if !errors.Is(err, rerrors.ErrIO) {
		t.Errorf("expected io error, got %v", err)
	}
}

func TestRazdfileWithTools(t *testing.T) {
	ts := model.NewToolSection()
	ts.Tools.Set("node", model.SimpleTool("20"))

	created, err := RazdfileWithTools(nil, ts)
	util.AssertNoError(t, err)
	m, err := Parse(created, FormatRazdfile)
	util.AssertNoError(t, err)
	util.AssertEqual(t, m.HasTools(), true)

	updated, err := RazdfileWithTools([]byte("version: '3'\ntasks:\n  a:\n    cmds: [echo]\n"), ts)
	util.AssertNoError(t, err)
	m, err = Parse(updated, FormatRazdfile)
	util.AssertNoError(t, err)
	util.AssertEqual(t, m.Tasks.Len(), 1)
	util.AssertEqual(t, m.HasTools(), true)
}

package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"
)

func TestErrorIsMatchesKind(t *testing.T) {
	tests := map[string]struct {
		err    error
		target error
		want   bool
	}{
		"parse matches parse":           {Parse("Razdfile.yml", errors.New("bad")), ErrParse, true},
		"parse does not match io":       {Parse("Razdfile.yml", errors.New("bad")), ErrIO, false},
		"validation matches validation": {Validation("tools.x", "bad", ""), ErrValidation, true},
		"io matches io":                 {IO("mise.toml", "write", fs.ErrPermission), ErrIO, true},
		"io unwraps to cause":           {IO("mise.toml", "write", fs.ErrPermission), fs.ErrPermission, true},
		"config matches config":         {Config("no home", nil), ErrConfig, true},
		"wrapped still matches":         {fmt.Errorf("sync: %w", Parse("x", nil)), ErrParse, true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.want {
				t.Errorf("errors.Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := Validation("tools.my/tool", "standalone tool names allow only letters, digits, - and _", "'node'")
	err.Path = "Razdfile.yml"

	msg := err.Error()
	for _, want := range []string{"Razdfile.yml", `"tools.my/tool"`, "example: 'node'"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}

func TestWithPath(t *testing.T) {
	err := WithPath(Validation("plugins.x", "bad url", ""), "mise.toml")

	var e *Error
	if !errors.As(err, &e) {
		t.Fatal("expected *Error")
	}
	if e.Path != "mise.toml" {
		t.Errorf("Path = %q, want mise.toml", e.Path)
	}

	plain := errors.New("plain")
	if WithPath(plain, "x") != plain {
		t.Error("non-*Error should be returned unchanged")
	}
}

func TestKindOf(t *testing.T) {
	if got := KindOf(fmt.Errorf("wrap: %w", IO("p", "read", nil))); got != KindIO {
		t.Errorf("KindOf() = %q, want %q", got, KindIO)
	}
	if got := KindOf(errors.New("x")); got != "" {
		t.Errorf("KindOf(plain) = %q, want empty", got)
	}
}

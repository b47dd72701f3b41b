package parser

import (
	"fmt"
	"os"
	"path/filepath"

	rerrors "github.com/klauern/razd/internal/errors"
	"github.com/klauern/razd/internal/model"
	"github.com/klauern/razd/internal/parser/misetoml"
	"github.com/klauern/razd/internal/parser/razdfile"
)

// File names of the two synchronized manifests.
const (
	RazdfileName = "Razdfile.yml"
	MiseName     = "mise.toml"
)

// Format identifies an on-disk manifest format.
type Format int

const (
	// FormatRazdfile is the YAML Razdfile.
	FormatRazdfile Format = iota
	// FormatMise is the TOML mise.toml.
	FormatMise
)

// String returns the file name associated with the format.
func (f Format) String() string {
	switch f {
	case FormatRazdfile:
		return RazdfileName
	case FormatMise:
		return MiseName
	default:
		return "unknown"
	}
}

// FileName returns the manifest's file name inside a project root.
func (f Format) FileName() string {
	return f.String()
}

// FormatForPath returns the format of the manifest at path, by file name.
func FormatForPath(path string) (Format, bool) {
	switch filepath.Base(path) {
	case RazdfileName, "Razdfile.yaml":
		return FormatRazdfile, true
	case MiseName, ".mise.toml":
		return FormatMise, true
	default:
		return 0, false
	}
}

// Parse decodes data in the given format. Tool and plugin entries are
// validated before the manifest is returned.
func Parse(data []byte, format Format) (*model.Manifest, error) {
	switch format {
	case FormatRazdfile:
		return razdfile.Parse(data)
	case FormatMise:
		return misetoml.Parse(data)
	default:
		return nil, rerrors.Config(fmt.Sprintf("unknown manifest format %d", format), nil)
	}
}

// Render encodes m in the given format.
func Render(m *model.Manifest, format Format) ([]byte, error) {
	switch format {
	case FormatRazdfile:
		return razdfile.Render(m)
	case FormatMise:
		return misetoml.Render(m)
	default:
		return nil, rerrors.Config(fmt.Sprintf("unknown manifest format %d", format), nil)
	}
}

// ParseFile reads and decodes the manifest at path. Errors carry the path.
func ParseFile(path string, format Format) (*model.Manifest, []byte, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, nil, err
	}
	m, err := Parse(data, format)
	if err != nil {
		return nil, data, rerrors.WithPath(err, path)
	}
	return m, data, nil
}

// MiseFromTools builds the mise.toml manifest for a tool section, keeping
// the passthrough entries of base when it is not nil.
func MiseFromTools(ts *model.ToolSection, base *model.Manifest) *model.Manifest {
	m := &model.Manifest{Tools: ts}
	if base != nil {
		m.Extra = base.Extra
	}
	return m
}

// RazdfileWithTools returns the Razdfile content for existing with its
// mise: key replaced by ts. A nil existing produces a minimal Razdfile.
func RazdfileWithTools(existing []byte, ts *model.ToolSection) ([]byte, error) {
	if existing == nil {
		m := model.NewRazdfile()
		m.Tools = ts
		return razdfile.Render(m)
	}
	return razdfile.ReplaceToolSection(existing, ts)
}

func readFile(path string) ([]byte, error) {
	// #nosec G304 - path is a manifest inside the project root
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, rerrors.IO(path, "failed to read", err)
	}
	return data, nil
}

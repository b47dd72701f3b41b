// Package misetoml reads and writes mise.toml.
//
// Only [tools] and [plugins] are modeled. Other top-level entries are kept
// as passthrough values so that regenerating the file from a Razdfile does
// not drop settings the user added by hand.
package misetoml

import (
	"bytes"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	rerrors "github.com/klauern/razd/internal/errors"
	"github.com/klauern/razd/internal/model"
	"github.com/klauern/razd/internal/validation"
)

const (
	tableTools   = "tools"
	tablePlugins = "plugins"
)

// Parse decodes mise.toml. The returned manifest has no version and no
// tasks.
func Parse(data []byte) (*model.Manifest, error) {
	var raw map[string]any
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, rerrors.Parse("", err)
	}

	m := &model.Manifest{}
	for _, key := range orderedKeys(md, nil, raw) {
		val := raw[key]
		switch key {
		case tableTools, tablePlugins:
			if m.Tools == nil {
				m.Tools = model.NewToolSection()
			}
			table, ok := val.(map[string]any)
			if !ok {
				return nil, rerrors.Malformed(key, "must be a table")
			}
			if key == tableTools {
				err = decodeTools(md, table, m.Tools)
			} else {
				err = decodePlugins(md, table, m.Tools)
			}
			if err != nil {
				return nil, err
			}
		default:
			if m.Extra == nil {
				m.Extra = model.NewOrderedMap[any]()
			}
			m.Extra.Set(key, val)
		}
	}

	if err := validation.ValidateToolSection(m.Tools).Error(); err != nil {
		return nil, err
	}
	return m, nil
}

func decodeTools(md toml.MetaData, table map[string]any, ts *model.ToolSection) error {
	for _, name := range orderedKeys(md, []string{tableTools}, table) {
		field := tableTools + "." + name
		switch v := table[name].(type) {
		case string:
			ts.Tools.Set(name, model.SimpleTool(v))
		case map[string]any:
			spec, err := decodeComplexTool(md, field, []string{tableTools, name}, v)
			if err != nil {
				return err
			}
			ts.Tools.Set(name, spec)
		default:
			return rerrors.Malformed(field, fmt.Sprintf("invalid tool config for %q: expected a version string or a table", name))
		}
	}
	return nil
}

func decodeComplexTool(md toml.MetaData, field string, path []string, t map[string]any) (model.ToolSpec, error) {
	spec := model.ToolSpec{Kind: model.ToolComplex}

	version, ok := t["version"].(string)
	if !ok {
		return spec, rerrors.Malformed(field, "tool is missing a version")
	}
	spec.Version = version

	if v, present := t["postinstall"]; present {
		s, ok := v.(string)
		if !ok {
			return spec, rerrors.Malformed(field+".postinstall", "must be a string")
		}
		spec.Postinstall = s
	}

	switch v := t["os"].(type) {
	case nil:
	case string:
		spec.OS = []string{v}
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return spec, rerrors.Malformed(field+".os", "must be a string or an array of strings")
			}
			spec.OS = append(spec.OS, s)
		}
	default:
		return spec, rerrors.Malformed(field+".os", "must be a string or an array of strings")
	}

	if v, present := t["install_env"]; present {
		env, ok := v.(map[string]any)
		if !ok {
			return spec, rerrors.Malformed(field+".install_env", "must be a table")
		}
		spec.InstallEnv = model.NewOrderedMap[string]()
		for _, k := range orderedKeys(md, append(slices.Clone(path), "install_env"), env) {
			s, ok := env[k].(string)
			if !ok {
				return spec, rerrors.Malformed(field+".install_env."+k, "must be a string")
			}
			spec.InstallEnv.Set(k, s)
		}
	}
	return spec, nil
}

func decodePlugins(md toml.MetaData, table map[string]any, ts *model.ToolSection) error {
	for _, name := range orderedKeys(md, []string{tablePlugins}, table) {
		url, ok := table[name].(string)
		if !ok {
			return rerrors.Malformed(tablePlugins+"."+name, "plugin must be a git URL string")
		}
		ts.Plugins.Set(name, url)
	}
	return nil
}

// orderedKeys returns the keys of table in document order. The metadata
// records every key path it decoded; keys it does not know about are
// appended in sorted order.
func orderedKeys(md toml.MetaData, prefix []string, table map[string]any) []string {
	keys := make([]string, 0, len(table))
	seen := make(map[string]bool, len(table))
	for _, k := range md.Keys() {
		if len(k) != len(prefix)+1 || !slices.Equal(k[:len(prefix)], prefix) {
			continue
		}
		name := k[len(prefix)]
		if _, ok := table[name]; ok && !seen[name] {
			seen[name] = true
			keys = append(keys, name)
		}
	}
	var rest []string
	for name := range table {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	slices.Sort(rest)
	return append(keys, rest...)
}

// Render encodes m as mise.toml. Sections without entries are omitted, so
// an empty manifest renders as an empty file. Passthrough values are written
// with the toml encoder: plain keys before [tools], tables after [plugins].
func Render(m *model.Manifest) ([]byte, error) {
	var sections []string

	var plain, tables []string
	for key, v := range m.Extra.All() {
		if isTable(v) {
			tables = append(tables, key)
		} else {
			plain = append(plain, key)
		}
	}

	if len(plain) > 0 {
		var b strings.Builder
		for _, key := range plain {
			v, _ := m.Extra.Get(key)
			out, err := encodeExtra(key, v)
			if err != nil {
				return nil, err
			}
			b.WriteString(out)
		}
		sections = append(sections, b.String())
	}

	if ts := m.Tools; ts != nil {
		if ts.Tools.Len() > 0 {
			var b strings.Builder
			b.WriteString("[tools]\n")
			for name, spec := range ts.Tools.All() {
				fmt.Fprintf(&b, "%s = %s\n", key(name), toolValue(spec))
			}
			sections = append(sections, b.String())
		}
		if ts.Plugins.Len() > 0 {
			var b strings.Builder
			b.WriteString("[plugins]\n")
			for name, url := range ts.Plugins.All() {
				fmt.Fprintf(&b, "%s = %s\n", key(name), quote(url))
			}
			sections = append(sections, b.String())
		}
	}

	for _, k := range tables {
		v, _ := m.Extra.Get(k)
		out, err := encodeExtra(k, v)
		if err != nil {
			return nil, err
		}
		sections = append(sections, out)
	}

	return []byte(strings.Join(sections, "\n")), nil
}

func toolValue(spec model.ToolSpec) string {
	if spec.Kind == model.ToolSimple {
		return quote(spec.Version)
	}
	parts := []string{"version = " + quote(spec.Version)}
	if spec.Postinstall != "" {
		parts = append(parts, "postinstall = "+quote(spec.Postinstall))
	}
	if spec.OS != nil {
		items := make([]string, len(spec.OS))
		for i, os := range spec.OS {
			items[i] = quote(os)
		}
		parts = append(parts, "os = ["+strings.Join(items, ", ")+"]")
	}
	if spec.InstallEnv != nil {
		var env []string
		for k, v := range spec.InstallEnv.All() {
			env = append(env, key(k)+" = "+quote(v))
		}
		if len(env) == 0 {
			parts = append(parts, "install_env = {}")
		} else {
			parts = append(parts, "install_env = { "+strings.Join(env, ", ")+" }")
		}
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

func encodeExtra(k string, v any) (string, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = ""
	if err := enc.Encode(map[string]any{k: v}); err != nil {
		return "", fmt.Errorf("encoding mise.toml %s: %w", k, err)
	}
	return buf.String(), nil
}

func isTable(v any) bool {
	switch v.(type) {
	case map[string]any, []map[string]any:
		return true
	}
	return false
}

var bareKey = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func key(k string) string {
	if bareKey.MatchString(k) {
		return k
	}
	return quote(k)
}

// quote returns s as a TOML basic string.
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\t':
			b.WriteString(`\t`)
		case '\n':
			b.WriteString(`\n`)
		case '\f':
			b.WriteString(`\f`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04X`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

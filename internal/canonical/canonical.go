// Package canonical turns manifests into a formatting-independent string
// and hashes it.
//
// The canonical form depends only on semantic content: map entries are
// sorted by key, command order is kept, defaults are omitted, and absent
// sections are indistinguishable from empty ones. Every scalar is quoted so
// that separators inside values cannot make two manifests collide.
package canonical

import (
	"fmt"
	"strings"

	"github.com/klauern/razd/internal/model"
)

// Canonicalize returns the canonical form of m.
func Canonicalize(m *model.Manifest) string {
	var b strings.Builder
	if m == nil {
		m = &model.Manifest{}
	}

	fmt.Fprintf(&b, "v:%q\n", m.Version)
	writeTools(&b, m.Tools)
	writeTasks(&b, m.Tasks)
	return b.String()
}

// CanonicalizeTools returns the canonical form of a tool section alone.
func CanonicalizeTools(ts *model.ToolSection) string {
	var b strings.Builder
	writeTools(&b, ts)
	return b.String()
}

func writeTools(b *strings.Builder, ts *model.ToolSection) {
	if ts.IsEmpty() {
		return
	}
	if ts.Tools.Len() > 0 {
		b.WriteString("tools:\n")
		for _, name := range ts.Tools.SortedKeys() {
			spec, _ := ts.Tools.Get(name)
			writeTool(b, name, spec)
		}
	}
	if ts.Plugins.Len() > 0 {
		b.WriteString("plugins:\n")
		for _, name := range ts.Plugins.SortedKeys() {
			url, _ := ts.Plugins.Get(name)
			fmt.Fprintf(b, "  %q:%q\n", name, url)
		}
	}
}

func writeTool(b *strings.Builder, name string, spec model.ToolSpec) {
	if spec.Kind == model.ToolSimple {
		fmt.Fprintf(b, "  %q:%q\n", name, spec.Version)
		return
	}
	fmt.Fprintf(b, "  %q:\n", name)
	fmt.Fprintf(b, "    version:%q\n", spec.Version)
	if spec.Postinstall != "" {
		fmt.Fprintf(b, "    postinstall:%q\n", spec.Postinstall)
	}
	if len(spec.OS) > 0 {
		fmt.Fprintf(b, "    os:%s\n", quoteList(spec.OS))
	}
	if spec.InstallEnv.Len() > 0 {
		b.WriteString("    install_env:\n")
		for _, k := range spec.InstallEnv.SortedKeys() {
			v, _ := spec.InstallEnv.Get(k)
			fmt.Fprintf(b, "      %q:%q\n", k, v)
		}
	}
}

func writeTasks(b *strings.Builder, tasks *model.OrderedMap[model.Task]) {
	if tasks.Len() == 0 {
		return
	}
	b.WriteString("tasks:\n")
	for _, name := range tasks.SortedKeys() {
		task, _ := tasks.Get(name)
		fmt.Fprintf(b, "  %q:\n", name)
		if task.Desc != "" {
			fmt.Fprintf(b, "    desc:%q\n", task.Desc)
		}
		if len(task.Cmds) > 0 {
			b.WriteString("    cmds:\n")
			for _, cmd := range task.Cmds {
				b.WriteString("      ")
				writeCommand(b, cmd)
				b.WriteByte('\n')
			}
		}
		if task.Internal {
			b.WriteString("    internal:true\n")
		}
	}
}

func writeCommand(b *strings.Builder, cmd model.Command) {
	if cmd.Kind == model.CommandTaskRef {
		fmt.Fprintf(b, "task:%q", cmd.Task)
		if cmd.Vars.Len() > 0 {
			b.WriteString(" vars:")
			b.WriteString(Value(model.MapValue(cmd.Vars)))
		}
		if cmd.Silent != nil {
			fmt.Fprintf(b, " silent:%t", *cmd.Silent)
		}
		return
	}
	fmt.Fprintf(b, "cmd:%q", cmd.Cmd)
	if cmd.Silent != nil {
		fmt.Fprintf(b, " silent:%t", *cmd.Silent)
	}
	if len(cmd.Platforms) > 0 {
		fmt.Fprintf(b, " platforms:%s", quoteList(cmd.Platforms))
	}
	if cmd.IgnoreError {
		b.WriteString(" ignore_error:true")
	}
}

// Value returns the canonical form of a variable value. Maps are sorted by
// key; lists keep their order.
func Value(v model.Value) string {
	switch v.Kind {
	case model.ValueString:
		return fmt.Sprintf("%q", v.Str)
	case model.ValueNumber:
		return v.Str
	case model.ValueBool:
		return fmt.Sprintf("%t", v.Bool)
	case model.ValueList:
		parts := make([]string, len(v.List))
		for i, item := range v.List {
			parts[i] = Value(item)
		}
		return "[" + strings.Join(parts, ",") + "]"
	case model.ValueMap:
		keys := v.Map.SortedKeys()
		parts := make([]string, len(keys))
		for i, k := range keys {
			item, _ := v.Map.Get(k)
			parts[i] = fmt.Sprintf("%q:%s", k, Value(item))
		}
		return "{" + strings.Join(parts, ",") + "}"
	default:
		return "null"
	}
}

func quoteList(items []string) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = fmt.Sprintf("%q", item)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

package razdfile

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/klauern/razd/internal/model"
)

const indent = 2

// Render encodes m as a Razdfile. Top-level keys are written in the order
// version, mise, env, vars, tasks, followed by any passthrough keys, with a
// blank line between sections and between tasks.
func Render(m *model.Manifest) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}

	version := m.Version
	if version == "" {
		version = model.DefaultVersion
	}
	appendPair(root, keyVersion, &yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   "!!str",
		Style: yaml.SingleQuotedStyle,
		Value: version,
	})
	if !m.Tools.IsEmpty() {
		appendPair(root, keyMise, toolSectionNode(m.Tools))
	}
	if m.Env.Len() > 0 {
		appendPair(root, keyEnv, valueMapNode(m.Env))
	}
	if m.Vars.Len() > 0 {
		appendPair(root, keyVars, valueMapNode(m.Vars))
	}
	tasks := &yaml.Node{Kind: yaml.MappingNode}
	for name, task := range m.Tasks.All() {
		appendPair(tasks, name, taskNode(task))
	}
	appendPair(root, keyTasks, tasks)
	for key, v := range m.Extra.All() {
		if n, ok := v.(*yaml.Node); ok {
			appendPair(root, key, n)
		}
	}

	out, err := encode(root)
	if err != nil {
		return nil, err
	}
	return addSpacing(out), nil
}

func encode(n *yaml.Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(indent)
	if err := enc.Encode(n); err != nil {
		return nil, fmt.Errorf("encoding Razdfile: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding Razdfile: %w", err)
	}
	return buf.Bytes(), nil
}

func toolSectionNode(ts *model.ToolSection) *yaml.Node {
	section := &yaml.Node{Kind: yaml.MappingNode}
	if ts.Tools.Len() > 0 {
		tools := &yaml.Node{Kind: yaml.MappingNode}
		for name, spec := range ts.Tools.All() {
			appendPair(tools, name, toolNode(spec))
		}
		appendPair(section, "tools", tools)
	}
	if ts.Plugins.Len() > 0 {
		plugins := &yaml.Node{Kind: yaml.MappingNode}
		for name, url := range ts.Plugins.All() {
			appendPair(plugins, name, str(url))
		}
		appendPair(section, "plugins", plugins)
	}
	return section
}

func toolNode(spec model.ToolSpec) *yaml.Node {
	if spec.Kind == model.ToolSimple {
		return str(spec.Version)
	}
	n := &yaml.Node{Kind: yaml.MappingNode}
	appendPair(n, "version", str(spec.Version))
	if spec.Postinstall != "" {
		appendPair(n, "postinstall", str(spec.Postinstall))
	}
	if spec.OS != nil {
		appendPair(n, "os", strList(spec.OS))
	}
	if spec.InstallEnv != nil {
		env := &yaml.Node{Kind: yaml.MappingNode}
		for k, v := range spec.InstallEnv.All() {
			appendPair(env, k, str(v))
		}
		appendPair(n, "install_env", env)
	}
	return n
}

func taskNode(task model.Task) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	if task.Desc != "" {
		appendPair(n, "desc", str(task.Desc))
	}
	if len(task.Deps) > 0 {
		deps := &yaml.Node{Kind: yaml.SequenceNode}
		for _, dep := range task.Deps {
			deps.Content = append(deps.Content, depNode(dep))
		}
		appendPair(n, "deps", deps)
	}
	cmds := &yaml.Node{Kind: yaml.SequenceNode}
	for _, cmd := range task.Cmds {
		cmds.Content = append(cmds.Content, commandNode(cmd))
	}
	appendPair(n, "cmds", cmds)
	if task.Env.Len() > 0 {
		appendPair(n, "env", valueMapNode(task.Env))
	}
	if task.Vars.Len() > 0 {
		appendPair(n, "vars", valueMapNode(task.Vars))
	}
	if task.Silent != nil {
		appendPair(n, "silent", boolNode(*task.Silent))
	}
	if task.Platforms != nil {
		appendPair(n, "platforms", strList(task.Platforms))
	}
	// internal: false is the default and is never written.
	if task.Internal {
		appendPair(n, "internal", boolNode(true))
	}
	return n
}

func commandNode(cmd model.Command) *yaml.Node {
	if cmd.Kind == model.CommandLiteral && !cmd.HasOptions() {
		return str(cmd.Cmd)
	}
	n := &yaml.Node{Kind: yaml.MappingNode}
	if cmd.Kind == model.CommandTaskRef {
		appendPair(n, "task", str(cmd.Task))
		if cmd.Vars.Len() > 0 {
			appendPair(n, "vars", valueMapNode(cmd.Vars))
		}
	} else {
		appendPair(n, "cmd", str(cmd.Cmd))
	}
	if cmd.Silent != nil {
		appendPair(n, "silent", boolNode(*cmd.Silent))
	}
	if cmd.Kind == model.CommandLiteral {
		if cmd.Platforms != nil {
			appendPair(n, "platforms", strList(cmd.Platforms))
		}
		if cmd.IgnoreError {
			appendPair(n, "ignore_error", boolNode(true))
		}
	}
	return n
}

func depNode(dep model.Dependency) *yaml.Node {
	if dep.Vars.Len() == 0 && dep.Silent == nil {
		return str(dep.Task)
	}
	n := &yaml.Node{Kind: yaml.MappingNode}
	appendPair(n, "task", str(dep.Task))
	if dep.Vars.Len() > 0 {
		appendPair(n, "vars", valueMapNode(dep.Vars))
	}
	if dep.Silent != nil {
		appendPair(n, "silent", boolNode(*dep.Silent))
	}
	return n
}

func valueMapNode(m *model.OrderedMap[model.Value]) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for k, v := range m.All() {
		appendPair(n, k, valueNode(v))
	}
	return n
}

func valueNode(v model.Value) *yaml.Node {
	switch v.Kind {
	case model.ValueString:
		return str(v.Str)
	case model.ValueNumber:
		return &yaml.Node{Kind: yaml.ScalarNode, Value: v.Str}
	case model.ValueBool:
		return boolNode(v.Bool)
	case model.ValueList:
		n := &yaml.Node{Kind: yaml.SequenceNode}
		for _, item := range v.List {
			n.Content = append(n.Content, valueNode(item))
		}
		return n
	case model.ValueMap:
		return valueMapNode(v.Map)
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

func appendPair(n *yaml.Node, key string, val *yaml.Node) {
	n.Content = append(n.Content, str(key), val)
}

func str(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func boolNode(b bool) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: fmt.Sprintf("%t", b)}
}

func strList(items []string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode}
	for _, item := range items {
		n.Content = append(n.Content, str(item))
	}
	return n
}

// addSpacing inserts a blank line before every top-level key but the first
// and before every task but the first. A comment directly above a key stays
// attached to it. Existing blank lines outside block scalars are dropped
// first so the result is stable.
func addSpacing(out []byte) []byte {
	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	var b strings.Builder
	wrote, inTasks, firstTask, attached := false, false, false, false
	inBlock, blockIndent := false, 0

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		depth := len(line) - len(strings.TrimLeft(line, " "))
		if inBlock {
			if trimmed == "" || depth > blockIndent {
				b.WriteString(line)
				b.WriteByte('\n')
				continue
			}
			inBlock = false
		}
		if trimmed == "" {
			continue
		}

		comment := strings.HasPrefix(trimmed, "#")
		switch {
		case depth == 0 && !strings.HasPrefix(line, "-"):
			if wrote && !attached {
				b.WriteByte('\n')
			}
			attached = comment
			if !comment {
				inTasks = strings.HasPrefix(line, keyTasks+":")
				firstTask = true
			}
		case inTasks && depth == indent:
			if !firstTask && !attached {
				b.WriteByte('\n')
			}
			attached = comment
			if !comment {
				firstTask = false
			}
		default:
			attached = false
		}

		b.WriteString(line)
		b.WriteByte('\n')
		wrote = true
		if !comment && blockScalarPattern.MatchString(line) {
			inBlock, blockIndent = true, depth
		}
	}
	return []byte(b.String())
}

// blockScalarPattern matches a line ending in a literal or folded block
// indicator; the lines after it belong to the scalar and are copied as is.
var blockScalarPattern = regexp.MustCompile(`(^|: |- )[|>][0-9+-]*$`)

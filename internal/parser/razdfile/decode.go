// Package razdfile reads and writes Razdfile.yml.
//
// Decoding works on yaml.v3 nodes rather than on Go maps so that the file
// order of tools, plugins, tasks and variables is kept. Commands are
// disambiguated in a fixed order: a scalar is a literal, a mapping with a
// task key is a task reference, a mapping with a cmd key is a literal with
// options, and anything else is rejected.
package razdfile

import (
	"fmt"

	"gopkg.in/yaml.v3"

	rerrors "github.com/klauern/razd/internal/errors"
	"github.com/klauern/razd/internal/model"
	"github.com/klauern/razd/internal/validation"
)

// Top-level keys of a Razdfile.
const (
	keyVersion = "version"
	keyMise    = "mise"
	keyEnv     = "env"
	keyVars    = "vars"
	keyTasks   = "tasks"
)

// Parse decodes a Razdfile. An empty document yields a Razdfile with the
// default version and no tasks.
func Parse(data []byte) (*model.Manifest, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, rerrors.Parse("", err)
	}

	m := model.NewRazdfile()
	if len(doc.Content) == 0 {
		return m, nil
	}
	root := resolve(doc.Content[0])
	if isNull(root) {
		return m, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, rerrors.Malformed("", "top level must be a mapping")
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i].Value, resolve(root.Content[i+1])
		var err error
		switch key {
		case keyVersion:
			if !isNull(val) {
				m.Version, err = scalar(key, val)
			}
		case keyMise:
			m.Tools, err = decodeToolSection(val)
		case keyEnv:
			m.Env, err = decodeValueMap(key, val)
		case keyVars:
			m.Vars, err = decodeValueMap(key, val)
		case keyTasks:
			m.Tasks, err = decodeTasks(val)
		default:
			if m.Extra == nil {
				m.Extra = model.NewOrderedMap[any]()
			}
			own := nodeSet(root.Content[i+1])
			m.Extra.Set(key, inlineAliases(root.Content[i+1], func(n *yaml.Node) bool { return !own[n] }))
		}
		if err != nil {
			return nil, err
		}
	}

	if err := validation.ValidateToolSection(m.Tools).Error(); err != nil {
		return nil, err
	}
	return m, nil
}

func decodeToolSection(n *yaml.Node) (*model.ToolSection, error) {
	if isNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, rerrors.Malformed(keyMise, "must be a mapping with tools and plugins")
	}

	ts := model.NewToolSection()
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i].Value, resolve(n.Content[i+1])
		switch key {
		case "tools":
			if err := eachPair("mise.tools", val, func(name string, v *yaml.Node) error {
				if ts.Tools.Has(name) {
					return rerrors.Malformed("mise.tools."+name, "duplicate tool")
				}
				spec, err := decodeTool("mise.tools."+name, v)
				if err != nil {
					return err
				}
				ts.Tools.Set(name, spec)
				return nil
			}); err != nil {
				return nil, err
			}
		case "plugins":
			if err := eachPair("mise.plugins", val, func(name string, v *yaml.Node) error {
				url, err := scalar("mise.plugins."+name, v)
				if err != nil {
					return err
				}
				ts.Plugins.Set(name, url)
				return nil
			}); err != nil {
				return nil, err
			}
		}
	}
	return ts, nil
}

func decodeTool(field string, n *yaml.Node) (model.ToolSpec, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		if isNull(n) {
			return model.ToolSpec{}, rerrors.Malformed(field, "tool needs a version")
		}
		return model.SimpleTool(n.Value), nil
	case yaml.MappingNode:
	default:
		return model.ToolSpec{}, rerrors.Malformed(field, "tool must be a version string or a mapping")
	}

	spec := model.ToolSpec{Kind: model.ToolComplex}
	hasVersion := false
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i].Value, resolve(n.Content[i+1])
		var err error
		switch key {
		case "version":
			spec.Version, err = scalar(field+".version", val)
			hasVersion = true
		case "postinstall":
			spec.Postinstall, err = scalar(field+".postinstall", val)
		case "os":
			spec.OS, err = stringOrList(field+".os", val)
		case "install_env":
			spec.InstallEnv = model.NewOrderedMap[string]()
			err = eachPair(field+".install_env", val, func(k string, v *yaml.Node) error {
				s, err := scalar(field+".install_env."+k, v)
				spec.InstallEnv.Set(k, s)
				return err
			})
		}
		if err != nil {
			return model.ToolSpec{}, err
		}
	}
	if !hasVersion {
		return model.ToolSpec{}, rerrors.Malformed(field, "tool is missing a version")
	}
	return spec, nil
}

func decodeTasks(n *yaml.Node) (*model.OrderedMap[model.Task], error) {
	tasks := model.NewOrderedMap[model.Task]()
	if isNull(n) {
		return tasks, nil
	}
	err := eachPair(keyTasks, n, func(name string, v *yaml.Node) error {
		if tasks.Has(name) {
			return rerrors.Malformed("tasks."+name, "duplicate task")
		}
		task, err := decodeTask("tasks."+name, v)
		if err != nil {
			return err
		}
		tasks.Set(name, task)
		return nil
	})
	return tasks, err
}

func decodeTask(field string, n *yaml.Node) (model.Task, error) {
	var task model.Task
	if isNull(n) {
		return task, nil
	}
	if n.Kind != yaml.MappingNode {
		return task, rerrors.Malformed(field, "task must be a mapping")
	}

	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i].Value, resolve(n.Content[i+1])
		var err error
		switch key {
		case "desc":
			task.Desc, err = scalar(field+".desc", val)
		case "cmds":
			task.Cmds, err = decodeCommands(field+".cmds", val)
		case "internal":
			task.Internal, err = boolean(field+".internal", val)
		case "deps":
			task.Deps, err = decodeDeps(field+".deps", val)
		case "env":
			task.Env, err = decodeValueMap(field+".env", val)
		case "vars":
			task.Vars, err = decodeValueMap(field+".vars", val)
		case "silent":
			var b bool
			b, err = boolean(field+".silent", val)
			task.Silent = &b
		case "platforms":
			task.Platforms, err = stringOrList(field+".platforms", val)
		}
		if err != nil {
			return task, err
		}
	}
	return task, nil
}

func decodeCommands(field string, n *yaml.Node) ([]model.Command, error) {
	if isNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, rerrors.Malformed(field, "cmds must be a list")
	}
	cmds := make([]model.Command, 0, len(n.Content))
	for i, item := range n.Content {
		cmd, err := decodeCommand(fmt.Sprintf("%s[%d]", field, i), resolve(item))
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

func decodeCommand(field string, n *yaml.Node) (model.Command, error) {
	if n.Kind == yaml.ScalarNode && !isNull(n) {
		return model.Literal(n.Value), nil
	}
	if n.Kind != yaml.MappingNode {
		return model.Command{}, rerrors.Malformed(field, "command must be a string, {task: ...} or {cmd: ...}")
	}

	switch {
	case lookup(n, "task") != nil:
		cmd := model.Command{Kind: model.CommandTaskRef}
		var err error
		if cmd.Task, err = scalar(field+".task", lookup(n, "task")); err != nil {
			return cmd, err
		}
		if v := lookup(n, "vars"); v != nil {
			if cmd.Vars, err = decodeValueMap(field+".vars", v); err != nil {
				return cmd, err
			}
		}
		if v := lookup(n, "silent"); v != nil {
			b, err := boolean(field+".silent", v)
			if err != nil {
				return cmd, err
			}
			cmd.Silent = &b
		}
		return cmd, nil
	case lookup(n, "cmd") != nil:
		cmd := model.Command{Kind: model.CommandLiteral}
		var err error
		if cmd.Cmd, err = scalar(field+".cmd", lookup(n, "cmd")); err != nil {
			return cmd, err
		}
		if v := lookup(n, "silent"); v != nil {
			b, err := boolean(field+".silent", v)
			if err != nil {
				return cmd, err
			}
			cmd.Silent = &b
		}
		if v := lookup(n, "platforms"); v != nil {
			if cmd.Platforms, err = stringOrList(field+".platforms", v); err != nil {
				return cmd, err
			}
			if cmd.Platforms == nil {
				cmd.Platforms = []string{}
			}
		}
		if v := lookup(n, "ignore_error"); v != nil {
			if cmd.IgnoreError, err = boolean(field+".ignore_error", v); err != nil {
				return cmd, err
			}
		}
		return cmd, nil
	default:
		return model.Command{}, rerrors.Malformed(field, "command mapping needs a task or cmd key")
	}
}

func decodeDeps(field string, n *yaml.Node) ([]model.Dependency, error) {
	if isNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, rerrors.Malformed(field, "deps must be a list")
	}
	deps := make([]model.Dependency, 0, len(n.Content))
	for i, item := range n.Content {
		item = resolve(item)
		f := fmt.Sprintf("%s[%d]", field, i)
		if item.Kind == yaml.ScalarNode && !isNull(item) {
			deps = append(deps, model.Dependency{Task: item.Value})
			continue
		}
		task := lookup(item, "task")
		if item.Kind != yaml.MappingNode || task == nil {
			return nil, rerrors.Malformed(f, "dependency must be a task name or {task: ...}")
		}
		var dep model.Dependency
		var err error
		if dep.Task, err = scalar(f+".task", task); err != nil {
			return nil, err
		}
		if v := lookup(item, "vars"); v != nil {
			if dep.Vars, err = decodeValueMap(f+".vars", v); err != nil {
				return nil, err
			}
		}
		if v := lookup(item, "silent"); v != nil {
			b, err := boolean(f+".silent", v)
			if err != nil {
				return nil, err
			}
			dep.Silent = &b
		}
		deps = append(deps, dep)
	}
	return deps, nil
}

func decodeValueMap(field string, n *yaml.Node) (*model.OrderedMap[model.Value], error) {
	out := model.NewOrderedMap[model.Value]()
	if isNull(n) {
		return out, nil
	}
	err := eachPair(field, n, func(k string, v *yaml.Node) error {
		val, err := decodeValue(field+"."+k, v)
		out.Set(k, val)
		return err
	})
	return out, err
}

func decodeValue(field string, n *yaml.Node) (model.Value, error) {
	n = resolve(n)
	switch n.Kind {
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			return model.Value{}, nil
		case "!!bool":
			var b bool
			if err := n.Decode(&b); err != nil {
				return model.Value{}, rerrors.Malformed(field, err.Error())
			}
			return model.BoolValue(b), nil
		case "!!int", "!!float":
			return model.NumberValue(n.Value), nil
		default:
			return model.StringValue(n.Value), nil
		}
	case yaml.SequenceNode:
		items := make([]model.Value, 0, len(n.Content))
		for i, item := range n.Content {
			v, err := decodeValue(fmt.Sprintf("%s[%d]", field, i), item)
			if err != nil {
				return model.Value{}, err
			}
			items = append(items, v)
		}
		return model.ListValue(items...), nil
	case yaml.MappingNode:
		m, err := decodeValueMap(field, n)
		if err != nil {
			return model.Value{}, err
		}
		return model.MapValue(m), nil
	default:
		return model.Value{}, rerrors.Malformed(field, "unsupported value")
	}
}

// eachPair calls fn for every key/value of a mapping node. A null node is
// an empty mapping.
func eachPair(field string, n *yaml.Node, fn func(key string, val *yaml.Node) error) error {
	n = resolve(n)
	if isNull(n) {
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return rerrors.Malformed(field, "must be a mapping")
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i]
		if key.Kind != yaml.ScalarNode {
			return rerrors.Malformed(field, "keys must be scalars")
		}
		if err := fn(key.Value, resolve(n.Content[i+1])); err != nil {
			return err
		}
	}
	return nil
}

func lookup(n *yaml.Node, key string) *yaml.Node {
	if n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return resolve(n.Content[i+1])
		}
	}
	return nil
}

func scalar(field string, n *yaml.Node) (string, error) {
	if n.Kind != yaml.ScalarNode {
		return "", rerrors.Malformed(field, "must be a string")
	}
	if isNull(n) {
		return "", nil
	}
	return n.Value, nil
}

func boolean(field string, n *yaml.Node) (bool, error) {
	if isNull(n) {
		return false, nil
	}
	var b bool
	if n.Kind != yaml.ScalarNode || n.Decode(&b) != nil {
		return false, rerrors.Malformed(field, "must be true or false")
	}
	return b, nil
}

func stringOrList(field string, n *yaml.Node) ([]string, error) {
	switch {
	case isNull(n):
		return nil, nil
	case n.Kind == yaml.ScalarNode:
		return []string{n.Value}, nil
	case n.Kind == yaml.SequenceNode:
		out := make([]string, 0, len(n.Content))
		for i, item := range n.Content {
			s, err := scalar(fmt.Sprintf("%s[%d]", field, i), resolve(item))
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, rerrors.Malformed(field, "must be a string or a list of strings")
	}
}

func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	return n == nil || (n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null")
}

package razdfile

import (
	"fmt"

	"gopkg.in/yaml.v3"

	rerrors "github.com/klauern/razd/internal/errors"
	"github.com/klauern/razd/internal/model"
)

// ReplaceToolSection rewrites only the mise: key of an existing Razdfile.
// Tasks, variables, unknown keys and comments elsewhere in the document are
// kept in place. An empty section removes the key; a missing key is
// inserted after version.
func ReplaceToolSection(existing []byte, ts *model.ToolSection) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(existing, &doc); err != nil {
		return nil, rerrors.Parse("", err)
	}
	if len(doc.Content) == 0 || isNull(doc.Content[0]) {
		m := model.NewRazdfile()
		m.Tools = ts
		return Render(m)
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, rerrors.Malformed("", "top level must be a mapping")
	}

	at := indexOf(root, keyMise)
	if at >= 0 {
		removed := nodeSet(root.Content[at], root.Content[at+1])
		for i := range root.Content {
			if i != at && i != at+1 {
				root.Content[i] = inlineAliases(root.Content[i], func(n *yaml.Node) bool { return removed[n] })
			}
		}
	}
	switch {
	case ts.IsEmpty() && at >= 0:
		root.Content = append(root.Content[:at], root.Content[at+2:]...)
	case ts.IsEmpty():
	case at >= 0:
		root.Content[at+1] = toolSectionNode(ts)
	default:
		insert := 0
		if v := indexOf(root, keyVersion); v >= 0 {
			insert = v + 2
		}
		pair := []*yaml.Node{str(keyMise), toolSectionNode(ts)}
		root.Content = append(root.Content[:insert], append(pair, root.Content[insert:]...)...)
	}

	out, err := encode(&doc)
	if err != nil {
		return nil, err
	}
	out = addSpacing(out)
	if err := yaml.Unmarshal(out, &yaml.Node{}); err != nil {
		return nil, fmt.Errorf("rewritten Razdfile does not parse: %w", err)
	}
	return out, nil
}

func indexOf(mapping *yaml.Node, key string) int {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return i
		}
	}
	return -1
}

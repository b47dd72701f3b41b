package razdfile

import "gopkg.in/yaml.v3"

// inlineAliases returns a copy of n in which every alias whose anchored node
// satisfies detach is replaced by a standalone copy of that node. Other
// aliases and anchors are kept.
func inlineAliases(n *yaml.Node, detach func(anchored *yaml.Node) bool) *yaml.Node {
	if n.Kind == yaml.AliasNode && n.Alias != nil && detach(n.Alias) {
		return materialize(n.Alias)
	}
	cp := *n
	if len(n.Content) > 0 {
		cp.Content = make([]*yaml.Node, len(n.Content))
		for i, c := range n.Content {
			cp.Content[i] = inlineAliases(c, detach)
		}
	}
	return &cp
}

// materialize deep-copies n with all aliases expanded and anchors dropped.
func materialize(n *yaml.Node) *yaml.Node {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		return materialize(n.Alias)
	}
	cp := *n
	cp.Anchor = ""
	if len(n.Content) > 0 {
		cp.Content = make([]*yaml.Node, len(n.Content))
		for i, c := range n.Content {
			cp.Content[i] = materialize(c)
		}
	}
	return &cp
}

// nodeSet collects the nodes reachable from roots without following aliases.
func nodeSet(roots ...*yaml.Node) map[*yaml.Node]bool {
	set := make(map[*yaml.Node]bool)
	var walk func(*yaml.Node)
	walk = func(n *yaml.Node) {
		if n == nil || set[n] {
			return
		}
		set[n] = true
		for _, c := range n.Content {
			walk(c)
		}
	}
	for _, r := range roots {
		walk(r)
	}
	return set
}

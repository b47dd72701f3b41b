package model

// ToolKind distinguishes the two shapes a tool entry can take.
type ToolKind int

const (
	// ToolSimple is a bare version string: node = "22".
	ToolSimple ToolKind = iota
	// ToolComplex is a table with a version and install options.
	ToolComplex
)

// ToolSpec describes one tool entry. Optional fields are only meaningful
// for ToolComplex; an empty Postinstall, a nil OS and a nil InstallEnv
// mean "not set".
type ToolSpec struct {
	Kind        ToolKind
	Version     string
	Postinstall string
	OS          []string
	InstallEnv  *OrderedMap[string]
}

// SimpleTool returns a ToolSimple spec.
func SimpleTool(version string) ToolSpec {
	return ToolSpec{Kind: ToolSimple, Version: version}
}

// ToolSection is the shared tool/plugin section of both manifests.
type ToolSection struct {
	Tools   *OrderedMap[ToolSpec]
	Plugins *OrderedMap[string]
}

// NewToolSection returns a section with empty tool and plugin maps.
func NewToolSection() *ToolSection {
	return &ToolSection{
		Tools:   NewOrderedMap[ToolSpec](),
		Plugins: NewOrderedMap[string](),
	}
}

// IsEmpty reports whether the section has neither tools nor plugins.
// A nil section is empty.
func (ts *ToolSection) IsEmpty() bool {
	return ts == nil || (ts.Tools.Len() == 0 && ts.Plugins.Len() == 0)
}

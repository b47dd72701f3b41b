// Package model defines the in-memory form shared by Razdfile.yml and
// mise.toml.
package model

// DefaultVersion is the Taskfile schema version assumed when a Razdfile
// does not declare one.
const DefaultVersion = "3"

// Manifest is the shared in-memory representation of both files.
//
// A Manifest parsed from mise.toml has an empty Version and nil Tasks.
// Extra holds top-level entries the model does not cover (mise.toml tables
// such as [env] or [settings], Taskfile keys such as includes). The values
// are owned by the codec that produced them and are written back as is.
type Manifest struct {
	Version string
	Tools   *ToolSection
	Env     *OrderedMap[Value]
	Vars    *OrderedMap[Value]
	Tasks   *OrderedMap[Task]
	Extra   *OrderedMap[any]
}

// NewRazdfile returns a minimal Razdfile manifest.
func NewRazdfile() *Manifest {
	return &Manifest{
		Version: DefaultVersion,
		Tasks:   NewOrderedMap[Task](),
	}
}

// HasTools reports whether the manifest declares any tool or plugin.
func (m *Manifest) HasTools() bool {
	return m != nil && !m.Tools.IsEmpty()
}

// TaskNames returns task names in file order, skipping internal tasks
// unless includeInternal is set.
func (m *Manifest) TaskNames(includeInternal bool) []string {
	var names []string
	for name, task := range m.Tasks.All() {
		if task.Internal && !includeInternal {
			continue
		}
		names = append(names, name)
	}
	return names
}

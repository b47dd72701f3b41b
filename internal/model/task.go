package model

// CommandKind distinguishes the command variants.
type CommandKind int

const (
	// CommandLiteral is a shell command line.
	CommandLiteral CommandKind = iota
	// CommandTaskRef calls another task by name.
	CommandTaskRef
)

// Command is one entry of a task's cmds list.
//
// A literal may carry Taskfile options (Silent, Platforms, IgnoreError); it
// is then written in the long {cmd: ...} form. A task reference carries
// optional Vars and Silent.
type Command struct {
	Kind        CommandKind
	Cmd         string
	Task        string
	Vars        *OrderedMap[Value]
	Silent      *bool
	Platforms   []string
	IgnoreError bool
}

// Literal returns a plain shell command.
func Literal(cmd string) Command {
	return Command{Kind: CommandLiteral, Cmd: cmd}
}

// TaskRef returns a reference to another task.
func TaskRef(task string, vars *OrderedMap[Value]) Command {
	return Command{Kind: CommandTaskRef, Task: task, Vars: vars}
}

// HasOptions reports whether a literal needs the long form.
func (c Command) HasOptions() bool {
	return c.Silent != nil || c.Platforms != nil || c.IgnoreError
}

// Dependency is one entry of a task's deps list.
type Dependency struct {
	Task   string
	Vars   *OrderedMap[Value]
	Silent *bool
}

// Task is a named unit of work in a Razdfile.
type Task struct {
	Desc      string
	Cmds      []Command
	Internal  bool
	Deps      []Dependency
	Env       *OrderedMap[Value]
	Vars      *OrderedMap[Value]
	Silent    *bool
	Platforms []string
}

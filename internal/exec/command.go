package exec

import (
	"strings"

	"github.com/rileyhilliard/profdash/internal/util"
)

// Command is a program invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
	// Env entries are appended to the inherited environment.
	Env []string
}

// ProfilerCommand builds the invocation of the profiler script against file.
// The interpreter runs unbuffered so frames arrive as soon as they are printed.
func ProfilerCommand(python, script string, args []string, file string) Command {
	argv := make([]string, 0, len(args)+3)
	argv = append(argv, "-u", script)
	argv = append(argv, args...)
	argv = append(argv, file)

	return Command{
		Name: python,
		Args: argv,
		Env:  []string{"PYTHONUNBUFFERED=1"},
	}
}

// Argv returns the full argument vector including the program name.
func (c Command) Argv() []string {
	return append([]string{c.Name}, c.Args...)
}

// Shell renders the command as a single shell-safe line. Plain words are
// left unquoted so the line stays readable in a terminal.
func (c Command) Shell() string {
	argv := c.Argv()
	quoted := make([]string, len(argv))
	for i, a := range argv {
		quoted[i] = util.ShellWord(a)
	}
	return strings.Join(quoted, " ")
}

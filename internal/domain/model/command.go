package model

import (
	"fmt"
	"strings"
)

// Command describes an external program invocation.
type Command struct {
	Name  string
	Args  []string
	Dir   string
	Env   []string
	Stdin string
}

// ParseCommand splits a configured command line on whitespace.
// Quoting is not interpreted.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("empty command line")
	}
	return Command{
		Name: fields[0],
		Args: fields[1:],
	}, nil
}

// WithArgs returns a copy of the command with extra arguments appended.
func (c Command) WithArgs(args ...string) Command {
	out := c
	out.Args = make([]string, 0, len(c.Args)+len(args))
	out.Args = append(out.Args, c.Args...)
	out.Args = append(out.Args, args...)
	return out
}

// String renders the command line for logs and run records.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// commands.go

// This file loads the command definition table and resolves symbolic
// command names to their wire-level opcodes.

// Copyright (C) 2018  Steve Merrony

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package bebop

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Resolution errors. Both indicate a mismatch between this package's
// definition table and the drone's protocol version; callers should not
// retry them.
var (
	ErrUnknownCommand     = errors.New("unknown command")
	ErrUnknownEnumVariant = errors.New("unknown enum variant")
)

// Command is the resolved wire-level identity of a symbolic command.
// It is safe to send repeatedly, e.g. on a retry.
type Command struct {
	Project byte
	Class   byte
	ID      byte
}

// EnumVariant selects one member of a command's enum argument, e.g. a
// flip direction.
type EnumVariant struct {
	Name  string
	Value int
}

//go:embed commands.yaml
var defaultCommandDefs []byte

// yaml schema for the definition table
type tableDoc struct {
	Projects []projectDef `yaml:"projects"`
}

type projectDef struct {
	Name    string     `yaml:"name"`
	ID      uint8      `yaml:"id"`
	Classes []classDef `yaml:"classes"`
}

type classDef struct {
	Name     string       `yaml:"name"`
	ID       uint8        `yaml:"id"`
	Commands []commandDef `yaml:"commands"`
}

type commandDef struct {
	Name string   `yaml:"name"`
	ID   uint8    `yaml:"id"`
	Enum []string `yaml:"enum"`
}

// CommandTable resolves (project, class, command) triples to wire
// commands. Resolution is a pure map lookup: no I/O, no blocking.
type CommandTable struct {
	defs map[string]tableEntry
}

type tableEntry struct {
	cmd  Command
	enum []string
}

func tableKey(project, class, command string) string {
	return project + "." + class + "." + command
}

// DefaultCommandTable loads the definition table bundled with this
// package.
func DefaultCommandTable() (*CommandTable, error) {
	return LoadCommandTable(defaultCommandDefs)
}

// LoadCommandTable parses and validates a YAML definition table.
// Malformed entries fail here, at load time, not at first use.
func LoadCommandTable(src []byte) (*CommandTable, error) {
	var doc tableDoc
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, fmt.Errorf("parsing command definitions: %w", err)
	}
	if len(doc.Projects) == 0 {
		return nil, errors.New("command definitions declare no projects")
	}

	table := &CommandTable{defs: make(map[string]tableEntry)}
	for _, p := range doc.Projects {
		if p.Name == "" {
			return nil, errors.New("project with empty name in command definitions")
		}
		for _, c := range p.Classes {
			if c.Name == "" {
				return nil, fmt.Errorf("class with empty name in project %s", p.Name)
			}
			for _, cmd := range c.Commands {
				if cmd.Name == "" {
					return nil, fmt.Errorf("command with empty name in %s/%s", p.Name, c.Name)
				}
				key := tableKey(p.Name, c.Name, cmd.Name)
				if _, dup := table.defs[key]; dup {
					return nil, fmt.Errorf("duplicate command definition %s/%s/%s", p.Name, c.Name, cmd.Name)
				}
				if err := validateEnum(cmd.Enum); err != nil {
					return nil, fmt.Errorf("command %s/%s/%s: %w", p.Name, c.Name, cmd.Name, err)
				}
				table.defs[key] = tableEntry{
					cmd:  Command{Project: p.ID, Class: c.ID, ID: cmd.ID},
					enum: cmd.Enum,
				}
			}
		}
	}
	return table, nil
}

func validateEnum(variants []string) error {
	seen := make(map[string]bool, len(variants))
	for _, v := range variants {
		if v == "" {
			return errors.New("empty enum variant name")
		}
		if seen[v] {
			return fmt.Errorf("duplicate enum variant %q", v)
		}
		seen[v] = true
	}
	return nil
}

// Resolve returns the wire command for a symbolic triple.
func (t *CommandTable) Resolve(project, class, command string) (Command, error) {
	e, ok := t.defs[tableKey(project, class, command)]
	if !ok {
		return Command{}, fmt.Errorf("%w: %s/%s/%s", ErrUnknownCommand, project, class, command)
	}
	return e.cmd, nil
}

// ResolveEnum is Resolve for commands taking an enum argument; variant
// must name a member of the command's declared enum.
func (t *CommandTable) ResolveEnum(project, class, command, variant string) (Command, EnumVariant, error) {
	e, ok := t.defs[tableKey(project, class, command)]
	if !ok {
		return Command{}, EnumVariant{}, fmt.Errorf("%w: %s/%s/%s", ErrUnknownCommand, project, class, command)
	}
	for i, name := range e.enum {
		if name == variant {
			return e.cmd, EnumVariant{Name: name, Value: i}, nil
		}
	}
	return Command{}, EnumVariant{}, fmt.Errorf("%w: %q is not a variant of %s/%s/%s",
		ErrUnknownEnumVariant, variant, project, class, command)
}

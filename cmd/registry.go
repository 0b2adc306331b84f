package cmd

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/mwantia/cncmaps/data"
)

// Registry holds the commands available to the command line.
type Registry struct {
	mu   sync.RWMutex
	cmds map[string]Command
}

func NewRegistry(cmds ...Command) (*Registry, error) {
	r := &Registry{
		cmds: make(map[string]Command),
	}
	for _, c := range cmds {
		if err := r.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds c. Names are unique.
func (r *Registry) Register(c Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := strings.ToLower(c.Name())
	if _, exists := r.cmds[name]; exists {
		return fmt.Errorf("%w: command '%s'", data.ErrExist, name)
	}
	r.cmds[name] = c
	return nil
}

// Unregister removes the named command and reports whether it existed.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	name = strings.ToLower(name)
	if _, exists := r.cmds[name]; !exists {
		return false
	}
	delete(r.cmds, name)
	return true
}

func (r *Registry) Get(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.cmds[strings.ToLower(name)]
	return c, ok
}

// Names returns the registered command names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.cmds))
	for name := range r.cmds {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Execute parses raw against the flags of the named command and runs it,
// writing output to writer.
func (r *Registry) Execute(ctx context.Context, api API, writer io.Writer, name string, raw ...string) (int, error) {
	c, ok := r.Get(name)
	if !ok {
		return 1, data.NewNotFound(data.KindCommand, name)
	}

	flags := c.GetFlags()
	if flags == nil {
		flags = &CommandFlagSet{}
	}

	args, err := NewParser(flags).Parse(raw)
	if err != nil {
		return 2, err
	}
	return c.Execute(ctx, api, args, writer)
}

// Run executes the named command with arguments parsed by the caller.
func (r *Registry) Run(ctx context.Context, api API, writer io.Writer, name string, args *CommandArgs) (int, error) {
	c, ok := r.Get(name)
	if !ok {
		return 1, data.NewNotFound(data.KindCommand, name)
	}
	return c.Execute(ctx, api, args, writer)
}

// WriteUsage writes the usage of every command and its flags.
func (r *Registry) WriteUsage(writer io.Writer, global *CommandFlagSet) {
	fmt.Fprintln(writer, "Commands:")
	for _, name := range r.Names() {
		c, _ := r.Get(name)
		fmt.Fprintf(writer, "  %-10s %s\n", c.Name(), c.Description())
		fmt.Fprintf(writer, "  %-10s usage: %s\n", "", c.Usage())
		writeFlags(writer, c.GetFlags(), "    ")
	}
	if global != nil {
		fmt.Fprintln(writer, "Global flags:")
		writeFlags(writer, global, "  ")
	}
}

func writeFlags(writer io.Writer, set *CommandFlagSet, indent string) {
	if set == nil {
		return
	}

	keys := make([]string, 0, len(set.Flags))
	for key := range set.Flags {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	for _, key := range keys {
		flag := set.Flags[key]
		name := "--" + flag.Name
		if flag.Short != "" {
			name = "-" + flag.Short + ", " + name
		}
		if flag.Default != nil {
			fmt.Fprintf(writer, "%s%-22s %s (default %v)\n", indent, name, flag.Description, flag.Default)
		} else {
			fmt.Fprintf(writer, "%s%-22s %s\n", indent, name, flag.Description)
		}
	}
}

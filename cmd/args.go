package cmd

import "strings"

// CommandArgs contains parsed command arguments
type CommandArgs struct {
	// Positional arguments (command-specific)
	Args []string

	// Parsed flags
	Flags map[string]any

	// Raw unparsed arguments (for custom parsing)
	Raw []string
}

// CommandFlagSet defines the expected flags for a command
type CommandFlagSet struct {
	Flags map[string]*CommandFlag
}

// CommandFlag represents a single command-line flag
type CommandFlag struct {
	Name        string `json:"name"`              // e.g., "type" or "t"
	Short       string `json:"short"`             // Single-char shorthand (e.g., "t")
	Type        string `json:"type"`              // "string", "bool", "int", "stringSlice"
	Default     any    `json:"default,omitempty"` // Default value
	Required    bool   `json:"required"`          // Must be provided
	Description string `json:"description"`       // Help text
	Multiple    bool   `json:"multiple"`          // Can be specified multiple times
}

// Merge returns a flag set holding the flags of every set. Later sets
// replace flags of the same key.
func Merge(sets ...*CommandFlagSet) *CommandFlagSet {
	merged := &CommandFlagSet{Flags: make(map[string]*CommandFlag)}
	for _, set := range sets {
		if set == nil {
			continue
		}
		for key, flag := range set.Flags {
			merged.Flags[key] = flag
		}
	}
	return merged
}

func (a *CommandArgs) Has(name string) bool {
	_, ok := a.Flags[name]
	return ok
}

func (a *CommandArgs) String(name string) string {
	if v, ok := a.Flags[name].(string); ok {
		return v
	}
	return ""
}

func (a *CommandArgs) Int(name string) int {
	switch v := a.Flags[name].(type) {
	case int64:
		return int(v)
	case int:
		return v
	}
	return 0
}

func (a *CommandArgs) Bool(name string) bool {
	v, _ := a.Flags[name].(bool)
	return v
}

// Strings returns the values of a repeatable flag. Comma separated values
// are split.
func (a *CommandArgs) Strings(name string) []string {
	var values []string
	switch v := a.Flags[name].(type) {
	case []string:
		values = v
	case string:
		values = []string{v}
	}

	result := make([]string, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				result = append(result, part)
			}
		}
	}
	return result
}

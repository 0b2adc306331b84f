package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Parser parses raw command line arguments against a flag set.
type Parser struct {
	flagSet *CommandFlagSet

	long  map[string]string
	short map[string]string
}

func NewParser(flagSet *CommandFlagSet) *Parser {
	p := &Parser{
		flagSet: flagSet,
		long:    make(map[string]string),
		short:   make(map[string]string),
	}
	for key, flag := range flagSet.Flags {
		p.long[flag.Name] = key
		if flag.Short != "" {
			p.short[flag.Short] = key
		}
	}
	return p
}

// Parse splits raw into flags and positional arguments. Everything after
// "--" is positional. Short bool flags may be grouped ("-sb"), and the rest
// of a group following a valued short flag is its value ("-ofoo").
func (p *Parser) Parse(raw []string) (*CommandArgs, error) {
	args := &CommandArgs{
		Flags: make(map[string]any),
		Raw:   raw,
	}
	for key, flag := range p.flagSet.Flags {
		if flag.Default != nil {
			args.Flags[key] = flag.Default
		}
	}

	appended := make(map[string]bool)
	for i := 0; i < len(raw); i++ {
		arg := raw[i]
		if arg == "--" {
			args.Args = append(args.Args, raw[i+1:]...)
			break
		}

		var (
			keys   []string
			value  string
			inline bool
			long   bool
		)
		switch {
		case strings.HasPrefix(arg, "--"):
			name, v, ok := strings.Cut(arg[2:], "=")
			key, exists := p.long[name]
			if !exists {
				return nil, fmt.Errorf("unknown flag: --%s", name)
			}
			keys, value, inline, long = []string{key}, v, ok, true

		case len(arg) > 1 && arg[0] == '-':
			for j, r := range arg[1:] {
				key, exists := p.short[string(r)]
				if !exists {
					return nil, fmt.Errorf("unknown flag: -%c", r)
				}
				keys = append(keys, key)

				if p.flagSet.Flags[key].Type != "bool" {
					if rest := arg[1+j+utf8.RuneLen(r):]; rest != "" {
						value, inline = rest, true
					}
					break
				}
			}

		default:
			args.Args = append(args.Args, arg)
			continue
		}

		for _, key := range keys {
			flag := p.flagSet.Flags[key]
			if flag.Type == "bool" {
				args.Flags[key] = !(long && inline) || coerceBool(value)
				continue
			}

			if !inline {
				if i+1 >= len(raw) || strings.HasPrefix(raw[i+1], "-") {
					return nil, fmt.Errorf("flag %s requires a value", flag.label())
				}
				i++
				value = raw[i]
			}

			if flag.Multiple || flag.Type == "stringSlice" {
				// The first given value replaces the default.
				values, _ := args.Flags[key].([]string)
				if !appended[key] {
					values = nil
				}
				appended[key] = true
				args.Flags[key] = append(values, value)
				continue
			}

			v, err := coerce(value, flag.Type)
			if err != nil {
				return nil, fmt.Errorf("flag %s: %w", flag.label(), err)
			}
			args.Flags[key] = v
		}
	}

	for key, flag := range p.flagSet.Flags {
		if _, ok := args.Flags[key]; flag.Required && !ok {
			return nil, fmt.Errorf("required flag: %s", flag.label())
		}
	}

	return args, nil
}

func (f *CommandFlag) label() string {
	if f.Short != "" {
		return fmt.Sprintf("-%s / --%s", f.Short, f.Name)
	}
	return "--" + f.Name
}

func coerce(value string, typ string) (any, error) {
	switch typ {
	case "int":
		return strconv.ParseInt(value, 10, 64)
	case "bool":
		return coerceBool(value), nil
	default:
		return value, nil
	}
}

func coerceBool(value string) bool {
	switch strings.ToLower(value) {
	case "true", "1", "yes":
		return true
	}
	return false
}

package cmd_test

import (
	"testing"

	"github.com/mwantia/cncmaps/cmd"
)

func newTestFlagSet() *cmd.CommandFlagSet {
	return &cmd.CommandFlagSet{
		Flags: map[string]*cmd.CommandFlag{
			"owner":     {Name: "owner", Short: "o", Type: "string", Default: "none"},
			"health":    {Name: "health", Type: "int", Default: int64(100)},
			"structure": {Name: "structure", Short: "s", Type: "bool"},
			"bridge":    {Name: "bridge", Short: "b", Type: "bool"},
			"upgrade":   {Name: "upgrade", Short: "u", Type: "string", Multiple: true},
		},
	}
}

func TestParse(t *testing.T) {
	args, err := cmd.NewParser(newTestFlagSet()).Parse([]string{
		"--owner=Americans", "--health", "40", "-sb", "-u", "GAPOWRUP", "--upgrade=GAPLUG", "GACNST", "--", "--raw",
	})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if args.String("owner") != "Americans" {
		t.Errorf("Expected %q, got %q", "Americans", args.String("owner"))
	}
	if args.Int("health") != 40 {
		t.Errorf("Expected 40, got %d", args.Int("health"))
	}
	if !args.Bool("structure") || !args.Bool("bridge") {
		t.Errorf("Expected combined short bool flags to be set")
	}

	upgrades := args.Strings("upgrade")
	if len(upgrades) != 2 || upgrades[0] != "GAPOWRUP" || upgrades[1] != "GAPLUG" {
		t.Errorf("Expected repeated upgrades, got %v", upgrades)
	}
	if len(args.Args) != 2 || args.Args[0] != "GACNST" || args.Args[1] != "--raw" {
		t.Errorf("Expected positional arguments, got %v", args.Args)
	}
}

func TestParseDefaults(t *testing.T) {
	args, err := cmd.NewParser(newTestFlagSet()).Parse(nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if args.String("owner") != "none" {
		t.Errorf("Expected %q, got %q", "none", args.String("owner"))
	}
	if args.Int("health") != 100 {
		t.Errorf("Expected 100, got %d", args.Int("health"))
	}
	if args.Bool("structure") || args.Has("upgrade") {
		t.Errorf("Expected unset flags to stay unset")
	}
}

func TestParseGroupedShortFlags(t *testing.T) {
	tests := map[string]struct {
		raw      []string
		owner    string
		upgrades int
	}{
		"attached-value": {raw: []string{"-sbothe Soviets"}, owner: "the Soviets"},
		"trailing-value": {raw: []string{"-sbu", "GAPOWRUP", "-u", "GAPLUG"}, owner: "none", upgrades: 2},
	}

	for name, test := range tests {
		t.Run(name, func(tst *testing.T) {
			args, err := cmd.NewParser(newTestFlagSet()).Parse(test.raw)
			if err != nil {
				tst.Fatalf("Parse failed: %v", err)
			}
			if !args.Bool("structure") || !args.Bool("bridge") {
				tst.Errorf("Expected grouped bool flags to be set, got %v", args.Flags)
			}
			if args.String("owner") != test.owner {
				tst.Errorf("Expected %q, got %q", test.owner, args.String("owner"))
			}
			if got := args.Strings("upgrade"); len(got) != test.upgrades {
				tst.Errorf("Expected %d upgrades, got %v", test.upgrades, got)
			}
		})
	}
}

func TestParseExplicitBool(t *testing.T) {
	args, err := cmd.NewParser(newTestFlagSet()).Parse([]string{"--structure=false", "--bridge=yes"})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if args.Bool("structure") || !args.Bool("bridge") {
		t.Errorf("Expected explicit bool values, got %v", args.Flags)
	}
}

func TestParseCommaSeparated(t *testing.T) {
	args, err := cmd.NewParser(newTestFlagSet()).Parse([]string{"-u", "A, B,,C"})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := args.Strings("upgrade"); len(got) != 3 || got[2] != "C" {
		t.Errorf("Expected [A B C], got %v", got)
	}
}

func TestParseErrors(t *testing.T) {
	required := newTestFlagSet()
	required.Flags["config"] = &cmd.CommandFlag{Name: "config", Short: "c", Type: "string", Required: true}

	tests := map[string]struct {
		set *cmd.CommandFlagSet
		raw []string
	}{
		"unknown-long":  {newTestFlagSet(), []string{"--unknown"}},
		"unknown-short": {newTestFlagSet(), []string{"-x"}},
		"missing-value": {newTestFlagSet(), []string{"--owner"}},
		"invalid-int":   {newTestFlagSet(), []string{"--health", "full"}},
		"required":      {required, []string{"--owner", "Soviet"}},
	}

	for name, test := range tests {
		t.Run(name, func(tst *testing.T) {
			if _, err := cmd.NewParser(test.set).Parse(test.raw); err == nil {
				tst.Errorf("Expected parse error for %v", test.raw)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	global := &cmd.CommandFlagSet{
		Flags: map[string]*cmd.CommandFlag{
			"config": {Name: "config", Short: "c", Type: "string"},
		},
	}

	merged := cmd.Merge(global, nil, newTestFlagSet())
	if len(merged.Flags) != 6 {
		t.Fatalf("Expected 6 flags, got %d", len(merged.Flags))
	}

	args, err := cmd.NewParser(merged).Parse([]string{"-c", "render.json", "-o", "Russians"})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if args.String("config") != "render.json" || args.String("owner") != "Russians" {
		t.Errorf("Expected global and command flags, got %v", args.Flags)
	}
}

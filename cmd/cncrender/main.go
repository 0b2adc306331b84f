// Command cncrender renders game objects of a TS/RA2 installation into
// image files.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mwantia/cncmaps/cmd"
	"github.com/mwantia/cncmaps/cmd/builtin"
	"github.com/mwantia/cncmaps/config"
	"github.com/mwantia/cncmaps/renderer"
)

const defaultCommand = "render"

var globalFlags = &cmd.CommandFlagSet{
	Flags: map[string]*cmd.CommandFlag{
		"config": {
			Name:        "config",
			Short:       "c",
			Type:        "string",
			Description: "JSON configuration file",
		},
		"engine": {
			Name:        "engine",
			Short:       "e",
			Type:        "string",
			Description: "Engine without configuration file: ts, fs, ra2 or yr",
		},
		"mix-dir": {
			Name:        "mix-dir",
			Short:       "m",
			Type:        "string",
			Description: "Directory holding the game archives",
		},
		"theater": {
			Name:        "theater",
			Short:       "t",
			Type:        "string",
			Description: "Active theater",
		},
		"out": {
			Name:        "out",
			Type:        "string",
			Description: "Output directory",
		},
		"log-level": {
			Name:        "log-level",
			Short:       "l",
			Type:        "string",
			Description: "Log level",
		},
		"jpeg": {
			Name:        "jpeg",
			Type:        "bool",
			Description: "Also save jpeg images",
		},
		"parallel": {
			Name:        "parallel",
			Short:       "p",
			Type:        "int",
			Description: "Number of objects rendered concurrently",
		},
		"help": {
			Name:        "help",
			Short:       "h",
			Type:        "bool",
			Description: "Show usage",
		},
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, raw []string, stdout, stderr io.Writer) int {
	registry, err := builtin.NewRegistry()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	name := defaultCommand
	if len(raw) > 0 && !strings.HasPrefix(raw[0], "-") {
		name, raw = raw[0], raw[1:]
	}

	c, ok := registry.Get(name)
	if !ok {
		fmt.Fprintf(stderr, "Error: unknown command '%s'\n", name)
		registry.WriteUsage(stderr, globalFlags)
		return 2
	}

	args, err := cmd.NewParser(cmd.Merge(globalFlags, c.GetFlags())).Parse(raw)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	if args.Bool("help") {
		registry.WriteUsage(stdout, globalFlags)
		return 0
	}

	cfg, err := loadConfig(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	r, err := renderer.New(ctx, cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer r.Close(context.WithoutCancel(ctx))

	code, err := registry.Run(ctx, r, stdout, name, args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return code
}

// loadConfig reads the configuration file, or the engine defaults when none
// is given, and applies the flags on top.
func loadConfig(args *cmd.CommandArgs) (*config.Config, error) {
	var cfg *config.Config
	if path := args.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		engine, err := config.ParseEngine(args.String("engine"))
		if err != nil {
			return nil, err
		}
		cfg = config.Default(engine)
	}

	if dir := args.String("mix-dir"); dir != "" {
		cfg.MixDirectory = dir
	}
	if theater := args.String("theater"); theater != "" {
		t, err := config.ParseTheater(theater)
		if err != nil {
			return nil, err
		}
		cfg.ActiveTheater = t
	}
	if out := args.String("out"); out != "" {
		cfg.Output.Directory = out
	}
	if level := args.String("log-level"); level != "" {
		cfg.Log.Level = level
	}
	if args.Bool("jpeg") {
		cfg.Output.SaveJPEG = true
	}
	if args.Has("parallel") {
		cfg.Output.Parallelism = args.Int("parallel")
	}

	return cfg, cfg.Validate()
}

// Command ndimg inspects, filters and registers N-dimensional images.

package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/janelia-flyem/ndimg/multithreading"
	"github.com/janelia-flyem/ndimg/ndimg"
	"github.com/janelia-flyem/ndimg/storage"
)

//go:generate go run ../gen-version -o version.go

// gitVersion is set by the generated version.go.
var gitVersion = "unknown"

// Globals holds the flags shared by all commands and the state derived from them.
type Globals struct {
	Config  string `help:"TOML or YAML configuration file" type:"existingfile"`
	Verbose bool   `short:"v" help:"Log debug messages"`

	config  *ndimg.Config
	factory storage.Factory
}

// setup loads the configuration and sets up logging and storage.
func (g *Globals) setup() error {
	g.config = ndimg.DefaultConfig()
	if g.Config != "" {
		c, err := ndimg.LoadConfig(g.Config)
		if err != nil {
			return err
		}
		g.config = c
	}
	g.config.Logging.SetLogger()
	if g.Verbose {
		ndimg.SetLogMode(ndimg.DebugMode)
	}
	f, err := storage.FactoryFromConfig(g.config.Storage)
	if err != nil {
		return fmt.Errorf("bad [storage] configuration: %w", err)
	}
	g.factory = f
	ndimg.Debugf("Using %q containers (optimized %t)\n", f.Name(), f.UseOptimizedContainers())
	return nil
}

// pool returns a worker pool sized by the [threads] configuration.
func (g *Globals) pool() *multithreading.Pool {
	n := g.config.Threads.Count
	if n <= 0 {
		n = multithreading.NumThreads()
	}
	return multithreading.NewPool(n)
}

type CLI struct {
	Globals

	Info     InfoCmd     `cmd:"" help:"Describe images and their value range"`
	Mean     MeanCmd     `cmd:"" help:"Mean filter an image"`
	Smooth   SmoothCmd   `cmd:"" help:"Gaussian smooth an image"`
	Register RegisterCmd `cmd:"" help:"Find the translation between two images by phase correlation"`
	Formats  FormatsCmd  `cmd:"" help:"List container layouts and out-of-bounds strategies"`
	Version  VersionCmd  `cmd:"" help:"Print the source version"`
}

type VersionCmd struct{}

func (cmd *VersionCmd) Run(g *Globals) error {
	fmt.Printf("ndimg %s\n", gitVersion)
	return nil
}

// AfterApply runs after flags are parsed, before any command.
func (cli *CLI) AfterApply() error {
	return cli.Globals.setup()
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("ndimg"),
		kong.Description("Process N-dimensional images on pluggable storage."),
		kong.UsageOnError(),
	)
	err := kctx.Run(&cli.Globals)
	ndimg.Shutdown()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ndimg: %v\n", err)
		os.Exit(1)
	}
}

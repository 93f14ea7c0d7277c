// Command blenddump inspects Blender .blend files.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/meigma/blend"
)

// Version is set at build time.
var Version = "development"

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "blenddump:", err)
		os.Exit(1)
	}
}

func newApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:      "blenddump",
		Usage:     "Inspect Blender .blend files",
		Version:   Version,
		Writer:    out,
		ErrWriter: errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Value: "warn", Usage: "Set log level (debug, info, warn, error)", EnvVars: []string{"BLENDDUMP_LOG_LEVEL"}},
			&cli.IntFlag{Name: "workers", Value: 0, Usage: "Block decode workers; 0 picks automatically, negative decodes serially", EnvVars: []string{"BLENDDUMP_WORKERS"}},
		},
		Commands: []*cli.Command{
			headerCommand(),
			blocksCommand(),
			structsCommand(),
			inspectCommand(),
			dumpCommand(),
			tocCommand(),
		},
	}
}

// newLogger builds the text logger selected by --log-level.
func newLogger(c *cli.Context) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.String("log-level"))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.String("log-level"), err)
	}
	return slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: level})), nil
}

// openFile parses the file named by the first argument.
func openFile(c *cli.Context) (*blend.File, error) {
	path := c.Args().First()
	if path == "" {
		return nil, cli.Exit("missing FILE argument", 2)
	}
	logger, err := newLogger(c)
	if err != nil {
		return nil, err
	}
	f, err := blend.Open(path,
		blend.WithLogger(logger),
		blend.WithDiagnostics(blend.LogDiagnostics(logger)),
		blend.WithWorkers(c.Int("workers")),
	)
	if err != nil {
		return nil, err
	}
	logger.Debug("opened file", "path", path, "blocks", len(f.Blocks()), "digest", f.Digest().String())
	return f, nil
}

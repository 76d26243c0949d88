package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/wolfeidau/frontbuild/internal/registrar"
)

type ComponentsCmd struct {
	ConfigFlags `embed:""`

	All bool `help:"also list component files skipped for not following the PascalCase naming convention"`

	out io.Writer
}

func (c *ComponentsCmd) Run(ctx context.Context, globals *Globals) error {
	cfg, err := c.load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var opts []registrar.Option
	if cfg.Statement != "" {
		opts = append(opts, registrar.WithStatement(cfg.Statement))
	}

	reg, err := registrar.New(cfg.Paths.Components, cfg.ComponentPattern, opts...)
	if err != nil {
		return err
	}

	out := c.out
	if out == nil {
		out = os.Stdout
	}

	scan := reg.Scan()

	if block := reg.Statements(scan); block != "" {
		fmt.Fprintln(out, block)
	}

	if c.All {
		for _, file := range scan.Skipped {
			fmt.Fprintf(out, "// skipped %s: %q is not a PascalCase component name\n", file.RelativePath, file.Name)
		}
	}

	return nil
}

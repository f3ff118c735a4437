package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/colonyops/signoff/internal/core/bundle"
	"github.com/colonyops/signoff/internal/core/review"
	"github.com/colonyops/signoff/internal/core/signoff"
	"github.com/colonyops/signoff/internal/printer"
	"github.com/colonyops/signoff/internal/workflow"
	"github.com/colonyops/signoff/pkg/iojson"
	"github.com/urfave/cli/v3"
)

type PrepareCmd struct {
	flags *Flags
	app   *workflow.App

	// flags
	contentType string
	jsonOutput  bool
	input       iojson.FileReader[bundle.Bundle]
}

// NewPrepareCmd creates a new prepare command
func NewPrepareCmd(flags *Flags, app *workflow.App) *PrepareCmd {
	return &PrepareCmd{
		flags: flags,
		app:   app,
		input: iojson.FileReader[bundle.Bundle]{
			Name:  "from-json",
			Usage: "read a single bundle as JSON from a file, or '-' for stdin",
		},
	}
}

// Register adds the prepare command to the application
func (cmd *PrepareCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "prepare",
		Usage:     "Open review sessions for content bundles",
		UsageText: "signoff prepare [--type TYPE] [--json] PATH|GLOB...",
		Description: `Loads each Hugo page bundle (index.md plus optional image-prompts.yaml),
opens a review session for it and runs the validation checkpoints.

Arguments may be bundle directories, index.md files, or doublestar globs such as
'content/blog/posts/**'. The content type is inferred from the configured section
directories unless --type is given.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "type",
				Aliases:     []string{"t"},
				Usage:       "content type (blog, portfolio, tech-radar)",
				Destination: &cmd.contentType,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output results as JSON",
				Destination: &cmd.jsonOutput,
			},
			cmd.input.Flag(),
		},
		Action: cmd.run,
	})

	return app
}

// prepareOutput is the JSON output format for signoff prepare --json.
type prepareOutput struct {
	Path      string         `json:"path,omitempty"`
	BundleID  string         `json:"bundleId"`
	SessionID string         `json:"sessionId"`
	Status    signoff.Status `json:"status"`
}

func (cmd *PrepareCmd) run(ctx context.Context, c *cli.Command) error {
	var forced bundle.Type
	if cmd.contentType != "" {
		t, err := bundle.ParseType(cmd.contentType)
		if err != nil {
			return err
		}
		forced = t
	}

	if cmd.input.Set() {
		b, err := cmd.input.Read()
		if err != nil {
			return fmt.Errorf("read bundle: %w", err)
		}
		if forced != "" {
			b.Type = forced
		}
		return cmd.prepare(ctx, c, "", &b)
	}

	if c.Args().Len() == 0 {
		return fmt.Errorf("at least one bundle path or glob is required")
	}

	dirs, err := expandBundleDirs(c.Args().Slice())
	if err != nil {
		return err
	}
	if len(dirs) == 0 {
		return fmt.Errorf("no content bundles matched %v", c.Args().Slice())
	}

	for _, dir := range dirs {
		t := forced
		if t == "" {
			inferred, ok := bundle.InferType(dir, cmd.app.Config.SectionDirs())
			if !ok {
				return fmt.Errorf("cannot infer content type for %s; pass --type", dir)
			}
			t = inferred
		}

		b, err := bundle.Load(dir, t)
		if err != nil {
			return err
		}

		if err := cmd.prepare(ctx, c, dir, b); err != nil {
			return err
		}
	}

	return nil
}

func (cmd *PrepareCmd) prepare(ctx context.Context, c *cli.Command, path string, b *bundle.Bundle) error {
	res, err := cmd.app.Signoff.PrepareForSignoff(ctx, b)
	if err != nil {
		return fmt.Errorf("prepare %s: %w", b.Title(), err)
	}

	bundleID := ""
	if sess, err := cmd.app.Reviews.Session(ctx, res.SessionID); err == nil {
		bundleID = sess.BundleID
	}

	if cmd.jsonOutput {
		return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, prepareOutput{
			Path:      path,
			BundleID:  bundleID,
			SessionID: res.SessionID,
			Status:    res.Status,
		})
	}

	p := printer.Ctx(ctx)
	p.Section(b.Title())
	p.Field("Session", res.SessionID)
	p.Field("Bundle", bundleID)
	printStatus(p, res.Status, review.StatusDraft)
	return nil
}

// expandBundleDirs resolves paths and globs to unique bundle directories in
// argument order. A matched index.md resolves to its directory; other files
// are ignored.
func expandBundleDirs(args []string) ([]string, error) {
	var dirs []string
	add := func(path string) {
		info, err := os.Stat(path)
		if err != nil {
			return
		}
		dir := path
		if !info.IsDir() {
			if filepath.Base(path) != bundle.IndexFile {
				return
			}
			dir = filepath.Dir(path)
		} else if _, err := os.Stat(filepath.Join(path, bundle.IndexFile)); err != nil {
			return
		}
		dir = filepath.Clean(dir)
		if !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}

	for _, arg := range args {
		if !hasMeta(arg) {
			info, err := os.Stat(arg)
			if err != nil {
				return nil, fmt.Errorf("bundle path %s: %w", arg, err)
			}
			if info.IsDir() {
				if _, err := os.Stat(filepath.Join(arg, bundle.IndexFile)); err != nil {
					return nil, fmt.Errorf("%s not found in bundle %s", bundle.IndexFile, arg)
				}
			}
			add(arg)
			continue
		}

		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, fmt.Errorf("expand %q: %w", arg, err)
		}
		for _, m := range matches {
			add(m)
		}
	}

	return dirs, nil
}

func hasMeta(s string) bool {
	for _, r := range s {
		switch r {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}

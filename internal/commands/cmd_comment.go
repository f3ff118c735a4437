package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/colonyops/signoff/internal/core/review"
	"github.com/colonyops/signoff/internal/core/validate"
	"github.com/colonyops/signoff/internal/printer"
	"github.com/colonyops/signoff/internal/workflow"
	"github.com/colonyops/signoff/pkg/iojson"
	"github.com/urfave/cli/v3"
)

type CommentCmd struct {
	flags *Flags
	app   *workflow.App

	// add flags
	section string
	text    string

	// resolve flags
	accept bool
	reject bool

	// ls flags
	jsonOutput bool
}

// NewCommentCmd creates a new comment command
func NewCommentCmd(flags *Flags, app *workflow.App) *CommentCmd {
	return &CommentCmd{flags: flags, app: app}
}

// Register adds the comment command to the application
func (cmd *CommentCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "comment",
		Usage: "Add, resolve, and list inline review comments",
		Description: `Comments target a section of the content bundle. Every comment starts
pending and must be accepted or rejected before the session can be approved.`,
		Commands: []*cli.Command{
			cmd.addCmd(),
			cmd.resolveCmd(),
			cmd.lsCmd(),
		},
	})
	return app
}

func (cmd *CommentCmd) addCmd() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add a pending comment to a session",
		UsageText: "signoff comment add ID --section SECTION --text TEXT",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "section",
				Aliases:     []string{"s"},
				Usage:       "section the comment targets (e.g. intro, frontmatter.summary)",
				Destination: &cmd.section,
			},
			&cli.StringFlag{
				Name:        "text",
				Aliases:     []string{"m"},
				Usage:       "comment text",
				Destination: &cmd.text,
			},
		},
		Action: cmd.runAdd,
	}
}

func (cmd *CommentCmd) resolveCmd() *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Usage:     "Accept or reject a comment",
		UsageText: "signoff comment resolve ID COMMENT (--accept | --reject)",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "accept",
				Usage:       "accept the comment",
				Destination: &cmd.accept,
			},
			&cli.BoolFlag{
				Name:        "reject",
				Usage:       "reject the comment",
				Destination: &cmd.reject,
			},
		},
		Action: cmd.runResolve,
	}
}

func (cmd *CommentCmd) lsCmd() *cli.Command {
	return &cli.Command{
		Name:      "ls",
		Usage:     "List the comments of a session",
		UsageText: "signoff comment ls ID [--json]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.runLs,
	}
}

func (cmd *CommentCmd) runAdd(ctx context.Context, c *cli.Command) error {
	id, err := sessionArg(c)
	if err != nil {
		return err
	}
	if err := validate.Comment(cmd.section, cmd.text); err != nil {
		return fmt.Errorf("%w: %w", review.ErrInvalidInput, err)
	}

	commentID, err := cmd.app.Reviews.AddComment(ctx, id, cmd.section, cmd.text)
	if err != nil {
		return err
	}

	printer.Ctx(ctx).Successf("Added comment %s", commentID)
	return nil
}

// resolution maps the mutually exclusive --accept/--reject flags.
func resolution(accept, reject bool) (review.Resolution, error) {
	switch {
	case accept && reject:
		return "", fmt.Errorf("%w: --accept and --reject cannot be used together", review.ErrInvalidInput)
	case accept:
		return review.ResolutionAccepted, nil
	case reject:
		return review.ResolutionRejected, nil
	default:
		return "", fmt.Errorf("%w: one of --accept or --reject is required", review.ErrInvalidInput)
	}
}

func (cmd *CommentCmd) runResolve(ctx context.Context, c *cli.Command) error {
	id, err := sessionArg(c)
	if err != nil {
		return err
	}
	commentID := c.Args().Get(1)
	if commentID == "" {
		return fmt.Errorf("%w: comment ID argument is required", review.ErrInvalidInput)
	}

	res, err := resolution(cmd.accept, cmd.reject)
	if err != nil {
		return err
	}

	if err := cmd.app.Reviews.ResolveComment(ctx, id, commentID, res); err != nil {
		return err
	}

	p := printer.Ctx(ctx)
	p.Successf("Comment %s %s", commentID, res)
	if st, ok := cmd.app.Reviews.GetSessionStatus(ctx, id); ok && st.PendingComments > 0 {
		p.Infof("%d pending comment(s) remain", st.PendingComments)
	}
	return nil
}

func (cmd *CommentCmd) runLs(ctx context.Context, c *cli.Command) error {
	id, err := sessionArg(c)
	if err != nil {
		return err
	}

	// unknown sessions list as empty in the service; surface them here
	if _, err := cmd.app.Reviews.Session(ctx, id); err != nil {
		return err
	}
	comments := cmd.app.Reviews.GetSessionComments(ctx, id)

	out := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.WriteWith(out, c.Root().ErrWriter, comments)
	}

	if len(comments) == 0 {
		printer.Ctx(ctx).Infof("No comments")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSECTION\tRESOLUTION\tTEXT")
	for _, cm := range comments {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", cm.ID, cm.Section, cm.Resolution, cm.Text)
	}
	return w.Flush()
}

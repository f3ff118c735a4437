package commands

import (
	"context"
	"fmt"

	"github.com/colonyops/signoff/internal/core/review"
	"github.com/colonyops/signoff/internal/core/signoff"
	"github.com/colonyops/signoff/internal/core/validate"
	"github.com/colonyops/signoff/internal/printer"
	"github.com/colonyops/signoff/internal/workflow"
	"github.com/colonyops/signoff/pkg/iojson"
	"github.com/urfave/cli/v3"
)

type StatusCmd struct {
	flags *Flags
	app   *workflow.App

	// flags
	jsonOutput bool
	render     bool
}

// NewStatusCmd creates the status and summary commands
func NewStatusCmd(flags *Flags, app *workflow.App) *StatusCmd {
	return &StatusCmd{flags: flags, app: app}
}

// Register adds the status and summary commands to the application
func (cmd *StatusCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:      "status",
			Usage:     "Show the signoff status of a session",
			UsageText: "signoff status ID [--json]",
			Description: `Recomputes whether a session can be approved from its cached validation
checkpoints and its live pending comment count. Nothing is modified.`,
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:        "json",
					Usage:       "output as JSON",
					Destination: &cmd.jsonOutput,
				},
			},
			Action: cmd.runStatus,
		},
		&cli.Command{
			Name:      "summary",
			Usage:     "Show a reviewer summary of a session",
			UsageText: "signoff summary ID [--json | --render]",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:        "json",
					Usage:       "output as JSON",
					Destination: &cmd.jsonOutput,
				},
				&cli.BoolFlag{
					Name:        "render",
					Usage:       "render the summary as markdown",
					Destination: &cmd.render,
				},
			},
			Action: cmd.runSummary,
		},
	)

	return app
}

// statusOutput is the JSON output format for signoff status --json.
type statusOutput struct {
	SessionID string              `json:"sessionId"`
	Session   review.StatusReport `json:"session"`
	Signoff   signoff.Status      `json:"signoff"`
}

func (cmd *StatusCmd) runStatus(ctx context.Context, c *cli.Command) error {
	id, err := sessionArg(c)
	if err != nil {
		return err
	}

	st, err := cmd.app.Signoff.RequestApproval(ctx, id)
	if err != nil {
		if cmd.jsonOutput {
			_ = iojson.WriteErrorTo(c.Root().Writer, err.Error(), map[string]any{"sessionId": id})
		}
		return err
	}
	report, _ := cmd.app.Reviews.GetSessionStatus(ctx, id)

	if cmd.jsonOutput {
		return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, statusOutput{
			SessionID: id,
			Session:   report,
			Signoff:   st,
		})
	}

	p := printer.Ctx(ctx)
	p.Section("Session " + id)
	p.Field("Status", report.Status)
	p.Field("Comments", fmt.Sprintf("%d (%d accepted, %d rejected)", report.CommentCount, report.AcceptedComments, report.RejectedComments))
	printStatus(p, st, report.Status)
	return nil
}

func (cmd *StatusCmd) runSummary(ctx context.Context, c *cli.Command) error {
	id, err := sessionArg(c)
	if err != nil {
		return err
	}
	if cmd.jsonOutput && cmd.render {
		return fmt.Errorf("--json and --render cannot be used together")
	}

	// RequestApproval distinguishes an unknown session from missing metadata.
	if _, err := cmd.app.Signoff.RequestApproval(ctx, id); err != nil {
		return err
	}
	summary, ok := cmd.app.Signoff.GenerateSummary(ctx, id)
	if !ok {
		return fmt.Errorf("%w: %s", review.ErrSessionNotFound, id)
	}

	if cmd.jsonOutput {
		return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, summary)
	}

	p := printer.Ctx(ctx)
	if cmd.render {
		rc := cmd.app.Config.Review
		return p.Markdown(summaryMarkdown(summary), rc.RenderStyle, rc.WordWrap)
	}

	p.Section(summary.Title)
	p.Field("Session", summary.SessionID)
	p.Field("Type", summary.ContentType)
	p.Field("Status", summary.Status)
	p.Field("Validation passed", summary.ValidationPassed)
	p.Field("Comments resolved", summary.CommentsResolved)
	p.Field("Comments pending", summary.CommentsPending)
	p.Field("Created", summary.CreatedAt.Local().Format("2006-01-02 15:04"))
	if summary.RejectionReason != "" {
		p.Field("Rejection reason", summary.RejectionReason)
	}
	return nil
}

func sessionArg(c *cli.Command) (string, error) {
	id := c.Args().First()
	if err := validate.SessionID(id); err != nil {
		return "", fmt.Errorf("%w: %w", review.ErrInvalidInput, err)
	}
	return id, nil
}

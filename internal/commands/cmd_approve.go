package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/colonyops/signoff/internal/core/review"
	"github.com/colonyops/signoff/internal/core/signoff"
	"github.com/colonyops/signoff/internal/core/validate"
	"github.com/colonyops/signoff/internal/printer"
	"github.com/colonyops/signoff/internal/workflow"
	"github.com/urfave/cli/v3"
)

type ApproveCmd struct {
	flags *Flags
	app   *workflow.App

	// flags
	yes    bool
	reason string
}

// NewApproveCmd creates the approve and reject commands
func NewApproveCmd(flags *Flags, app *workflow.App) *ApproveCmd {
	return &ApproveCmd{flags: flags, app: app}
}

// Register adds the approve and reject commands to the application
func (cmd *ApproveCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:      "approve",
			Usage:     "Approve a session that passed every checkpoint",
			UsageText: "signoff approve ID [--yes]",
			Description: `Re-checks the validation checkpoints and pending comments, then approves the
session. Approval is refused while any checkpoint fails or any comment is pending.

On a terminal you are asked to confirm unless --yes is given or
review.confirm_approval is false.`,
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:        "yes",
					Aliases:     []string{"y"},
					Usage:       "skip the confirmation prompt",
					Destination: &cmd.yes,
				},
			},
			Action: cmd.runApprove,
		},
		&cli.Command{
			Name:      "reject",
			Usage:     "Reject a session",
			UsageText: "signoff reject ID --reason REASON",
			Description: `Rejects the session and records the reason. Rejection is final; prepare the
bundle again to start a new review.`,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:        "reason",
					Aliases:     []string{"r"},
					Usage:       "why the content was rejected",
					Destination: &cmd.reason,
				},
			},
			Action: cmd.runReject,
		},
	)

	return app
}

func (cmd *ApproveCmd) runApprove(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	id, err := sessionArg(c)
	if err != nil {
		return err
	}

	// surface blocking conditions before asking for confirmation
	st, err := cmd.app.Signoff.RequestApproval(ctx, id)
	if err != nil {
		return err
	}
	if err := st.Err(); err != nil {
		printStatus(p, st, cmd.sessionState(ctx, id))
		_, err = cmd.app.Signoff.Approve(ctx, id)
		return err
	}

	if !cmd.yes && cmd.app.Config.Review.ConfirmApproval && interactive() {
		title := id
		if summary, ok := cmd.app.Signoff.GenerateSummary(ctx, id); ok {
			title = summary.Title
		}

		var confirmed bool
		err := huh.NewConfirm().
			Title("Approve " + title + "?").
			Description("Session " + id + "\nApproval is final.").
			Value(&confirmed).
			Run()
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				p.Infof("Approval cancelled")
				return nil
			}
			return fmt.Errorf("confirm: %w", err)
		}
		if !confirmed {
			p.Infof("Approval cancelled")
			return nil
		}
	}

	st, err = cmd.app.Signoff.Approve(ctx, id)
	if err != nil {
		if errors.Is(err, signoff.ErrApprovalBlocked) {
			printStatus(p, st, cmd.sessionState(ctx, id))
		}
		return err
	}

	p.Successf("Session %s approved", id)
	return nil
}

func (cmd *ApproveCmd) sessionState(ctx context.Context, id string) review.Status {
	report, _ := cmd.app.Reviews.GetSessionStatus(ctx, id)
	return report.Status
}

func (cmd *ApproveCmd) runReject(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	id, err := sessionArg(c)
	if err != nil {
		return err
	}

	reason := strings.TrimSpace(cmd.reason)
	if reason == "" && interactive() {
		err := huh.NewInput().
			Title("Rejection reason").
			Description("Session " + id).
			Validate(validate.Reason).
			Value(&reason).
			Run()
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				p.Infof("Rejection cancelled")
				return nil
			}
			return fmt.Errorf("reason: %w", err)
		}
	}

	if err := cmd.app.Signoff.Reject(ctx, id, reason); err != nil {
		return err
	}

	p.Successf("Session %s rejected", id)
	return nil
}

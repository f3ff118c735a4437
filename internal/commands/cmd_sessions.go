package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/colonyops/signoff/internal/core/review"
	"github.com/colonyops/signoff/internal/printer"
	"github.com/colonyops/signoff/internal/workflow"
	"github.com/colonyops/signoff/pkg/iojson"
	"github.com/urfave/cli/v3"
)

type SessionsCmd struct {
	flags *Flags
	app   *workflow.App

	// flags
	jsonOutput bool
	bundleID   string
}

// NewSessionsCmd creates a new sessions command
func NewSessionsCmd(flags *Flags, app *workflow.App) *SessionsCmd {
	return &SessionsCmd{flags: flags, app: app}
}

// Register adds the sessions command to the application
func (cmd *SessionsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "sessions",
		Usage: "Inspect and manage review sessions",
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List review sessions, newest first",
				UsageText: "signoff sessions ls [--bundle BUNDLE_ID] [--json]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "bundle",
						Aliases:     []string{"b"},
						Usage:       "only sessions of this bundle ID",
						Destination: &cmd.bundleID,
					},
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON lines",
						Destination: &cmd.jsonOutput,
					},
				},
				Action: cmd.runLs,
			},
			{
				Name:      "rm",
				Usage:     "Delete a session and its signoff metadata",
				UsageText: "signoff sessions rm ID",
				Action:    cmd.runRm,
			},
			{
				Name:      "stats",
				Usage:     "Show session and comment counts",
				UsageText: "signoff sessions stats [--json]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON",
						Destination: &cmd.jsonOutput,
					},
				},
				Action: cmd.runStats,
			},
		},
	})
	return app
}

// sessionInfo is the JSON output format for signoff sessions ls --json.
type sessionInfo struct {
	ID        string        `json:"id"`
	BundleID  string        `json:"bundleId"`
	Title     string        `json:"title"`
	Status    review.Status `json:"status"`
	Comments  int           `json:"comments"`
	Pending   int           `json:"pending"`
	CreatedAt time.Time     `json:"createdAt"`
}

func newSessionInfo(s review.Session) sessionInfo {
	return sessionInfo{
		ID:        s.ID,
		BundleID:  s.BundleID,
		Title:     s.ContentBundleID,
		Status:    s.Status,
		Comments:  len(s.Comments),
		Pending:   s.PendingCount(),
		CreatedAt: s.CreatedAt,
	}
}

// filterSessions keeps sessions whose ID is in ids, preserving order.
func filterSessions(sessions []review.Session, ids []string) []review.Session {
	keep := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		keep[id] = struct{}{}
	}

	out := make([]review.Session, 0, len(ids))
	for _, s := range sessions {
		if _, ok := keep[s.ID]; ok {
			out = append(out, s)
		}
	}
	return out
}

func (cmd *SessionsCmd) runLs(ctx context.Context, c *cli.Command) error {
	sessions, err := cmd.app.Reviews.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	if cmd.bundleID != "" {
		sessions = filterSessions(sessions, cmd.app.Reviews.GetBundleSessions(ctx, cmd.bundleID))
	}

	if len(sessions) == 0 {
		if !cmd.jsonOutput {
			printer.Ctx(ctx).Infof("No sessions found")
		}
		return nil
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, s := range sessions {
			if err := iojson.WriteLine(out, newSessionInfo(s)); err != nil {
				return fmt.Errorf("encode session: %w", err)
			}
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tBUNDLE\tSTATUS\tPENDING\tCREATED")
	for _, s := range sessions {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%s\n",
			s.ID, s.BundleID, s.Status, s.PendingCount(), len(s.Comments),
			s.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func (cmd *SessionsCmd) runRm(ctx context.Context, c *cli.Command) error {
	id, err := sessionArg(c)
	if err != nil {
		return err
	}

	if !cmd.app.Signoff.DeleteSession(ctx, id) {
		return fmt.Errorf("session %s could not be deleted (unknown session or storage failure, see log)", id)
	}

	printer.Ctx(ctx).Successf("Deleted session %s", id)
	return nil
}

func (cmd *SessionsCmd) runStats(ctx context.Context, c *cli.Command) error {
	st, err := cmd.app.Reviews.GetStatistics(ctx)
	if err != nil {
		return err
	}

	if cmd.jsonOutput {
		return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, st)
	}

	p := printer.Ctx(ctx)
	p.Section("Sessions")
	p.Field("Total", st.TotalSessions)
	p.Field("Draft", st.DraftSessions)
	p.Field("In review", st.InReviewSessions)
	p.Field("Approved", st.ApprovedSessions)
	p.Field("Rejected", st.RejectedSessions)
	p.Section("Comments")
	p.Field("Total", st.TotalComments)
	p.Field("Pending", st.PendingComments)
	return nil
}

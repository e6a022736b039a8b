package cli

import (
	"context"
	"flag"
	"fmt"
)

const defaultConflictsLimit = 20

func (c *Cli) runConflicts(ctx context.Context, args []string, secret Secret) error {
	fs := flag.NewFlagSet("conflicts", flag.ContinueOnError)
	unreviewed := fs.Bool("unreviewed", false, "show only conflicts pending review")
	limit := fs.Int("limit", defaultConflictsLimit, "maximum number of conflicts to show")
	if err := fs.Parse(args); err != nil {
		return err
	}

	token, err := c.accessToken(ctx, secret)
	if err != nil {
		return err
	}

	resp, err := c.apiClient.Conflicts(ctx, token, *unreviewed, *limit)
	if err != nil {
		return err
	}

	out, err := renderTemplate(conflictsListTemplate, resp.Conflicts)
	if err != nil {
		return err
	}
	c.io.Printf("%s", out)

	return nil
}

func (c *Cli) runReview(ctx context.Context, args []string, secret Secret) error {
	if len(args) == 0 || args[0] == "" {
		return fmt.Errorf("usage: syncmesh review <conflict-id>")
	}
	conflictID := args[0]

	token, err := c.accessToken(ctx, secret)
	if err != nil {
		return err
	}

	if err := c.apiClient.ReviewConflict(ctx, token, conflictID); err != nil {
		return err
	}

	c.io.Printf("Conflict %s marked as reviewed\n", conflictID)
	return nil
}

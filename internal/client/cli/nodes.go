package cli

import (
	"context"
	"flag"
)

func (c *Cli) runNodes(ctx context.Context, args []string, secret Secret) error {
	fs := flag.NewFlagSet("nodes", flag.ContinueOnError)
	activeOnly := fs.Bool("active", false, "show only active nodes")
	if err := fs.Parse(args); err != nil {
		return err
	}

	token, err := c.accessToken(ctx, secret)
	if err != nil {
		return err
	}

	resp, err := c.apiClient.Nodes(ctx, token, *activeOnly)
	if err != nil {
		return err
	}

	out, err := renderTemplate(nodesListTemplate, resp.Nodes)
	if err != nil {
		return err
	}
	c.io.Printf("%s", out)

	return nil
}

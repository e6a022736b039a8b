package cli

import "context"

func (c *Cli) runStats(ctx context.Context, secret Secret) error {
	token, err := c.accessToken(ctx, secret)
	if err != nil {
		return err
	}

	resp, err := c.apiClient.Stats(ctx, token)
	if err != nil {
		return err
	}

	out, err := renderTemplate(statsTemplate, resp)
	if err != nil {
		return err
	}
	c.io.Printf("%s", out)

	return nil
}

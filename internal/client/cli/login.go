package cli

import (
	"context"
	"flag"
	"fmt"
	"time"
)

func (c *Cli) runLogin(ctx context.Context, args []string, secret Secret) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	name := fs.String("name", "", "node name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	nodeName := *name
	if nodeName == "" {
		var err error
		nodeName, err = c.io.ReadInput("Node name: ")
		if err != nil {
			return fmt.Errorf("failed to read node name: %w", err)
		}
	}

	secretValue, err := c.resolveSecret(secret)
	if err != nil {
		return err
	}

	result, err := c.authService.Login(ctx, nodeName, secretValue)
	if err != nil {
		return err
	}

	c.io.Println("Authenticated")
	c.io.Printf("  Node:    %s (%s)\n", result.NodeName, result.NodeID)
	c.io.Printf("  Expires: %s\n", time.Now().Add(time.Duration(result.ExpiresIn)*time.Second).Format(time.RFC3339))

	return nil
}

package cli

import (
	"context"
	"flag"
	"fmt"
)

func (c *Cli) runRegister(ctx context.Context, args []string, secret Secret) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	name := fs.String("name", "", "node name")
	address := fs.String("address", "", "address peers use to reach this node")
	capabilities := fs.String("capabilities", "", "comma-separated node capabilities")
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

	result, err := c.authService.Register(ctx, nodeName, secretValue, *address, splitList(*capabilities))
	if err != nil {
		return err
	}

	c.io.Println("Node registered in mesh")
	c.io.Printf("  Name:    %s\n", result.NodeName)
	c.io.Printf("  Node ID: %s\n", result.NodeID)
	c.io.Println()
	c.io.Println("Run 'syncmesh login' to authenticate.")

	return nil
}

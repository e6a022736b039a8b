package cli

import (
	"context"
	"fmt"
	"time"
)

func (c *Cli) runStatus(ctx context.Context) error {
	isAuth, err := c.authStore.IsAuthenticated(ctx)
	if err != nil {
		return fmt.Errorf("failed to check authentication: %w", err)
	}

	if !isAuth {
		c.io.Println("Status: not authenticated")
		c.io.Println()
		c.io.Println("Run 'syncmesh login' to authenticate.")
		return nil
	}

	// Имя узла и срок действия читаются без распечатывания токенов
	identity, err := c.authStore.Identity(ctx)
	if err != nil {
		return fmt.Errorf("failed to load identity: %w", err)
	}

	expiresAt := time.Unix(identity.ExpiresAt, 0)

	c.io.Println("Status: authenticated")
	c.io.Printf("  Node:          %s (%s)\n", identity.NodeName, identity.NodeID)
	c.io.Printf("  Token expires: %s\n", expiresAt.Format(time.RFC3339))

	if remaining := time.Until(expiresAt); remaining > 0 {
		c.io.Printf("  Remaining:     %s\n", remaining.Round(time.Second))
	} else {
		c.io.Println("  Token has expired, it will be refreshed on the next command.")
	}

	return nil
}

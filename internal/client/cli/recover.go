package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/iudanet/syncmesh/pkg/api"
)

func (c *Cli) runRecover(ctx context.Context, args []string, secret Secret) error {
	fs := flag.NewFlagSet("recover", flag.ContinueOnError)
	mode := fs.String("mode", api.RecoveryModeFull, "recovery mode: full or since")
	since := fs.Int64("since", 0, "watermark for mode=since")
	peer := fs.String("peer", "", "limit recovery to a single peer node id")
	strategy := fs.String("strategy", "", "forced conflict resolution: local_wins or remote_wins")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *mode == api.RecoveryModeSince && *since <= 0 {
		return fmt.Errorf("mode=since requires a positive --since watermark")
	}

	token, err := c.accessToken(ctx, secret)
	if err != nil {
		return err
	}

	resp, err := c.apiClient.InitiateRecovery(ctx, token, api.RecoveryRequest{
		Mode:     *mode,
		Since:    *since,
		PeerID:   *peer,
		Strategy: *strategy,
	})
	if err != nil {
		return err
	}

	c.io.Println("Recovery session started")
	c.io.Printf("  Session: %s\n", resp.SessionID)
	if resp.Message != "" {
		c.io.Printf("  %s\n", resp.Message)
	}
	c.io.Println()
	c.io.Println("Use 'syncmesh stats' to watch progress.")

	return nil
}

package cli

import (
	"context"
	"fmt"
)

// Run выполняет команду. Неизвестная команда печатает usage и
// возвращается как ошибка вызывающему.
func (c *Cli) Run(ctx context.Context, command string, args []string, secret Secret) error {
	switch command {
	case "register":
		return c.runRegister(ctx, args, secret)
	case "login":
		return c.runLogin(ctx, args, secret)
	case "logout":
		return c.runLogout(ctx, secret)
	case "status":
		return c.runStatus(ctx)
	case "nodes":
		return c.runNodes(ctx, args, secret)
	case "stats":
		return c.runStats(ctx, secret)
	case "conflicts":
		return c.runConflicts(ctx, args, secret)
	case "review":
		return c.runReview(ctx, args, secret)
	case "recover":
		return c.runRecover(ctx, args, secret)
	case "help", "":
		c.PrintUsage()
		return nil
	default:
		c.PrintUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

package cli

import "context"

func (c *Cli) runLogout(ctx context.Context, secret Secret) error {
	// Распечатываем сессию best effort: peer уведомляется только
	// если secret доступен, локальный logout выполняется всегда
	if value, err := c.resolveSecret(secret); err == nil {
		_ = c.authService.Unlock(ctx, value)
	}

	if err := c.authService.Logout(ctx); err != nil {
		return err
	}

	c.io.Println("Logged out, local credentials removed")
	return nil
}

package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	clientapi "github.com/iudanet/syncmesh/internal/client/api"
	"github.com/iudanet/syncmesh/internal/client/auth"
	"github.com/iudanet/syncmesh/internal/client/iocli"
)

// ClusterSecretEnv - переменная окружения с cluster secret
const ClusterSecretEnv = "SYNCMESH_CLUSTER_SECRET"

// Secret задает источники cluster secret в порядке убывания приоритета:
// переменная окружения, файл, аргумент командной строки, интерактивный ввод
type Secret struct {
	FromFile string
	FromArgs string
}

// Cli выполняет ops-команды узла: auth flow, реестр узлов,
// статистика sync-подсистемы, разбор конфликтов и recovery
type Cli struct {
	io          iocli.IO
	apiClient   clientapi.ClientAPI
	authService *auth.Service
	authStore   *auth.Store
	version     string
}

// New создает CLI поверх API клиента и сервиса авторизации
func New(io iocli.IO, apiClient clientapi.ClientAPI, authService *auth.Service, authStore *auth.Store, version string) *Cli {
	return &Cli{
		io:          io,
		apiClient:   apiClient,
		authService: authService,
		authStore:   authStore,
		version:     version,
	}
}

// resolveSecret получает cluster secret из первого доступного источника
func (c *Cli) resolveSecret(secret Secret) (string, error) {
	if envSecret := os.Getenv(ClusterSecretEnv); envSecret != "" {
		return envSecret, nil
	}

	if secret.FromFile != "" {
		content, err := os.ReadFile(secret.FromFile)
		if err != nil {
			return "", fmt.Errorf("failed to read secret file: %w", err)
		}
		value := strings.TrimSpace(string(content))
		if value == "" {
			return "", fmt.Errorf("secret file is empty")
		}
		return value, nil
	}

	if secret.FromArgs != "" {
		return secret.FromArgs, nil
	}

	value, err := c.io.ReadSecret("Cluster secret: ")
	if err != nil {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	if value == "" {
		return "", fmt.Errorf("cluster secret cannot be empty")
	}

	return value, nil
}

// accessToken распечатывает сессию и возвращает действующий access token
func (c *Cli) accessToken(ctx context.Context, secret Secret) (string, error) {
	value, err := c.resolveSecret(secret)
	if err != nil {
		return "", err
	}

	if err := c.authService.Unlock(ctx, value); err != nil {
		return "", err
	}

	return c.authService.AccessToken(ctx)
}

// PrintUsage выводит справку по командам
func (c *Cli) PrintUsage() {
	c.io.Printf("syncmesh %s\n%s", c.version, usageTemplate)
}

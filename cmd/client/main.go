package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	clientapi "github.com/iudanet/syncmesh/internal/client/api"
	"github.com/iudanet/syncmesh/internal/client/auth"
	"github.com/iudanet/syncmesh/internal/client/cli"
	"github.com/iudanet/syncmesh/internal/client/iocli"
	"github.com/iudanet/syncmesh/internal/client/storage/boltdb"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Глобальные флаги
	showVersion := flag.Bool("version", false, "Show version information")
	peerURL := flag.String("peer", "http://localhost:8080", "Peer node URL")
	dbPath := flag.String("db", "syncmesh-cli.db", "Path to local credentials database")
	secretArg := flag.String("secret", "", "Cluster secret (not recommended, use env var or file)")
	secretFile := flag.String("secret-file", "", "Path to file containing cluster secret")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	args := flag.Args()
	command := ""
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}

	ctx := context.Background()

	boltStorage, err := boltdb.New(ctx, *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := boltStorage.Close(); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	apiClient := clientapi.NewClient(*peerURL)
	authStore := auth.NewStore(boltStorage)
	authService := auth.NewService(logger, apiClient, authStore)

	c := cli.New(iocli.NewStdio(), apiClient, authService, authStore, Version)

	secret := cli.Secret{
		FromFile: *secretFile,
		FromArgs: *secretArg,
	}

	if err := c.Run(ctx, command, args, secret); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("syncmesh\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}

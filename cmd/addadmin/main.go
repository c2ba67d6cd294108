// Command addadmin provisions an admin account directly against the user
// store. It is a deployment-time tool, deliberately outside the HTTP
// surface: the service itself only ever creates accounts with role "user".
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
	"golang.org/x/term"

	"github.com/authcore/account-service/internal/core/domain"
	"github.com/authcore/account-service/internal/infrastructure/config"
	mongostore "github.com/authcore/account-service/internal/infrastructure/db/mongo"
	"github.com/authcore/account-service/internal/pkg/password"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	var mongoCfg config.MongoConfig
	if err := envconfig.Process(ctx, &mongoCfg); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	username, pass, err := promptCredentials()
	if err != nil {
		return err
	}

	client, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      mongoCfg.URI,
		Database: mongoCfg.Database,
	})
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(ctx) }()

	if err := mongostore.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	hash, err := password.NewHasher(0).Hash(pass)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	created, err := mongostore.NewUserRepository(db).Insert(ctx, &domain.User{
		Username:     username,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	fmt.Printf("admin %q created (id %s)\n", created.Username, created.ID)
	return nil
}

func promptCredentials() (string, string, error) {
	fmt.Print("Username: ")
	reader := bufio.NewReader(os.Stdin)
	username, err := reader.ReadString('\n')
	if err != nil {
		return "", "", fmt.Errorf("read username: %w", err)
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return "", "", fmt.Errorf("username must not be empty")
	}

	fmt.Print("Password: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", "", fmt.Errorf("read password: %w", err)
	}
	if len(raw) == 0 {
		return "", "", fmt.Errorf("password must not be empty")
	}

	return username, string(raw), nil
}

// Command seed-admin creates or resets the admin credential row the API
// authenticates against.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"stockledger/internal/core/id"
	"stockledger/internal/infrastructure/storage/postgres"
)

func main() {
	password := flag.String("password", "", "Required: admin password to set")
	flag.Parse()

	if *password == "" {
		fmt.Fprintln(os.Stderr, "--password is required")
		os.Exit(1)
	}
	if len(*password) < 8 {
		fmt.Fprintln(os.Stderr, "password must be at least 8 characters")
		os.Exit(1)
	}

	_ = godotenv.Load()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL not set")
		os.Exit(1)
	}

	ctx := context.Background()
	poolCfg := postgres.DefaultPoolConfig(dsn)
	poolCfg.MaxConns = 1
	poolCfg.MinConns = 1

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect failed: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash failed: %v\n", err)
		os.Exit(1)
	}

	// Single-row table: reset the hash when the row exists, insert otherwise.
	tag, err := pool.Exec(ctx,
		`UPDATE admin_credentials SET password_hash = $1, updated_at = now()`,
		string(hash))
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}
	if tag.RowsAffected() == 0 {
		if _, err := pool.Exec(ctx,
			`INSERT INTO admin_credentials (id, password_hash) VALUES ($1, $2)`,
			id.New(), string(hash)); err != nil {
			fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Println("admin credentials set")
}

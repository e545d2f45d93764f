// ulcdeck-token mints a bearer token for the ULC Deck status API.
//
// It reads api.jwt_secret from the same config file and environment the
// plugin uses and prints a signed token to stdout:
//
//	ulcdeck-token -config config.yaml -subject grafana -ttl 720h
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/nerrad567/ulc-deck/internal/auth"
	"github.com/nerrad567/ulc-deck/internal/infrastructure/config"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(argv []string, stdout, stderr io.Writer) error {
	fset := flag.NewFlagSet("ulcdeck-token", flag.ContinueOnError)
	fset.SetOutput(stderr)
	configPath := fset.String("config", os.Getenv("ULCDECK_CONFIG"), "path to YAML config")
	subject := fset.String("subject", "cli", "token subject")
	ttl := fset.Duration("ttl", auth.DefaultTTL, "token lifetime")
	if err := fset.Parse(argv); err != nil {
		return fmt.Errorf("parsing flags: %w", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.API.JWTSecret == "" {
		return fmt.Errorf("api.jwt_secret is not set; the status API is unauthenticated")
	}

	token, err := auth.GenerateToken(*subject, cfg.API.JWTSecret, *ttl)
	if err != nil {
		return fmt.Errorf("generating token: %w", err)
	}
	fmt.Fprintln(stdout, token)
	return nil
}


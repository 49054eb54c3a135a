// Command token mints an access token signed with the configured secret,
// for local development against the API.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/deskmetrics/deskmetrics-backend-go/internal/config"
	"github.com/deskmetrics/deskmetrics-backend-go/internal/pkg/jwt"
	"github.com/google/uuid"
)

func main() {
	email := flag.String("email", "dev@deskmetrics.local", "email claim")
	userID := flag.String("user", "", "user id claim, random when empty")
	admin := flag.Bool("admin", false, "grant the admin claim")
	ttl := flag.Duration("ttl", 0, "token lifetime, config value when 0")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}

	if *userID == "" {
		*userID = uuid.NewString()
	}
	expiration := cfg.JWT.AccessExpiration
	if *ttl > 0 {
		expiration = *ttl
	}

	token, expiresAt, err := jwt.NewJWTService(cfg.JWT.Secret, expiration).GenerateAccessToken(*userID, *email, *admin)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error generating token:", err)
		os.Exit(1)
	}

	fmt.Println(token)
	fmt.Fprintln(os.Stderr, "expires at", time.Unix(expiresAt, 0).Format(time.RFC3339))
}

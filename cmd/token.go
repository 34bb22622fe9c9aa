package main

import (
	"fmt"
	"os"
	"time"

	configs "github.com/Payphone-Digital/factbook/config"
	"github.com/Payphone-Digital/factbook/internal/service"
)

// runToken prints a bearer token for the user id in args. Operators use it to
// call the API; there is no login endpoint.
func runToken(config *configs.Config, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: factbook token <user-id>")
		return 2
	}

	token, expiresAt, err := service.NewJWTService(config.JWT.Secret, config.JWT.Expiration).GenerateToken(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to issue token:", err)
		return 1
	}

	fmt.Println(token)
	fmt.Fprintln(os.Stderr, "expires at", expiresAt.Format(time.RFC3339))
	return 0
}

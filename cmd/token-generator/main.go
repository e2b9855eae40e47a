// Command token-generator issues an access token for a learner ID using the
// server's configured signing secret. It is intended for local development
// and smoke tests against a running server, and reads the same configuration.
//
//	token-generator -user 6f1c2d3e-...   issue a token for an existing learner
//	token-generator                       issue a token for a fresh random learner
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/phrazzld/hanzi-srs/internal/config"
	"github.com/phrazzld/hanzi-srs/internal/service/auth"
)

func main() {
	userFlag := flag.String("user", "", "learner UUID to embed in the token (random when empty)")
	flag.Parse()

	userID := uuid.New()
	if *userFlag != "" {
		parsed, err := uuid.Parse(*userFlag)
		if err != nil {
			log.Fatalf("invalid -user value: %v", err)
		}
		userID = parsed
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		log.Fatalf("failed to initialize JWT service: %v", err)
	}

	token, err := jwtService.GenerateToken(context.Background(), userID)
	if err != nil {
		log.Fatalf("failed to generate token: %v", err)
	}

	fmt.Fprintf(os.Stderr, "user_id: %s\nexpires_in: %d minutes\n", userID, cfg.Auth.TokenLifetimeMinutes)
	fmt.Println(token)
}

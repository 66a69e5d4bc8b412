package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/pkg/auth"
)

func main() {
	userID := flag.Uint("user", 1, "user ID to put in the token")
	email := flag.String("email", "dev@example.com", "email claim")
	admin := flag.Bool("admin", false, "grant the admin flag")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	jwtManager := auth.NewJWTManager(cfg)
	token, err := jwtManager.GenerateAccessToken(*userID, *email, *admin)
	if err != nil {
		log.Fatal("Error generating token:", err)
	}

	if _, err := jwtManager.ValidateAccessToken(token); err != nil {
		log.Fatal("Token verification failed:", err)
	}

	fmt.Printf("User: %d (admin=%t)\n", *userID, *admin)
	fmt.Printf("Token: %s\n", token)
	fmt.Println("✅ Token verified successfully!")
}

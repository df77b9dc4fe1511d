package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"go-vendas-api/internal/config"
	"go-vendas-api/internal/model"
	"go-vendas-api/pkg/jwt"

	"github.com/joho/godotenv"
)

// issue-token mints a bearer token signed with JWT_SECRET for local use.
// Production tokens come from the identity provider.
func main() {
	actorID := flag.String("id", "local-dev", "actor id stored in the token")
	name := flag.String("name", "Local Developer", "actor display name")
	email := flag.String("email", "dev@localhost", "actor email")
	privileges := flag.String("privileges", "all", "comma separated privilege codes, or 'all'")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}
	cfg := config.Load()

	codes, err := parsePrivileges(*privileges)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	token, err := jwt.GenerateToken([]byte(cfg.JWTSecret), *actorID, *name, *email, codes, *ttl)
	if err != nil {
		log.Fatalf("❌ Failed to sign token: %v", err)
	}

	log.Printf("✅ Token for %s valid for %s with %d privileges", *email, ttl.String(), len(codes))
	fmt.Println(token)
}

func parsePrivileges(value string) ([]string, error) {
	if value == "all" {
		return model.AllPrivilegeCodes(), nil
	}

	known := make(map[string]bool)
	for _, code := range model.AllPrivilegeCodes() {
		known[code] = true
	}

	var codes []string
	for _, code := range strings.Split(value, ",") {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		if !known[code] {
			return nil, fmt.Errorf("unknown privilege %q", code)
		}
		codes = append(codes, code)
	}
	return codes, nil
}

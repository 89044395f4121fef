// Command tokengen signs a development token for connecting to the relay.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/Temutjin2k/location-relay/config"
	"github.com/Temutjin2k/location-relay/internal/domain/models"
	"github.com/Temutjin2k/location-relay/internal/domain/types"
	"github.com/Temutjin2k/location-relay/internal/service/auth"
)

var (
	configPath = flag.String("config-path", "config.yaml", "Path to the config yaml file")
	userID     = flag.String("user-id", "", "Id claim")
	email      = flag.String("email", "", "email claim")
	shopName   = flag.String("shop", "", "shopName claim")
	role       = flag.String("role", types.UserRoleCourier.String(), "role claim: user, courier or admin")
	ttl        = flag.Duration("ttl", 24*time.Hour, "token lifetime")
)

func main() {
	flag.Parse()

	if *userID == "" {
		log.Fatal("-user-id is required")
	}

	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret)
	if err != nil {
		log.Fatal(err)
	}

	token, err := tokens.Sign(models.TokenIdentity{
		UserID:   *userID,
		Email:    *email,
		ShopName: *shopName,
		Role:     types.UserRole(*role),
	}, *ttl)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(token)
}

// Package main is the entry point for the case-break service.
//
// @title           Case-Break Service API
// @version         1.0.0
// @description     Unit pricing, case-break inventory, checkout and break-case fulfillment for a fireworks store.
//
//	Products sold by the case can also be sold by the unit. When unit stock runs short at
//	checkout the service opens a break-case request for the warehouse.
//
// @contact.name   API Support
// @contact.email  support@example.com
//
// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT
//
// @host      localhost:8080
// @BasePath  /
//
// @securityDefinitions.apikey  ApiKeyAuth
// @in                          header
// @name                        X-API-Key
// @description                 Admin API key. Required if authentication is enabled.
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Customer token, formatted as "Bearer <jwt>". Required if authentication is enabled.
//
// @tag.name        Pricing
// @tag.description Unit price derivation
//
// @tag.name        Products
// @tag.description Catalog management
//
// @tag.name        Inventory
// @tag.description Unit stock
//
// @tag.name        Cart
// @tag.description Customer carts
//
// @tag.name        Checkout
// @tag.description Purchase orchestration
//
// @tag.name        Fulfillment
// @tag.description Break-case requests
//
// @tag.name        Purchases
// @tag.description Purchase records
//
// @tag.name        Audit
// @tag.description Request and audit log entries
//
// @tag.name        Health
// @tag.description Health check endpoints
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/guttosm/casebreak-service/docs" // swagger docs

	"github.com/guttosm/casebreak-service/config"
	"github.com/guttosm/casebreak-service/internal/app"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Load()

	application, err := app.InitializeApp(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}

	server := app.NewServer(application.Router, cfg.Server)
	server.OnShutdown(application.Close)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server error")
	}
}

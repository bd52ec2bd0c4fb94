package cmd

import (
	"context"
	"fmt"

	"goldhouse/api"
	"goldhouse/config"
	"goldhouse/database"
	"goldhouse/events"
	"goldhouse/repository"
	"goldhouse/service"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting goldhouse...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established")

	// Initialize event bus with the audit subscriber
	eventBus := events.NewBus()
	subscribeAuditLog(eventBus)

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize services
	rng := service.NewRand()
	services := api.Services{
		Accounts: service.NewAccountService(uowFactory, cfg),
		Roulette: service.NewRouletteService(uowFactory, rng, cfg),
		BetBook:  service.NewBetBookService(uowFactory, rng, cfg),
		Promos:   service.NewPromoService(uowFactory),
		Admin:    service.NewAdminService(uowFactory),
	}

	log.WithField("environment", cfg.Environment).Info("Running")
	return api.Start(ctx, cfg, services)
}

// subscribeAuditLog logs every committed balance movement and matched bet
func subscribeAuditLog(bus *events.Bus) {
	bus.Subscribe(events.EventTypeBalanceChange, func(ctx context.Context, e events.Event) {
		if change, ok := e.(events.BalanceChangeEvent); ok {
			log.WithFields(log.Fields{
				"username": change.Username,
				"type":     change.TransactionType,
				"amount":   change.ChangeAmount,
				"balance":  change.NewBalance,
			}).Info("Balance changed")
		}
	})

	bus.Subscribe(events.EventTypeBetMatched, func(ctx context.Context, e events.Event) {
		if matched, ok := e.(events.BetMatchedEvent); ok {
			log.WithFields(log.Fields{
				"betId":    matched.BetID,
				"creator":  matched.Creator,
				"acceptor": matched.Acceptor,
				"winner":   matched.Winner,
			}).Info("Bet matched")
		}
	})
}

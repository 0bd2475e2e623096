package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"eddies/cmd"
	"eddies/config"
	"eddies/database"
	"eddies/domain/interfaces"
	"eddies/domain/services"
	"eddies/infrastructure"
	"eddies/repository"

	log "github.com/sirupsen/logrus"
)

func main() {
	// Check for migration subcommands
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := handleMigrationCommand(); err != nil {
			log.Fatal("Migration error: ", err)
		}
		return
	}

	// Check for balance adjustment subcommands
	if len(os.Args) > 1 && os.Args[1] == "set-balance" {
		if err := handleBalanceAdjustment(); err != nil {
			log.Fatal("Balance adjustment error: ", err)
		}
		return
	}

	// Normal bot operation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	if err := cmd.Run(ctx); err != nil {
		log.Fatal("Application error: ", err)
	}
}

func handleMigrationCommand() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: eddies migrate [up|down|status] [args...]")
	}

	command := os.Args[2]
	switch command {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(os.Args) > 3 {
			steps = os.Args[3]
		}
		return database.MigrateDown(steps)
	case "status":
		return database.MigrateStatus()
	default:
		return fmt.Errorf("unknown migration command: %s", command)
	}
}

// handleBalanceAdjustment sets an account balance from the command line,
// bypassing Discord entirely. Events are dropped on purpose.
func handleBalanceAdjustment() error {
	if len(os.Args) < 5 {
		return fmt.Errorf("usage: eddies set-balance guild-id discord-id value")
	}
	guildID, err := strconv.ParseInt(os.Args[2], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid guild id %q: %w", os.Args[2], err)
	}
	discordID, err := strconv.ParseInt(os.Args[3], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid discord id %q: %w", os.Args[3], err)
	}
	value, err := strconv.ParseInt(os.Args[4], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid value %q: %w", os.Args[4], err)
	}

	ctx := context.Background()
	cfg := config.Get()

	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	uowFactory := repository.NewUnitOfWorkFactory(db, func() interfaces.TransactionalEventPublisher {
		return infrastructure.NewNoopEventPublisher()
	})
	uow := uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	accounts := services.NewAccountService(
		uow.AccountRepository(),
		uow.TransactionRepository(),
		uow.EventPublisher(),
	)
	account, err := accounts.SetBalance(ctx, discordID, value, "command line adjustment")
	if err != nil {
		return fmt.Errorf("failed to set balance: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	log.WithFields(log.Fields{
		"guildID":   guildID,
		"discordID": discordID,
		"balance":   account.Balance,
	}).Info("Balance updated")
	return nil
}

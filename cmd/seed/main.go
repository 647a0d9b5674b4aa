// File: cmd/seed/main.go
// seed creates a demo terminal and an in-progress payment token so the
// hosted page can be exercised without a merchant integration.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strconv"

	"github.com/joho/godotenv"

	"saman-gateway-mock/internal/config"
	pg "saman-gateway-mock/internal/infra/db/postgres"
	"saman-gateway-mock/internal/infra/logging"
	"saman-gateway-mock/internal/infra/web"
	"saman-gateway-mock/internal/usecase"
)

func main() {
	ctx := context.Background()

	_ = godotenv.Load()

	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	name := flag.String("name", "Demo Shop", "terminal name")
	amount := flag.Int64("amount", 150000, "transaction amount in IRR")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, true)

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 2)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()
	if err := pg.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	terminalRepo := pg.NewTerminalRepo(pool)
	transactionRepo := pg.NewTransactionRepo(pool)
	txManager := pg.NewTxManager(pool)

	terminalUC := usecase.NewTerminalUseCase(terminalRepo)
	tokenUC := usecase.NewTokenUseCase(transactionRepo, terminalRepo, txManager, usecase.TokenLimits{
		MinExpiryMin:    cfg.Gateway.MinTokenExpiryMin,
		MaxExpiryMin:    cfg.Gateway.MaxTokenExpiryMin,
		ReceiptTTL:      cfg.Gateway.ReceiptTTL,
		VerifyDeadline:  cfg.Gateway.VerifyDeadline,
		ReverseDeadline: cfg.Gateway.ReverseDeadline,
		Website:         cfg.Gateway.Website,
	}, logger)

	terminal, err := terminalUC.Create(ctx, *name)
	if err != nil {
		log.Fatalf("create terminal: %v", err)
	}
	fmt.Printf("terminal %d (%s) user=%s pass=%s\n", terminal.ID, terminal.Name, terminal.Username, terminal.Password)

	trx, err := tokenUC.Issue(ctx, &usecase.IssueRequest{
		Action:      "token",
		TerminalID:  strconv.FormatUint(terminal.ID, 10),
		Amount:      *amount,
		ResNum:      "seed-order-1",
		RedirectURL: "https://merchant.example.com/callback",
	})
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}

	fmt.Printf("token: %s\n", trx.Token)
	fmt.Printf("payment page: http://localhost:%d%s?token=%s\n",
		cfg.Server.Port, web.BankPrefix+"/OnlinePG/SendToken", trx.Token)
}

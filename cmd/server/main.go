package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"pollmarket-backend/internal/api"
	"pollmarket-backend/internal/config"
	"pollmarket-backend/internal/engine"
	"pollmarket-backend/internal/identity"
	"pollmarket-backend/internal/ledger"
	"pollmarket-backend/internal/poll"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting Poll Market Backend...")

	// Load configuration
	cfg := config.Load()

	// Initialize the token ledger and poll registry
	tokens := ledger.New()
	polls := poll.NewManager()

	// Initialize the voting engine
	eng := engine.New(polls, tokens)
	log.Println("Voting engine initialized")

	// Initialize the admin signer (optional - only if a key is set)
	var adminSigner *identity.Signer
	if cfg.AdminPrivateKey != "" {
		signer, err := identity.NewSigner(cfg.AdminPrivateKey)
		if err != nil {
			log.Printf("Warning: Failed to initialize admin signer: %v", err)
		} else {
			adminSigner = signer
			log.Printf("Admin signer ready: %s", signer.AddressHex())
		}
	} else {
		log.Println("Admin signer disabled (no ADMIN_PRIVATE_KEY set)")
	}

	// Start the poll lifecycle manager
	ctx, cancel := context.WithCancel(context.Background())
	lifecycle := poll.NewLifecycleManager(polls, cfg.CloseInterval)
	lifecycle.Start(ctx)

	// Initialize API server
	server := api.NewServer(cfg, polls, eng, tokens, adminSigner)

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		cancel()
		lifecycle.Stop()
		os.Exit(0)
	}()

	// Start server
	if err := server.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

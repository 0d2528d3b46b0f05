package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"fislacko-go/cogs"
	"fislacko-go/games/fiasco"
	"fislacko-go/utils"

	"github.com/bwmarrin/discordgo"
)

var botStatus atomic.Value

func main() {
	botStatus.Store("starting")

	cfg, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	store, err := utils.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.Backend(), err)
	}
	defer store.Close()
	log.Printf("Using %s store", cfg.Backend())

	locks := utils.NewSessionLocks(utils.LockSweepInterval, utils.LockIdleAfter)
	defer locks.Close()

	dispatcher := fiasco.NewDispatcher(store, locks, fiasco.WithCommandName(cfg.CommandName))

	server := startHTTPServer(cfg, dispatcher)

	session := startDiscord(cfg, dispatcher)
	if session != nil {
		defer session.Close()
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Gracefully shutting down...")
	botStatus.Store("shutting_down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
}

// startDiscord connects the bot when a token is configured
func startDiscord(cfg utils.Config, dispatcher *fiasco.Dispatcher) *discordgo.Session {
	if cfg.BotToken == "" {
		log.Println("BOT_TOKEN not set - Discord bot will not connect")
		botStatus.Store("no_token")
		return nil
	}

	session, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		log.Printf("Failed to create Discord session: %v", err)
		botStatus.Store("error")
		return nil
	}

	session.Identify.Intents = discordgo.IntentsGuildMessages

	cog := cogs.NewFiascoCog(dispatcher, cfg.CommandName)

	session.AddHandler(func(s *discordgo.Session, event *discordgo.Ready) {
		log.Printf("Discord Bot logged in as %s (ID: %s)", event.User.Username, event.User.ID)
		botStatus.Store("online")

		if _, err := s.ApplicationCommandCreate(s.State.User.ID, "", cog.Command()); err != nil {
			log.Printf("Failed to register slash command %s: %v", cfg.CommandName, err)
		}
	})
	session.AddHandler(cog.HandleInteraction)

	if err := session.Open(); err != nil {
		log.Printf("Failed to open Discord connection: %v", err)
		botStatus.Store("connection_failed")
		return nil
	}

	log.Println("Bot is now running. Press CTRL+C to exit.")
	botStatus.Store("running")
	return session
}

func startHTTPServer(cfg utils.Config, dispatcher *fiasco.Dispatcher) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "Fiasco Bot Status: %s", botStatus.Load())
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","service":"fiasco-bot","bot_status":"%s"}`, botStatus.Load())
	})
	mux.Handle("/"+cfg.CommandName+"/", cogs.NewSlashHandler(dispatcher, cfg.VerificationToken))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("HTTP server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()
	return server
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"chatsync/internal/chat/repository"
	"chatsync/internal/chat/service"
	"chatsync/internal/config"
	"chatsync/internal/dbmongo"
	"chatsync/internal/dbmysql"
	"chatsync/internal/gateway"
	"chatsync/internal/identity"
	"chatsync/internal/media"
	"chatsync/internal/typing"
	"chatsync/internal/user"
)

func main() {
	log.Println("Starting ChatSync Gateway...")

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.LoadConfig()

	mongoClient, err := dbmongo.NewMongoConnection(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongoClient.Close(context.Background())

	// The ledger is best-effort: a missing MySQL only costs the upload index.
	var refs dbmysql.MediaRefRepository
	if db, err := dbmysql.NewMySQL(cfg); err != nil {
		log.Printf("MySQL unavailable, media ref ledger disabled: %v", err)
	} else {
		refs = dbmysql.NewMediaRefRepository(db)
	}

	messageRepo := repository.NewMessageRepository(mongoClient)
	typingChannel := typing.NewChannel(mongoClient)
	users := user.NewUserRepository(mongoClient)
	chatService := service.NewChatService(messageRepo, typingChannel)

	pipeline := media.NewPipeline(
		dbmongo.NewMediaStorage(mongoClient),
		refs,
		media.DeviceGeolocator{},
		media.DeviceContacts{},
		media.Options{
			MediaBaseURL: cfg.Server.MediaBaseURL,
			Retries:      cfg.Chat.UploadRetries,
			RetryDelay:   time.Duration(cfg.Chat.UploadRetryDelay) * time.Second,
			LocTimeout:   time.Duration(cfg.Chat.LocationTimeout) * time.Second,
			LocMaxAge:    time.Duration(cfg.Chat.LocationMaxAge) * time.Second,
		},
	)

	identityProvider := identity.NewJWTProvider([]byte(os.Getenv("JWT_SECRET")))

	server := gateway.NewServer(
		chatService,
		typingChannel,
		pipeline,
		identityProvider,
		users,
		cfg.Chat.TypingWritesPerSec,
	)

	httpServer := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: server.Router(),
	}

	go func() {
		log.Printf("Gateway running on port %s", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down Gateway...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	log.Println("Gateway stopped")
}

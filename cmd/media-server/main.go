package main

import (
	"context"
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"chatsync/internal/config"
	"chatsync/internal/dbmongo"
	"chatsync/internal/media"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.LoadConfig()

	mongoClient, err := dbmongo.NewMongoConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Close(context.Background())

	mediaServer := media.NewHTTPServer(dbmongo.NewMediaStorage(mongoClient))

	log.Printf("Media HTTP Server starting on port %s", cfg.Server.MediaServerPort)
	log.Printf("Serving files at: %s/{fileId}", cfg.Server.MediaBaseURL)

	if err := http.ListenAndServe(":"+cfg.Server.MediaServerPort, mediaServer); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

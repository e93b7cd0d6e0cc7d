//go:build wireinject
// +build wireinject

package di

import (
	"os"
	"time"

	"github.com/google/wire"

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

func provideJWTSecret() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

func provideMediaOptions(cfg *config.Config) media.Options {
	return media.Options{
		MediaBaseURL: cfg.Server.MediaBaseURL,
		Retries:      cfg.Chat.UploadRetries,
		RetryDelay:   time.Duration(cfg.Chat.UploadRetryDelay) * time.Second,
		LocTimeout:   time.Duration(cfg.Chat.LocationTimeout) * time.Second,
		LocMaxAge:    time.Duration(cfg.Chat.LocationMaxAge) * time.Second,
	}
}

func provideGeolocator() media.Geolocator {
	return media.DeviceGeolocator{}
}

func provideContacts() media.ContactsProvider {
	return media.DeviceContacts{}
}

func provideTypingRate(cfg *config.Config) int {
	return cfg.Chat.TypingWritesPerSec
}

// This is just a declaration — wire will generate the real body
func InitializeGateway() (*gateway.Server, error) {
	wire.Build(
		config.LoadConfig,
		dbmongo.NewMongoConnection,
		dbmysql.NewMySQL,
		dbmongo.NewMediaStorage,
		wire.Bind(new(media.BlobStore), new(*dbmongo.MediaStorage)),
		dbmysql.NewMediaRefRepository,
		repository.NewMessageRepository,
		typing.NewChannel,
		user.NewUserRepository,
		service.NewChatService,
		provideJWTSecret,
		identity.NewJWTProvider,
		provideMediaOptions,
		provideGeolocator,
		provideContacts,
		media.NewPipeline,
		provideTypingRate,
		gateway.NewServer,
	)
	return &gateway.Server{}, nil // dummy for compilation
}

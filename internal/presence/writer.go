package presence

import (
	"context"
	"log"
	"time"

	"chatsync/internal/user"
)

// repositoryWriter bridges the tracker onto the users collection. Presence
// is a best-effort write: errors are logged and dropped, and there is no
// retry or circuit breaker around it. Stale presence is an accepted risk.
type repositoryWriter struct {
	users user.UserRepository
}

func NewRepositoryWriter(users user.UserRepository) Writer {
	return &repositoryWriter{users: users}
}

func (w *repositoryWriter) WritePresence(userID string, online bool, lastSeen time.Time) {
	if userID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := w.users.SetPresence(ctx, userID, online, lastSeen); err != nil {
		log.Printf("presence write failed for %s: %v", userID, err)
	}
}

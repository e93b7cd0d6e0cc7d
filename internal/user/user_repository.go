package user

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"chatsync/internal/common"
	"chatsync/internal/dbmongo"
)

// UserRepository covers the profile records in the users collection,
// including the presence fields the tracker writes.
type UserRepository interface {
	Upsert(ctx context.Context, u *dbmongo.User) error
	ByID(ctx context.Context, uid string) (*dbmongo.User, error)

	// ListOthers returns every profile except the given user - the peer
	// roster the render layer shows.
	ListOthers(ctx context.Context, uid string) ([]*dbmongo.User, error)

	// SetPresence updates online/lastSeen for one user. The tracker only
	// ever calls this for the locally authenticated user.
	SetPresence(ctx context.Context, uid string, online bool, lastSeen time.Time) error
}

type userRepository struct {
	client *dbmongo.MongoClient
}

func NewUserRepository(client *dbmongo.MongoClient) UserRepository {
	return &userRepository{client: client}
}

func (r *userRepository) Upsert(ctx context.Context, u *dbmongo.User) error {
	filter := bson.M{"uid": u.UID}
	update := bson.M{"$set": u}
	opts := options.Update().SetUpsert(true)

	if _, err := r.client.Users().UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *userRepository) ByID(ctx context.Context, uid string) (*dbmongo.User, error) {
	var u dbmongo.User
	if err := r.client.Users().FindOne(ctx, bson.M{"uid": uid}).Decode(&u); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}
	return &u, nil
}

func (r *userRepository) ListOthers(ctx context.Context, uid string) ([]*dbmongo.User, error) {
	cursor, err := r.client.Users().Find(ctx, bson.M{"uid": bson.M{"$ne": uid}})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}
	defer cursor.Close(ctx)

	var users []*dbmongo.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}
	return users, nil
}

func (r *userRepository) SetPresence(ctx context.Context, uid string, online bool, lastSeen time.Time) error {
	filter := bson.M{"uid": uid}
	update := bson.M{"$set": bson.M{"online": online, "lastSeen": lastSeen}}

	if _, err := r.client.Users().UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}
	return nil
}

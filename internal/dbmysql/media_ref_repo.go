package dbmysql

import (
	"context"

	"gorm.io/gorm"
)

type MediaRefRepository interface {
	Create(ctx context.Context, ref *MediaRef) error
	ByConversation(ctx context.Context, conversationKey string) ([]*MediaRef, error)
}

type mediaRefRepo struct {
	db *gorm.DB
}

func NewMediaRefRepository(db *gorm.DB) MediaRefRepository {
	return &mediaRefRepo{db: db}
}

func (r *mediaRefRepo) Create(ctx context.Context, ref *MediaRef) error {
	return r.db.WithContext(ctx).Create(ref).Error
}

func (r *mediaRefRepo) ByConversation(ctx context.Context, conversationKey string) ([]*MediaRef, error) {
	var refs []*MediaRef
	err := r.db.WithContext(ctx).
		Where("conversation_key = ?", conversationKey).
		Order("uploaded_at DESC").
		Find(&refs).Error
	return refs, err
}

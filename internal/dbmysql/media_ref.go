package dbmysql

import (
	"time"
)

// MediaRef is one row in the upload ledger: every blob the attachment
// pipeline lands in GridFS gets an index entry here. The ledger is a
// best-effort enrichment - the message record alone is authoritative.
type MediaRef struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	FileID          string    `gorm:"size:24;uniqueIndex" json:"file_id"` // GridFS ObjectID
	Path            string    `gorm:"size:500" json:"path"`               // chats/{key}/... upload path
	ContentType     string    `gorm:"size:100" json:"content_type"`
	URL             string    `gorm:"size:500" json:"url"` // dereferenceable mediaRef
	Size            int64     `json:"size"`
	ConversationKey string    `gorm:"size:130;index" json:"conversation_key"`
	UploadedBy      string    `gorm:"size:64;index" json:"uploaded_by"`
	UploadedAt      time.Time `json:"uploaded_at"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (MediaRef) TableName() string {
	return "media_refs"
}

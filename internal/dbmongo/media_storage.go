package dbmongo

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MediaStorage is the GridFS-backed blob store behind the attachment
// pipeline. Paths are namespaced by conversation key
// (chats/{key}/media/{filename}), and a retry restarts the full upload -
// there is no partial-upload resume.
type MediaStorage struct {
	gridFS *gridfs.Bucket
}

func NewMediaStorage(mongoClient *MongoClient) *MediaStorage {
	return &MediaStorage{
		gridFS: mongoClient.GridFS,
	}
}

type StoredFile struct {
	ID              string    `json:"id"`       // GridFS ObjectID
	Path            string    `json:"path"`     // chats/{key}/... upload path
	Size            int64     `json:"size"`     // file size in bytes
	ContentType     string    `json:"content_type"`
	ConversationKey string    `json:"conversation_key"`
	UploadedBy      string    `json:"uploaded_by"`
	UploadedAt      time.Time `json:"uploaded_at"`
}

// Put uploads one blob at the given path. Same path twice means last write
// wins for readers resolving by path; each upload still gets its own file id.
func (ms *MediaStorage) Put(ctx context.Context, path, contentType, conversationKey, uploaderID string, content io.Reader) (*StoredFile, error) {
	metadata := bson.M{
		"content_type":     contentType,
		"conversation_key": conversationKey,
		"uploaded_by":      uploaderID,
		"uploaded_at":      time.Now(),
	}

	opts := options.GridFSUpload().SetMetadata(metadata)
	stream, err := ms.gridFS.OpenUploadStream(path, opts)
	if err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}
	defer stream.Close()

	size, err := io.Copy(stream, content)
	if err != nil {
		return nil, fmt.Errorf("file copy failed: %w", err)
	}

	return &StoredFile{
		ID:              stream.FileID.(primitive.ObjectID).Hex(),
		Path:            path,
		Size:            size,
		ContentType:     contentType,
		ConversationKey: conversationKey,
		UploadedBy:      uploaderID,
		UploadedAt:      time.Now(),
	}, nil
}

// Get opens a download stream for a previously uploaded blob.
func (ms *MediaStorage) Get(ctx context.Context, fileID string) (io.Reader, *StoredFile, error) {
	objectID, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid file ID: %w", err)
	}

	stream, err := ms.gridFS.OpenDownloadStream(objectID)
	if err != nil {
		return nil, nil, fmt.Errorf("download failed: %w", err)
	}

	fileInfo := stream.GetFile()
	var metadata bson.M
	if fileInfo.Metadata != nil {
		bson.Unmarshal(fileInfo.Metadata, &metadata)
	}

	stored := &StoredFile{
		ID:              fileID,
		Path:            fileInfo.Name,
		Size:            fileInfo.Length,
		ContentType:     getStringFromMap(metadata, "content_type"),
		ConversationKey: getStringFromMap(metadata, "conversation_key"),
		UploadedBy:      getStringFromMap(metadata, "uploaded_by"),
		UploadedAt:      fileInfo.UploadDate,
	}

	return stream, stored, nil
}

func (ms *MediaStorage) Delete(ctx context.Context, fileID string) error {
	objectID, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return fmt.Errorf("invalid file ID: %w", err)
	}
	return ms.gridFS.Delete(objectID)
}

func getStringFromMap(m bson.M, key string) string {
	if m == nil {
		return ""
	}
	if val, ok := m[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

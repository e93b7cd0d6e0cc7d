// Package media converts a local resource handle into a durable,
// retrievable mediaRef for the message composer.
package media

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"chatsync/internal/common"
	"chatsync/internal/dbmongo"
	"chatsync/internal/dbmysql"
)

// BlobStore is the path-addressed upload target. Each retry restarts the
// full upload - no partial-upload resume is assumed.
type BlobStore interface {
	Put(ctx context.Context, path, contentType, conversationKey, uploaderID string, content io.Reader) (*dbmongo.StoredFile, error)
}

// Request carries one picker result into the pipeline. An empty handle
// (LocalPath for uploads, Contact for contact shares) means the user
// dismissed the picker before the pipeline started.
type Request struct {
	Type            common.MessageType
	ConversationKey string
	UploaderID      string
	LocalPath       string
	Contact         *Contact
}

type Pipeline struct {
	blobs        BlobStore
	refs         dbmysql.MediaRefRepository // upload ledger, best-effort
	geo          Geolocator
	contacts     ContactsProvider
	mediaBaseURL string

	retries    int
	retryDelay time.Duration
	locTimeout time.Duration
	locMaxAge  time.Duration

	sleep func(time.Duration) // swapped out in tests
}

type Options struct {
	MediaBaseURL string
	Retries      int           // attempts per upload, default 3
	RetryDelay   time.Duration // fixed backoff, no jitter, default 2s
	LocTimeout   time.Duration // one-shot fix timeout, default 15s
	LocMaxAge    time.Duration // cached fix tolerance, default 10s
}

func NewPipeline(blobs BlobStore, refs dbmysql.MediaRefRepository, geo Geolocator, contacts ContactsProvider, opts Options) *Pipeline {
	if opts.Retries <= 0 {
		opts.Retries = 3
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 2 * time.Second
	}
	if opts.LocTimeout <= 0 {
		opts.LocTimeout = 15 * time.Second
	}
	if opts.LocMaxAge <= 0 {
		opts.LocMaxAge = 10 * time.Second
	}
	return &Pipeline{
		blobs:        blobs,
		refs:         refs,
		geo:          geo,
		contacts:     contacts,
		mediaBaseURL: opts.MediaBaseURL,
		retries:      opts.Retries,
		retryDelay:   opts.RetryDelay,
		locTimeout:   opts.LocTimeout,
		locMaxAge:    opts.LocMaxAge,
		sleep:        time.Sleep,
	}
}

// Resolve turns the request into a ready-to-persist mediaRef. It never
// writes the message record itself - that is the composer's job.
func (p *Pipeline) Resolve(ctx context.Context, req Request) (string, error) {
	switch req.Type {
	case common.MessageTypePhoto, common.MessageTypeVideo:
		if req.LocalPath == "" {
			return "", common.ErrUserCancelled
		}
		path := fmt.Sprintf("chats/%s/media/%s", req.ConversationKey, filepath.Base(req.LocalPath))
		return p.uploadWithRetry(ctx, req, req.LocalPath, path)

	case common.MessageTypeFile:
		if req.LocalPath == "" {
			return "", common.ErrUserCancelled
		}
		// Content-provider style handles are not always directly
		// uploadable, so files go through a staging copy first.
		staged, err := p.stageFile(req.LocalPath)
		if err != nil {
			return "", errors.Wrap(err, "staging file")
		}
		defer os.Remove(staged)

		path := fmt.Sprintf("chats/%s/files/%s", req.ConversationKey, filepath.Base(req.LocalPath))
		return p.uploadWithRetry(ctx, req, staged, path)

	case common.MessageTypeLocation:
		return p.resolveLocation(ctx)

	case common.MessageTypeContact:
		return p.resolveContact(ctx, req.Contact)

	default:
		return "", errors.Errorf("type %q does not go through the attachment pipeline", req.Type)
	}
}

// uploadWithRetry pushes the local file into the blob store: up to
// p.retries attempts with a fixed delay between them. The exhausted budget
// surfaces as *common.UploadError carrying the last cause.
func (p *Pipeline) uploadWithRetry(ctx context.Context, req Request, localPath, storePath string) (string, error) {
	contentType := detectContentType(localPath)

	var lastErr error
	for attempt := 1; attempt <= p.retries; attempt++ {
		stored, err := p.uploadOnce(ctx, req, localPath, storePath, contentType)
		if err == nil {
			url := fmt.Sprintf("%s/%s", p.mediaBaseURL, stored.ID)
			p.recordRef(ctx, req, stored, url)
			return url, nil
		}

		lastErr = err
		log.Printf("upload attempt %d/%d failed for %s: %v", attempt, p.retries, storePath, err)
		if attempt < p.retries {
			p.sleep(p.retryDelay)
		}
	}

	return "", &common.UploadError{Attempts: p.retries, Last: lastErr}
}

func (p *Pipeline) uploadOnce(ctx context.Context, req Request, localPath, storePath, contentType string) (*dbmongo.StoredFile, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return nil, errors.Wrap(err, "opening local file")
	}
	defer f.Close()

	return p.blobs.Put(ctx, storePath, contentType, req.ConversationKey, req.UploaderID, f)
}

func (p *Pipeline) resolveLocation(ctx context.Context) (string, error) {
	fixCtx, cancel := context.WithTimeout(ctx, p.locTimeout)
	defer cancel()

	pos, err := p.geo.CurrentPosition(fixCtx, FixOptions{
		HighAccuracy: false,
		Timeout:      p.locTimeout,
		MaximumAge:   p.locMaxAge,
	})
	if err != nil {
		return "", errors.Wrap(err, "geolocation fix")
	}

	return fmt.Sprintf("https://maps.google.com/?q=%s,%s",
		formatCoordinate(pos.Latitude),
		formatCoordinate(pos.Longitude),
	), nil
}

func (p *Pipeline) resolveContact(ctx context.Context, contact *Contact) (string, error) {
	granted, err := p.contacts.CheckPermission(ctx)
	if err != nil {
		return "", errors.Wrap(err, "contacts permission check")
	}
	if !granted {
		return "", common.ErrPermissionDenied
	}
	if contact == nil {
		return "", common.ErrUserCancelled
	}

	return fmt.Sprintf("Name: %s %s, Phone: %s",
		contact.GivenName, contact.FamilyName, contact.PhoneNumber), nil
}

// stageFile copies the source into a temp location so the upload reads from
// a plain filesystem path. Collisions are avoided per staging copy; the
// store path itself stays last-write-wins.
func (p *Pipeline) stageFile(src string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	staged := filepath.Join(os.TempDir(), uuid.NewString()+"-"+filepath.Base(src))
	out, err := os.Create(staged)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		os.Remove(staged)
		return "", err
	}
	return staged, nil
}

// recordRef indexes the upload in the media_refs ledger. Ledger failure
// never fails the pipeline.
func (p *Pipeline) recordRef(ctx context.Context, req Request, stored *dbmongo.StoredFile, url string) {
	if p.refs == nil {
		return
	}

	ref := &dbmysql.MediaRef{
		FileID:          stored.ID,
		Path:            stored.Path,
		ContentType:     stored.ContentType,
		URL:             url,
		Size:            stored.Size,
		ConversationKey: req.ConversationKey,
		UploadedBy:      req.UploaderID,
		UploadedAt:      stored.UploadedAt,
	}
	if err := p.refs.Create(ctx, ref); err != nil {
		log.Printf("media ref ledger write failed for %s: %v", stored.ID, err)
	}
}

func detectContentType(path string) string {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "application/octet-stream"
	}
	return mtype.String()
}

// formatCoordinate trims trailing zeros so 37.0 renders as 37, matching the
// maps query format messages are rendered with.
func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

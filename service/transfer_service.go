package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"filedrop-backend/idgen"
	"filedrop-backend/models"
	"filedrop-backend/qrcode"
	"filedrop-backend/storage"
)

// maxInsertAttempts bounds id regeneration when inserts keep colliding
const maxInsertAttempts = 5

// DefaultRetentionWindow is how long an unclaimed file stays downloadable
const DefaultRetentionWindow = time.Hour

// RecordStore is the persistence contract the transfer service needs from
// the file repository
type RecordStore interface {
	Create(ctx context.Context, file *models.FileRecord) error
	GetByID(ctx context.Context, id string) (*models.FileRecord, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) ([]*models.FileRecord, error)
}

// TransferService orchestrates the file lifecycle: mint an id, bind it to a
// blob, serve the blob at most once, and reclaim whatever expires first.
// It holds no state of its own between calls; all coordination lives in the
// stores' atomicity guarantees.
type TransferService struct {
	records   RecordStore
	blobs     storage.Storage
	generator idgen.Generator
	retention time.Duration
	render    func(id string) (string, error)
	now       func() time.Time
}

// TransferServiceOption is a functional option for TransferService
type TransferServiceOption func(*TransferService)

// WithRecordStore sets the record store
func WithRecordStore(records RecordStore) TransferServiceOption {
	return func(s *TransferService) {
		s.records = records
	}
}

// WithBlobStore sets the blob store
func WithBlobStore(blobs storage.Storage) TransferServiceOption {
	return func(s *TransferService) {
		s.blobs = blobs
	}
}

// WithGenerator sets the id generator
func WithGenerator(generator idgen.Generator) TransferServiceOption {
	return func(s *TransferService) {
		s.generator = generator
	}
}

// WithRetentionWindow sets how long uploads stay downloadable
func WithRetentionWindow(d time.Duration) TransferServiceOption {
	return func(s *TransferService) {
		s.retention = d
	}
}

// WithCodeRenderer overrides the QR renderer
func WithCodeRenderer(render func(id string) (string, error)) TransferServiceOption {
	return func(s *TransferService) {
		s.render = render
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) TransferServiceOption {
	return func(s *TransferService) {
		s.now = now
	}
}

// NewTransferService creates a new transfer service
func NewTransferService(opts ...TransferServiceOption) *TransferService {
	s := &TransferService{
		retention: DefaultRetentionWindow,
		render:    qrcode.DataURL,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.generator == nil {
		s.generator = idgen.NewNumeric()
	}
	return s
}

// StoreRequest represents an upload
type StoreRequest struct {
	Filename string
	Content  io.Reader
}

// StoreResult represents a completed upload
type StoreResult struct {
	ID     string
	QRCode string
}

// Store writes the blob, then binds a freshly generated id to it. The blob
// goes first: a crash between the two leaves an orphan blob (harmless
// garbage) rather than a record promising content that does not exist.
// Identifier collisions are retried with a new id against the same blob.
func (s *TransferService) Store(ctx context.Context, req StoreRequest) (*StoreResult, error) {
	if s.records == nil {
		return nil, errors.New("record store not set")
	}
	if s.blobs == nil {
		return nil, errors.New("blob store not set")
	}

	storagePath, err := s.blobs.Upload(ctx, req.Filename, req.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to store file content: %w", err)
	}

	file := &models.FileRecord{
		Filename:    req.Filename,
		StoragePath: storagePath,
		ExpiresAt:   s.now().Add(s.retention),
	}

	inserted := false
	for attempt := 0; attempt < maxInsertAttempts; attempt++ {
		file.ID = s.generator.Generate()

		err = s.records.Create(ctx, file)
		if err == nil {
			inserted = true
			break
		}
		if errors.Is(err, models.ErrConflict) {
			continue
		}
		s.discardBlob(ctx, storagePath)
		return nil, fmt.Errorf("failed to save file record: %w", err)
	}

	if !inserted {
		s.discardBlob(ctx, storagePath)
		return nil, models.ErrRetriesExhausted
	}

	qr, err := s.render(file.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to render code for %s: %w", file.ID, err)
	}

	return &StoreResult{ID: file.ID, QRCode: qr}, nil
}

// ConsumeResult represents a delivered download
type ConsumeResult struct {
	Content  []byte
	Filename string
}

// Consume serves a file exactly once. The content is buffered before
// anything is deleted, then the blob is removed best-effort and the record
// delete acts as the commit point: when two callers race, the one whose
// delete claims no row loses and reports not-found even with the bytes in
// hand.
//
// Expiry is deliberately not checked here. A download arriving after
// expires_at but before the next sweep tick still succeeds; the staleness
// window is at most one sweep interval.
func (s *TransferService) Consume(ctx context.Context, id string) (*ConsumeResult, error) {
	if s.records == nil {
		return nil, errors.New("record store not set")
	}
	if s.blobs == nil {
		return nil, errors.New("blob store not set")
	}

	file, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	reader, err := s.blobs.Download(ctx, file.StoragePath)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// Record with no blob behind it: a crash window or manual
			// cleanup got here first. Surfaced as a plain not-found.
			log.Printf("Missing blob %s for record %s", file.StoragePath, file.ID)
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}

	content, err := io.ReadAll(reader)
	reader.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}

	s.discardBlob(ctx, file.StoragePath)

	deleted, err := s.records.DeleteByID(ctx, file.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete file record: %w", err)
	}
	if !deleted {
		// A concurrent download claimed the record first
		return nil, models.ErrNotFound
	}

	return &ConsumeResult{Content: content, Filename: file.Filename}, nil
}

// Purge reclaims every record whose expiry has passed, deleting blobs
// best-effort, and returns how many records were removed. One failing blob
// delete never aborts the rest of the batch.
func (s *TransferService) Purge(ctx context.Context, now time.Time) (int, error) {
	if s.records == nil {
		return 0, errors.New("record store not set")
	}
	if s.blobs == nil {
		return 0, errors.New("blob store not set")
	}

	expired, err := s.records.DeleteExpired(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired records: %w", err)
	}

	for _, file := range expired {
		s.discardBlob(ctx, file.StoragePath)
	}

	return len(expired), nil
}

// discardBlob deletes a blob best-effort. The records are the source of
// truth; a leaked blob is garbage, never a correctness problem.
func (s *TransferService) discardBlob(ctx context.Context, storagePath string) {
	if err := s.blobs.Delete(ctx, storagePath); err != nil {
		log.Printf("Warning: failed to delete blob %s: %v", storagePath, err)
	}
}

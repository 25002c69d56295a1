package printing

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// StoreResult contains the result of storing a label PDF
type StoreResult struct {
	// Path is the absolute file path of the stored PDF
	Path string
	// URL is the accessible URL for the PDF
	URL string
	// Size is the file size in bytes
	Size int64
}

// LabelStorage defines the interface for storing and retrieving label PDFs
type LabelStorage interface {
	// Store saves a label PDF and returns its path and URL
	Store(ctx context.Context, shipmentID int64, pdf []byte) (*StoreResult, error)
	// Get retrieves a stored label. Returns os.ErrNotExist when absent.
	Get(ctx context.Context, shipmentID int64) ([]byte, error)
	// URL returns the accessible URL for a shipment's label
	URL(shipmentID int64) string
}

// FileSystemStorageConfig contains configuration for file system storage
type FileSystemStorageConfig struct {
	// BasePath is the root directory for label storage
	BasePath string
	// BaseURL is the URL prefix labels are served under,
	// e.g. https://ship.example.com
	BaseURL string
	// Logger for operations
	Logger *zap.Logger
}

// FileSystemStorage stores label PDFs on the local file system, one file
// per shipment
type FileSystemStorage struct {
	config *FileSystemStorageConfig
	logger *zap.Logger
}

// NewFileSystemStorage creates a new file system based label storage
func NewFileSystemStorage(config *FileSystemStorageConfig) (*FileSystemStorage, error) {
	if config == nil {
		config = &FileSystemStorageConfig{}
	}
	if config.BasePath == "" {
		config.BasePath = "/data/labels"
	}

	if err := os.MkdirAll(config.BasePath, 0o755); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed,
			fmt.Sprintf("failed to create storage directory: %s", config.BasePath), err)
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &FileSystemStorage{
		config: config,
		logger: logger,
	}, nil
}

// Store writes the PDF to {base}/shipment_label_{id}.pdf
func (s *FileSystemStorage) Store(ctx context.Context, shipmentID int64, pdf []byte) (*StoreResult, error) {
	select {
	case <-ctx.Done():
		return nil, NewRenderError(ErrCodeStorageFailed, "operation cancelled", ctx.Err())
	default:
	}

	if len(pdf) == 0 {
		return nil, NewRenderError(ErrCodeStorageFailed, "PDF data is empty", nil)
	}

	path := s.path(shipmentID)
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed,
			fmt.Sprintf("failed to write label file: %s", path), err)
	}

	s.logger.Debug("label stored",
		zap.Int64("shipment_id", shipmentID),
		zap.String("path", path),
		zap.Int("bytes", len(pdf)))

	return &StoreResult{
		Path: path,
		URL:  s.URL(shipmentID),
		Size: int64(len(pdf)),
	}, nil
}

// Get reads a stored label PDF
func (s *FileSystemStorage) Get(_ context.Context, shipmentID int64) ([]byte, error) {
	data, err := os.ReadFile(s.path(shipmentID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, os.ErrNotExist
		}
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to read label file", err)
	}
	return data, nil
}

// URL returns the public URL the label is served under
func (s *FileSystemStorage) URL(shipmentID int64) string {
	return fmt.Sprintf("%s/api/v1/shipments/%d/label", s.config.BaseURL, shipmentID)
}

func (s *FileSystemStorage) path(shipmentID int64) string {
	return filepath.Join(s.config.BasePath, fmt.Sprintf("shipment_label_%d.pdf", shipmentID))
}

// Ensure FileSystemStorage implements LabelStorage
var _ LabelStorage = (*FileSystemStorage)(nil)

package storage

import (
	"context"
	"io"
)

// StorageService stores booking artefacts such as completion proofs and QR
// code images.
type StorageService interface {
	// UploadFile uploads a local file into destFolder and returns its public URL.
	UploadFile(ctx context.Context, localFilePath, destFolder string) (string, error)
	// UploadReader uploads the contents of r under name into destFolder and
	// returns its public URL.
	UploadReader(ctx context.Context, r io.Reader, name, destFolder string) (string, error)
	DeleteFile(ctx context.Context, publicID string) error
}

const (
	ProofFolder = "bookings/proofs"
	QRFolder    = "bookings/qr"
)

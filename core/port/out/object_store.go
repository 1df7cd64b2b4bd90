package out

import (
	"context"

	"github.com/jpmarichal/ccmwf-go/core/domain"
)

// ObjectStore is the attachment storage outbound port.
type ObjectStore interface {
	// EnsureFolder searches by exact name under parentID, creating it
	// if absent. Concurrent calls with the same (parentID, name) must
	// converge to the same id.
	EnsureFolder(ctx context.Context, parentID, name string) (folderID string, err error)

	// Upload resolves a collision-free name, uploads the blob, and
	// returns stable identifiers. Errors carry "drive_upload_failed";
	// the caller reports "drive_folder_missing" when EnsureFolder fails
	// and "drive_attachment_without_data" for empty attachments, which
	// it never passes to Upload.
	Upload(ctx context.Context, folderID, name string, bytes []byte, contentType string) (domain.StoredFile, error)

	// ListFolderFiles lists files under folderID in provider order;
	// callers sort client-side for deterministic resumption.
	ListFolderFiles(ctx context.Context, folderID string) ([]FolderEntry, error)

	// DownloadFile streams a file's bytes by id.
	DownloadFile(ctx context.Context, id string) ([]byte, error)
}

// FolderEntry is one file as listed by ListFolderFiles.
type FolderEntry struct {
	ID   string
	Name string
	Size int64
}

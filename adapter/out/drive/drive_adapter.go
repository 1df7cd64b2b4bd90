// Package drive implements attachment storage against Google Drive,
// folder-per-generation-date, grounded on the same OAuth2 + circuit
// breaker + retry idiom as the Gmail adapter.
package drive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drivev3 "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/jpmarichal/ccmwf-go/core/domain"
	"github.com/jpmarichal/ccmwf-go/core/port/out"
	"github.com/jpmarichal/ccmwf-go/core/service/normalize"
	"github.com/jpmarichal/ccmwf-go/pkg/apperr"
	"github.com/jpmarichal/ccmwf-go/pkg/retry"
)

type Config struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// Adapter satisfies out.ObjectStore.
type Adapter struct {
	oauthCfg *oauth2.Config
	token    *oauth2.Token
	cb       *gobreaker.CircuitBreaker
	folderMu sync.Mutex
}

func NewAdapter(cfg Config) *Adapter {
	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scopes:       []string{drivev3.DriveFileScope},
		Endpoint:     google.Endpoint,
	}

	cbSettings := gobreaker.Settings{
		Name:        "drive-api",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures > 5 ||
				(counts.Requests >= 10 && failureRatio >= 0.6)
		},
	}

	return &Adapter{
		oauthCfg: oauthCfg,
		token:    &oauth2.Token{RefreshToken: cfg.RefreshToken},
		cb:       gobreaker.NewCircuitBreaker(cbSettings),
	}
}

func (a *Adapter) service(ctx context.Context) (*drivev3.Service, error) {
	client := a.oauthCfg.Client(ctx, a.token)
	return drivev3.NewService(ctx, option.WithHTTPClient(client))
}

// EnsureFolder finds or creates the child folder named name under
// parentID, idempotently. Calls on one Adapter are serialized, so
// concurrent calls in this process create the folder at most once.
func (a *Adapter) EnsureFolder(ctx context.Context, parentID, name string) (string, error) {
	a.folderMu.Lock()
	defer a.folderMu.Unlock()

	var folderID string
	err := retry.Do(ctx, retry.Default(), func(ctx context.Context) error {
		svc, err := a.service(ctx)
		if err != nil {
			return err
		}

		query := fmt.Sprintf("'%s' in parents and name = '%s' and mimeType = 'application/vnd.google-apps.folder' and trashed = false", parentID, escapeQuery(name))
		resp, err := svc.Files.List().Q(query).Fields("files(id,name)").Do()
		if err != nil {
			return err
		}
		if len(resp.Files) > 0 {
			folderID = resp.Files[0].Id
			return nil
		}

		folder, err := svc.Files.Create(&drivev3.File{
			Name:     name,
			Parents:  []string{parentID},
			MimeType: "application/vnd.google-apps.folder",
		}).Fields("id").Do()
		if err != nil {
			return err
		}
		folderID = folder.Id
		return nil
	})
	if err != nil {
		return "", apperr.Wrap(err, apperr.CodeDriveFolderMissing, "failed to ensure generation folder", 502)
	}
	return folderID, nil
}

func (a *Adapter) Upload(ctx context.Context, folderID, name string, content []byte, contentType string) (domain.StoredFile, error) {
	entries, err := a.ListFolderFiles(ctx, folderID)
	if err != nil {
		return domain.StoredFile{}, apperr.Wrap(err, apperr.CodeDriveUploadFailed, "failed to list folder before upload", 502)
	}
	taken := make(map[string]bool, len(entries))
	for _, e := range entries {
		taken[e.Name] = true
	}
	name = normalize.ResolveCollision(name, func(n string) bool { return taken[n] })

	var stored domain.StoredFile
	_, err = a.cb.Execute(func() (any, error) {
		svc, err := a.service(ctx)
		if err != nil {
			return nil, err
		}

		file, err := svc.Files.Create(&drivev3.File{
			Name:     name,
			Parents:  []string{folderID},
			MimeType: contentType,
		}).Media(bytes.NewReader(content)).
			Fields("id,name,webViewLink,webContentLink").Do()
		if err != nil {
			return nil, err
		}

		stored = domain.StoredFile{
			ID:           file.Id,
			Name:         file.Name,
			FolderID:     folderID,
			ViewLink:     file.WebViewLink,
			DownloadLink: file.WebContentLink,
		}
		return nil, nil
	})
	if err != nil {
		return domain.StoredFile{}, apperr.Wrap(err, apperr.CodeDriveUploadFailed, "failed to upload attachment", 502)
	}
	return stored, nil
}

func (a *Adapter) ListFolderFiles(ctx context.Context, folderID string) ([]out.FolderEntry, error) {
	svc, err := a.service(ctx)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeDriveListingFailed, "failed to list generation folder", 502)
	}

	var entries []out.FolderEntry
	query := fmt.Sprintf("'%s' in parents and trashed = false", folderID)
	call := svc.Files.List().Q(query).Fields("nextPageToken, files(id,name,size)")

	var pageToken string
	for {
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, apperr.Wrap(err, apperr.CodeDriveListingFailed, "failed to list generation folder", 502)
		}
		for _, f := range resp.Files {
			entries = append(entries, out.FolderEntry{ID: f.Id, Name: f.Name, Size: f.Size})
		}
		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}
	return entries, nil
}

func (a *Adapter) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	svc, err := a.service(ctx)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeDriveDownloadFailed, "failed to download file", 502)
	}

	resp, err := svc.Files.Get(fileID).Download()
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeDriveDownloadFailed, "failed to download file", 502)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeDriveDownloadFailed, "failed to read file body", 502)
	}
	return data, nil
}

func escapeQuery(s string) string {
	escaped := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			escaped = append(escaped, '\\')
		}
		escaped = append(escaped, s[i])
	}
	return string(escaped)
}

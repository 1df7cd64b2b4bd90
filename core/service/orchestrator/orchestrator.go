// Package orchestrator sequences mailbox listing, validation, and
// attachment upload per message, and delegates to the sync engine per
// sync request, exposing the three operations the HTTP surface
// triggers.
package orchestrator

import (
	"context"
	"strings"
	"time"

	"github.com/jpmarichal/ccmwf-go/core/domain"
	"github.com/jpmarichal/ccmwf-go/core/port/out"
	"github.com/jpmarichal/ccmwf-go/core/service/htmlparse"
	"github.com/jpmarichal/ccmwf-go/core/service/normalize"
	"github.com/jpmarichal/ccmwf-go/core/service/sync"
	"github.com/jpmarichal/ccmwf-go/pkg/apperr"
	"github.com/jpmarichal/ccmwf-go/pkg/logger"
	"github.com/jpmarichal/ccmwf-go/pkg/snowflake"
)

// Orchestrator wires the mail gateway, object store and sync engine
// behind the three core operations. Constructed at process init with
// explicit dependencies; no ambient singletons.
type Orchestrator struct {
	Mail                out.MailGateway
	Store               out.ObjectStore
	Sync                *sync.Engine
	SubjectPattern      string
	AttachmentsFolderID string
}

func New(mail out.MailGateway, store out.ObjectStore, syncEngine *sync.Engine, subjectPattern, attachmentsFolderID string) *Orchestrator {
	return &Orchestrator{
		Mail:                mail,
		Store:               store,
		Sync:                syncEngine,
		SubjectPattern:      subjectPattern,
		AttachmentsFolderID: attachmentsFolderID,
	}
}

// ProcessIncoming lists unprocessed mailbox messages and, for every
// message found, validates and uploads its attachments, aggregating
// per-message outcomes. A failure on one message does not stop
// processing of siblings.
func (o *Orchestrator) ProcessIncoming(ctx context.Context) (domain.CycleReport, error) {
	report := domain.CycleReport{CorrelationID: snowflake.NextIDString(), StartTime: time.Now().UTC()}

	refs, err := o.Mail.ListUnprocessed(ctx, o.SubjectPattern)
	if err != nil {
		report.EndTime = time.Now().UTC()
		report.DurationSeconds = report.EndTime.Sub(report.StartTime).Seconds()
		return report, apperr.MailFetchFailed(err)
	}

	for _, ref := range refs {
		result := o.processOne(ctx, ref)
		report.Details = append(report.Details, result)
		report.Processed++
		if !result.Success {
			report.Errors++
		}
	}

	report.EndTime = time.Now().UTC()
	report.DurationSeconds = report.EndTime.Sub(report.StartTime).Seconds()
	return report, nil
}

func (o *Orchestrator) processOne(ctx context.Context, ref domain.MessageRef) domain.ProcessingResult {
	msg, err := o.Mail.Fetch(ctx, ref)
	if err != nil {
		return domain.ProcessingResult{
			Success:          false,
			MessageID:        ref.ID,
			ValidationErrors: []string{apperr.CodeMailFetchFailed},
		}
	}

	result := domain.ProcessingResult{
		MessageID:        msg.ID,
		Subject:          msg.Subject,
		AttachmentsCount: len(msg.Attachments),
	}

	if !normalize.MatchesSubject(msg.Subject, o.SubjectPattern) {
		result.ValidationErrors = append(result.ValidationErrors, apperr.CodeSubjectPatternMismatch)
		return result
	}

	if len(msg.Attachments) == 0 {
		result.ValidationErrors = append(result.ValidationErrors, apperr.CodeAttachmentsMissing)
		return result
	}

	parsed := htmlparse.Parse(msg.BodyHTML)
	for _, e := range parsed.Errors {
		result.TableErrors = append(result.TableErrors, e)
	}
	result.ParsedTable = &parsed.Table

	gen, ok := htmlparse.DeriveGenerationDate(msg.BodyPlain, msg.BodyHTML, parsed.Table.ExtraTexts)
	if !ok {
		result.ValidationErrors = append(result.ValidationErrors, apperr.CodeFechaGeneracionMissing)
		return result
	}
	result.GenerationDate = gen

	folderID, err := o.Store.EnsureFolder(ctx, o.AttachmentsFolderID, string(gen))
	if err != nil {
		result.UploadErrors = append(result.UploadErrors, domain.UploadError{Stage: "ensure_folder", Code: apperr.CodeDriveFolderMissing})
		return result
	}
	result.FolderID = folderID

	for _, att := range msg.Attachments {
		if len(att.Bytes) == 0 {
			result.UploadErrors = append(result.UploadErrors, domain.UploadError{Stage: "upload", Code: apperr.CodeDriveAttachmentNoData})
			continue
		}
		name := attachmentName(gen, msg.Subject, o.SubjectPattern, att.OriginalName)
		stored, err := o.Store.Upload(ctx, folderID, name, att.Bytes, att.ContentType)
		if err != nil {
			result.UploadErrors = append(result.UploadErrors, domain.UploadError{Stage: "upload", Code: apperr.CodeDriveUploadFailed})
			continue
		}
		result.UploadedFiles = append(result.UploadedFiles, stored)
	}

	if len(result.UploadErrors) > 0 {
		return result
	}

	if err := o.Mail.MarkProcessed(ctx, ref); err != nil {
		logger.WithError(err).Warn("failed to mark message processed")
		result.UploadErrors = append(result.UploadErrors, domain.UploadError{Stage: "mark_processed", Code: apperr.CodeMailFetchFailed})
		return result
	}

	result.Success = len(result.ValidationErrors) == 0 && len(result.UploadErrors) == 0
	return result
}

// attachmentName applies the <generation_date>_<district>_<sanitized-
// original> rule. The district is inferred from whatever trails the
// subject prefix (e.g. "... Distrito Norte"); when the trailing text
// is empty or matches the prefix verbatim no district can be inferred
// and the name falls back to <generation_date>_<sanitized-original>.
func attachmentName(gen domain.GenerationDate, subject, subjectPrefix, original string) string {
	sanitized := normalize.SanitizeFilename(original)
	if district := inferDistrict(subject, subjectPrefix); district != "" {
		return string(gen) + "_" + district + "_" + sanitized
	}
	return string(gen) + "_" + sanitized
}

// inferDistrict extracts and sanitizes whatever trails the matched
// subject prefix, treating it as the district token. Returns "" when
// nothing trails the prefix.
func inferDistrict(subject, subjectPrefix string) string {
	trailing := strings.TrimSpace(strings.TrimPrefix(subject, subjectPrefix))
	trailing = strings.Trim(trailing, "-:_ ")
	if trailing == "" {
		return ""
	}
	return normalize.SanitizeFilename(trailing)
}

func (o *Orchestrator) SyncGeneration(ctx context.Context, gen domain.GenerationDate, folderID string, force bool) (domain.SyncReport, error) {
	if o.Sync == nil {
		return domain.SyncReport{}, apperr.New("sync_not_configured", "record storage is not configured", 503)
	}
	return o.Sync.Run(ctx, gen, folderID, force)
}

func (o *Orchestrator) SearchMessages(ctx context.Context, query string) ([]domain.IncomingMessage, error) {
	return o.Mail.Search(ctx, query)
}

package mail

import (
	"encoding/base64"
	"time"

	gmailv1 "google.golang.org/api/gmail/v1"

	"github.com/jpmarichal/ccmwf-go/core/domain"
)

// pendingAttachment tracks a Gmail attachment id alongside the blob
// placeholder until its bytes are fetched in a second call.
type pendingAttachment struct {
	AttachmentID string
	Blob         domain.AttachmentBlob
}

func toIncomingMessage(id string, raw *gmailv1.Message) (domain.IncomingMessage, []pendingAttachment) {
	msg := domain.IncomingMessage{
		ID:         id,
		ReceivedAt: time.UnixMilli(raw.InternalDate),
	}

	for _, h := range raw.Payload.Headers {
		switch h.Name {
		case "Subject":
			msg.Subject = h.Value
		case "From":
			msg.Sender = h.Value
		}
	}

	var pending []pendingAttachment
	collectParts(raw.Payload, &msg, &pending)
	return msg, pending
}

func collectParts(part *gmailv1.MessagePart, msg *domain.IncomingMessage, pending *[]pendingAttachment) {
	if part == nil {
		return
	}

	if part.Filename != "" && part.Body != nil && part.Body.AttachmentId != "" {
		*pending = append(*pending, pendingAttachment{
			AttachmentID: part.Body.AttachmentId,
			Blob: domain.AttachmentBlob{
				OriginalName: part.Filename,
				ContentType:  part.MimeType,
				Size:         part.Body.Size,
			},
		})
	} else if part.Body != nil && part.Body.Data != "" {
		data := decodeBase64URL(part.Body.Data)
		switch part.MimeType {
		case "text/plain":
			msg.BodyPlain += string(data)
		case "text/html":
			msg.BodyHTML += string(data)
		}
	}

	for _, child := range part.Parts {
		collectParts(child, msg, pending)
	}
}

func decodeBase64URL(s string) []byte {
	data, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(s)
	if err != nil {
		return nil
	}
	return data
}

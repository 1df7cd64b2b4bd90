package domain

import "time"

// MessageRef is an opaque, mailbox-assigned reference to a message that
// has not yet been fetched in full. It is the unit the mailbox listing
// yields and the unit passed back into fetch/mark_processed.
type MessageRef struct {
	ID string `json:"id"`
}

// AttachmentBlob is a single attachment's bytes as read from the mail
// gateway. Ownership is exclusive to the orchestrator during a cycle;
// it is handed to the object-store adapter which consumes it and the
// bytes are released once upload completes.
type AttachmentBlob struct {
	OriginalName string `json:"original_name"`
	ContentType  string `json:"content_type"`
	Bytes        []byte `json:"-"`
	Size         int64  `json:"size"`
}

// IncomingMessage is the fully fetched message body, read-only to the
// core and consumed once per cycle.
type IncomingMessage struct {
	ID          string           `json:"id"`
	Subject     string           `json:"subject"`
	Sender      string           `json:"sender"`
	ReceivedAt  time.Time        `json:"received_at"`
	BodyPlain   string           `json:"body_plain,omitempty"`
	BodyHTML    string           `json:"body_html,omitempty"`
	Attachments []AttachmentBlob `json:"attachments,omitempty"`
}

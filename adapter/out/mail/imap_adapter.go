package mail

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	imap "github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/emersion/go-message/mail"

	"github.com/jpmarichal/ccmwf-go/core/domain"
	"github.com/jpmarichal/ccmwf-go/pkg/apperr"
)

// IMAPConfig holds the connection details for the IMAP-mediated mail
// gateway variant.
type IMAPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Marker   string // custom IMAP flag applied on mark_processed
}

// IMAPAdapter is the protocol-mediated mail gateway variant; it shares the same
// out.MailGateway contract as GmailAdapter so the orchestrator never
// branches on which one it holds.
type IMAPAdapter struct {
	cfg IMAPConfig

	mu   sync.Mutex
	conn *imapclient.Client
}

func NewIMAPAdapter(cfg IMAPConfig) *IMAPAdapter {
	return &IMAPAdapter{cfg: cfg}
}

func (a *IMAPAdapter) connect() (*imapclient.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.conn != nil {
		return a.conn, nil
	}

	addr := fmt.Sprintf("%s:%d", a.cfg.Host, a.cfg.Port)
	conn, err := imapclient.DialTLS(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial IMAP %s: %w", addr, err)
	}
	if err := conn.Login(a.cfg.Username, a.cfg.Password).Wait(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("IMAP login: %w", err)
	}
	if _, err := conn.Select("INBOX", nil).Wait(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("IMAP select INBOX: %w", err)
	}

	a.conn = conn
	return conn, nil
}

func (a *IMAPAdapter) ListUnprocessed(ctx context.Context, subjectPrefix string) ([]domain.MessageRef, error) {
	conn, err := a.connect()
	if err != nil {
		return nil, err
	}

	criteria := &imap.SearchCriteria{
		Header: []imap.SearchCriteriaHeaderField{{Key: "Subject", Value: subjectPrefix}},
		NotFlag: []imap.Flag{imap.Flag(a.cfg.Marker)},
	}
	data, err := conn.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, err
	}

	uidSet, ok := data.All.(imap.UIDSet)
	if !ok {
		return nil, nil
	}
	uids, _ := uidSet.Nums()

	refs := make([]domain.MessageRef, 0, len(uids))
	for _, uid := range uids {
		refs = append(refs, domain.MessageRef{ID: strconv.FormatUint(uint64(uid), 10)})
	}
	return refs, nil
}

func (a *IMAPAdapter) Fetch(ctx context.Context, ref domain.MessageRef) (domain.IncomingMessage, error) {
	conn, err := a.connect()
	if err != nil {
		return domain.IncomingMessage{}, apperr.MailFetchFailed(err)
	}

	uidNum, err := strconv.ParseUint(ref.ID, 10, 32)
	if err != nil {
		return domain.IncomingMessage{}, apperr.MailFetchFailed(err)
	}
	uid := imap.UID(uidNum)

	fetchOpts := &imap.FetchOptions{
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{{}},
	}
	seqSet := imap.UIDSetNum(uid)
	cmd := conn.Fetch(seqSet, fetchOpts)
	defer cmd.Close()

	msgData := cmd.Next()
	if msgData == nil {
		return domain.IncomingMessage{}, apperr.MailFetchFailed(fmt.Errorf("message %s not found", ref.ID))
	}

	var raw []byte
	for {
		item := msgData.Next()
		if item == nil {
			break
		}
		if body, ok := item.(imapclient.FetchItemDataBodySection); ok {
			raw, err = io.ReadAll(body.Literal)
			if err != nil {
				return domain.IncomingMessage{}, apperr.MailFetchFailed(err)
			}
		}
	}

	msg, err := parseRFC822(ref.ID, raw)
	if err != nil {
		return domain.IncomingMessage{}, apperr.MailFetchFailed(err)
	}
	return msg, nil
}

func (a *IMAPAdapter) MarkProcessed(ctx context.Context, ref domain.MessageRef) error {
	conn, err := a.connect()
	if err != nil {
		return err
	}
	uidNum, err := strconv.ParseUint(ref.ID, 10, 32)
	if err != nil {
		return err
	}
	seqSet := imap.UIDSetNum(imap.UID(uidNum))
	return conn.Store(seqSet, &imap.StoreFlags{
		Op:    imap.StoreFlagsAdd,
		Flags: []imap.Flag{imap.Flag(a.cfg.Marker)},
	}, nil).Wait()
}

func (a *IMAPAdapter) Search(ctx context.Context, query string) ([]domain.IncomingMessage, error) {
	refs, err := a.ListUnprocessed(ctx, query)
	if err != nil {
		return nil, err
	}
	var results []domain.IncomingMessage
	for _, ref := range refs {
		msg, err := a.Fetch(ctx, ref)
		if err != nil {
			continue
		}
		results = append(results, msg)
	}
	return results, nil
}

func parseRFC822(id string, raw []byte) (domain.IncomingMessage, error) {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return domain.IncomingMessage{}, err
	}

	msg := domain.IncomingMessage{ID: id}
	if s, err := mr.Header.Subject(); err == nil {
		msg.Subject = s
	}
	if addrs, err := mr.Header.AddressList("From"); err == nil && len(addrs) > 0 {
		msg.Sender = addrs[0].String()
	}
	if d, err := mr.Header.Date(); err == nil {
		msg.ReceivedAt = d
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		switch h := part.Header.(type) {
		case *mail.AttachmentHeader:
			filename, _ := h.Filename()
			contentType, _, _ := h.ContentType()
			content, _ := io.ReadAll(part.Body)
			msg.Attachments = append(msg.Attachments, domain.AttachmentBlob{
				OriginalName: filename,
				ContentType:  contentType,
				Bytes:        content,
				Size:         int64(len(content)),
			})
		case *mail.InlineHeader:
			contentType, _, _ := h.ContentType()
			content, _ := io.ReadAll(part.Body)
			if strings.Contains(contentType, "html") {
				msg.BodyHTML += string(content)
			} else {
				msg.BodyPlain += string(content)
			}
		}
	}

	return msg, nil
}

// Package mail provides two mail gateway variants: an OAuth-mediated
// Gmail API adapter and an IMAP-mediated protocol adapter, both
// satisfying out.MailGateway.
package mail

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailv1 "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/jpmarichal/ccmwf-go/core/domain"
	"github.com/jpmarichal/ccmwf-go/pkg/apperr"
	"github.com/jpmarichal/ccmwf-go/pkg/logger"
	"github.com/jpmarichal/ccmwf-go/pkg/retry"
)

// GmailConfig holds the OAuth credentials for the Gmail-API variant.
type GmailConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	User         string
	Marker       string
}

// GmailAdapter is the OAuth-mediated mail gateway variant.
type GmailAdapter struct {
	oauthCfg *oauth2.Config
	token    *oauth2.Token
	user     string
	marker   string
	cb       *gobreaker.CircuitBreaker
}

func NewGmailAdapter(cfg GmailConfig) *GmailAdapter {
	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scopes: []string{
			gmailv1.GmailReadonlyScope,
			gmailv1.GmailModifyScope,
			gmailv1.GmailLabelsScope,
		},
		Endpoint: google.Endpoint,
	}

	cbSettings := gobreaker.Settings{
		Name:        "gmail-api",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures > 5 ||
				(counts.Requests >= 10 && failureRatio >= 0.6)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("[circuit-breaker] %s: %s -> %s", name, from.String(), to.String())
		},
	}

	return &GmailAdapter{
		oauthCfg: oauthCfg,
		token:    &oauth2.Token{RefreshToken: cfg.RefreshToken},
		user:     cfg.User,
		marker:   cfg.Marker,
		cb:       gobreaker.NewCircuitBreaker(cbSettings),
	}
}

func (a *GmailAdapter) service(ctx context.Context) (*gmailv1.Service, error) {
	client := a.oauthCfg.Client(ctx, a.token)
	return gmailv1.NewService(ctx, option.WithHTTPClient(client))
}

func (a *GmailAdapter) ListUnprocessed(ctx context.Context, subjectPrefix string) ([]domain.MessageRef, error) {
	var refs []domain.MessageRef
	_, err := a.cb.Execute(func() (any, error) {
		svc, err := a.service(ctx)
		if err != nil {
			return nil, err
		}

		query := fmt.Sprintf("subject:(%s) -label:%s", quoteForSearch(subjectPrefix), a.marker)
		call := svc.Users.Messages.List(a.user).Q(query)

		var pageToken string
		for {
			if pageToken != "" {
				call = call.PageToken(pageToken)
			}
			resp, err := call.Do()
			if err != nil {
				return nil, err
			}
			for _, m := range resp.Messages {
				refs = append(refs, domain.MessageRef{ID: m.Id})
			}
			if resp.NextPageToken == "" {
				break
			}
			pageToken = resp.NextPageToken
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return refs, nil
}

func (a *GmailAdapter) Fetch(ctx context.Context, ref domain.MessageRef) (domain.IncomingMessage, error) {
	var msg domain.IncomingMessage
	err := retry.Do(ctx, retry.Default(), func(ctx context.Context) error {
		svc, err := a.service(ctx)
		if err != nil {
			return err
		}
		raw, err := svc.Users.Messages.Get(a.user, ref.ID).Format("full").Do()
		if err != nil {
			return err
		}

		var pending []pendingAttachment
		msg, pending = toIncomingMessage(ref.ID, raw)

		for _, p := range pending {
			att, err := svc.Users.Messages.Attachments.Get(a.user, ref.ID, p.AttachmentID).Do()
			if err != nil {
				return err
			}
			p.Blob.Bytes = decodeBase64URL(att.Data)
			msg.Attachments = append(msg.Attachments, p.Blob)
		}
		return nil
	})
	if err != nil {
		return domain.IncomingMessage{}, apperr.MailFetchFailed(err)
	}
	return msg, nil
}

func (a *GmailAdapter) MarkProcessed(ctx context.Context, ref domain.MessageRef) error {
	svc, err := a.service(ctx)
	if err != nil {
		return err
	}
	_, err = svc.Users.Messages.Modify(a.user, ref.ID, &gmailv1.ModifyMessageRequest{
		AddLabelIds: []string{a.marker},
	}).Do()
	return err
}

func (a *GmailAdapter) Search(ctx context.Context, query string) ([]domain.IncomingMessage, error) {
	svc, err := a.service(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := svc.Users.Messages.List(a.user).Q(query).Do()
	if err != nil {
		return nil, err
	}

	var results []domain.IncomingMessage
	for _, m := range resp.Messages {
		msg, err := a.Fetch(ctx, domain.MessageRef{ID: m.Id})
		if err != nil {
			continue
		}
		results = append(results, msg)
	}
	return results, nil
}

func quoteForSearch(s string) string {
	return "\"" + strings.ReplaceAll(s, "\"", "\\\"") + "\""
}

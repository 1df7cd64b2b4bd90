package mail

import (
	"github.com/jpmarichal/ccmwf-go/config"
	"github.com/jpmarichal/ccmwf-go/core/port/out"
)

// New selects the mail gateway variant by configuration: OAuth-mediated
// Gmail API access or IMAP-mediated protocol access, sharing the same
// contract.
func New(cfg *config.Config) out.MailGateway {
	switch cfg.MailGateway {
	case config.MailGatewayIMAP:
		return NewIMAPAdapter(IMAPConfig{
			Host:     cfg.IMAPHost,
			Port:     cfg.IMAPPort,
			Username: cfg.MailUser,
			Password: cfg.IMAPPassword,
			Marker:   cfg.ProcessedMarker,
		})
	default:
		return NewGmailAdapter(GmailConfig{
			ClientID:     cfg.OAuthClientID,
			ClientSecret: cfg.OAuthClientSecret,
			RefreshToken: cfg.OAuthRefreshToken,
			User:         cfg.MailUser,
			Marker:       cfg.ProcessedMarker,
		})
	}
}

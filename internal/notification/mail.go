// Package notification delivers account emails through shoutrrr.
package notification

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/k3a/html2text"
	shoutrrr "github.com/nicholas-fedor/shoutrrr"
	stypes "github.com/nicholas-fedor/shoutrrr/pkg/types"
	"go.uber.org/zap"
)

const sendTimeout = 10 * time.Second

type sender interface {
	Send(message string, params *stypes.Params) []error
}

type senderFactory func(rawURL string) (sender, error)

func shoutrrrFactory(rawURL string) (sender, error) {
	s, err := shoutrrr.CreateSender(rawURL)
	if err != nil {
		return nil, err
	}
	s.Timeout = sendTimeout
	s.SetLogger(log.New(io.Discard, "", 0))
	return s, nil
}

// MailSender sends plain-text mail over an smtp:// shoutrrr URL.
type MailSender struct {
	baseURL *url.URL
	from    string
	create  senderFactory
	logger  *zap.Logger
}

// NewMailSender parses smtpURL. The sender address is added as the
// fromaddress query parameter unless the URL already carries one.
func NewMailSender(smtpURL, from string, logger *zap.Logger) (*MailSender, error) {
	u, err := url.Parse(smtpURL)
	if err != nil {
		return nil, fmt.Errorf("invalid smtp url: %w", err)
	}
	if u.Scheme != "smtp" {
		return nil, fmt.Errorf("unsupported mail scheme %q", u.Scheme)
	}
	return &MailSender{baseURL: u, from: from, create: shoutrrrFactory, logger: logger}, nil
}

// recipientURL returns the service URL addressed to a single recipient.
func (m *MailSender) recipientURL(to string) string {
	u := *m.baseURL
	q := u.Query()
	if q.Get("fromaddress") == "" && m.from != "" {
		q.Set("fromaddress", m.from)
	}
	q.Set("toaddresses", to)
	u.RawQuery = q.Encode()
	return u.String()
}

// Send converts htmlBody to text and delivers it to toEmail.
func (m *MailSender) Send(ctx context.Context, toEmail, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s, err := m.create(m.recipientURL(toEmail))
	if err != nil {
		return fmt.Errorf("failed to create mail sender: %w", err)
	}

	params := stypes.Params{}
	params.SetTitle(subject)
	if errs := s.Send(strings.TrimSpace(html2text.HTML2Text(htmlBody)), &params); len(errs) > 0 {
		if err := errors.Join(errs...); err != nil {
			return fmt.Errorf("failed to send mail: %w", err)
		}
	}
	m.logger.Info("mail sent", zap.String("subject", subject))
	return nil
}

// LogSender only logs outgoing mail. Used when no SMTP URL is configured.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (l *LogSender) Send(_ context.Context, toEmail, subject, htmlBody string) error {
	l.logger.Info("mail not sent, smtp disabled",
		zap.String("to", toEmail),
		zap.String("subject", subject),
		zap.String("body", html2text.HTML2Text(htmlBody)),
	)
	return nil
}

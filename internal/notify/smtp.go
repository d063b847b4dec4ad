package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"net/url"
	"strconv"
	"strings"

	"github.com/schoolmgmt/school-api/internal/config"
	"github.com/schoolmgmt/school-api/internal/redact"
)

// SendFunc matches smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier mails verification links through an SMTP relay.
type SMTPNotifier struct {
	cfg    config.MailConfig
	tokens TokenIssuer
	send   SendFunc
	logger *slog.Logger
}

var _ Notifier = (*SMTPNotifier)(nil)

// NewSMTPNotifier creates an SMTPNotifier using smtp.SendMail.
func NewSMTPNotifier(cfg config.MailConfig, tokens TokenIssuer, logger *slog.Logger) (*SMTPNotifier, error) {
	return NewSMTPNotifierWithSender(cfg, tokens, smtp.SendMail, logger)
}

// NewSMTPNotifierWithSender creates an SMTPNotifier with a custom transport.
func NewSMTPNotifierWithSender(
	cfg config.MailConfig,
	tokens TokenIssuer,
	send SendFunc,
	logger *slog.Logger,
) (*SMTPNotifier, error) {
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("sender address is required")
	}
	if _, err := url.Parse(cfg.VerificationURL); err != nil {
		return nil, fmt.Errorf("invalid verification url: %w", err)
	}
	if tokens == nil || send == nil {
		return nil, fmt.Errorf("token issuer and sender are required")
	}

	return &SMTPNotifier{
		cfg:    cfg,
		tokens: tokens,
		send:   send,
		logger: logger.With("component", "smtp_notifier"),
	}, nil
}

// SendAccountVerificationEmail implements Notifier.
func (n *SMTPNotifier) SendAccountVerificationEmail(ctx context.Context, msg VerificationEmail) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	token, err := n.tokens.GenerateVerificationToken(ctx, msg.UserID, msg.UserEmail)
	if err != nil {
		return fmt.Errorf("%w: issue token: %v", ErrDeliveryFailed, err)
	}

	link, err := VerificationLink(n.cfg.VerificationURL, token)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	addr := net.JoinHostPort(n.cfg.SMTPHost, strconv.Itoa(n.cfg.SMTPPort))
	var auth smtp.Auth
	if n.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", n.cfg.SMTPUsername, n.cfg.SMTPPassword, n.cfg.SMTPHost)
	}

	body := buildVerificationMessage(n.cfg.From, msg.UserEmail, link)
	if err := n.send(addr, auth, n.cfg.From, []string{msg.UserEmail}, body); err != nil {
		n.logger.Error("failed to send verification email",
			"user_id", msg.UserID,
			"error", redact.Error(err))
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	n.logger.Info("verification email sent", "user_id", msg.UserID)
	return nil
}

// VerificationLink appends the token to base as the "token" query parameter.
func VerificationLink(base, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid verification url: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func buildVerificationMessage(from, to, link string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: Verify your account\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString("Welcome! Please verify your email address by opening the link below.\r\n\r\n")
	b.WriteString(link + "\r\n\r\n")
	b.WriteString("If you did not expect this email you can ignore it.\r\n")
	return []byte(b.String())
}

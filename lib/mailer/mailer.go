package mailer

import (
	"context"
	"fmt"
	"inzetbooster/lib/telemetry"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("mailer")

const DefaultTimeout = 5 * time.Second

type Config struct {
	Server string `json:"server"`
	Port   int    `json:"port"`
	// implicit TLS from the first byte, otherwise STARTTLS is used when
	// the server offers it
	UseSSL   bool   `json:"use_ssl"`
	Username string `json:"username"`
	Password string `json:"password"`

	FromAddress string `json:"from_address"`
	FromName    string `json:"from_name"`

	// applies to connecting and to the whole SMTP conversation,
	// defaults to DefaultTimeout
	Timeout time.Duration `json:"-"`
}

type Message struct {
	ToAddress string
	ToName    string
	Subject   string
	HTML      string
}

type Mailer struct {
	cfg    Config
	logger *slog.Logger
}

func New(cfg Config, logger *slog.Logger) Mailer {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return Mailer{cfg: cfg, logger: logger}
}

func formatAddress(name, address string) string {
	if name == "" {
		return address
	}
	return (&mail.Address{Name: name, Address: address}).String()
}

func newMessageID(fromAddress string) string {
	domain := "localhost"
	if at := strings.LastIndex(fromAddress, "@"); at >= 0 && at < len(fromAddress)-1 {
		domain = fromAddress[at+1:]
	}
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), domain)
}

// compose returns the raw RFC 5322 message and its Message-Id.
func (m Mailer) compose(msg Message) ([]byte, string, error) {
	messageID := newMessageID(m.cfg.FromAddress)

	e := email.NewEmail()
	e.From = formatAddress(m.cfg.FromName, m.cfg.FromAddress)
	e.To = []string{formatAddress(msg.ToName, msg.ToAddress)}
	e.Subject = msg.Subject
	e.HTML = []byte(msg.HTML)
	e.Headers.Set("Message-Id", messageID)

	raw, err := e.Bytes()
	if err != nil {
		return nil, "", err
	}
	return raw, messageID, nil
}

// Send delivers one HTML mail and returns the Message-Id it was sent with.
func (m Mailer) Send(ctx context.Context, msg Message) (string, error) {
	ctx, span := tracer.Start(ctx, "mailer:Send")
	defer span.End()

	if m.cfg.FromAddress == "" {
		span.SetStatus(codes.Error, "no sender address")
		return "", fmt.Errorf("no sender address configured")
	}
	if msg.ToAddress == "" {
		span.SetStatus(codes.Error, "no recipient address")
		return "", fmt.Errorf("no recipient address")
	}

	raw, messageID, err := m.compose(msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to compose email")
		return "", err
	}
	span.SetAttributes(attribute.String("message_id", messageID))

	err = m.deliver(ctx, m.cfg.FromAddress, []string{msg.ToAddress}, raw)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		return "", fmt.Errorf("send mail to %s: %w", msg.ToAddress, err)
	}

	m.logger.InfoContext(
		ctx, "mail sent",
		"to", msg.ToAddress,
		"subject", msg.Subject,
		"message_id", messageID,
	)
	return messageID, nil
}

// Package mailer delivers certificate emails over SMTP.
package mailer

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"certapi/internal/apperror"
	"certapi/internal/config"
	"certapi/internal/logging"
	"certapi/internal/model"
)

// DefaultFromName is used when SMTP_FROM_NAME is not set.
const DefaultFromName = "No Reply"

// Mailer sends a single message with attachments.
type Mailer interface {
	// Ready reports a configuration error without touching the network.
	Ready() error
	Send(ctx context.Context, msg model.Message) (*model.SendResult, error)
}

type sendFunc func(ctx context.Context, c *mail.Client, m *mail.Msg) error

// SMTPMailer is a Mailer backed by github.com/wneessen/go-mail.
// Each Send dials a fresh connection; nothing is pooled between requests.
type SMTPMailer struct {
	cfg  config.SMTPConfig
	log  logging.Logger
	send sendFunc
}

func NewSMTPMailer(cfg config.SMTPConfig, log logging.Logger) *SMTPMailer {
	if log == nil {
		log = logging.Nop()
	}
	return &SMTPMailer{
		cfg: cfg,
		log: log,
		send: func(ctx context.Context, c *mail.Client, m *mail.Msg) error {
			return c.DialAndSendWithContext(ctx, m)
		},
	}
}

func (s *SMTPMailer) Ready() error {
	if s.cfg.Host == "" || s.cfg.User == "" {
		return apperror.New(apperror.KindConfiguration, "SMTP is not configured (SMTP_HOST and SMTP_USER are required)")
	}
	return nil
}

func (s *SMTPMailer) Send(ctx context.Context, msg model.Message) (*model.SendResult, error) {
	if err := s.Ready(); err != nil {
		return nil, err
	}

	m, err := s.buildMsg(msg)
	if err != nil {
		return nil, err
	}

	client, err := s.newClient()
	if err != nil {
		return nil, apperror.Wrap(apperror.KindConfiguration, "invalid SMTP settings", err)
	}

	if s.cfg.SendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.SendTimeout)
		defer cancel()
	}

	if err := s.send(ctx, client, m); err != nil {
		s.log.Error(ctx, "mail_send_failed", "to", msg.To, "error", err.Error())
		return nil, apperror.Wrap(apperror.KindDelivery, "failed to send email", err)
	}

	rcpts, err := m.GetRecipients()
	if err != nil {
		rcpts = []string{msg.To}
	}

	res := &model.SendResult{MessageID: m.GetMessageID(), Accepted: rcpts}
	s.log.Info(ctx, "mail_sent", "to", msg.To, "message_id", res.MessageID)
	return res, nil
}

func (s *SMTPMailer) fromAddress() (name, addr string) {
	name = s.cfg.FromName
	if name == "" {
		name = DefaultFromName
	}
	addr = s.cfg.FromEmail
	if addr == "" {
		addr = s.cfg.User
	}
	return name, addr
}

func (s *SMTPMailer) buildMsg(msg model.Message) (*mail.Msg, error) {
	m := mail.NewMsg()

	name, addr := s.fromAddress()
	if err := m.FromFormat(name, addr); err != nil {
		return nil, apperror.Wrap(apperror.KindConfiguration, "invalid sender address", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, "invalid recipient address", err)
	}
	m.Subject(msg.Subject)
	m.SetMessageID()
	m.SetDate()

	m.SetBodyString(mail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}

	for _, a := range msg.Attachments {
		opts := []mail.FileOption{mail.WithFileName(a.Filename)}
		if a.ContentType != "" {
			opts = append(opts, mail.WithFileContentType(mail.ContentType(a.ContentType)))
		}
		m.AttachFile(a.Path, opts...)
	}
	return m, nil
}

func (s *SMTPMailer) newClient() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.User),
		mail.WithPassword(s.cfg.Password),
	}
	if s.cfg.SendTimeout > 0 {
		opts = append(opts, mail.WithTimeout(s.cfg.SendTimeout))
	}
	if s.cfg.Secure {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSOpportunistic))
	}

	c, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("new smtp client: %w", err)
	}
	return c, nil
}

package notify

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/wneessen/go-mail"
)

// SMTPConfig holds the outgoing mail server settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// Timeout bounds a whole mail session, dial included (default: 10s).
	Timeout time.Duration
}

// SMTP sends plain-text email.
type SMTP struct {
	cfg  SMTPConfig
	send func(ctx context.Context, msgs ...*mail.Msg) error
}

func NewSMTP(cfg SMTPConfig) (*SMTP, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	opts := []mail.Option{
		mail.WithTimeout(cfg.Timeout),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithDialContextFunc(deadlineDialer(cfg.Timeout)),
	}
	if cfg.Port > 0 {
		opts = append(opts, mail.WithPort(cfg.Port))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password))
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client for %s: %w", cfg.Host, err)
	}
	return &SMTP{cfg: cfg, send: client.DialAndSendWithContext}, nil
}

// deadlineDialer puts a deadline on the whole connection so a server that
// accepts and then stalls cannot hold a sender forever.
func deadlineDialer(timeout time.Duration) func(ctx context.Context, network, addr string) (net.Conn, error) {
	d := &net.Dialer{Timeout: timeout}
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := d.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
			_ = conn.Close()
			return nil, err
		}
		return conn, nil
	}
}

func (s *SMTP) Notify(ctx context.Context, to Recipient, msg Message) error {
	if to.Email == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m, err := s.message(to, msg)
	if err != nil {
		return fmt.Errorf("build mail to user %d: %w", to.UserID, err)
	}
	if err := s.send(ctx, m); err != nil {
		return fmt.Errorf("send mail to user %d: %w", to.UserID, err)
	}
	return nil
}

func (s *SMTP) message(to Recipient, msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return nil, err
	}
	if err := m.To(to.Email); err != nil {
		return nil, err
	}
	m.Subject(msg.Subject)
	m.SetDate()
	m.SetBodyString(mail.TypeTextPlain, msg.Body)
	return m, nil
}

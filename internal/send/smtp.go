package send

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/nhle/mailkit/internal/message"
	"github.com/nhle/mailkit/internal/model"
)

// SMTPSender delivers messages directly over SMTP, using implicit TLS
// or STARTTLS depending on the credential record's flags.
type SMTPSender struct {
	// DialTimeout bounds the initial TCP connection. Zero means 30s.
	DialTimeout time.Duration
}

// Send assembles the MIME payload and delivers it to every recipient
// in one SMTP session.
func (s *SMTPSender) Send(
	_ context.Context,
	msg *message.Message,
	creds model.CredentialRecord,
) error {
	if msg.From == "" {
		msg.From = creds.User
	}

	raw, err := msg.MIME(creds.Sender)
	if err != nil {
		return fmt.Errorf("assembling message: %w", err)
	}

	addr := net.JoinHostPort(creds.Host, strconv.Itoa(creds.Port))

	var client *smtp.Client
	if creds.UseSSL {
		client, err = s.dialTLS(addr, creds.Host)
	} else {
		client, err = s.dialStartTLS(addr, creds.Host, creds.UseTLS)
	}
	if err != nil {
		return err
	}
	defer client.Close()

	if creds.Authenticate {
		auth := smtp.PlainAuth("", creds.User, creds.Password, creds.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP auth for %s: %w", creds.User, err)
		}
	}

	if err := client.Mail(msg.From); err != nil {
		return fmt.Errorf("SMTP MAIL FROM: %w", err)
	}

	for _, rcpt := range msg.To {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("SMTP RCPT TO %s: %w", rcpt, err)
		}
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("SMTP DATA: %w", err)
	}

	if _, err := writer.Write(raw); err != nil {
		return fmt.Errorf("writing message body: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing message body: %w", err)
	}

	return client.Quit()
}

// dialTLS opens an implicit-TLS connection.
func (s *SMTPSender) dialTLS(addr, host string) (*smtp.Client, error) {
	tlsConfig := &tls.Config{ServerName: host}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		return nil, fmt.Errorf("TLS dial to %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating SMTP client: %w", err)
	}

	return client, nil
}

// dialStartTLS opens a plain connection and upgrades it via STARTTLS
// when requested.
func (s *SMTPSender) dialStartTLS(addr, host string, useTLS bool) (*smtp.Client, error) {
	timeout := s.DialTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("dial to %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating SMTP client: %w", err)
	}

	if useTLS {
		tlsConfig := &tls.Config{ServerName: host}
		if err := client.StartTLS(tlsConfig); err != nil {
			client.Close()
			return nil, fmt.Errorf("SMTP STARTTLS: %w", err)
		}
	}

	return client, nil
}

// Package message composes markdown content into multipart MIME email
// messages with a sanitized HTML body and a plain-text alternative.
package message

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/google/uuid"
)

// Message is a composed email prior to MIME assembly. Body, Header,
// and Footer are markdown blocks; Header and Footer are optional and
// rendered above and below the body.
type Message struct {
	Subject string
	From    string
	To      []string
	Body    string
	Header  string
	Footer  string

	// Attachments are filesystem paths included as MIME attachments.
	Attachments []string
}

// HTML renders the message blocks to a single sanitized HTML document.
func (m *Message) HTML() string {
	var b strings.Builder
	b.WriteString("<html><body>\n")

	if m.Header != "" {
		b.WriteString(`<div class="header">` + "\n")
		b.WriteString(renderMarkdown(m.Header))
		b.WriteString("</div>\n")
	}

	b.WriteString(`<div class="body">` + "\n")
	b.WriteString(renderMarkdown(m.Body))
	b.WriteString("</div>\n")

	if m.Footer != "" {
		b.WriteString(`<div class="footer">` + "\n")
		b.WriteString(renderMarkdown(m.Footer))
		b.WriteString("</div>\n")
	}

	b.WriteString("</body></html>\n")
	return b.String()
}

// Text returns the plain-text alternative: the raw markdown blocks
// joined by blank lines.
func (m *Message) Text() string {
	blocks := make([]string, 0, 3)
	for _, block := range []string{m.Header, m.Body, m.Footer} {
		if block != "" {
			blocks = append(blocks, block)
		}
	}
	return strings.Join(blocks, "\n\n")
}

// MIME assembles the message into a multipart RFC 5322 payload with
// text and HTML alternatives plus any attachments. senderName, when
// non-empty, becomes the display name on the From header.
func (m *Message) MIME(senderName string) ([]byte, error) {
	if m.From == "" {
		return nil, fmt.Errorf("message has no From address")
	}
	if len(m.To) == 0 {
		return nil, fmt.Errorf("message has no recipients")
	}

	var h mail.Header
	h.SetDate(time.Now())
	h.SetSubject(m.Subject)
	h.SetMessageID(messageID(m.From))
	h.SetAddressList("From", []*mail.Address{
		{Name: senderName, Address: m.From},
	})

	to := make([]*mail.Address, 0, len(m.To))
	for _, addr := range m.To {
		to = append(to, &mail.Address{Address: addr})
	}
	h.SetAddressList("To", to)

	var buf bytes.Buffer
	mw, err := mail.CreateWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("creating mail writer: %w", err)
	}

	tw, err := mw.CreateInline()
	if err != nil {
		return nil, fmt.Errorf("creating inline part: %w", err)
	}

	var th mail.InlineHeader
	th.Set("Content-Type", "text/plain; charset=utf-8")
	pw, err := tw.CreatePart(th)
	if err != nil {
		return nil, fmt.Errorf("creating text part: %w", err)
	}
	if _, err := io.WriteString(pw, m.Text()); err != nil {
		return nil, fmt.Errorf("writing text part: %w", err)
	}
	pw.Close()

	var hh mail.InlineHeader
	hh.Set("Content-Type", "text/html; charset=utf-8")
	pw, err = tw.CreatePart(hh)
	if err != nil {
		return nil, fmt.Errorf("creating html part: %w", err)
	}
	if _, err := io.WriteString(pw, m.HTML()); err != nil {
		return nil, fmt.Errorf("writing html part: %w", err)
	}
	pw.Close()
	tw.Close()

	for _, path := range m.Attachments {
		if err := attach(mw, path); err != nil {
			return nil, err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing mail writer: %w", err)
	}

	return buf.Bytes(), nil
}

// attach streams one file into the message as an attachment.
func attach(mw *mail.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening attachment %s: %w", path, err)
	}
	defer f.Close()

	var ah mail.AttachmentHeader
	ah.SetFilename(filepath.Base(path))
	if ctype := mime.TypeByExtension(filepath.Ext(path)); ctype != "" {
		ah.Set("Content-Type", ctype)
	}

	aw, err := mw.CreateAttachment(ah)
	if err != nil {
		return fmt.Errorf("creating attachment %s: %w", path, err)
	}
	defer aw.Close()

	if _, err := io.Copy(aw, f); err != nil {
		return fmt.Errorf("writing attachment %s: %w", path, err)
	}

	return nil
}

// messageID builds a unique Message-ID scoped to the sender's domain.
func messageID(from string) string {
	domain := "localhost"
	if i := strings.LastIndex(from, "@"); i >= 0 && i < len(from)-1 {
		domain = from[i+1:]
	}
	return uuid.NewString() + "@" + domain
}

package email

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strconv"
)

// sendWithSMTP delivers the confirmation mail through the configured relay.
// The relay is optional in development, so a missing host is an error here
// rather than at startup.
func (s *Service) sendWithSMTP(data EmailData, htmlContent, textContent string) error {
	relay, ok := s.config.SMTP[string(ProviderSMTP)]
	if !ok || relay.Host == "" {
		return errors.New("smtp relay is not configured")
	}

	var auth smtp.Auth
	if relay.Username != "" {
		auth = smtp.PlainAuth("", relay.Username, relay.Password, relay.Host)
	}

	msg, err := buildMIMEMessage(data, htmlContent, textContent)
	if err != nil {
		return fmt.Errorf("building email: %w", err)
	}

	addr := net.JoinHostPort(relay.Host, strconv.Itoa(relay.Port))
	if err := smtp.SendMail(addr, auth, data.From, []string{data.To}, msg); err != nil {
		return fmt.Errorf("sending email via SMTP: %w", err)
	}
	return nil
}

// buildMIMEMessage renders a multipart/alternative message, plaintext first so
// clients that prefer HTML pick the last part.
func buildMIMEMessage(data EmailData, htmlContent, textContent string) ([]byte, error) {
	var buf bytes.Buffer
	body := multipart.NewWriter(&buf)

	from := mail.Address{Name: data.FromName, Address: data.From}
	fmt.Fprintf(&buf, "From: %s\r\n", from.String())
	fmt.Fprintf(&buf, "To: %s\r\n", data.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", data.Subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", body.Boundary())

	for _, part := range []struct {
		contentType string
		content     string
	}{
		{"text/plain; charset=utf-8", textContent},
		{"text/html; charset=utf-8", htmlContent},
	} {
		w, err := body.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {part.contentType},
			"Content-Transfer-Encoding": {"base64"},
		})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(wrapBase64(part.content)); err != nil {
			return nil, err
		}
	}

	if err := body.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// wrapBase64 encodes s in 76 column lines.
func wrapBase64(s string) []byte {
	const lineLen = 76
	encoded := base64.StdEncoding.EncodeToString([]byte(s))

	var out bytes.Buffer
	for len(encoded) > lineLen {
		out.WriteString(encoded[:lineLen])
		out.WriteString("\r\n")
		encoded = encoded[lineLen:]
	}
	out.WriteString(encoded)
	out.WriteString("\r\n")
	return out.Bytes()
}

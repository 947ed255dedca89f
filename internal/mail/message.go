// Package mail delivers composed outreach emails through Gmail or Amazon SES.
package mail

import (
	"bytes"
	"fmt"
	"mime"
	"net/mail"
	"strings"
	"time"

	"github.com/mlynnf123/gfmd-outreach/internal/model"
)

// Sender identifies the From address.
type Sender struct {
	Address string
	Name    string
}

// String formats the sender as an RFC 5322 address.
func (s Sender) String() string {
	if s.Name == "" {
		return s.Address
	}
	return (&mail.Address{Name: s.Name, Address: s.Address}).String()
}

// ValidateRecipient checks the To address of a composed email.
func ValidateRecipient(email model.ComposedEmail) error {
	if strings.TrimSpace(email.To) == "" {
		return fmt.Errorf("missing recipient")
	}
	if _, err := mail.ParseAddress(email.To); err != nil {
		return fmt.Errorf("invalid recipient %q: %w", email.To, err)
	}
	return nil
}

// BuildMessage renders a plain-text RFC 2822 message.
func BuildMessage(from Sender, email model.ComposedEmail, date time.Time) []byte {
	var b bytes.Buffer
	writeHeader(&b, "From", from.String())
	writeHeader(&b, "To", email.To)
	writeHeader(&b, "Subject", mime.QEncoding.Encode("utf-8", email.Subject))
	writeHeader(&b, "Date", date.Format(time.RFC1123Z))
	writeHeader(&b, "MIME-Version", "1.0")
	writeHeader(&b, "Content-Type", `text/plain; charset="UTF-8"`)
	writeHeader(&b, "Content-Transfer-Encoding", "8bit")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(strings.ReplaceAll(email.Body, "\r\n", "\n"), "\n", "\r\n"))
	return b.Bytes()
}

func writeHeader(b *bytes.Buffer, key, value string) {
	value = strings.NewReplacer("\r", "", "\n", "").Replace(value)
	b.WriteString(key)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\r\n")
}

package filter

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"
	"time"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"

	"github.com/mikey/lateral-phish-detector/internal/core"
)

// ParsedMessage holds the parts of an RFC 5322 message the scorer reads
type ParsedMessage struct {
	From    string
	To      []string
	Subject string
	Date    time.Time
	Body    string
}

// ParseMessage reads a message and collects its text/plain and text/html
// bodies. Attachments are skipped. Unknown charsets are tolerated and the
// undecoded bytes are used.
func ParseMessage(r io.Reader) (*ParsedMessage, error) {
	mr, err := mail.CreateReader(r)
	if err != nil && !message.IsUnknownCharset(err) {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	defer mr.Close()

	parsed := &ParsedMessage{}

	if from, err := mr.Header.AddressList("From"); err == nil && len(from) > 0 {
		parsed.From = from[0].Address
	} else {
		parsed.From = strings.TrimSpace(mr.Header.Get("From"))
	}

	for _, field := range []string{"To", "Cc"} {
		addresses, err := mr.Header.AddressList(field)
		if err != nil {
			continue
		}
		for _, address := range addresses {
			parsed.To = append(parsed.To, address.Address)
		}
	}

	if subject, err := mr.Header.Subject(); err == nil {
		parsed.Subject = subject
	} else {
		parsed.Subject = mr.Header.Get("Subject")
	}

	if date, err := mr.Header.Date(); err == nil {
		parsed.Date = date
	}

	var bodies []string
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil && (part == nil || !message.IsUnknownCharset(err)) {
			if len(bodies) > 0 {
				break
			}
			return nil, fmt.Errorf("failed to read message part: %w", err)
		}

		header, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		mediaType, _, err := mime.ParseMediaType(header.Get("Content-Type"))
		if err != nil {
			mediaType = "text/plain"
		}
		if mediaType != "text/plain" && mediaType != "text/html" {
			continue
		}

		content, err := io.ReadAll(part.Body)
		if err != nil {
			continue
		}
		bodies = append(bodies, string(content))
	}
	parsed.Body = strings.Join(bodies, "\n")

	return parsed, nil
}

// Request converts the message to a scoring request. A message without a
// usable Date header is scored as of now.
func (m *ParsedMessage) Request(now time.Time) *core.ScoreRequest {
	date := m.Date
	if date.IsZero() {
		date = now
	}
	return &core.ScoreRequest{
		Subject: m.Subject,
		Body:    m.Body,
		From:    m.From,
		To:      strings.Join(m.To, ", "),
		Date:    date.Format(core.DateLayout),
	}
}

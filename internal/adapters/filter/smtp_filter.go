package filter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/mikey/lateral-phish-detector/internal/core"
)

// Headers names the headers added to filtered messages
type Headers struct {
	Status string
	Score  string
	Domain string
	Error  string
}

// DefaultHeaders are used for any header name left empty
var DefaultHeaders = Headers{
	Status: "X-Lateral-Phish-Status",
	Score:  "X-Lateral-Phish-Score",
	Domain: "X-Lateral-Phish-Domain",
	Error:  "X-Lateral-Phish-Error",
}

// SMTPFilter implements a Postfix content filter. Messages are scored,
// annotated with verdict headers and re-injected into Postfix.
type SMTPFilter struct {
	service         *core.LateralPhishService
	logger          *zap.Logger
	listenAddr      string
	server          *smtp.Server
	blockPhishing   bool
	headers         Headers
	postfixAddr     string
	postfixPort     int
	postfixEnabled  bool
	maxMessageBytes int64
	scoreTimeout    time.Duration
	deliver         func(sender string, recipients []string, data []byte) error
}

// NewSMTPFilter creates a new SMTP content filter
func NewSMTPFilter(
	service *core.LateralPhishService,
	logger *zap.Logger,
	listenAddr string,
	blockPhishing bool,
	headers Headers,
	postfixAddr string,
	postfixPort int,
	postfixEnabled bool,
	maxMessageBytes int64,
	scoreTimeout time.Duration,
) *SMTPFilter {
	if headers.Status == "" {
		headers.Status = DefaultHeaders.Status
	}
	if headers.Score == "" {
		headers.Score = DefaultHeaders.Score
	}
	if headers.Domain == "" {
		headers.Domain = DefaultHeaders.Domain
	}
	if headers.Error == "" {
		headers.Error = DefaultHeaders.Error
	}
	if scoreTimeout <= 0 {
		scoreTimeout = 10 * time.Second
	}

	f := &SMTPFilter{
		service:         service,
		logger:          logger,
		listenAddr:      listenAddr,
		blockPhishing:   blockPhishing,
		headers:         headers,
		postfixAddr:     postfixAddr,
		postfixPort:     postfixPort,
		postfixEnabled:  postfixEnabled,
		maxMessageBytes: maxMessageBytes,
		scoreTimeout:    scoreTimeout,
	}
	f.deliver = f.sendToPostfix
	return f
}

// Start starts the SMTP listener in the background
func (f *SMTPFilter) Start() error {
	f.server = smtp.NewServer(&smtpBackend{filter: f})

	f.server.Addr = f.listenAddr
	f.server.Domain = "localhost"
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = f.maxMessageBytes
	f.server.MaxRecipients = 50

	f.logger.Info("SMTP filter starting", zap.String("address", f.listenAddr))

	go func() {
		if err := f.server.ListenAndServe(); err != nil && !errors.Is(err, smtp.ErrServerClosed) {
			f.logger.Error("SMTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop stops the SMTP listener
func (f *SMTPFilter) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// ScoreEmail scores one message
func (f *SMTPFilter) ScoreEmail(ctx context.Context, req *core.ScoreRequest) (*core.ScoreResult, error) {
	return f.service.Score(ctx, req)
}

// filterMessage scores a raw message and returns it with verdict headers
// prepended. A phishing verdict with blocking enabled returns a 550 error.
// Scoring failures never reject: the message passes with an error header.
func (f *SMTPFilter) filterMessage(sender string, recipients []string, raw []byte) ([]byte, error) {
	var (
		result *core.ScoreResult
		err    error
	)

	parsed, err := ParseMessage(bytes.NewReader(raw))
	if err == nil {
		if parsed.From == "" {
			parsed.From = sender
		}
		if len(parsed.To) == 0 {
			parsed.To = recipients
		}

		ctx, cancel := context.WithTimeout(context.Background(), f.scoreTimeout)
		result, err = f.ScoreEmail(ctx, parsed.Request(time.Now()))
		cancel()
	}

	var annotated bytes.Buffer
	if err != nil {
		f.logger.Error("Failed to score email",
			zap.Error(err),
			zap.String("sender", sender))

		fmt.Fprintf(&annotated, "%s: %s\r\n", f.headers.Error, headerValue(err.Error()))
		annotated.Write(raw)
		return annotated.Bytes(), nil
	}

	if result.IsPhishing() && f.blockPhishing {
		f.logger.Info("Rejecting lateral phishing email",
			zap.String("processing_id", result.ProcessingID),
			zap.String("sender", sender),
			zap.Float64("probability", result.Probability),
			zap.String("domain", result.Domain))

		return nil, &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 7, 1},
			Message:      fmt.Sprintf("Rejected as lateral phishing (score: %.2f)", result.Probability),
		}
	}

	status := "clean"
	if result.IsPhishing() {
		status = "phishing"
	}
	fmt.Fprintf(&annotated, "%s: %s\r\n", f.headers.Status, status)
	fmt.Fprintf(&annotated, "%s: %.4f\r\n", f.headers.Score, result.Probability)
	if result.Domain != "" {
		fmt.Fprintf(&annotated, "%s: %s\r\n", f.headers.Domain, headerValue(result.Domain))
	}
	annotated.Write(raw)

	return annotated.Bytes(), nil
}

// headerValue keeps a value on a single header line
func headerValue(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// sendToPostfix re-injects the processed email into Postfix
func (f *SMTPFilter) sendToPostfix(sender string, recipients []string, emailData []byte) error {
	postfixAddr := net.JoinHostPort(f.postfixAddr, fmt.Sprint(f.postfixPort))

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", postfixAddr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to Postfix: %w", err)
	}

	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}

	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			f.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
		} else {
			recipientOK = true
		}
	}

	if !recipientOK {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}

	if _, err := wc.Write(emailData); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}

	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		// the message is already queued
		f.logger.Warn("QUIT command failed", zap.Error(err))
	}

	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	filter *SMTPFilter
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{filter: b.filter}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	filter     *SMTPFilter
	sender     string
	recipients []string
}

func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = nil
}

func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

func (s *smtpSession) Data(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		s.filter.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	annotated, err := s.filter.filterMessage(s.sender, s.recipients, raw)
	if err != nil {
		return err
	}

	if !s.filter.postfixEnabled {
		s.filter.logger.Warn("Postfix forwarding disabled, message not re-injected",
			zap.String("sender", s.sender))
		return nil
	}

	if err := s.filter.deliver(s.sender, s.recipients, annotated); err != nil {
		s.filter.logger.Error("Failed to send email back to Postfix",
			zap.Error(err),
			zap.String("sender", s.sender))
		return err
	}

	return nil
}

func (s *smtpSession) Logout() error {
	return nil
}

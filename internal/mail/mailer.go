// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

// Package mail delivers rendered reports as e-mail attachments.
//
// SMTPMailer talks to a real server. SimulatedMailer only logs what it would
// have sent and is selected when no SMTP host is configured.
package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tomtom215/cinefeed/internal/config"
	"github.com/tomtom215/cinefeed/internal/logging"
	"github.com/tomtom215/cinefeed/internal/metrics"
	"github.com/tomtom215/cinefeed/internal/report"
)

// DefaultFromAddress is used when no SMTP username is configured.
const DefaultFromAddress = "noreply@kinopoisk-app.com"

const defaultMailDomain = "@yandex.ru"

// ErrInvalidRecipient is returned for recipients without an "@".
var ErrInvalidRecipient = errors.New("invalid recipient address")

// Message is one report delivery.
type Message struct {
	To      string
	Subject string
	Type    report.Type
	Content string
}

// Mailer sends report messages.
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

// New returns an SMTPMailer, or a SimulatedMailer when cfg has no host.
func New(cfg *config.MailConfig) Mailer {
	if cfg == nil || strings.TrimSpace(cfg.Host) == "" {
		logging.Warn().Msg("SMTP host not configured, reports will only be logged")
		return NewSimulatedMailer()
	}
	return NewSMTPMailer(cfg)
}

// FromAddress derives the sender address from the SMTP username. A bare
// login gets the default mail domain appended.
func FromAddress(username string) string {
	username = strings.TrimSpace(username)
	switch {
	case username == "":
		return DefaultFromAddress
	case !strings.Contains(username, "@"):
		return username + defaultMailDomain
	default:
		return username
	}
}

// Body is the plain-text part that accompanies a report attachment.
func Body(t report.Type) string {
	return "Добрый день!\n\n" +
		"Во вложении находится запрошенный отчет о фильмах в формате " + strings.ToUpper(string(t)) + ".\n\n" +
		"Отчет сформирован на основе данных Кинопоиска.\n\n" +
		"С уважением,\nСервис Kinopoisk API\n"
}

func validateMessage(msg *Message) error {
	if msg == nil {
		return fmt.Errorf("message is nil")
	}
	if !strings.Contains(msg.To, "@") {
		return fmt.Errorf("%w: %q", ErrInvalidRecipient, msg.To)
	}
	if _, err := report.ParseType(string(msg.Type)); err != nil {
		return err
	}
	return nil
}

// SimulatedMailer logs deliveries instead of sending them.
type SimulatedMailer struct{}

// NewSimulatedMailer creates a SimulatedMailer.
func NewSimulatedMailer() *SimulatedMailer {
	return &SimulatedMailer{}
}

// Send logs the would-be delivery and reports success.
func (m *SimulatedMailer) Send(ctx context.Context, msg *Message) error {
	if err := validateMessage(msg); err != nil {
		metrics.RecordMail("simulated", err)
		return err
	}
	logging.Ctx(ctx).Info().
		Str("to", logging.SanitizeEmail(msg.To)).
		Str("subject", msg.Subject).
		Str("report_type", string(msg.Type)).
		Int("report_bytes", len(msg.Content)).
		Msg("SMTP not configured, simulated report delivery")
	metrics.RecordMail("simulated", nil)
	return nil
}

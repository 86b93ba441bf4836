// Copyright (C) 2021  Lukas Dietrich <lukas@lukasdietrich.com>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package delivery

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/emersion/go-message"
	"github.com/emersion/go-message/mail"

	"github.com/lukasdietrich/postfach/internal/models"
	"github.com/lukasdietrich/postfach/internal/storage"
)

var (
	// ErrUnparsableContent is used when the envelope content cannot be
	// parsed as a mail message at all.
	ErrUnparsableContent = errors.New("delivery: unparsable content")

	// ErrNoValidRecipients is used when not a single recipient of an
	// envelope is a valid address.
	ErrNoValidRecipients = errors.New("delivery: no valid recipients")
)

// defaultSubject is recorded when a message carries no subject header.
const defaultSubject = "No Subject"

// Failure is a single recipient that could not be served.
type Failure struct {
	Recipient string
	Reason    error
}

// Outcome is the per-recipient result of delivering one envelope. Delivered
// and Failures together cover every recipient of the envelope exactly once.
type Outcome struct {
	Delivered []storage.DeliveryRecord
	Failures  []Failure
}

// Mailman fans an envelope out into the mailboxes of its recipients.
// Recipients are independent of each other. A failing recipient never
// prevents the delivery to the remaining ones.
type Mailman struct {
	mailboxes *storage.Mailboxes
	observer  Observer
}

func NewMailman(mailboxes *storage.Mailboxes, observer Observer) *Mailman {
	return &Mailman{
		mailboxes: mailboxes,
		observer:  observer,
	}
}

// Deliver validates all recipients of the envelope and writes one copy of
// the content into each valid recipient's mailbox.
//
// An error is only returned when nothing could be delivered. If at least one
// recipient was served, the remaining failures are reported in the Outcome
// instead.
func (m *Mailman) Deliver(ctx context.Context, envelope models.Envelope) (*Outcome, error) {
	subject, err := parseSubject(envelope.Content)
	if err != nil {
		return nil, err
	}

	var (
		outcome  Outcome
		firstErr error
	)

	for _, recipient := range envelope.To {
		address, err := models.Parse(recipient)
		if err != nil {
			outcome.Failures = append(outcome.Failures, Failure{Recipient: recipient, Reason: err})
			m.observer.MailFailed(ctx, recipient, err)

			continue
		}

		record, err := m.mailboxes.Deliver(ctx, address, envelope.From, subject, envelope.Content)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}

			outcome.Failures = append(outcome.Failures, Failure{Recipient: recipient, Reason: err})
			m.observer.MailFailed(ctx, recipient, err)

			continue
		}

		outcome.Delivered = append(outcome.Delivered, *record)
		m.observer.MailDelivered(ctx, record)
	}

	if len(outcome.Delivered) == 0 {
		if firstErr != nil {
			return nil, fmt.Errorf("delivery: no recipient could be served: %w", firstErr)
		}

		return nil, ErrNoValidRecipients
	}

	return &outcome, nil
}

// parseSubject extracts the subject header from the raw message. Messages
// without a subject get a placeholder. An unknown charset in the header is
// not fatal, a message that does not parse at all is.
func parseSubject(content []byte) (string, error) {
	r, err := mail.CreateReader(bytes.NewReader(content))
	if err != nil && !message.IsUnknownCharset(err) {
		return "", fmt.Errorf("%w: %s", ErrUnparsableContent, err)
	}

	subject, err := r.Header.Subject()
	if err != nil && !message.IsUnknownCharset(err) {
		subject = ""
	}

	if subject == "" {
		subject = defaultSubject
	}

	return subject, nil
}

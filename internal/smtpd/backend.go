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

package smtpd

import (
	"context"
	"errors"
	"io"
	"net"
	"sync/atomic"
	"time"

	"github.com/emersion/go-smtp"

	"github.com/lukasdietrich/postfach/internal/delivery"
	"github.com/lukasdietrich/postfach/internal/log"
	"github.com/lukasdietrich/postfach/internal/models"
)

// Backend accepts inbound smtp sessions and hands complete envelopes to the
// mailman.
type Backend struct {
	mailman *delivery.Mailman
	counter int32
}

func NewBackend(mailman *delivery.Mailman) *Backend {
	return &Backend{
		mailman: mailman,
	}
}

// NewSession starts a session for a freshly accepted connection. Every
// session gets a unique number for log correlation.
func (b *Backend) NewSession(conn *smtp.Conn) (smtp.Session, error) {
	ctx := log.WithSession(context.Background(), atomic.AddInt32(&b.counter, 1))

	var addr net.IP
	if tcpAddr, ok := conn.Conn().RemoteAddr().(*net.TCPAddr); ok {
		addr = tcpAddr.IP
		ctx = log.WithOrigin(ctx, addr.String())
	}

	log.DebugContext(ctx).Msg("session started")

	return &session{
		ctx:     ctx,
		conn:    conn,
		mailman: b.mailman,
		addr:    addr,
	}, nil
}

type session struct {
	ctx     context.Context
	conn    *smtp.Conn
	mailman *delivery.Mailman
	addr    net.IP

	from string
	to   []string
}

func (s *session) Mail(from string, _ *smtp.MailOptions) error {
	s.from = from
	return nil
}

// Rcpt accepts every recipient as is. Validation happens during delivery,
// so that a single bad recipient does not abort the whole transaction.
func (s *session) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.to = append(s.to, to)
	return nil
}

func (s *session) Data(r io.Reader) error {
	content, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	envelope := models.Envelope{
		Helo:    s.conn.Hostname(),
		Addr:    s.addr,
		Date:    time.Now(),
		From:    s.from,
		To:      s.to,
		Content: content,
	}

	outcome, err := s.mailman.Deliver(s.ctx, envelope)
	if err != nil {
		return rejection(err)
	}

	log.InfoContext(s.ctx).
		Int("delivered", len(outcome.Delivered)).
		Int("failed", len(outcome.Failures)).
		Msg("envelope accepted")

	return nil
}

func (s *session) Reset() {
	s.from = ""
	s.to = nil
}

func (s *session) Logout() error {
	log.DebugContext(s.ctx).Msg("session ended")
	return nil
}

// rejection translates a delivery error into a permanent smtp reply.
func rejection(err error) error {
	switch {
	case errors.Is(err, delivery.ErrNoValidRecipients):
		return &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 1, 1},
			Message:      "no valid recipients",
		}

	case errors.Is(err, delivery.ErrUnparsableContent):
		return &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 6, 0},
			Message:      "message content could not be parsed",
		}

	default:
		return &smtp.SMTPError{
			Code:         451,
			EnhancedCode: smtp.EnhancedCode{4, 3, 0},
			Message:      "could not store the message",
		}
	}
}

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

package transmit

import (
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"

	"github.com/spf13/viper"

	"github.com/lukasdietrich/postfach/internal/compose"
	"github.com/lukasdietrich/postfach/internal/log"
)

func init() {
	viper.SetDefault("transmit.hostname", "localhost")
}

// SendStatus is the overall status of a single send attempt.
type SendStatus int

const (
	// StatusSent means the server accepted the message for all recipients.
	StatusSent SendStatus = iota + 1
	// StatusRejected means the server was reachable, but refused the
	// sender, a recipient or the content.
	StatusRejected
	// StatusConnectionFailed means no smtp conversation took place at all.
	StatusConnectionFailed
)

func (s SendStatus) String() string {
	switch s {
	case StatusSent:
		return "sent"
	case StatusRejected:
		return "rejected"
	case StatusConnectionFailed:
		return "connection failed"
	default:
		return fmt.Sprintf("unknown status %d", int(s))
	}
}

// SendResult is the outcome of a single send attempt. Reason is nil exactly
// when Status is StatusSent.
type SendResult struct {
	Status SendStatus
	Reason error
}

// Courier hands a composed message to a receiving smtp server. Every call is
// a single attempt, there is no queue and no retry.
type Courier struct {
	hostname string
}

// NewCourier creates a new courier.
//
// `transmit.hostname` is the name used to greet the receiving server.
func NewCourier() *Courier {
	return &Courier{
		hostname: viper.GetString("transmit.hostname"),
	}
}

// Send renders the message and performs one complete smtp conversation with
// the server at host:port. Send blocks until the conversation is over.
func (c *Courier) Send(message *compose.Message, host string, port uint16) SendResult {
	addr := net.JoinHostPort(host, strconv.Itoa(int(port)))

	client, err := smtp.Dial(addr)
	if err != nil {
		return SendResult{
			Status: StatusConnectionFailed,
			Reason: fmt.Errorf("transmit: could not connect to %q: %w", addr, err),
		}
	}

	defer client.Close()

	if err := c.converse(client, message); err != nil {
		return SendResult{
			Status: classify(err),
			Reason: err,
		}
	}

	// The message is already accepted at this point. A failing QUIT is not
	// worth reporting to the caller.
	if err := client.Quit(); err != nil {
		log.Warn().
			Str("addr", addr).
			Err(err).
			Msg("server misbehaved after accepting the message")
	}

	return SendResult{Status: StatusSent}
}

// converse runs the smtp conversation up to and including the message
// content.
func (c *Courier) converse(client *smtp.Client, message *compose.Message) error {
	if err := client.Hello(c.hostname); err != nil {
		return err
	}

	if err := client.Mail(message.From.String()); err != nil {
		return err
	}

	for _, to := range message.To {
		if err := client.Rcpt(to.String()); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}

	if err := message.Render(w); err != nil {
		return err
	}

	return w.Close()
}

// classify distinguishes an answer of the server from a broken conversation.
// Any smtp status reply counts as a rejection, everything else means the
// connection itself failed.
func classify(err error) SendStatus {
	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		return StatusRejected
	}

	return StatusConnectionFailed
}

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

package compose

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-message/mail"

	"github.com/lukasdietrich/postfach/internal/models"
)

// Attachment is a file to be included in a composed message.
type Attachment struct {
	Filename string
	Content  []byte
}

// AttachmentWarning is a requested attachment that could not be read. The
// message is still composed without it.
type AttachmentWarning struct {
	Path   string
	Reason error
}

// Message is a fully composed mail ready to be rendered to its wire format.
// The sender and all recipients are validated addresses.
type Message struct {
	From        models.Address
	To          []models.Address
	Subject     string
	Body        string
	Attachments []Attachment
	Warnings    []AttachmentWarning
	Date        time.Time
}

// Render writes the message in MIME format. The body is always the first
// part, followed by one base64 encoded part per attachment.
func (m *Message) Render(w io.Writer) error {
	var header mail.Header

	header.SetDate(m.Date)
	header.SetAddressList("From", []*mail.Address{{Address: m.From.String()}})
	header.SetAddressList("To", m.recipientList())
	header.SetSubject(m.Subject)

	mw, err := mail.CreateWriter(w, header)
	if err != nil {
		return fmt.Errorf("compose: could not create message writer: %w", err)
	}

	if err := m.renderBody(mw); err != nil {
		return err
	}

	for _, attachment := range m.Attachments {
		if err := renderAttachment(mw, attachment); err != nil {
			return err
		}
	}

	if err := mw.Close(); err != nil {
		return fmt.Errorf("compose: could not finish message: %w", err)
	}

	return nil
}

func (m *Message) recipientList() []*mail.Address {
	addresses := make([]*mail.Address, 0, len(m.To))

	for _, to := range m.To {
		addresses = append(addresses, &mail.Address{Address: to.String()})
	}

	return addresses
}

func (m *Message) renderBody(mw *mail.Writer) error {
	var header mail.InlineHeader
	header.SetContentType("text/plain", map[string]string{"charset": "utf-8"})

	body, err := mw.CreateSingleInline(header)
	if err != nil {
		return fmt.Errorf("compose: could not create body part: %w", err)
	}

	defer body.Close()

	if _, err := io.WriteString(body, m.Body); err != nil {
		return fmt.Errorf("compose: could not write body: %w", err)
	}

	return nil
}

func renderAttachment(mw *mail.Writer, attachment Attachment) error {
	var header mail.AttachmentHeader
	header.SetFilename(attachment.Filename)
	header.Set("Content-Transfer-Encoding", "base64")

	part, err := mw.CreateAttachment(header)
	if err != nil {
		return fmt.Errorf("compose: could not create attachment part: %w", err)
	}

	defer part.Close()

	if _, err := part.Write(attachment.Content); err != nil {
		return fmt.Errorf("compose: could not write attachment %q: %w", attachment.Filename, err)
	}

	return nil
}

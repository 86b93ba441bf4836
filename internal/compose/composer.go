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
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/lukasdietrich/postfach/internal/log"
	"github.com/lukasdietrich/postfach/internal/models"
)

// InvalidAddressError is used when the sender or a recipient of a message to
// be composed is not a valid address.
type InvalidAddressError struct {
	Value string
}

func (e InvalidAddressError) Error() string {
	return fmt.Sprintf("compose: invalid address %q", e.Value)
}

// Composer assembles outgoing messages from their raw ingredients.
type Composer struct {
	fs    afero.Fs
	clock func() time.Time
}

func NewComposer(fs afero.Fs) *Composer {
	return &Composer{
		fs:    fs,
		clock: time.Now,
	}
}

// Compose validates the sender and recipients and assembles a message with
// the given body and attachments. The sender is validated before any
// recipient.
//
// An attachment that cannot be read does not fail the composition. It is
// skipped and reported as a warning on the message instead.
func (c *Composer) Compose(
	ctx context.Context,
	from string,
	to []string,
	subject string,
	body string,
	attachmentPaths []string,
) (*Message, error) {
	sender, err := models.Parse(from)
	if err != nil {
		return nil, InvalidAddressError{Value: from}
	}

	recipients := make([]models.Address, 0, len(to))

	for _, raw := range to {
		recipient, err := models.Parse(raw)
		if err != nil {
			return nil, InvalidAddressError{Value: raw}
		}

		recipients = append(recipients, recipient)
	}

	message := Message{
		From:    sender,
		To:      recipients,
		Subject: subject,
		Body:    body,
		Date:    c.clock(),
	}

	for _, path := range attachmentPaths {
		content, err := afero.ReadFile(c.fs, path)
		if err != nil {
			log.WarnContext(ctx).
				Str("path", path).
				Err(err).
				Msg("skipping unreadable attachment")

			message.Warnings = append(message.Warnings, AttachmentWarning{Path: path, Reason: err})
			continue
		}

		message.Attachments = append(message.Attachments, Attachment{
			Filename: filepath.Base(path),
			Content:  content,
		})
	}

	return &message, nil
}

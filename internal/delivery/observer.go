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
	"context"

	"github.com/lukasdietrich/postfach/internal/log"
	"github.com/lukasdietrich/postfach/internal/storage"
)

// Observer is notified about the outcome of every per-recipient delivery
// attempt. Notifications happen synchronously during Mailman.Deliver.
type Observer interface {
	MailDelivered(ctx context.Context, record *storage.DeliveryRecord)
	MailFailed(ctx context.Context, recipient string, reason error)
}

// NopObserver ignores all notifications.
type NopObserver struct{}

func (NopObserver) MailDelivered(context.Context, *storage.DeliveryRecord) {}

func (NopObserver) MailFailed(context.Context, string, error) {}

// NewLogObserver creates an Observer that writes every delivery outcome to
// the log.
func NewLogObserver() Observer {
	return logObserver{}
}

type logObserver struct{}

func (logObserver) MailDelivered(ctx context.Context, record *storage.DeliveryRecord) {
	log.InfoContext(ctx).
		Str("to", record.To).
		Str("filename", record.Filename).
		Msg("mail delivered")
}

func (logObserver) MailFailed(ctx context.Context, recipient string, reason error) {
	log.WarnContext(ctx).
		Str("recipient", recipient).
		Err(reason).
		Msg("mail could not be delivered")
}

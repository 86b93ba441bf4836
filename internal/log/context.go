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

package log

import (
	"context"

	"github.com/rs/zerolog"
)

type fieldSession struct{}
type fieldOrigin struct{}
type fieldMailbox struct{}

// WithSession adds the protocol session identifier to the context.
func WithSession(ctx context.Context, session int32) context.Context {
	return context.WithValue(ctx, fieldSession{}, session)
}

// WithOrigin adds the origin of processing to the context.
func WithOrigin(ctx context.Context, origin string) context.Context {
	return context.WithValue(ctx, fieldOrigin{}, origin)
}

// WithMailbox adds the mailbox identifier to the context.
func WithMailbox(ctx context.Context, mailbox string) context.Context {
	return context.WithValue(ctx, fieldMailbox{}, mailbox)
}

// appendContextFields adds defined fields in the context to the log event.
func appendContextFields(ctx context.Context, event *zerolog.Event) *zerolog.Event {
	if session, ok := ctx.Value(fieldSession{}).(int32); ok {
		event.Int32("session", session)
	}

	if origin, ok := ctx.Value(fieldOrigin{}).(string); ok {
		event.Str("origin", origin)
	}

	if mailbox, ok := ctx.Value(fieldMailbox{}).(string); ok {
		event.Str("mailbox", mailbox)
	}

	return event
}

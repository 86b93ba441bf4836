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

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/lukasdietrich/postfach/internal/compose"
	"github.com/lukasdietrich/postfach/internal/log"
	"github.com/lukasdietrich/postfach/internal/transmit"
)

type sendCommand struct {
	Composer *compose.Composer
	Courier  *transmit.Courier
}

func (c *sendCommand) run(args []string) error {
	flags := pflag.NewFlagSet("postfach send", pflag.ContinueOnError)

	var (
		from    = flags.String("from", "", "Sender address")
		to      = flags.StringSlice("to", nil, "Recipient addresses")
		subject = flags.String("subject", "", "Subject line")
		body    = flags.String("body", "", "Plain text body")
		attach  = flags.StringSlice("attach", nil, "Files to attach")
		host    = flags.String("host", "127.0.0.1", "Host of the receiving server")
		port    = flags.Uint16("port", 1025, "Port of the receiving server")
	)

	if err := flags.Parse(args); err != nil {
		return err
	}

	message, err := c.Composer.Compose(context.Background(),
		*from, *to, *subject, *body, *attach)
	if err != nil {
		return err
	}

	for _, warning := range message.Warnings {
		fmt.Fprintf(os.Stderr, "warning: could not attach %q: %v\n",
			warning.Path, warning.Reason)
	}

	result := c.Courier.Send(message, *host, *port)
	if result.Status != transmit.StatusSent {
		return fmt.Errorf("message not sent (%s): %w", result.Status, result.Reason)
	}

	log.Info().
		Str("host", *host).
		Uint16("port", *port).
		Msg("message sent")

	return nil
}

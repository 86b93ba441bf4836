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
	"fmt"

	"github.com/emersion/go-smtp"

	"github.com/lukasdietrich/postfach/internal/log"
)

type serverCommand struct {
	Server *smtp.Server
}

func (c *serverCommand) run(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}

	log.Info().
		Str("addr", c.Server.Addr).
		Str("hostname", c.Server.Domain).
		Msg("starting smtp server")

	return c.Server.ListenAndServe()
}

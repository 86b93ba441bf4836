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

package models

import (
	"net"
	"time"
)

// Envelope is one inbound unit of work as handed over by the protocol
// layer. The addresses are kept as raw strings, because validation of the
// recipients is the job of the delivery engine, not the protocol layer.
// An envelope is not mutated after construction.
type Envelope struct {
	// Helo is the string provided by the smtp client when greeting the server.
	Helo string
	// Addr is the remote address of the sending client.
	Addr net.IP
	// Date is the time when the data transmission began.
	Date time.Time
	// From is the sender address as given in the envelope.
	From string
	// To is the ordered list of recipient addresses. Duplicates are kept.
	To []string
	// Content is the complete raw message including headers.
	Content []byte
}

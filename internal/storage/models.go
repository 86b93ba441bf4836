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

package storage

import (
	"time"
)

// DeliveryRecord is the metadata of one delivered message instance within a
// mailbox. It is written exactly once per (message, recipient) pair and
// never mutated afterwards. The json field names are part of the on-disk
// layout.
type DeliveryRecord struct {
	// Timestamp is the delivery instant. It is informative, not unique.
	Timestamp time.Time `json:"timestamp"`
	// From is the sender address as given in the envelope. It is not
	// necessarily equal to the "From:" header of the content.
	From string `json:"from"`
	// To is the single recipient this record belongs to.
	To string `json:"to"`
	// Subject is taken from the parsed message headers.
	Subject string `json:"subject"`
	// Filename is the name of the raw content file next to this record.
	Filename string `json:"filename"`
}

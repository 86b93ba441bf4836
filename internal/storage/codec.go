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
	"strings"

	"github.com/lukasdietrich/postfach/internal/models"
)

// Mailbox directory names substitute the two characters that are unsafe or
// ambiguous in a path segment. The tokens are part of the on-disk layout
// and must not change between releases.
//
// Known caveat: an address that already contains a token literal in a
// non-canonical position ("we_at_work@example.com") decodes to a different
// address than it encoded from. The layout is an interoperability contract,
// so the tokens stay anyway.
const (
	tokenAt  = "_at_"
	tokenDot = "_dot_"
)

// EncodeMailboxID derives the mailbox directory name for an address. The
// result is a single path segment on all common filesystems and is
// deterministic, distinct addresses map to distinct ids.
func EncodeMailboxID(address models.Address) string {
	raw := address.String()
	raw = strings.ReplaceAll(raw, "@", tokenAt)
	raw = strings.ReplaceAll(raw, ".", tokenDot)

	return raw
}

// DecodeMailboxID is the inverse of EncodeMailboxID for every id it
// produces. For foreign ids the result is a best-effort guess and may fail
// address validation, in which case the mailbox is simply not resolvable.
func DecodeMailboxID(id string) (models.Address, error) {
	raw := strings.ReplaceAll(id, tokenDot, ".")
	raw = strings.ReplaceAll(raw, tokenAt, "@")

	return models.Parse(raw)
}

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
	"errors"
	"strings"
)

var (
	// ErrInvalidAddressFormat is used for addresses without exactly one "@"
	// sign or without a dot in the domain.
	ErrInvalidAddressFormat = errors.New("address: invalid format")

	// ZeroAddress is an invalid, zero value Address.
	ZeroAddress Address
)

// Address is a string of the form "local-part@domain". Addresses are
// compared byte for byte. There is no case-folding, "User@example.com" and
// "user@example.com" are two different addresses.
type Address struct {
	raw string
	at  int
}

// Parse splits an address at the "@" sign. An address must contain exactly
// one "@" and the domain must contain at least one ".".
func Parse(raw string) (Address, error) {
	at := strings.IndexByte(raw, '@')
	if at < 0 || strings.IndexByte(raw[at+1:], '@') >= 0 {
		return ZeroAddress, ErrInvalidAddressFormat
	}

	if !strings.Contains(raw[at+1:], ".") {
		return ZeroAddress, ErrInvalidAddressFormat
	}

	return Address{raw, at}, nil
}

// String returns the raw address provided to Parse.
func (a Address) String() string {
	return a.raw
}

// LocalPart returns the part left of the "@" sign (exclusive).
func (a Address) LocalPart() string {
	return a.raw[:a.at]
}

// Domain return the part right of the "@" sign (exclusive).
func (a Address) Domain() string {
	return a.raw[a.at+1:]
}

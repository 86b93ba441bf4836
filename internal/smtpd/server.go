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

package smtpd

import (
	"time"

	"github.com/emersion/go-smtp"
	"github.com/spf13/viper"
)

func init() {
	viper.SetDefault("smtp.address", ":1025")
	viper.SetDefault("smtp.hostname", "localhost")
	viper.SetDefault("smtp.maxsize", 10<<20)
}

// NewServer creates an smtp server on top of the backend.
//
// `smtp.address` is the address to listen on.
// `smtp.hostname` is the name announced in the greeting.
// `smtp.maxsize` is the maximum message size in bytes.
func NewServer(backend *Backend) *smtp.Server {
	server := smtp.NewServer(backend)

	server.Addr = viper.GetString("smtp.address")
	server.Domain = viper.GetString("smtp.hostname")
	server.MaxMessageBytes = viper.GetInt64("smtp.maxsize")
	server.ReadTimeout = time.Minute
	server.WriteTimeout = time.Minute

	return server
}

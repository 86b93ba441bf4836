//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/lukasdietrich/postfach/internal/compose"
	"github.com/lukasdietrich/postfach/internal/crypto"
	"github.com/lukasdietrich/postfach/internal/delivery"
	"github.com/lukasdietrich/postfach/internal/smtpd"
	"github.com/lukasdietrich/postfach/internal/storage"
	"github.com/lukasdietrich/postfach/internal/transmit"
)

var wireSet = wire.NewSet(
	wire.Struct(new(serverCommand), "*"),
	wire.Struct(new(sendCommand), "*"),
	wire.Struct(new(shellCommand), "*"),

	crypto.WireSet,
	storage.WireSet,
	delivery.WireSet,
	compose.WireSet,
	transmit.WireSet,
	smtpd.WireSet,
)

func newServerCommand() (*serverCommand, error) {
	panic(wire.Build(wireSet))
}

func newSendCommand() (*sendCommand, error) {
	panic(wire.Build(wireSet))
}

func newShellCommand() (*shellCommand, error) {
	panic(wire.Build(wireSet))
}

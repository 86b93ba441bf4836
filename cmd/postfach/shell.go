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
	"errors"

	"github.com/abiosoft/ishell"

	"github.com/lukasdietrich/postfach/internal/models"
	"github.com/lukasdietrich/postfach/internal/storage"
)

type shellCommand struct {
	Mailboxes *storage.Mailboxes
}

func (s *shellCommand) run(args []string) error {
	shell := ishell.New()
	s.setupShell(shell)
	shell.Run()

	return nil
}

func (s *shellCommand) setupShell(shell *ishell.Shell) {
	shell.AddCmd(composeShellCmd(
		ishell.Cmd{
			Name: "mailboxes",
			Help: "inspect mailboxes",
		},
		[]*ishell.Cmd{
			{
				Name: "list",
				Help: "list all mailboxes",
				Func: wrapShellFunc(s.mailboxesList),
			},
		},
	))

	shell.AddCmd(composeShellCmd(
		ishell.Cmd{
			Name: "mails",
			Help: "inspect delivered mails",
		},
		[]*ishell.Cmd{
			{
				Name: "list",
				Help: "list all mails of a mailbox",
				Func: wrapShellFunc(s.mailsList),
			},
			{
				Name: "show",
				Help: "print the raw content of a mail",
				Func: wrapShellFunc(s.mailsShow),
			},
		},
	))
}

func (s *shellCommand) mailboxesList(ctx shellContext) error {
	if !ctx.checkArgs(0) {
		return errors.New("Usage: mailboxes list")
	}

	addresses, err := s.Mailboxes.ListMailboxes(ctx.ctx)
	if err != nil {
		return err
	}

	ctx.printf("\n(%d) Mailboxes:\n", len(addresses))
	for _, address := range addresses {
		ctx.printf("\t%s\n", address)
	}
	ctx.printf("\n")

	return nil
}

func (s *shellCommand) mailsList(ctx shellContext) error {
	if !ctx.checkArgs(1) {
		return errors.New("Usage: mails list [ADDRESS]")
	}

	address, err := models.Parse(ctx.arg(0))
	if err != nil {
		return err
	}

	records, err := s.Mailboxes.ListRecords(ctx.ctx, address)
	if err != nil {
		return err
	}

	ctx.printf("\n(%d) Mails:\n", len(records))
	for _, record := range records {
		ctx.printf("\t%s  %-30q  from %s  (%s)\n",
			record.Timestamp.Format("2006-01-02 15:04:05"),
			record.Subject,
			record.From,
			record.Filename)
	}
	ctx.printf("\n")

	return nil
}

func (s *shellCommand) mailsShow(ctx shellContext) error {
	if !ctx.checkArgs(2) {
		return errors.New("Usage: mails show [ADDRESS] [FILENAME]")
	}

	address, err := models.Parse(ctx.arg(0))
	if err != nil {
		return err
	}

	content, err := s.Mailboxes.ReadRawContent(ctx.ctx, address, ctx.arg(1))
	if err != nil {
		return err
	}

	ctx.printf("%s\n", content)
	return nil
}

type shellContext struct {
	shell *ishell.Context
	ctx   context.Context
}

func (c *shellContext) checkArgs(n int) bool {
	return len(c.shell.Args) == n
}

func (c *shellContext) arg(i int) string {
	return c.shell.Args[i]
}

func (c *shellContext) printf(format string, v ...interface{}) {
	c.shell.Printf(format, v...)
}

func composeShellCmd(cmd ishell.Cmd, children []*ishell.Cmd) *ishell.Cmd {
	for _, child := range children {
		cmd.AddCmd(child)
	}

	return &cmd
}

func wrapShellFunc(fn func(shellContext) error) func(*ishell.Context) {
	return func(shell *ishell.Context) {
		ctx := shellContext{
			shell: shell,
			ctx:   context.Background(),
		}

		if err := fn(ctx); err != nil {
			shell.Err(err)
		}
	}
}

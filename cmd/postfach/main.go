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
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/lukasdietrich/postfach/internal/log"
)

const usageText = `
Usage:
  postfach [OPTIONS] COMMAND [COMMAND OPTIONS]

  Store mail on disk, one folder per mailbox.

Version:
  %s

Commands:
  server    Start the smtp server
  send      Compose a mail and hand it to a server
  shell     Start an interactive inspection shell

Options:
%s
`

var (
	// Version is set at compile-time.
	Version string
)

func init() {
	viper.SetDefault("log.level", "info")
}

func main() {
	var configFilename string

	flags := pflag.NewFlagSet("postfach", pflag.ContinueOnError)
	flags.SetInterspersed(false)
	flags.StringVarP(&configFilename, "config", "c", "", "Path to a configuration file")
	flags.Usage = printUsage(flags)

	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}

		log.Fatal().Err(err).Msg("could not parse arguments")
	}

	switch commandName := flags.Arg(0); commandName {
	case "server", "send", "shell":
		setupConfig(configFilename)
		setupLogger()
		printConfig()
		runCommand(commandName, flags.Args()[1:])
	default:
		flags.Usage()
	}
}

type command interface {
	run(args []string) error
}

func runCommand(commandName string, args []string) {
	var (
		cmd command
		err error
	)

	switch commandName {
	case "server":
		cmd, err = newServerCommand()
	case "send":
		cmd, err = newSendCommand()
	case "shell":
		cmd, err = newShellCommand()
	}

	if err != nil {
		log.Fatal().Err(err).Msg("could not initialize the application")
	}

	if err := cmd.run(args); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

func printUsage(flags *pflag.FlagSet) func() {
	return func() {
		fmt.Fprintf(os.Stderr, usageText,
			Version,
			flags.FlagUsages())
	}
}

func setupLogger() {
	logLevel, err := zerolog.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		log.Fatal().Err(err).Msg("unknown log level")
	}

	log.Info().Str("level", logLevel.String()).Msg("setting log level")
	zerolog.SetGlobalLevel(logLevel)
}

func setupConfig(filename string) {
	viper.SetTypeByDefaultValue(true)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.SetEnvPrefix("POSTFACH")

	if filename != "" {
		readConfig(filename)
	} else {
		log.Info().Msg("no config file provided. using environment only")
	}
}

func readConfig(filename string) {
	log.Info().Str("filename", filename).Msg("loading configuration")
	viper.SetConfigFile(filename)

	if err := viper.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			log.Warn().Err(err).Msg("configuration file missing")
		} else {
			log.Fatal().Err(err).Msg("could not load configuration")
		}
	}
}

func printConfig() {
	keys := viper.AllKeys()
	sort.Strings(keys)

	for _, key := range keys {
		value, _ := json.Marshal(viper.Get(key))

		log.Debug().
			Str("key", key).
			RawJSON("value", value).
			Msg("config entry")
	}
}

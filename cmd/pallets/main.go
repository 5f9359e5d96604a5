// Copyright (c) 2019 Perlin
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
// the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
// FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
// COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
// IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/perlin-network/pallets/conf"
	"github.com/perlin-network/pallets/log"
	"github.com/perlin-network/pallets/sys"
	"github.com/urfave/cli"
)

func main() {
	if err := Run(os.Args, os.Stdout); err != nil {
		logger := log.Node()
		logger.Fatal().Err(err).Msg("Command failed.")
	}
}

// Run executes the pallets command line with args, printing results to stdout.
func Run(args []string, stdout io.Writer) error {
	app := cli.NewApp()

	app.Name = "pallets"
	app.Author = "Perlin Network"
	app.Email = "support@perlin.net"
	app.Version = sys.Version
	app.Usage = "inspect and drive runtime pallet state"
	app.Writer = stdout

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "db",
			Usage: "directory of the leveldb state `DIR`; state is kept in memory if empty",
		},
		cli.StringFlag{
			Name:  "loglevel, ll",
			Value: "info",
			Usage: "minimum log level `LEVEL` (debug, info, warn, error)",
		},
		cli.StringFlag{
			Name:  "log.modules",
			Value: strings.Join(defaultModules, ","),
			Usage: "comma-separated `MODULES` whose logs are printed",
		},
		cli.Uint64Flag{
			Name:  "gas.ref_time",
			Value: conf.GetGasPerRefTime(),
			Usage: "gas charged per `UNITS` of ref time, before dividing",
		},
		cli.Uint64Flag{
			Name:  "gas.proof_size",
			Value: conf.GetGasPerProofSize(),
			Usage: "gas charged per `UNITS` of proof size, before dividing",
		},
		cli.Uint64Flag{
			Name:  "gas.divisor",
			Value: conf.GetWeightToGasDivisor(),
			Usage: "`DIVISOR` applied to weighted gas",
		},
		cli.Uint64Flag{
			Name:  "block",
			Value: 1,
			Usage: "current block `HEIGHT` challenges are checked against",
		},
	}

	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Fprintf(c.App.Writer, "Version: %s\n", c.App.Version)
		fmt.Fprintf(c.App.Writer, "Go Version: %s\n", sys.GoVersion)
		fmt.Fprintf(c.App.Writer, "Git Commit: %s\n", sys.GitCommit)
		fmt.Fprintf(c.App.Writer, "OS/Arch: %s\n", sys.OSArch)
		fmt.Fprintf(c.App.Writer, "Built: %s\n", c.App.Compiled.Format(time.ANSIC))
	}

	app.Before = func(c *cli.Context) error {
		log.SetWriter(log.LoggerDefault, log.NewConsoleWriter(os.Stderr, log.FilterFor(strings.Split(c.String("log.modules"), ",")...)))
		log.SetLevel(c.String("loglevel"))

		conf.Update(
			conf.WithGasPerRefTime(c.Uint64("gas.ref_time")),
			conf.WithGasPerProofSize(c.Uint64("gas.proof_size")),
			conf.WithWeightToGasDivisor(c.Uint64("gas.divisor")),
		)

		return nil
	}

	app.Commands = []cli.Command{
		{
			Name:      "genesis",
			Usage:     "assimilate a genesis into state and print its checksum",
			ArgsUsage: "[genesis.json]",
			Action:    genesisAction,
		},
		{
			Name:  "gas",
			Usage: "query and adjust gas tanks",
			Subcommands: []cli.Command{
				{
					Name:      "check",
					Usage:     "print the gas available to an account, or what a request would leave",
					ArgsUsage: "<account> [gas]",
					Action:    gasCheckAction,
				},
				{
					Name:      "burn",
					Usage:     "burn gas from an account's tank",
					ArgsUsage: "<account> <gas>",
					Action:    gasBurnAction,
				},
				{
					Name:      "refuel",
					Usage:     "add gas to an account's tank",
					ArgsUsage: "<account> <gas>",
					Action:    gasRefuelAction,
				},
			},
		},
		{
			Name:  "device",
			Usage: "manage the devices an account authenticates with",
			Subcommands: []cli.Command{
				{
					Name:      "register",
					Usage:     "register the device derived from a hex seed",
					ArgsUsage: "<seed> <account>",
					Action:    deviceRegisterAction,
				},
				{
					Name:      "list",
					Usage:     "list an account's devices",
					ArgsUsage: "<account>",
					Action:    deviceListAction,
				},
			},
		},
		{
			Name:      "apply",
			Usage:     "sign a call with a device and apply it",
			ArgsUsage: "<seed> <account> <call> [arguments...]",
			Action:    applyAction,
		},
		{
			Name:      "listings",
			Usage:     "print an inventory and its items as JSON",
			ArgsUsage: "<merchant/id>",
			Action:    listingsShowAction,
		},
		{
			Name:   "calls",
			Usage:  "list the calls that can be applied",
			Action: callsAction,
		},
	}

	return app.Run(args)
}

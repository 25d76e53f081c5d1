package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
	"gitlab.com/pagevet/clicmds"
)

func main() {
	app := cli.NewApp()
	app.Name = "pagevet"
	app.Version = "0.1"
	app.Usage = "drive a browser through a deployed app and verify its runtime signals"
	app.Commands = []*cli.Command{
		{
			Name:    "verify",
			Aliases: []string{"v"},
			Usage:   "run the verification walk and report a verdict",
			Action:  clicmds.Verify,
			Flags:   clicmds.VerifyFlags(),
		},
	}
	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

package main

import (
	"os"

	"github.com/jfrog/packagecloud-publisher-go/cli"
	"github.com/jfrog/packagecloud-publisher-go/utils"
	clitool "github.com/urfave/cli/v2"
)

var log utils.Log

func main() {
	log = utils.NewDefaultLogger(utils.GetLogLevel(os.Getenv("PACKAGECLOUD_LOG_LEVEL")))
	app := &clitool.App{
		Name:     cli.ToolName,
		Usage:    "publish build artifacts to packagecloud",
		Version:  cli.Version,
		Commands: cli.GetCommands(log),
	}
	err := app.Run(os.Args)
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"

	_ "wake_scheduler/docs"

	"github.com/urfave/cli"
)

const appName = "wake_scheduler"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var globalFlags = []cli.Flag{
	cli.StringFlag{
		Name:   "config-dir, c",
		Usage:  "directory holding config.yml",
		EnvVar: "WAKE_SCHEDULER_CONFIG_DIR",
		Value:  "configs",
	},
	cli.StringFlag{
		Name:   "env-file, e",
		Usage:  "dotenv file loaded before the environment is read",
		EnvVar: "WAKE_SCHEDULER_ENV_FILE",
		Value:  ".env",
	},
}

var planFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "at",
		Usage: "evaluation time in RFC3339 (default: now)",
	},
	cli.Float64Flag{
		Name:  "voltage, v",
		Usage: "battery voltage; negative reads the configured sensor",
		Value: -1,
	},
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = appName
	app.Usage = "decides when a battery powered device sleeps and when its RTC wakes it up"
	app.UsageText = appName + " [global options] [run|plan] [arguments...]"
	app.Flags = globalFlags
	app.Action = runDaemon
	app.Commands = []cli.Command{
		{
			Name:   "run",
			Usage:  "boot the engine, serve the API and power down when the on duration elapses",
			Action: runDaemon,
		},
		{
			Name:      "plan",
			Aliases:   []string{"p"},
			Usage:     "print the schedule and the wake decision without touching the RTC",
			UsageText: appName + " plan [--at RFC3339] [--voltage V]",
			Action:    printPlan,
			Flags:     planFlags,
		},
	}
	return app
}

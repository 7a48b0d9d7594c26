package main

import (
	"fmt"
	slogging "log/slog"
	"os"

	"github.com/carlmjohnson/versioninfo"
	"github.com/urfave/cli/v2"

	_ "github.com/joho/godotenv/autoload"
)

var (
	slog    = slogging.New(slogging.NewJSONHandler(os.Stdout, nil))
	version = versioninfo.Short()
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(-1)
	}
}

func run(args []string) error {

	app := cli.App{
		Name:  "quarterdeck",
		Usage: "server-rendered moderation console for a Twitarr-style store",
	}

	app.Commands = []*cli.Command{
		&cli.Command{
			Name:   "serve",
			Usage:  "run the server",
			Action: serve,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "api-host",
					Usage:   "method, hostname, and port of the upstream store",
					Value:   "http://localhost:8081",
					EnvVars: []string{"QUARTERDECK_API_HOST"},
				},
				&cli.StringFlag{
					Name:     "bind",
					Usage:    "Specify the local IP/port to bind to",
					Required: false,
					Value:    ":8280",
					EnvVars:  []string{"QUARTERDECK_BIND"},
				},
				&cli.StringFlag{
					Name:     "session-secret",
					Usage:    "random string/token used for session cookie security",
					Required: true,
					EnvVars:  []string{"QUARTERDECK_SESSION_SECRET"},
				},
				&cli.StringFlag{
					Name:    "service-token",
					Usage:   "store token for the console's service account; used to push quarantine thresholds at startup",
					EnvVars: []string{"QUARTERDECK_SERVICE_TOKEN"},
				},
				&cli.StringFlag{
					Name:    "redis-url",
					Usage:   "redis connection URL for the category title cache (optional; in-process cache if unset)",
					EnvVars: []string{"QUARTERDECK_REDIS_URL"},
				},
				&cli.IntFlag{
					Name:    "twarrt-quarantine-threshold",
					Usage:   "open report count at which the store auto-quarantines a twarrt",
					Value:   3,
					EnvVars: []string{"QUARTERDECK_TWARRT_QUARANTINE_THRESHOLD"},
				},
				&cli.IntFlag{
					Name:    "forumpost-quarantine-threshold",
					Usage:   "open report count at which the store auto-quarantines a forum post",
					Value:   3,
					EnvVars: []string{"QUARTERDECK_FORUMPOST_QUARANTINE_THRESHOLD"},
				},
				&cli.IntFlag{
					Name:    "user-quarantine-threshold",
					Usage:   "open report count at which the store auto-quarantines a user profile",
					Value:   5,
					EnvVars: []string{"QUARTERDECK_USER_QUARANTINE_THRESHOLD"},
				},
				&cli.BoolFlag{
					Name:     "debug",
					Usage:    "Enable debug mode",
					Value:    false,
					Required: false,
					EnvVars:  []string{"DEBUG"},
				},
			},
		},
		&cli.Command{
			Name:  "version",
			Usage: "print version",
			Action: func(cctx *cli.Context) error {
				fmt.Println(version)
				return nil
			},
		},
	}

	return app.Run(args)
}

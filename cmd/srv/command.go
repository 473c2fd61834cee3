package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() {
	s.app = cli.NewApp()
	s.app.Name = "prizechest"
	s.app.Usage = "Shared prize draw with conflict-safe claims"
	s.app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Value:   "config.toml",
			Usage:   "Path to the TOML configuration file",
			EnvVars: []string{"PRIZECHEST_CONFIG"},
		},
	}
	s.app.Before = s.loadContext
	s.app.Commands = []*cli.Command{
		{
			Action:      s.startApi,
			Name:        "api",
			Usage:       "Start the api server",
			Category:    "Api",
			Description: `Serves the claim, configuration and winner APIs and the live subscription endpoint.`,
		},
		{
			Action:      s.startMigrate,
			Name:        "migrate",
			Usage:       "Create or update the database tables",
			Category:    "Database",
			Description: `Only needed by the database backend.`,
		},
		{
			Action:   s.startDraw,
			Name:     "draw",
			Usage:    "Claim once from the command line",
			Category: "Tool",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "name",
					Usage:    "Claimant name",
					Required: true,
				},
			},
		},
	}
}

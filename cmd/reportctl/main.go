package main

import (
	"os"

	"github.com/electroitzone/report-dashboard/backend-go/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func filterFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "from", Usage: "Start date (YYYY-MM-DD), defaults to today"},
		&cli.StringFlag{Name: "to", Usage: "End date (YYYY-MM-DD), defaults to today"},
		&cli.StringFlag{Name: "brand", Usage: "Brand filter for the sales report"},
		&cli.StringFlag{Name: "customer", Usage: "Customer filter for the sales report"},
		&cli.IntFlag{Name: "month", Usage: "Month (1-12) for the HR report"},
		&cli.IntFlag{Name: "year", Usage: "Year for the HR report"},
	}
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "kind", Usage: "tables, charts or both", Value: "both"},
		&cli.StringFlag{Name: "format", Usage: "xlsx or csv", Value: "xlsx"},
		&cli.StringFlag{Name: "out", Usage: "Output directory", Value: "."},
		&cli.BoolFlag{Name: "charts", Usage: "Embed native charts in xlsx exports"},
		&cli.BoolFlag{Name: "upload", Usage: "Upload to export storage and print the link"},
	}
}

func reportFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "report",
		Aliases:  []string{"r"},
		Usage:    "Report key, see the list command",
		Required: true,
	}
}

func main() {
	app := &cli.App{
		Name:  "reportctl",
		Usage: "Run store reports from the command line",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level",
				Value:   "warn",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			// stdout carries command output.
			logger.Log = logger.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}, zerolog.InfoLevel)
			logger.SetLevel(c.String("log-level"))
			log.Logger = logger.Log
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List the available reports",
				Action: listReports,
			},
			{
				Name:   "run",
				Usage:  "Run a report and print its tables and charts as JSON",
				Flags:  append([]cli.Flag{reportFlag()}, filterFlags()...),
				Before: initServices,
				After:  closeServices,
				Action: runReport,
			},
			{
				Name:  "export-all",
				Usage: "Export several reports concurrently",
				Flags: append(append([]cli.Flag{
					&cli.StringSliceFlag{Name: "report", Aliases: []string{"r"}, Usage: "Report keys, all reports when omitted"},
					&cli.IntFlag{Name: "workers", Usage: "Concurrent exports", Value: 4},
				}, outputFlags()...), filterFlags()...),
				Before: initServices,
				After:  closeServices,
				Action: exportAll,
			},
			{
				Name:  "export",
				Usage: "Run a report and write it as an xlsx or csv file",
				Flags: append(append([]cli.Flag{reportFlag()}, outputFlags()...), filterFlags()...),
				Before: initServices,
				After:  closeServices,
				Action: exportReport,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("reportctl failed")
	}
}

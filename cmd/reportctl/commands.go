package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/electroitzone/report-dashboard/backend-go/internal/api"
	"github.com/electroitzone/report-dashboard/backend-go/internal/app"
	"github.com/electroitzone/report-dashboard/backend-go/internal/batch"
	"github.com/electroitzone/report-dashboard/backend-go/internal/config"
	"github.com/electroitzone/report-dashboard/backend-go/internal/domain"
	"github.com/electroitzone/report-dashboard/backend-go/internal/export"
	"github.com/electroitzone/report-dashboard/backend-go/internal/report"
	"github.com/electroitzone/report-dashboard/backend-go/internal/repository"
	"github.com/electroitzone/report-dashboard/backend-go/internal/service"
	"github.com/urfave/cli/v2"
)

type contextKey string

const (
	servicesKey contextKey = "services"
	cleanupKey  contextKey = "cleanup"
)

func initServices(c *cli.Context) error {
	cfg := config.Load()
	cfg.Database.Required = true

	gateway, err := app.OpenGateway(c.Context, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	services, closeFn, err := app.Services(cfg, gateway)
	if err != nil {
		_ = gateway.Close()
		return err
	}

	c.Context = context.WithValue(c.Context, servicesKey, services)
	c.Context = context.WithValue(c.Context, cleanupKey, func() {
		closeFn()
		_ = gateway.Close()
	})
	return nil
}

func closeServices(c *cli.Context) error {
	if cleanup, ok := c.Context.Value(cleanupKey).(func()); ok {
		cleanup()
	}
	return nil
}

func servicesFrom(c *cli.Context) (*api.Services, error) {
	services, ok := c.Context.Value(servicesKey).(*api.Services)
	if !ok || services == nil {
		return nil, fmt.Errorf("services are not initialized")
	}
	return services, nil
}

func filterFrom(c *cli.Context) (domain.FilterState, error) {
	return domain.FilterInput{
		FromDate: c.String("from"),
		ToDate:   c.String("to"),
		Month:    c.Int("month"),
		Year:     c.Int("year"),
		Brand:    c.String("brand"),
		Customer: c.String("customer"),
	}.ToState()
}

func listReports(c *cli.Context) error {
	// Listing needs no database; the registry is static.
	reports := service.NewReportService(repository.NewUnavailableGateway(), report.Default()).Reports()

	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tLABEL\tPROCEDURE\tFILTERS")
	for _, d := range reports {
		fmt.Fprintf(w, "%s\t%s\t%s\t%v\n", d.Key, d.Label, d.Procedure, d.Filters)
	}
	return w.Flush()
}

func runReport(c *cli.Context) error {
	services, err := servicesFrom(c)
	if err != nil {
		return err
	}
	filter, err := filterFrom(c)
	if err != nil {
		return err
	}

	res, err := services.Reports.Run(c.Context, c.String("report"), filter, service.RunOptions{})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Report string         `json:"report"`
		Params domain.Params  `json:"params"`
		Tables []domain.Table `json:"tables"`
		Charts domain.Charts  `json:"charts"`
	}{res.Report, res.Params, res.Tables, res.Charts})
}

func exportReport(c *cli.Context) error {
	services, err := servicesFrom(c)
	if err != nil {
		return err
	}
	filter, err := filterFrom(c)
	if err != nil {
		return err
	}

	res, err := services.Reports.Export(c.Context, c.String("report"), filter, exportOptions(c))
	if err != nil {
		return err
	}

	if res.Object != nil {
		fmt.Fprintf(c.App.Writer, "uploaded %s (%d bytes)\n%s\n", res.Object.Key, res.Object.Size, res.Object.URL)
		return nil
	}

	path, err := fileSink(c.String("out"))(res.Artifact)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "wrote %s (%d bytes)\n", path, len(res.Artifact.Data))
	return nil
}

func exportAll(c *cli.Context) error {
	services, err := servicesFrom(c)
	if err != nil {
		return err
	}
	filter, err := filterFrom(c)
	if err != nil {
		return err
	}

	keys := c.StringSlice("report")
	if len(keys) == 0 {
		for _, d := range services.Reports.Reports() {
			keys = append(keys, d.Key)
		}
	}

	runner := batch.NewRunner(services.Reports, fileSink(c.String("out")), batch.Config{
		WorkerCount: c.Int("workers"),
		Options:     exportOptions(c),
	})
	jobs, err := runner.Run(c.Context, keys, filter)

	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "REPORT\tSTATUS\tSIZE\tLOCATION")
	for _, job := range jobs {
		location := job.Location
		if job.Status == batch.StatusFailed {
			location = job.Error
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", job.Report, job.Status, job.Size, location)
	}
	if flushErr := w.Flush(); flushErr != nil {
		return flushErr
	}
	if err != nil {
		return err
	}

	summary := batch.Summarize(jobs)
	fmt.Fprintf(c.App.Writer, "%d exported, %d failed\n", summary.Completed, summary.Failed)
	if summary.Failed > 0 {
		return cli.Exit("some reports failed to export", 1)
	}
	return nil
}

func exportOptions(c *cli.Context) service.ExportOptions {
	return service.ExportOptions{
		Kind:          export.Kind(c.String("kind")),
		Format:        export.Format(c.String("format")),
		IncludeCharts: c.Bool("charts"),
		Upload:        c.Bool("upload"),
	}
}

// fileSink writes artifacts under dir, creating it on first use.
func fileSink(dir string) batch.Sink {
	return func(artifact *export.Artifact) (string, error) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed creating directory %s: %w", dir, err)
		}
		path := filepath.Join(dir, artifact.Filename)
		if err := os.WriteFile(path, artifact.Data, 0o644); err != nil {
			return "", fmt.Errorf("failed writing %s: %w", path, err)
		}
		return path, nil
	}
}

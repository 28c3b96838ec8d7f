package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"report_gen/internal/config"
	"report_gen/internal/importer"
	"report_gen/internal/infrastructure/sql"
	"report_gen/internal/logging"
	"report_gen/internal/models"
	"report_gen/internal/report"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewGenerateCmd creates the generate command.
func NewGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render a report to stdout or a file",
		Long: `Generate renders a report for one viewer.

Items come from a file (--items, .xlsx, .yaml, .yml or .json) or from the
items table of a database (--driver and --dsn, optionally narrowed with a
read-only --query). Without --user the report
has no viewer: CSV output then lists no rows and HTML output fails.

Examples:
  report generate --type CSV --user alice --role ADMIN --items items.json
  report generate --type HTML --user bob --driver sqlite3 --dsn report_gen.db --out bob.html`,
		Args: cobra.NoArgs,
		RunE: runGenerateCmd,
	}

	cmd.Flags().StringP("type", "t", string(report.CSV), "Report type ("+reportTypeList()+")")
	cmd.Flags().StringP("user", "u", "", "Viewer name")
	cmd.Flags().StringP("role", "r", string(models.RoleUser), "Viewer role (ADMIN or USER)")
	cmd.Flags().StringP("items", "i", "", "Item file to render")
	cmd.Flags().String("driver", "sqlite3", "Database driver for stored items (postgres or sqlite3)")
	cmd.Flags().String("dsn", "", "Database DSN for stored items")
	cmd.Flags().String("query", "", "Read-only SELECT returning id, name and value columns (with --dsn)")
	cmd.Flags().StringP("out", "o", "", "Write the report to this file instead of stdout")

	return cmd
}

func runGenerateCmd(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	reportType, _ := flags.GetString("type")
	name, _ := flags.GetString("user")
	role, _ := flags.GetString("role")
	itemsPath, _ := flags.GetString("items")
	driver, _ := flags.GetString("driver")
	dsn, _ := flags.GetString("dsn")
	query, _ := flags.GetString("query")
	out, _ := flags.GetString("out")

	logger := newLogger(cmd)

	var viewer *models.User
	if name != "" {
		viewer = &models.User{Name: name, Role: models.Role(role)}
	}

	doc, err := render(cmd.Context(), reportType, viewer, source{
		itemsPath: itemsPath,
		driver:    driver,
		dsn:       dsn,
		query:     query,
	})
	if err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"type":  doc.Type,
		"rows":  doc.ItemCount,
		"total": doc.Total,
	}).Debug("Report rendered")

	if out == "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), doc.Content)
		return err
	}
	if err := os.WriteFile(out, []byte(doc.Content+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	logger.WithField("path", out).Info("Report written")
	return nil
}

// source names where generate reads its items from.
type source struct {
	itemsPath string
	driver    string
	dsn       string
	query     string
}

func render(ctx context.Context, reportType string, viewer *models.User, src source) (*report.Document, error) {
	switch {
	case src.itemsPath != "" && src.dsn != "":
		return nil, errors.New("--items and --dsn are mutually exclusive")
	case src.query != "" && src.dsn == "":
		return nil, errors.New("--query requires --dsn")
	case src.itemsPath != "":
		items, err := importer.LoadFile(src.itemsPath)
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []models.Item{}
		}
		return report.NewGenerator(nil).Render(reportType, viewer, items)
	case src.dsn != "":
		driver := src.driver
		if driver == "sqlite" {
			driver = "sqlite3"
		}
		db, err := sql.Open(driver, src.dsn)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		store := sql.ItemRepository{DB: db, Query: src.query}
		return report.NewGenerator(store).GenerateFromStore(ctx, reportType, viewer)
	default:
		return nil, errors.New("either --items or --dsn is required")
	}
}

func reportTypeList() string {
	types := report.ReportTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

func newLogger(cmd *cobra.Command) *logrus.Logger {
	level := "info"
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = "debug"
	}
	return logging.New(config.Logging{Level: level, Format: "text"}, cmd.ErrOrStderr())
}

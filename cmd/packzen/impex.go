package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/erazemk/packzen/internal/client"
	"github.com/erazemk/packzen/internal/impex"
	"github.com/erazemk/packzen/internal/model"
)

// formatFor picks csv or yaml from an explicit flag or the file extension.
func formatFor(flag, path string) (string, error) {
	f := strings.ToLower(flag)
	if f == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			f = "yaml"
		default:
			f = "csv"
		}
	}
	if f != "csv" && f != "yaml" {
		return "", fmt.Errorf("unknown format %q (want csv or yaml)", flag)
	}
	return f, nil
}

func newImportCmd(a *app) *cobra.Command {
	var tripID, format string

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import a CSV or YAML packing list into a trip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			f, err := formatFor(format, args[0])
			if err != nil {
				return err
			}
			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			var rows []impex.Row
			if f == "yaml" {
				rows, err = impex.ReadYAML(file)
			} else {
				rows, err = impex.ReadCSV(file)
			}
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			c, err := a.login(ctx)
			if err != nil {
				return err
			}
			report, err := impex.NewImporter(tripDestination{c: c, t: c.Trip(tripID)}, nil).Import(ctx, rows)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d of %d items\n", report.Created, len(rows))
			for _, e := range report.Errors {
				fmt.Fprintf(out, "  %v\n", e)
			}
			if report.Failed > 0 {
				return fmt.Errorf("%d items failed to import", report.Failed)
			}
			return nil
		},
	}
	tripFlag(cmd, &tripID)
	cmd.Flags().StringVar(&format, "format", "", "csv or yaml (default: from the file extension)")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var tripID, format, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a trip as a CSV or YAML packing list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			f, err := formatFor(format, output)
			if err != nil {
				return err
			}
			c, err := a.login(ctx)
			if err != nil {
				return err
			}
			snap, err := c.Trip(tripID).Snapshot(ctx)
			if err != nil {
				return err
			}
			rows := impex.FromSnapshot(snap)

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				file, err := os.Create(output)
				if err != nil {
					return err
				}
				defer file.Close()
				w = file
			}
			if f == "yaml" {
				return impex.WriteYAML(w, rows)
			}
			return impex.WriteCSV(w, rows)
		},
	}
	tripFlag(cmd, &tripID)
	cmd.Flags().StringVar(&format, "format", "", "csv or yaml (default: from the output extension, else csv)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

// tripDestination adapts the API client to the importer.
type tripDestination struct {
	c *client.Client
	t *client.Trip
}

func (d tripDestination) Snapshot(ctx context.Context) (*model.Snapshot, error) {
	return d.t.Snapshot(ctx)
}

func (d tripDestination) CreateBag(ctx context.Context, name string) (*model.Bag, error) {
	return d.t.CreateBag(ctx, name, model.BagTypeCustom, "")
}

func (d tripDestination) CreateCategory(ctx context.Context, name string) (*model.Category, error) {
	return d.c.CreateCategory(ctx, name, "")
}

func (d tripDestination) CreateItem(ctx context.Context, it impex.Item) (*model.TripItem, error) {
	return d.t.CreateItem(ctx, client.NewItem{
		Name:            it.Name,
		Notes:           it.Notes,
		Quantity:        it.Quantity,
		Packed:          it.Packed,
		Skipped:         it.Skipped,
		IsContainer:     it.IsContainer,
		CategoryID:      it.CategoryID,
		BagID:           it.BagID,
		ContainerItemID: it.ContainerID,
	})
}

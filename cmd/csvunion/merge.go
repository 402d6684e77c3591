package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csvunion/internal/core"
	"github.com/JonMunkholm/csvunion/internal/export"
	"github.com/JonMunkholm/csvunion/internal/manifest"
)

func newMergeCmd(opts *options) *cobra.Command {
	var (
		manifestPath string
		format       string
		out          string
	)

	cmd := &cobra.Command{
		Use:   "merge [name=]locator...",
		Short: "Merge tables and write the result",
		Long: `Merge fetches every table, infers its column types and concatenates the rows
over the union of all columns. A table is given as name=locator or as a bare
locator named after its file. Locators are http(s):// URLs, s3://bucket/key
objects or local paths.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			specs, fileFormat, err := mergeSpecs(manifestPath, args)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("format") && fileFormat != "" {
				format = fileFormat
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			svc, err := opts.newService(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			res, err := svc.Merge(cmd.Context(), specs)
			if err != nil {
				return err
			}

			return writeOutput(cmd.OutOrStdout(), out, func(w io.Writer) error {
				return export.Write(w, f, res.Merged)
			})
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "YAML manifest listing the tables")
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatRows), "json, columns, matrix, csv, arrow or html")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to this file instead of stdout")
	return cmd
}

// mergeSpecs combines the manifest tables, if any, with the argument tables.
func mergeSpecs(manifestPath string, args []string) ([]core.TableSpec, string, error) {
	var (
		specs  []core.TableSpec
		format string
	)
	if manifestPath != "" {
		m, err := manifest.Load(manifestPath)
		if err != nil {
			return nil, "", err
		}
		specs = append(specs, m.Tables...)
		format = m.Format
	}

	if len(args) > 0 {
		argSpecs, err := manifest.ParseSpecs(args)
		if err != nil {
			return nil, "", err
		}
		specs = append(specs, argSpecs...)
	}

	if len(specs) == 0 {
		return nil, "", errors.New("name at least one table or pass --manifest")
	}
	return specs, format, nil
}

// writeOutput runs write against path, or stdout when path is empty.
func writeOutput(stdout io.Writer, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

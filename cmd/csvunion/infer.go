package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csvunion/internal/manifest"
)

func newInferCmd(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "infer [name=]locator",
		Short: "Print the inferred type of every column of one table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := manifest.ParseSpec(args[0])
			if err != nil {
				return err
			}

			svc, err := opts.newService(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			t, err := svc.Load(cmd.Context(), spec)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(t.Schema())
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "FIELD\tTYPE\n")
			for _, ft := range t.Schema() {
				fmt.Fprintf(tw, "%s\t%s\n", ft.Name, ft.Type)
			}
			fmt.Fprintf(tw, "\n%d rows\n", t.Len())
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the schema as JSON")
	return cmd
}

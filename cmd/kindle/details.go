package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/Phrasing/kindle"
)

func newDetailsCmd(root *rootOptions) *cobra.Command {
	var (
		workers int
		format  string
	)

	cmd := &cobra.Command{
		Use:   "details <asin>...",
		Short: "Show reading progress and metadata for books",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == formatTable {
				format = formatYAML
			}
			if err := validateFormat(format); err != nil {
				return err
			}

			k, err := connect(cmd, root)
			if err != nil {
				return err
			}

			books, err := k.Books(cmd.Context(), &kindle.QueryOptions{FetchAllPages: true})
			if err != nil {
				return err
			}

			var selected []*kindle.Book
			for _, b := range books {
				if slices.Contains(args, b.ASIN) {
					selected = append(selected, b)
				}
			}
			if len(selected) != len(args) {
				return fmt.Errorf("found %d of %d requested books in the library", len(selected), len(args))
			}

			details, err := k.FetchDetails(cmd.Context(), selected, workers)
			if err != nil {
				return err
			}
			return writeValue(cmd.OutOrStdout(), format, details)
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 4, "Concurrent detail requests")
	cmd.Flags().StringVarP(&format, "format", "f", formatYAML, "Output format (json, yaml)")

	return cmd
}

func newDeviceCmd(root *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "device",
		Short: "Register the web reader device and print its info",
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == formatTable {
				format = formatYAML
			}
			if err := validateFormat(format); err != nil {
				return err
			}

			k, err := connect(cmd, root)
			if err != nil {
				return err
			}
			return writeValue(cmd.OutOrStdout(), format, k.DeviceInfo())
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatYAML, "Output format (json, yaml)")

	return cmd
}

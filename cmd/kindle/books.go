package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Phrasing/kindle"
)

type booksOptions struct {
	all    bool
	sort   string
	size   int
	search string
	format string
}

func newBooksCmd(root *rootOptions) *cobra.Command {
	opts := &booksOptions{}

	cmd := &cobra.Command{
		Use:   "books",
		Short: "List books in the library",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(opts.format); err != nil {
				return err
			}

			k, err := connect(cmd, root)
			if err != nil {
				return err
			}

			books, err := k.Books(cmd.Context(), &kindle.QueryOptions{
				SortType:      opts.sort,
				QuerySize:     opts.size,
				FetchAllPages: opts.all,
				SearchTerm:    opts.search,
			})
			if err != nil {
				return err
			}

			data := make([]kindle.BookData, 0, len(books))
			for _, b := range books {
				data = append(data, b.BookData)
			}
			return writeBooks(cmd.OutOrStdout(), opts.format, data)
		},
	}

	cmd.Flags().BoolVarP(&opts.all, "all", "a", false, "Fetch every page instead of the first")
	cmd.Flags().StringVar(&opts.sort, "sort", kindle.SortAcquisitionDesc,
		fmt.Sprintf("Sort order (%s, %s, %s, %s, %s)",
			kindle.SortAcquisitionDesc, kindle.SortAcquisitionAsc, kindle.SortRecency, kindle.SortTitle, kindle.SortAuthor))
	cmd.Flags().IntVar(&opts.size, "size", 0, "Books per page (default 50)")
	cmd.Flags().StringVarP(&opts.search, "search", "s", "", "Only list books matching this term")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatTable, "Output format (table, json, yaml)")

	return cmd
}

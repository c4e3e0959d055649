package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/justyntemme/brahmand-t/internal/catalog"
	"github.com/justyntemme/brahmand-t/internal/ui/styles"
)

var (
	listQuery    string
	listCategory string
	listFeatured bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the issues in the catalog, latest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup("normal")
		if err != nil {
			return err
		}
		defer e.close()

		issues := e.store.Get().Search(catalog.Filter{
			Query:        listQuery,
			Category:     listCategory,
			FeaturedOnly: listFeatured,
		})

		w := cmd.OutOrStdout()
		if structured, err := output(w, issues); structured {
			return err
		}
		if len(issues) == 0 {
			fmt.Fprintln(w, "No issues found.")
			return nil
		}

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTITLE\tRELEASED\tPAGES\tCATEGORY")
		for _, m := range issues {
			title := styles.TruncateText(m.Title, 40)
			if m.Featured {
				title += " ★"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", m.ID, title, m.ReleaseDate, m.TotalPages(), m.Category)
		}
		return tw.Flush()
	},
}

func init() {
	listCmd.Flags().StringVarP(&listQuery, "query", "q", "", "only issues matching the query")
	listCmd.Flags().StringVar(&listCategory, "category", "", "only issues of a category")
	listCmd.Flags().BoolVar(&listFeatured, "featured", false, "only featured issues")
}

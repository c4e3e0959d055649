package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/justyntemme/brahmand-t/internal/pagination"
	"github.com/justyntemme/brahmand-t/internal/preload"
)

var (
	pagesLayout string
	pagesWidth  int
	pagesSpread int
	pagesGoTo   int
	pagesRadius int
)

// spreadInfo describes one spread of an issue
type spreadInfo struct {
	Spread  int   `yaml:"spread" json:"spread"`
	Pages   []int `yaml:"pages" json:"pages"`
	Last    bool  `yaml:"last,omitempty" json:"last,omitempty"`
	Preload []int `yaml:"preload,omitempty" json:"preload,omitempty"`
}

var pagesCmd = &cobra.Command{
	Use:   "pages <id>",
	Short: "Show how the flipbook lays out the pages of an issue",
	Long: `Show how the flipbook lays out the pages of an issue.

Without --spread or --goto every spread is listed. With one of them only that
spread is shown, along with the pages the flipbook preloads around it.

Examples:
  brahmand-t pages brahmand-2 --layout spread
  brahmand-t pages brahmand-2 --goto 17 --radius 2
  brahmand-t pages brahmand-2 --width 80     # layout for an 80 column terminal`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup("normal")
		if err != nil {
			return err
		}
		defer e.close()

		m := resolve(cmd, e, args[0])
		total := m.TotalPages()

		layout := pagination.LayoutForWidth(pagesWidth, e.cfg.Viewer.SpreadMinWidth)
		if pagesLayout != "" {
			if layout, err = pagination.ParseLayout(pagesLayout); err != nil {
				return err
			}
		}
		radius := e.cfg.Viewer.PreloadRadius
		if cmd.Flags().Changed("radius") {
			radius = pagesRadius
		}

		var spreads []spreadInfo
		switch {
		case cmd.Flags().Changed("goto"):
			s, err := pagination.GoToPage(pagesGoTo, total, layout)
			if err != nil {
				return err
			}
			spreads = append(spreads, describeSpread(s, total, radius, layout, true))
		case cmd.Flags().Changed("spread"):
			if pagesSpread < 0 || pagesSpread > pagination.LastSpread(total, layout) {
				return fmt.Errorf("spread %d not in [0, %d]", pagesSpread, pagination.LastSpread(total, layout))
			}
			spreads = append(spreads, describeSpread(pagesSpread, total, radius, layout, true))
		default:
			for s := 0; s < pagination.SpreadCount(total, layout); s++ {
				spreads = append(spreads, describeSpread(s, total, radius, layout, false))
			}
		}

		w := cmd.OutOrStdout()
		if structured, err := output(w, spreads); structured {
			return err
		}
		fmt.Fprintf(w, "%s: %s, %s layout\n", m.Title, m.Pages, layout)
		for _, s := range spreads {
			fmt.Fprintf(w, "  spread %-3d pages %v", s.Spread, s.Pages)
			if s.Last {
				fmt.Fprint(w, " (last)")
			}
			if s.Preload != nil {
				fmt.Fprintf(w, " preload %v", s.Preload)
			}
			fmt.Fprintln(w)
		}
		return nil
	},
}

func describeSpread(spread, total, radius int, layout pagination.Layout, withPreload bool) spreadInfo {
	pages := pagination.CurrentPages(spread, total, layout)
	info := spreadInfo{
		Spread: spread,
		Pages:  pages,
		Last:   pagination.IsLastSpread(pages, total),
	}
	if withPreload {
		info.Preload = preload.WindowFor(spread, total, radius, layout, nil)
	}
	return info
}

func init() {
	pagesCmd.Flags().StringVar(&pagesLayout, "layout", "", "single or spread (default: derived from --width)")
	pagesCmd.Flags().IntVar(&pagesWidth, "width", 120, "terminal width the layout is derived from")
	pagesCmd.Flags().IntVar(&pagesSpread, "spread", 0, "show only this spread")
	pagesCmd.Flags().IntVar(&pagesGoTo, "goto", 1, "show only the spread holding this page")
	pagesCmd.Flags().IntVar(&pagesRadius, "radius", 1, "preload radius in spreads (default: viewer.preload_radius)")
}

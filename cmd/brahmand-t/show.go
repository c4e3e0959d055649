package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/justyntemme/brahmand-t/internal/config"
	"github.com/justyntemme/brahmand-t/pkg/models"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show the details of an issue",
	Long: `Show the details of an issue. An unknown id shows the latest issue,
as the reader does when opened with one.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup("normal")
		if err != nil {
			return err
		}
		defer e.close()

		m := resolve(cmd, e, args[0])
		w := cmd.OutOrStdout()
		if structured, err := output(w, m); structured {
			return err
		}

		var size string
		if fi, err := os.Stat(e.locator.LocalPath(m.File)); err == nil && m.File != "" {
			size = humanize.Bytes(uint64(fi.Size())) + " (local)"
		} else {
			size = m.DownloadSize
		}
		var progress string
		if state, err := config.LoadState(); err == nil {
			for _, r := range state.RecentlyRead {
				if r.MagazineID == m.ID {
					progress = fmt.Sprintf("page %d, %s", r.LastPage, humanize.Time(r.OpenedAt))
				}
			}
		}
		printMagazine(w, m, size, progress)
		return nil
	},
}

// resolve looks up id, falling back to the latest issue with a notice
func resolve(cmd *cobra.Command, e *env, id string) models.Magazine {
	m, ok := e.store.Get().Resolve(id)
	if !ok {
		fmt.Fprintf(cmd.ErrOrStderr(), "unknown issue %q, using %s\n", id, m.ID)
	}
	return m
}

func printMagazine(w io.Writer, m models.Magazine, size, progress string) {
	fmt.Fprintln(w, m.Title)
	if m.Subtitle != "" {
		fmt.Fprintln(w, m.Subtitle)
	}
	fmt.Fprintln(w)

	fields := [][2]string{
		{"ID", m.ID},
		{"Pages", m.Pages.String()},
		{"Released", m.ReleaseDate},
		{"Category", m.Category},
		{"Publisher", m.Publisher},
		{"Language", m.Language},
		{"ISSN", m.ISSN},
		{"Read time", m.ReadTime},
		{"Size", size},
		{"Last read", progress},
	}
	for _, f := range fields {
		if f[1] != "" {
			fmt.Fprintf(w, "%-10s %s\n", f[0]+":", f[1])
		}
	}

	if m.Description != "" {
		fmt.Fprintf(w, "\n%s\n", m.Description)
	}
	list := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(w, "\n%s\n", title)
		for _, it := range items {
			fmt.Fprintf(w, "  • %s\n", it)
		}
	}
	list("Highlights", m.Highlights)
	list("In this issue", m.TableOfContents)
	if len(m.Topics) > 0 {
		fmt.Fprintf(w, "\nTopics: %s\n", strings.Join(m.Topics, ", "))
	}

	var people []string
	for _, v := range m.FeaturedVisionaries {
		people = append(people, v.Name+", "+v.Title)
	}
	list("Featured visionaries", people)
	people = people[:0]
	for _, t := range m.Team {
		people = append(people, t.Name+", "+t.Role)
	}
	list("Editorial team", people)
}

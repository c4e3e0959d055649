package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var downloadDir string

var downloadCmd = &cobra.Command{
	Use:   "download <id>",
	Short: "Save the PDF of an issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup("normal")
		if err != nil {
			return err
		}
		defer e.close()

		m := resolve(cmd, e, args[0])
		dir := downloadDir
		if dir == "" {
			dir = e.cfg.DownloadDir
		}
		if dir == "" {
			if dir, err = os.Getwd(); err != nil {
				return err
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Saving %s to %s...\n", m.Title, dir)
		path, n, err := e.locator.Export(cmd.Context(), m, dir)
		if err != nil {
			e.log.Error("download failed", zap.String("magazine", m.ID), zap.Error(err))
			return err
		}
		e.log.Info("downloaded", zap.String("magazine", m.ID), zap.String("path", path), zap.Int64("bytes", n))
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%s)\n", path, humanize.Bytes(uint64(n)))
		return nil
	},
}

func init() {
	downloadCmd.Flags().StringVarP(&downloadDir, "dir", "d", "", "directory to save into (default: download_dir)")
}

package cmd

import (
	"fmt"

	"github.com/ethan2004g/interactive-web-novels/pkg/data"
	"github.com/ethan2004g/interactive-web-novels/pkg/services"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <book-id>",
	Short: "Export the published chapters of a book to EPUB",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = rt.cfg.ExportDir()
		}

		fmt.Printf("📥 Collecting chapters of book %s...\n", args[0])
		res, err := rt.services.Export(cmd.Context(), data.ID(args[0]), output, func(p services.CollectProgress) {
			switch p.Status {
			case "error":
				fmt.Printf("  Chapter %d: failed\n", p.ChapterNumber)
			case "complete":
				fmt.Printf("  Chapter %d: done (%d/%d)\n", p.ChapterNumber, p.Done, p.Total)
			}
		})
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		fmt.Printf("📖 EPUB created: %s (%d chapters of %q)\n", res.Path, res.Chapters, res.Book.Title)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "Output directory (default <data_dir>/exports)")
}

package cmd

import (
	"fmt"

	"github.com/ethan2004g/interactive-web-novels/pkg/app/components"
	"github.com/ethan2004g/interactive-web-novels/pkg/app/styles"
	"github.com/ethan2004g/interactive-web-novels/pkg/browse"
	"github.com/ethan2004g/interactive-web-novels/pkg/data"
	"github.com/ethan2004g/interactive-web-novels/pkg/prefs"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var readCmd = &cobra.Command{
	Use:   "read <book-id> <chapter-id>",
	Short: "Print a chapter",
	Long: `Print a chapter rendered for the terminal. When signed in the chapter
is recorded as read.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		bookID, chapterID := data.ID(args[0]), data.ID(args[1])

		view, err := rt.services.LoadChapter(ctx, bookID, chapterID)
		if err != nil {
			return fmt.Errorf("load chapter: %w", err)
		}

		p := rt.prefs.Get()
		if flag := cmd.Flags().Lookup("width"); flag.Changed {
			w, _ := cmd.Flags().GetInt("width")
			p.ReadingWidth = prefs.ClampWidth(w)
		}
		if theme, _ := cmd.Flags().GetString("theme"); theme != "" {
			p.Theme = theme
		}

		ch := view.Chapter
		fmt.Println(styles.TitleStyle.Render(fmt.Sprintf("Chapter %d: %s", ch.ChapterNumber, ch.Title)))
		out, err := components.RenderChapter(ch, p.ReadingWidth, p.Theme)
		if err != nil {
			rt.logger.Warn("render chapter", zap.Error(err))
			out = components.PlainText(ch.Text())
		}
		fmt.Println(out)

		prev, next := browse.Adjacent(view.Siblings, ch.ID)
		if prev != nil {
			fmt.Printf("← previous: novels read %s %s\n", bookID, prev.ID)
		}
		if next != nil {
			fmt.Printf("→ next:     novels read %s %s\n", bookID, next.ID)
		}

		if rt.session.Load(ctx) == nil && rt.session.IsAuthenticated() {
			if _, err := rt.services.Reader.UpdateProgress(ctx, bookID, chapterID, 100); err != nil {
				rt.logger.Warn("update progress", zap.Error(err))
			}
		}
		return nil
	},
}

func init() {
	readCmd.Flags().Int("width", prefs.DefaultReadingWidth, "Wrap width (40-120)")
	readCmd.Flags().String("theme", "", "Glamour style: dark, light, dracula, tokyo-night, pink or notty")
}

package cmd

import (
	"context"
	"fmt"

	"github.com/ethan2004g/interactive-web-novels/pkg/app"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	apiURL     string
	verbose    bool
	ephemeral  bool

	rt *runtime
)

var rootCmd = &cobra.Command{
	Use:   "novels",
	Short: "Read and write interactive web novels from the terminal",
	Long: `A terminal client for the Interactive Web Novels platform.

Run without arguments to start the interactive reader. The subcommands cover
the same ground for scripting: browsing, reading, bookmarks, ratings,
comments, the author dashboard and EPUB export.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Annotations[skipRuntime] == "true" {
			return nil
		}
		r, err := newRuntime(cmd.Context())
		if err != nil {
			return err
		}
		rt = r
		rt.logger.Debug("command start", zap.String("command", cmd.CommandPath()))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if rt != nil {
			rt.Close()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// The TUI resolves the session itself so it can show a spinner.
		a := app.NewApp(app.Options{
			Services:  rt.services,
			Session:   rt.session,
			Prefs:     rt.prefs,
			Logger:    rt.logger.Named("tui"),
			PageSize:  rt.cfg.PageSize,
			ExportDir: rt.cfg.ExportDir(),
		})
		if err := a.Run(cmd.Context()); err != nil {
			return fmt.Errorf("tui: %w", err)
		}
		return nil
	},
}

// skipRuntime marks commands that must not open the token store.
const skipRuntime = "skip-runtime"

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/novels/config.toml)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "Backend base URL, e.g. http://localhost:8000/api/v1")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "Keep tokens in memory only")

	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd, authCmd)
	rootCmd.AddCommand(booksCmd, bookCmd, readCmd)
	rootCmd.AddCommand(bookmarksCmd, rateCmd, commentsCmd)
	rootCmd.AddCommand(myBooksCmd, chaptersCmd, profileCmd)
	rootCmd.AddCommand(exportCmd, devServerCmd)
}

func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

package cli

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"quiz-companion/internal/app"
)

// newShowCmd prints the display plan for a selection as JSON; the host
// environment consumes it to render widgets.
func newShowCmd() *cobra.Command {
	var (
		source    string
		group     int
		container string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the display plan for a quiz selection",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ledger, err := openLedger(ctx, cfg)
			if err != nil {
				return err
			}
			defer ledger.Close()

			sets, cleanup, err := buildCatalog(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			req := app.SelectRequest{Source: source, Container: container}
			if cmd.Flags().Changed("group") {
				req.Group = &group
			}

			plan, err := app.NewQuizService(sets, ledger).Select(ctx, req)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(plan)
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "quiz source: default, an index, a path, or a URL")
	cmd.Flags().IntVar(&group, "group", 0, "only quizzes tagged with this group")
	cmd.Flags().StringVar(&container, "container", "", "container override: accordion or none")
	return cmd
}

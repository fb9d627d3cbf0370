package cmd

import (
	"context"
	"fmt"

	"github.com/nikogura/learning-designer/pkg/curriculum"
	"github.com/nikogura/learning-designer/pkg/session"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var finalizeCmd = &cobra.Command{
	Use:   "finalize <session.json>",
	Short: "Render the curriculum document from a saved session",
	Long: `Render the curriculum document from a saved session without calling Claude.

Accepts files written by 'generate --save-session' and the session files kept
by the file session backend of 'serve'. Weeks that were never generated
appear with a placeholder.

Example:
  learning-designer finalize run.session.json
  learning-designer finalize ~/.learning-designer/sessions/<id>.session.json --docx`,
	Args: cobra.ExactArgs(1),
	RunE: runFinalize,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(finalizeCmd)
	finalizeCmd.Flags().StringVar(&outputDir, "output-dir", "", "Output directory (default from config)")
	finalizeCmd.Flags().BoolVar(&renderDOCX, "docx", false, "Also render a .docx with pandoc")
}

func runFinalize(cmd *cobra.Command, args []string) (err error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	sess, err := session.ReadFile(args[0])
	if err != nil {
		return err
	}

	if sess.Confirmed == nil {
		err = errors.Wrap(curriculum.ErrNoConfirmedData, "the session was never confirmed")
		return err
	}

	// rendering never calls the generator
	builder := curriculum.NewBuilder(nil)
	markdown, err := builder.Finalize(sess.Confirmed, &sess.Build)
	if err != nil {
		return err
	}

	missing := 0
	term := curriculum.TermLength(sess.Confirmed, &sess.Build)
	for n := 1; n <= term; n++ {
		if _, ok := sess.Build.Weeks[n]; !ok {
			missing++
		}
	}
	if missing > 0 {
		fmt.Printf("Note: %d of %d weeks have no generated content yet\n", missing, term)
	}

	err = writeDocuments(context.Background(), cfg, *sess.Confirmed, markdown, logger)
	return err
}

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikogura/learning-designer/pkg/config"
	"github.com/nikogura/learning-designer/pkg/curriculum"
	"github.com/nikogura/learning-designer/pkg/intake"
	"github.com/nikogura/learning-designer/pkg/llm"
	"github.com/nikogura/learning-designer/pkg/logging"
	"github.com/nikogura/learning-designer/pkg/renderer"
	"github.com/nikogura/learning-designer/pkg/session"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const generateTimeout = 30 * time.Minute

//nolint:gochecknoglobals // Cobra boilerplate
var outputDir string

//nolint:gochecknoglobals // Cobra boilerplate
var resumeFile string

//nolint:gochecknoglobals // Cobra boilerplate
var narrativeSource string

//nolint:gochecknoglobals // Cobra boilerplate
var renderDOCX bool

//nolint:gochecknoglobals // Cobra boilerplate
var sessionOut string

//nolint:gochecknoglobals // Cobra boilerplate
var generateCmd = &cobra.Command{
	Use:   "generate <intake.json>",
	Short: "Generate a complete curriculum without the web interface",
	Long: `Generate a complete curriculum from an intake file: extraction, gap analysis,
objectives, outline, and every week of the term, then the final document.

The intake file holds the learner, project and institution sections of the
intake form as JSON. The resume and project narrative can also be supplied
with flags:
- --resume-file accepts .pdf, .docx, .txt or .md
- --narrative accepts a file path or a URL

Example:
  learning-designer generate intake.json
  learning-designer generate intake.json --resume-file resume.pdf --narrative https://example.com/project
  learning-designer generate intake.json --docx --save-session run.session.json`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVar(&outputDir, "output-dir", "", "Output directory (default from config)")
	generateCmd.Flags().StringVar(&resumeFile, "resume-file", "", "Resume file to read instead of resume_text")
	generateCmd.Flags().StringVar(&narrativeSource, "narrative", "", "Project narrative file or URL to use instead of project_narrative")
	generateCmd.Flags().BoolVar(&renderDOCX, "docx", false, "Also render a .docx with pandoc")
	generateCmd.Flags().StringVar(&sessionOut, "save-session", "", "Write the session to this file for later 'finalize' runs")
}

func runGenerate(cmd *cobra.Command, args []string) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	err = cfg.Validate()
	if err != nil {
		err = errors.Wrap(err, "invalid configuration")
		return err
	}

	raw, err := loadIntake(ctx, cfg, args[0])
	if err != nil {
		return err
	}

	client := llm.NewClient(cfg, logger)

	sess := session.New(time.Now())
	sess.Raw = raw

	analysis, err := runAnalysisPhase(ctx, client, raw)
	if err != nil {
		return err
	}
	sess.Analysis = &analysis

	confirmed := curriculum.Confirm(raw, analysis)
	err = confirmed.Validate()
	if err != nil {
		return err
	}
	sess.Confirmed = &confirmed

	builder := curriculum.NewBuilder(client)
	err = runBuildPhases(ctx, builder, &sess)

	// keep whatever was generated, even after a failure, so finalize can pick it up
	if sessionOut != "" {
		saveErr := session.WriteFile(sessionOut, &sess)
		if saveErr != nil {
			logger.Warn("failed to save session", "path", sessionOut, "error", saveErr.Error())
		} else {
			fmt.Printf("Session saved: %s\n", sessionOut)
		}
	}
	if err != nil {
		return err
	}

	sess.Document, err = builder.Finalize(sess.Confirmed, &sess.Build)
	if err != nil {
		return err
	}

	err = writeDocuments(ctx, cfg, confirmed, sess.Document, logger)
	return err
}

// loadIntake reads the intake file and fills the resume and narrative from flags.
func loadIntake(ctx context.Context, cfg config.Config, path string) (raw curriculum.RawInputs, err error) {
	if getVerbose() {
		fmt.Printf("Loading intake from: %s\n", path)
	}

	raw, err = intake.Read(path)
	if err != nil {
		return raw, err
	}

	if resumeFile != "" {
		var data []byte
		data, err = os.ReadFile(resumeFile)
		if err != nil {
			err = errors.Wrapf(err, "failed to read resume file: %s", resumeFile)
			return raw, err
		}

		raw.Learner.ResumeText, err = intake.NewTextExtractor(cfg.Pandoc.Binary).ExtractText(ctx, resumeFile, data)
		if err != nil {
			return raw, err
		}
	}

	if narrativeSource != "" {
		raw.Project.ProjectNarrative, err = fetchNarrative(ctx, narrativeSource)
		if err != nil {
			return raw, err
		}
	}

	raw.Institution.ApplyDefaults()
	err = raw.Validate()
	if err != nil {
		err = errors.Wrap(err, "intake validation failed")
		return raw, err
	}

	return raw, err
}

// fetchNarrative loads the narrative, falling back to pasted text when a page
// cannot be read (JavaScript-rendered job boards, for instance).
func fetchNarrative(ctx context.Context, source string) (narrative string, err error) {
	narrative, err = intake.FetchNarrative(ctx, source)
	if err == nil {
		if getVerbose() {
			fmt.Printf("Project narrative loaded (%d characters)\n", len(narrative))
		}
		return narrative, err
	}

	fmt.Printf("\nWarning: Failed to load project narrative: %v\n", err)
	fmt.Println("\nPlease paste the project narrative below.")
	fmt.Println("When finished, press Ctrl+D (Unix/Mac) or Ctrl+Z then Enter (Windows):")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	if scanner.Err() != nil {
		err = errors.Wrap(scanner.Err(), "failed to read project narrative from stdin")
		return narrative, err
	}

	narrative = strings.TrimSpace(strings.Join(lines, "\n"))
	if narrative == "" {
		err = errors.New("no project narrative provided")
		return narrative, err
	}

	fmt.Printf("\nProject narrative received (%d characters)\n", len(narrative))
	err = nil
	return narrative, err
}

func runAnalysisPhase(ctx context.Context, ex curriculum.Extractor, raw curriculum.RawInputs) (analysis curriculum.Analysis, err error) {
	finish := startSpinner("Extracting skills and analyzing gaps with Claude API...")
	analysis, err = curriculum.Analyze(ctx, ex, raw)
	if err != nil {
		finish("")
		err = errors.Wrap(err, "analysis failed")
		return analysis, err
	}
	finish("✓ Analysis complete")

	logAnalysisResults(analysis)

	return analysis, err
}

func logAnalysisResults(analysis curriculum.Analysis) {
	if !getVerbose() {
		return
	}

	fit := analysis.Gaps.FitAssessment
	fmt.Printf("Overall fit: %s (scaffolding: %s)\n", fit.OverallFit, fit.ScaffoldingRecommendation)
	for _, gap := range analysis.Gaps.SkillGaps {
		fmt.Printf("  - gap: %s\n", gap.ProjectNeed)
	}
	for _, parsed := range []string{analysis.Learner.ParseError, analysis.Project.ParseError, analysis.Gaps.ParseError} {
		if parsed != "" {
			fmt.Printf("Warning: a response could not be parsed, defaults were used: %s\n", parsed)
		}
	}
}

// runBuildPhases generates objectives, the outline and every week in order.
func runBuildPhases(ctx context.Context, builder *curriculum.Builder, sess *session.Session) (err error) {
	finish := startSpinner("Generating learning objectives and assessment strategy...")
	err = builder.GenerateObjectives(ctx, sess.Confirmed, &sess.Build)
	if err != nil {
		finish("")
		return err
	}
	finish("✓ Objectives complete")
	if sess.Build.Objectives.ParseError != "" {
		fmt.Printf("Warning: objectives response could not be parsed, defaults were used: %s\n", sess.Build.Objectives.ParseError)
	}

	finish = startSpinner("Generating course outline...")
	err = builder.GenerateOutline(ctx, sess.Confirmed, &sess.Build)
	if err != nil {
		finish("")
		return err
	}
	finish("✓ Outline complete")
	if sess.Build.Outline.ParseError != "" {
		fmt.Printf("Warning: outline response could not be parsed, defaults were used: %s\n", sess.Build.Outline.ParseError)
	}

	term := curriculum.TermLength(sess.Confirmed, &sess.Build)
	for n := 1; n <= term; n++ {
		finish = startSpinner(fmt.Sprintf("Generating week %d of %d...", n, term))
		err = builder.GenerateWeek(ctx, sess.Confirmed, &sess.Build, n)
		if err != nil {
			finish("")
			return err
		}
		finish(fmt.Sprintf("✓ Week %d complete", n))
	}

	return err
}

// writeDocuments writes the Markdown document and, when asked, a DOCX copy.
func writeDocuments(ctx context.Context, cfg config.Config, confirmed curriculum.ConfirmedData, markdown string, logger *logging.Logger) (err error) {
	dir := outputDir
	if dir == "" {
		dir = cfg.Defaults.OutputDir
	}

	mdPath := filepath.Join(dir, renderer.DownloadFilename(confirmed, "md"))
	err = renderer.WriteMarkdown(markdown, mdPath)
	if err != nil {
		return err
	}
	fmt.Printf("\nCurriculum: %s\n", mdPath)

	if !renderDOCX {
		return err
	}

	docxPath := filepath.Join(dir, renderer.DownloadFilename(confirmed, "docx"))
	finish := startSpinner("Rendering DOCX with pandoc...")
	err = renderer.NewPandoc(cfg.Pandoc).RenderDOCX(ctx, mdPath, docxPath)
	if err != nil {
		finish("")
		logger.Error("docx rendering failed", "path", docxPath, "error", err.Error())
		return err
	}
	finish(fmt.Sprintf("DOCX: %s", docxPath))

	return err
}

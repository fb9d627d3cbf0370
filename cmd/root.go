package cmd

import (
	"os"

	"github.com/nikogura/learning-designer/pkg/config"
	"github.com/nikogura/learning-designer/pkg/logging"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var verbose bool

//nolint:gochecknoglobals // Cobra boilerplate
var configFile string

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "learning-designer",
	Short: "Build experiential learning curricula from a resume and a project",
	Long: `learning-designer turns a learner's resume and an employer's project narrative
into a complete, week-by-week experiential learning course.

Uses Claude API to extract skills, analyze gaps, and draft objectives,
an outline, and the detail of every week.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $HOME/.learning-designer/config.json)")
}

// getVerbose returns the verbose flag value.
func getVerbose() (result bool) {
	result = verbose
	return result
}

// getConfigFile returns the config file path.
func getConfigFile() (result string) {
	result = configFile
	return result
}

// loadConfig loads configuration and builds the logger it asks for.
// Verbose output forces development logging.
func loadConfig() (cfg config.Config, logger *logging.Logger, err error) {
	cfg, err = config.Load(getConfigFile())
	if err != nil {
		err = errors.Wrap(err, "failed to load config")
		return cfg, logger, err
	}

	mode := cfg.LogMode
	if getVerbose() {
		mode = "development"
	}

	logger, err = logging.New(mode)
	if err != nil {
		err = errors.Wrap(err, "failed to create logger")
		return cfg, logger, err
	}

	return cfg, logger, err
}

package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/ukaji3/staffquoter-go/internal/config"
	"github.com/ukaji3/staffquoter-go/internal/logging"
	"github.com/ukaji3/staffquoter-go/pkg/staffquoter"
)

var (
	configPath string
	logLevel   string

	settings *config.Settings
	logger   *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:               "staffquoter",
	Short:             "Validate quote workbooks and publish quote artifacts",
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (env: STAFF_QUOTER_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (env: LOG_LEVEL)")
}

func setup(cmd *cobra.Command, args []string) error {
	s, err := config.Load(configPath)
	if err != nil {
		return err
	}
	level := s.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	l, err := logging.New(level, os.Stderr)
	if err != nil {
		return err
	}
	settings = s
	logger = l
	return nil
}

func newPipeline() *staffquoter.Pipeline {
	return staffquoter.New(staffquoter.Config{
		JSONDir:              settings.Output.JSONDir,
		PDFDir:               settings.Output.PDFDir,
		RecalcScript:         settings.Recalc.Script,
		RecalcInterpreter:    settings.Recalc.Interpreter,
		RecalcTimeoutSeconds: settings.Recalc.TimeoutSeconds,
	}, logger)
}

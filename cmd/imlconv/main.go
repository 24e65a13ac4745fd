// imlconv converts IML exam-item files to canonical assessment items and
// scores recorded responses against them.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/itemforge/imlkit/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type app struct {
	cfgPath string
	cfg     config.Config
	log     *zap.Logger
	verbose bool
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "imlconv",
		Short:         "IML exam-item conversion and scoring",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.cfgPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			logCfg := zap.NewProductionConfig()
			if a.verbose {
				logCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
			}
			log, err := logCfg.Build()
			if err != nil {
				return err
			}
			a.log = log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "path to YAML config file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newConvertCmd(a))
	root.AddCommand(newExportCmd(a))
	root.AddCommand(newScoreCmd(a))
	return root
}

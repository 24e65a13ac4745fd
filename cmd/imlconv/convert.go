package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/itemforge/imlkit/internal/batch"
	"github.com/itemforge/imlkit/internal/qti"
)

func (a *app) batchOptions(baseURL string, workers int) batch.Options {
	if baseURL == "" {
		baseURL = a.cfg.ImageBaseURL
	}
	if workers <= 0 {
		workers = a.cfg.Workers
	}
	return batch.Options{
		Workers: workers,
		Convert: qti.Options{ImageBaseURL: baseURL},
	}
}

func (a *app) runBatch(cmd *cobra.Command, args []string, opt batch.Options) (batch.Report, error) {
	report := batch.Process(cmd.Context(), args, opt, a.log)
	if report.Failed > 0 {
		a.log.Warn("some items failed", zap.Int("failed", report.Failed))
	}
	return report, nil
}

func newConvertCmd(a *app) *cobra.Command {
	var baseURL, outDir string
	var workers int
	cmd := &cobra.Command{
		Use:   "convert <file>...",
		Short: "Convert IML files to canonical assessment-item JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := a.runBatch(cmd, args, a.batchOptions(baseURL, workers))
			if err != nil {
				return err
			}
			dir := outDir
			if dir == "" {
				dir = a.cfg.OutDir
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
			for _, r := range report.Results {
				if r.Err != nil {
					continue
				}
				out := filepath.Join(dir, r.Item.Identifier+".json")
				b, err := json.MarshalIndent(r.Item, "", "  ")
				if err != nil {
					return err
				}
				if err := os.WriteFile(out, b, 0o644); err != nil {
					return err
				}
			}
			if report.Failed > 0 {
				return fmt.Errorf("%d of %d items failed", report.Failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&baseURL, "image-base-url", "", "base URL for relative image paths")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel workers")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var baseURL, outDir string
	var workers int
	cmd := &cobra.Command{
		Use:   "export <file>...",
		Short: "Convert IML files to a QTI 2.1 item package directory",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := a.runBatch(cmd, args, a.batchOptions(baseURL, workers))
			if err != nil {
				return err
			}
			dir := outDir
			if dir == "" {
				dir = a.cfg.OutDir
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
			var items []qti.AssessmentItem
			for _, r := range report.Results {
				if r.Err != nil {
					continue
				}
				items = append(items, *r.Item)
				out := filepath.Join(dir, r.Item.Identifier+".xml")
				if err := os.WriteFile(out, []byte(qti.ItemXML(*r.Item)), 0o644); err != nil {
					return err
				}
			}
			mf, err := qti.ManifestXML(items)
			if err != nil {
				return err
			}
			if err := os.WriteFile(filepath.Join(dir, "imsmanifest.xml"), mf, 0o644); err != nil {
				return err
			}
			a.log.Info("exported package",
				zap.String("dir", dir),
				zap.Int("items", len(items)))
			if report.Failed > 0 {
				return fmt.Errorf("%d of %d items failed", report.Failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&baseURL, "image-base-url", "", "base URL for relative image paths")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel workers")
	return cmd
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

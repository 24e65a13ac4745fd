// Package batch runs the parse→convert pipeline over many IML files
// concurrently. Items have no cross-dependencies, so the fan-out is a flat
// bounded worker pool; a failed parse is recorded against its own file and
// never affects siblings.
package batch

import (
	"context"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/itemforge/imlkit/internal/iml"
	"github.com/itemforge/imlkit/internal/qti"
)

// Options configures one batch run.
type Options struct {
	Workers int
	Convert qti.Options
}

// FileResult is the outcome for a single input file. Exactly one of Item
// and Err is set.
type FileResult struct {
	Path string
	Item *qti.AssessmentItem
	Err  error
}

// Report summarizes a batch run, preserving input order.
type Report struct {
	Results   []FileResult
	Succeeded int
	Failed    int
}

// Process parses and converts every path. The context cancels scheduling of
// remaining files; per-item errors are collected, not propagated.
func Process(ctx context.Context, paths []string, opt Options, log *zap.Logger) Report {
	if log == nil {
		log = zap.NewNop()
	}
	workers := opt.Workers
	if workers <= 0 {
		workers = 1
	}

	results := make([]FileResult, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		if ctx.Err() != nil {
			results[i] = FileResult{Path: path, Err: ctx.Err()}
			continue
		}
		i, path := i, path
		g.Go(func() error {
			results[i] = processOne(path, opt, log)
			return nil
		})
	}
	// workers never return errors; Wait only synchronizes
	_ = g.Wait()

	report := Report{Results: results}
	for _, r := range results {
		if r.Err != nil {
			report.Failed++
		} else {
			report.Succeeded++
		}
	}
	log.Info("batch complete",
		zap.Int("total", len(paths)),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed))
	return report
}

func processOne(path string, opt Options, log *zap.Logger) FileResult {
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Warn("read failed", zap.String("path", path), zap.Error(err))
		return FileResult{Path: path, Err: err}
	}
	src, err := iml.Parse(string(raw))
	if err != nil {
		log.Warn("parse failed", zap.String("path", path), zap.Error(err))
		return FileResult{Path: path, Err: err}
	}
	item := qti.Convert(src, opt.Convert)
	log.Debug("converted",
		zap.String("path", path),
		zap.String("item", item.Identifier),
		zap.String("kind", string(src.Kind)))
	return FileResult{Path: path, Item: &item}
}

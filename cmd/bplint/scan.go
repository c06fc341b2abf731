package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bplint/bplint/internal/linter"
	"github.com/bplint/bplint/internal/output"
	"github.com/bplint/bplint/internal/progress"
	"github.com/bplint/bplint/internal/source"
	"github.com/bplint/bplint/pkg/models"
)

var scanCmd = &cobra.Command{
	Use:   "scan [dir]",
	Short: "Scan a directory of blueprint files",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().String("root", "", "Logical root path of the corpus (default from config)")
	scanCmd.Flags().StringSlice("checks", nil, "Checks to run: dead_node, orphan_node, cast_abuse, tick_abuse, unused_function")
	scanCmd.Flags().StringSlice("include", nil, "Only scan programs whose path contains one of these")
	scanCmd.Flags().StringSlice("exclude", nil, "Skip programs whose path contains one of these")
	scanCmd.Flags().String("fail-on", "", "Exit non-zero when issues at or above this severity exist")
	scanCmd.Flags().Bool("sync", false, "Scan on the calling goroutine, one asset at a time")

	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if root, _ := cmd.Flags().GetString("root"); root != "" {
		cfg.Scan.RootPath = root
	}
	if include, _ := cmd.Flags().GetStringSlice("include"); len(include) > 0 {
		cfg.Scan.IncludePaths = include
	}
	if exclude, _ := cmd.Flags().GetStringSlice("exclude"); len(exclude) > 0 {
		cfg.Scan.ExcludePaths = exclude
	}
	if sync, _ := cmd.Flags().GetBool("sync"); sync {
		cfg.Scan.Concurrency = false
	}
	if checks, _ := cmd.Flags().GetStringSlice("checks"); len(checks) > 0 {
		types := make([]models.IssueType, 0, len(checks))
		for _, c := range checks {
			t, ok := models.ParseIssueType(strings.ToLower(c))
			if !ok {
				return fmt.Errorf("unknown check: %s", c)
			}
			types = append(types, t)
		}
		cfg.SetEnabledDetectors(types)
	}

	failOn, _ := cmd.Flags().GetString("fail-on")
	var failRank int
	if failOn != "" {
		sev, err := parseSeverity(failOn)
		if err != nil {
			return err
		}
		failRank = sev.Rank()
	}

	src := source.NewDir(dir, cfg.Scan.RootPath, cfg.Source)
	assets, err := src.List(nil)
	if err != nil {
		return err
	}
	if len(assets) == 0 {
		color.Yellow("No blueprint files found in %s", dir)
		return nil
	}

	l := linter.New(src, linter.Options{Config: cfg, Logger: newLogger()})
	defer l.Close()

	tracker := progress.NewTracker("Scanning blueprints...", len(assets))
	l.OnScanProgress(func(p models.ScanProgress) {
		tracker.Set(p.ProcessedAssets)
	})
	done := make(chan []models.Issue, 1)
	l.OnScanComplete(func(issues []models.Issue) { done <- issues })

	// Ctrl-C cancels the scan; issues found so far are still reported.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		l.CancelScan()
	}()

	start := time.Now()
	if err := l.ScanBlueprints(assets); err != nil {
		tracker.FinishError(err)
		return err
	}
	issues := <-done

	cancelled := l.State() == linter.StateCancelled
	if cancelled {
		tracker.FinishCancelled()
	} else {
		tracker.FinishSuccess()
	}

	formatter, err := output.NewFormatter(output.ParseFormat(formatFlag), outputFile, !noColor)
	if err != nil {
		return err
	}
	defer formatter.Close()

	report := output.NewReport(issues, l.Progress().ProcessedAssets, cancelled, time.Since(start))
	if err := formatter.Output(report); err != nil {
		return err
	}

	if failOn != "" {
		for _, issue := range issues {
			if issue.Severity.Rank() >= failRank {
				return fmt.Errorf("found issues at or above %s severity", failOn)
			}
		}
	}
	return nil
}

func parseSeverity(s string) (models.Severity, error) {
	switch sev := models.Severity(strings.ToLower(s)); sev {
	case models.SeverityLow, models.SeverityMedium, models.SeverityHigh, models.SeverityCritical:
		return sev, nil
	default:
		return "", fmt.Errorf("unknown severity: %s", s)
	}
}

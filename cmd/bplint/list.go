package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bplint/bplint/internal/output"
	"github.com/bplint/bplint/internal/source"
)

var listCmd = &cobra.Command{
	Use:   "list [dir]",
	Short: "List the blueprint files a scan would cover",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runList,
}

func init() {
	listCmd.Flags().String("root", "", "Logical root path of the corpus (default from config)")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
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

	src := source.NewDir(dir, cfg.Scan.RootPath, cfg.Source)
	assets, err := src.List(nil)
	if err != nil {
		return err
	}
	if len(assets) == 0 {
		color.Yellow("No blueprint files found in %s", dir)
		return nil
	}

	formatter, err := output.NewFormatter(output.ParseFormat(formatFlag), outputFile, !noColor)
	if err != nil {
		return err
	}
	defer formatter.Close()

	rows := make([][]string, 0, len(assets))
	covered := 0
	for _, path := range assets {
		status := "scan"
		if cfg.ShouldProcessPath(path) {
			covered++
		} else {
			status = "skip"
		}
		rows = append(rows, []string{path, status})
	}

	table := &output.Table{
		Headers: []string{"Blueprint", "Status"},
		Rows:    rows,
		Data:    assets,
	}
	if err := formatter.Output(table); err != nil {
		return err
	}
	color.New(color.Bold).Printf("%d blueprints, %d covered by scan\n", len(assets), covered)
	return nil
}

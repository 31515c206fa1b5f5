package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/user/attendance-service/internal/entity"
	"github.com/user/attendance-service/internal/export"
	"github.com/user/attendance-service/internal/parser"
	"github.com/user/attendance-service/internal/usecase"
)

type parseFlags struct {
	out        string
	format     string
	permissive bool
	computed   bool
	threshold  float64
}

func newParseCmd() *cobra.Command {
	var f parseFlags
	cmd := &cobra.Command{
		Use:   "parse <file.html>...",
		Short: "Parses saved attendance pages offline.",
		Long: "Parses saved attendance pages, such as the attendance_<frame>.html dumps of\n" +
			"`scrape fetch --dump`. Records from all files are merged; the first record of\n" +
			"each subject code wins.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args, f)
		},
	}
	cmd.Flags().StringVar(&f.out, "out", "", "Also export the records to this directory.")
	cmd.Flags().StringVar(&f.format, "format", "csv", "Comma-separated export formats: csv, xlsx, json.")
	cmd.Flags().BoolVar(&f.permissive, "permissive-headers", false, "Treat any non-empty header cell as a subject column.")
	cmd.Flags().BoolVar(&f.computed, "prefer-computed", false, "Compute percentages from the counts instead of reading them.")
	cmd.Flags().Float64Var(&f.threshold, "threshold", usecase.DefaultLowAttendanceThreshold, "Low attendance threshold in percent.")
	return cmd
}

func runParse(cmd *cobra.Command, files []string, f parseFlags) error {
	formats, err := export.ParseFormats(f.format)
	if err != nil {
		return err
	}
	extractor := parser.NewExtractor(parser.NewPolicy(f.permissive, f.computed))
	out := cmd.OutOrStdout()

	var all []entity.AttendanceRecord
	for _, path := range files {
		html, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		records := extractor.Parse(string(html))
		fmt.Fprintf(out, "%s: %d records\n", path, len(records))
		all = append(all, records...)
	}
	all = usecase.DedupeByCode(all)
	if len(all) == 0 {
		return fmt.Errorf("no attendance table found in %d file(s)", len(files))
	}

	fmt.Fprintln(out)
	renderRecords(out, all, usecase.Summarize(all, f.threshold))

	if f.out == "" {
		return nil
	}
	paths, err := export.SaveRecords(f.out, all, formats)
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	for _, p := range paths {
		fmt.Fprintf(out, "Saved %s\n", p)
	}
	return nil
}

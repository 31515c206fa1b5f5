package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/attendance-service/internal/adapter/chromedp_portal"
	"github.com/user/attendance-service/internal/entity"
	"github.com/user/attendance-service/internal/export"
	"github.com/user/attendance-service/internal/parser"
	"github.com/user/attendance-service/internal/usecase"
	"github.com/user/attendance-service/pkg/config"
)

const (
	envRollNo   = "IMS_ROLL_NO"
	envPassword = "IMS_PASSWORD"
)

type fetchFlags struct {
	year, semester int
	out            string
	format         string
	headless       bool
	dump           bool
}

func newFetchCmd(a *app) *cobra.Command {
	var f fetchFlags
	cmd := &cobra.Command{
		Use:   "fetch [--year N] [--semester N] [--out dir] [--format csv,xlsx,json]",
		Short: "Logs into the portal, fetches attendance for a term and saves it.",
		Long: "Logs into the portal with IMS_ROLL_NO and IMS_PASSWORD from .env, asks for the CAPTCHA\n" +
			"on the terminal, then saves the attendance table. Year and semester are 0-based\n" +
			"positions in the portal's dropdowns.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, a.log, f)
		},
	}
	cmd.Flags().IntVar(&f.year, "year", 0, "Year dropdown index.")
	cmd.Flags().IntVar(&f.semester, "semester", 0, "Semester dropdown index.")
	cmd.Flags().StringVar(&f.out, "out", ".", "Output directory.")
	cmd.Flags().StringVar(&f.format, "format", "csv,xlsx", "Comma-separated export formats: csv, xlsx, json.")
	cmd.Flags().BoolVar(&f.headless, "headless", false, "Run the browser without a window (overrides HEADLESS).")
	cmd.Flags().BoolVar(&f.dump, "dump", false, "Save every frame's HTML and a screenshot next to the exports.")
	return cmd
}

func runFetch(cmd *cobra.Command, log *zap.Logger, f fetchFlags) error {
	if f.year < 0 || f.semester < 0 {
		return errors.New("--year and --semester must not be negative")
	}
	formats, err := export.ParseFormats(f.format)
	if err != nil {
		return err
	}
	creds := entity.Credentials{RollNo: os.Getenv(envRollNo), Password: os.Getenv(envPassword)}
	if creds.RollNo == "" || creds.Password == "" {
		return fmt.Errorf("%s and %s must be set in .env or the environment", envRollNo, envPassword)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}
	headless := cfg.Headless
	if cmd.Flags().Changed("headless") {
		headless = f.headless
	}
	if err := os.MkdirAll(f.out, 0o755); err != nil {
		return err
	}

	portal := chromedp_portal.NewChromedpPortal(chromedp_portal.Options{
		BaseURL:         cfg.PortalURL,
		Headless:        headless,
		PageLoadTimeout: cfg.PageLoadTimeoutDuration(),
		StepDelay:       cfg.StepDelay(),
	}, log)
	defer portal.Close()

	// No cache, lock or history for one-off runs.
	svc := usecase.NewAttendanceUseCase(
		portal,
		parser.NewExtractor(parser.NewPolicy(cfg.PermissiveHeaders, cfg.PreferComputedPercentage)),
		usecase.Stores{},
		usecase.Options{},
		log,
	)

	out := cmd.OutOrStdout()
	in := newTerminal(cmd.InOrStdin(), out, filepath.Join(f.out, "captcha.png"))
	fmt.Fprintf(out, "Fetching attendance (year %d, semester %d)...\n", f.year, f.semester)

	result, fetchErr := svc.Fetch(cmd.Context(), usecase.FetchRequest{
		Credentials: creds,
		Term:        entity.Term{Year: f.year, Semester: f.semester},
		Screenshots: f.dump,
	}, in)

	if f.dump && result != nil {
		paths, err := export.DumpFrames(f.out, result.Frames)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintf(out, "Saved %s\n", p)
		}
	}
	if fetchErr != nil {
		return fetchErr
	}

	fmt.Fprintf(out, "Found %d subjects in frame %q\n\n", len(result.Records), result.Frame)
	renderRecords(out, result.Records, usecase.Summarize(result.Records, cfg.LowAttendanceThreshold))

	paths, err := export.SaveRecords(f.out, result.Records, formats)
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	for _, p := range paths {
		fmt.Fprintf(out, "Saved %s\n", p)
	}
	return nil
}

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go-microplastic-inspector/internal/analyzer"
	"go-microplastic-inspector/internal/export"
	"go-microplastic-inspector/internal/logger"
	"go-microplastic-inspector/internal/observer"
	"go-microplastic-inspector/internal/render"
	"go-microplastic-inspector/internal/service"
	"go-microplastic-inspector/pkg/validation"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze FILE...",
	Short: "Simulate detections for files and print the history",
	Long: `Analyze every given file with the simulated detector, in parallel,
and print the history table in the order the records were appended.

Example:
  mpsim analyze samples/*.png --seed 42 --csv out/history.csv
  mpsim analyze a.jpg b.jpg --report report.html --charts out/`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().String("csv", "", "write the CSV export to this path")
	analyzeCmd.Flags().String("report", "", "write the printable report to this path")
	analyzeCmd.Flags().String("charts", "", "write composition.png and accuracy.png into this directory")
	analyzeCmd.Flags().Int("workers", 4, "number of files read concurrently")
	analyzeCmd.Flags().Int("chart-width", 800, "minimum chart width in pixels")
	analyzeCmd.Flags().Int("chart-height", 360, "chart height in pixels")

	for _, name := range []string{"csv", "report", "charts", "workers", "chart-width", "chart-height"} {
		viper.BindPFlag(name, analyzeCmd.Flags().Lookup(name))
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	sources := make([]service.FileSource, 0, len(args))
	for _, path := range args {
		src, err := service.NewPathSource(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		sources = append(sources, src)
	}

	pool := analyzer.NewWorkerPool(viper.GetInt("workers"))
	pool.Start()
	defer pool.Close()

	publisher := observer.NewEventPublisher()
	publisher.Subscribe(observer.NewLoggingObserver(logger.Logger))
	defer publisher.Wait()

	ws := service.NewWorkspace("", service.Dependencies{
		Detector:  analyzer.NewSimulator(analyzer.DefaultOptions().WithSeed(viper.GetInt64("seed"))),
		Pool:      pool,
		Printer:   export.NewPrinter(export.DefaultPrintDelay),
		Validator: validation.NewUploadValidatorWithOptions(0, 0),
		Publisher: publisher,
	})

	result, err := ws.AnalyzeBatch(cmd.Context(), sources)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, render.TerminalTable(ws.Rows()))
	for _, r := range result.Rejected {
		logger.WithField("file", r.Name).WithError(r.Err).Warn("Skipped unreadable file")
	}

	if path := viper.GetString("csv"); path != "" {
		if err := writeCSV(cmd, ws, path); err != nil {
			return err
		}
		fmt.Fprintf(out, "CSV written to %s\n", path)
	}

	if path := viper.GetString("report"); path != "" {
		if err := writeReport(cmd, ws, path); err != nil {
			return err
		}
		fmt.Fprintf(out, "Report written to %s\n", path)
	}

	if dir := viper.GetString("charts"); dir != "" {
		if err := writeCharts(ws, dir); err != nil {
			return err
		}
		fmt.Fprintf(out, "Charts written to %s\n", dir)
	}

	return nil
}

func writeCSV(cmd *cobra.Command, ws *service.Workspace, path string) error {
	data, err := ws.ExportCSV(cmd.Context())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func writeReport(cmd *cobra.Command, ws *service.Workspace, path string) error {
	var f *os.File
	opener := export.SurfaceOpenerFunc(func() (export.Surface, error) {
		var err error
		f, err = os.Create(path)
		if err != nil {
			return nil, err
		}
		return export.NewWriterSurface(f), nil
	})

	err := ws.PrintReport(cmd.Context(), opener)
	if f != nil {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func writeCharts(ws *service.Workspace, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, _ := ws.Charts()
	size := render.ChartSize{Width: viper.GetInt("chart-width"), Height: viper.GetInt("chart-height")}

	charts := map[string]func(*os.File) error{
		"composition.png": func(f *os.File) error { return render.RenderCompositionPNG(f, data, size) },
		"accuracy.png":    func(f *os.File) error { return render.RenderAccuracyPNG(f, data, size) },
	}
	for name, draw := range charts {
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		err = draw(f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
	}
	return nil
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/san-kum/bladebalance/internal/balance"
	"github.com/san-kum/bladebalance/internal/config"
	"github.com/san-kum/bladebalance/internal/dataset"
	"github.com/san-kum/bladebalance/internal/pipeline"
	"github.com/san-kum/bladebalance/internal/render"
	"github.com/san-kum/bladebalance/internal/storage"
	"github.com/san-kum/bladebalance/internal/theme"
	"github.com/san-kum/bladebalance/internal/tui"
)

var (
	configFile string
	preset     string
	dataFile   string
	historyDir string
	themeName  string
	themeFile  string
	verbose    bool

	outputDir string
	format    string
	width     int
	height    int
	demo      bool
	noHistory bool
	jobs      int

	gripOffset   float64
	targetOffset float64
	handWidth    float64
	pommelMargin float64
	stepDeg      float64
	pairPolicy   string

	sweepStep float64
)

// main registers the commands and flags and executes the root command,
// exiting with status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:          "bladebalance",
		Short:        "dynamic balance diagrams for swords",
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.StringVar(&dataFile, "data", config.DefaultData, "specimen table (csv)")
	pf.StringVar(&historyDir, "history", config.DefaultHistory, "render history directory")
	pf.StringVar(&themeName, "theme", theme.Default.Name, "color theme")
	pf.StringVar(&themeFile, "theme-file", "", "theme override file (yaml)")
	pf.StringVar(&pairPolicy, "pair-policy", string(balance.PolicyReject), "invalid pair handling: reject or drop")
	pf.Float64Var(&gripOffset, "grip-offset", balance.DefaultGripOffset, "mid-hand offset from the grip reference (mm)")
	pf.Float64Var(&targetOffset, "target-offset", balance.DefaultTargetOffset, "target distance beyond the tip (mm)")
	pf.Float64Var(&handWidth, "hand-width", balance.DefaultHandWidth, "spacing of grip circles (mm)")
	pf.Float64Var(&pommelMargin, "pommel-margin", balance.DefaultPommelMargin, "clearance between last grip circle and pommel (mm)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	plotCmd := &cobra.Command{
		Use:   "plot [specimen]",
		Short: "render the balance diagram of one specimen",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotSpecimen,
	}
	addRenderFlags(plotCmd)

	batchCmd := &cobra.Command{
		Use:   "batch",
		Short: "render every specimen",
		Args:  cobra.NoArgs,
		RunE:  batchRender,
	}
	addRenderFlags(batchCmd)
	batchCmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "parallel renders (0 = GOMAXPROCS)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list specimens in the data file",
		Args:  cobra.NoArgs,
		RunE:  listSpecimens,
	}

	summaryCmd := &cobra.Command{
		Use:   "summary [specimen]",
		Short: "print derived quantities",
		Args:  cobra.MaximumNArgs(1),
		RunE:  summarize,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [specimen]",
		Short: "chart the center of percussion against pivot position",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweep,
	}
	sweepCmd.Flags().Float64Var(&sweepStep, "step", 1, "pivot step along the hilt (mm)")

	browseCmd := &cobra.Command{
		Use:   "browse",
		Short: "browse specimens interactively",
		Args:  cobra.NoArgs,
		RunE:  browse,
	}
	browseCmd.Flags().BoolVar(&demo, "demo", false, "start with outlines only")
	browseCmd.Flags().Float64Var(&stepDeg, "step-deg", 3, "curve sampling step (degrees)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("presets:")
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
		},
	}

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "list recorded renders",
		Args:  cobra.NoArgs,
		RunE:  listHistory,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export render metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export rendered traces to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	rootCmd.AddCommand(plotCmd, batchCmd, listCmd, summaryCmd, sweepCmd, browseCmd, presetsCmd, historyCmd, exportCmd, exportCSVCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRenderFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&outputDir, "output", "o", config.DefaultOutput, "output directory")
	f.StringVarP(&format, "format", "f", "png", "output format: png, svg, pdf or jpg")
	f.IntVar(&width, "width", render.DefaultWidth, "image width (px)")
	f.IntVar(&height, "height", render.DefaultHeight, "image height (px)")
	f.BoolVar(&demo, "demo", false, "draw the outline only")
	f.BoolVar(&noHistory, "no-history", false, "do not record the render")
	f.Float64Var(&stepDeg, "step-deg", 3, "curve sampling step (degrees)")
}

func newLogger() *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	return zap.New(zapcore.NewCore(enc, zapcore.Lock(os.Stderr), level))
}

// loadConfig applies, in order: defaults, preset, config file, explicit
// flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		if err := cfg.Overlay(configFile); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.Data = dataFile
	}
	if flags.Changed("history") {
		cfg.History = historyDir
	}
	if flags.Changed("pair-policy") {
		cfg.PairPolicy = pairPolicy
	}
	if flags.Changed("grip-offset") {
		cfg.Geometry.GripOffset = gripOffset
	}
	if flags.Changed("target-offset") {
		cfg.Geometry.TargetOffset = targetOffset
	}
	if flags.Changed("hand-width") {
		cfg.Geometry.HandWidth = handWidth
	}
	if flags.Changed("pommel-margin") {
		cfg.Geometry.PommelMargin = pommelMargin
	}
	if flags.Changed("output") {
		cfg.Output.Dir = outputDir
	}
	if flags.Changed("format") {
		cfg.Output.Format = format
	}
	if flags.Changed("width") {
		cfg.Output.Width = width
	}
	if flags.Changed("height") {
		cfg.Output.Height = height
	}
	if flags.Changed("demo") {
		cfg.Demo = demo
	}
	if flags.Changed("step-deg") {
		cfg.Sampling.StepDeg = stepDeg
	}
	if flags.Changed("jobs") {
		cfg.Jobs = jobs
	}
	if flags.Changed("theme") {
		cfg.Theme = theme.Theme{Name: themeName}
	}
	if themeFile != "" {
		th, err := theme.Load(themeFile)
		if err != nil {
			return nil, err
		}
		cfg.Theme = th
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadCollection reads the data file. Rows that fail to load are logged by
// the loader and left out.
func loadCollection(cfg *config.Config, log *zap.Logger) (*dataset.Collection, error) {
	coll, err := dataset.LoadFile(cfg.Data, cfg.DatasetOptions(log))
	if coll == nil {
		return nil, err
	}
	if coll.Len() == 0 {
		return nil, fmt.Errorf("no usable specimens in %s", cfg.Data)
	}
	return coll, nil
}

// selectSpecimen picks the named specimen, or the first one when name is
// empty. An unknown name is reported with the available names and ok is
// false.
func selectSpecimen(coll *dataset.Collection, name string) (s *balance.Specimen, ok bool, err error) {
	if name == "" {
		return coll.All()[0], true, nil
	}
	s, err = coll.Select(name)
	var sel *dataset.SelectionError
	if errors.As(err, &sel) {
		fmt.Printf("Specimen '%s' not found in the data file.\n", sel.Name)
		fmt.Println("Available specimens:")
		for _, n := range sel.Available {
			fmt.Printf("  - %s\n", n)
		}
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return s, true, nil
}

func specimenArg(cfg *config.Config, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.Specimen
}

type session struct {
	cfg  *config.Config
	log  *zap.Logger
	coll *dataset.Collection
}

func open(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log := newLogger()
	coll, err := loadCollection(cfg, log)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, log: log, coll: coll}, nil
}

func plotSpecimen(cmd *cobra.Command, args []string) error {
	ss, err := open(cmd)
	if err != nil {
		return err
	}
	defer ss.log.Sync()

	s, ok, err := selectSpecimen(ss.coll, specimenArg(ss.cfg, args))
	if err != nil || !ok {
		return err
	}

	r, err := pipeline.Run(s, ss.cfg.PipelineOptions(ss.log))
	if err != nil {
		return err
	}
	return ss.save(r)
}

func batchRender(cmd *cobra.Command, args []string) error {
	ss, err := open(cmd)
	if err != nil {
		return err
	}
	defer ss.log.Sync()

	results, err := pipeline.RunAll(context.Background(), ss.coll.All(), ss.cfg.PipelineOptions(ss.log), ss.cfg.Jobs)
	if err != nil {
		return err
	}
	for _, r := range results {
		if err := ss.save(r); err != nil {
			return err
		}
	}
	fmt.Printf("rendered %d specimens\n", len(results))
	return nil
}

func (ss *session) save(r *pipeline.Result) error {
	th, err := ss.cfg.ResolveTheme()
	if err != nil {
		return err
	}
	path, err := render.Save(ss.cfg.Output.Dir, r.Scene, th, ss.cfg.RenderOptions())
	if err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	for _, sk := range r.Derived.Skipped {
		fmt.Fprintf(os.Stderr, "  skipped %s: %v\n", sk.Quantity, sk.Err)
	}

	if noHistory {
		return nil
	}
	runID, err := storage.New(ss.cfg.History).Save(storage.Record{
		Result: r,
		Output: path,
		Theme:  th.Name,
		Demo:   ss.cfg.Demo,
	})
	if err != nil {
		return err
	}
	ss.log.Debug("recorded render", zap.String("run", runID))
	return nil
}

func listSpecimens(cmd *cobra.Command, args []string) error {
	ss, err := open(cmd)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tLENGTH\tCOM\tROG\tPAIRS")
	for _, s := range ss.coll.All() {
		rog := "n/a"
		if v, ok := s.ROG(); ok {
			rog = fmt.Sprintf("%.2f", v)
		}
		fmt.Fprintf(w, "%s\t%.1f\t%.1f\t%s\t%d\n", s.Name(), s.Length(), s.COM(), rog, len(s.Pairs()))
	}
	return w.Flush()
}

func summarize(cmd *cobra.Command, args []string) error {
	ss, err := open(cmd)
	if err != nil {
		return err
	}

	specimens := ss.coll.All()
	if name := specimenArg(ss.cfg, args); name != "" {
		s, ok, err := selectSpecimen(ss.coll, name)
		if err != nil || !ok {
			return err
		}
		specimens = []*balance.Specimen{s}
	}

	for i, s := range specimens {
		r, err := pipeline.Run(s, ss.cfg.PipelineOptions(ss.log))
		if err != nil {
			return err
		}
		if i > 0 {
			fmt.Println()
		}
		fmt.Print(r.Scene.Summary.String())

		d := r.Derived
		if d.HasCOP {
			fmt.Printf("COP: %.2f mm\n", d.COP)
		}
		if d.HasRogGrip {
			fmt.Printf("ROG around grip: %.2f mm\n", d.RogGrip)
		}
		if d.HasDBP {
			fmt.Printf("DBP: (%.2f, ±%.2f) mm\n", d.DBP[0].X, d.DBP[0].Y)
		}
		for _, dp := range s.DroppedPairs() {
			fmt.Printf("dropped pair (%.2f, %.2f): %v\n", dp.Pair.Near, dp.Pair.Far, dp.Err)
		}
		for _, sk := range d.Skipped {
			fmt.Printf("skipped %s: %v\n", sk.Quantity, sk.Err)
		}
	}
	return nil
}

func sweep(cmd *cobra.Command, args []string) error {
	ss, err := open(cmd)
	if err != nil {
		return err
	}

	s, ok, err := selectSpecimen(ss.coll, specimenArg(ss.cfg, args))
	if err != nil || !ok {
		return err
	}

	pts, err := balance.NewCalculator(ss.cfg.Calculator()).PercussionSweep(s, sweepStep)
	if err != nil {
		return fmt.Errorf("%s: %w", s.Name(), err)
	}
	if len(pts) == 0 {
		return fmt.Errorf("%s: no pivots along the hilt", s.Name())
	}

	data := make([]float64, len(pts))
	for i, p := range pts {
		data[i] = p.Conjugate
	}

	fmt.Printf("specimen: %s\n", s.Name())
	fmt.Printf("pivots: %d (%.1f to %.1f mm)\n\n", len(pts), pts[0].Pivot, pts[len(pts)-1].Pivot)
	graph := asciigraph.Plot(data,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("center of percussion (mm) vs pivot, pommel to crossguard"),
	)
	fmt.Println(graph)
	return nil
}

func browse(cmd *cobra.Command, args []string) error {
	ss, err := open(cmd)
	if err != nil {
		return err
	}
	th, err := ss.cfg.ResolveTheme()
	if err != nil {
		return err
	}
	// keep log lines off the alternate screen
	opts := ss.cfg.PipelineOptions(zap.NewNop())
	return tui.Run(ss.coll.All(), opts, th)
}

func listHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	runs, err := storage.New(cfg.History).List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no renders found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSPECIMEN\tTIME\tTHEME\tOUTPUT")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			run.ID,
			run.Specimen,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Theme,
			run.Output,
		)
	}
	return w.Flush()
}

func exportRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	meta, err := storage.New(cfg.History).Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	traces, err := storage.New(cfg.History).LoadTraces(args[0])
	if err != nil {
		return err
	}
	if len(traces) == 0 {
		return fmt.Errorf("no data to export")
	}
	return storage.WriteTraces(os.Stdout, traces)
}

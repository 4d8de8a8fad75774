package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/hopalong/internal/config"
	"github.com/san-kum/hopalong/internal/engine"
	"github.com/san-kum/hopalong/internal/metrics"
	"github.com/san-kum/hopalong/internal/orbit"
	"github.com/san-kum/hopalong/internal/viz"
)

var (
	dataDir     string
	configFile  string
	preset      string
	catalogFile string
	logFile     string
	seed        uint64
	curated     bool
	numLevels   int
	numSubsets  int
	numPoints   int
	numWorkers  int
	fps         int
	theme       string
)

// main registers every command and runs the live view when no subcommand
// is given. It exits with status 1 if the command returns an error.
func main() {
	rootCmd := &cobra.Command{
		Use:          "hopalong",
		Short:        "chaotic hopalong orbits flying through the terminal",
		SilenceUsage: true,
		RunE:         runLive,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".hopalong", "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.StringVar(&catalogFile, "catalog", "", "curated catalog file (yaml); embedded catalog if empty")
	pf.StringVar(&logFile, "log", "", "write logs to this file")
	pf.Uint64Var(&seed, "seed", 0, "random seed (0 = time based)")
	pf.BoolVar(&curated, "curated", false, "walk the curated catalog instead of random parameters")
	pf.IntVar(&numLevels, "levels", config.DefaultLevels, "depth levels")
	pf.IntVar(&numSubsets, "subsets", config.DefaultSubsets, "subsets per orbit")
	pf.IntVar(&numPoints, "points", config.DefaultPointsPerSubset, "points per subset")
	pf.IntVar(&numWorkers, "workers", config.DefaultWorkers, "concurrent subset workers")

	rootCmd.Flags().IntVar(&fps, "fps", config.DefaultFPS, "frame rate")
	rootCmd.Flags().StringVar(&theme, "theme", viz.Themes[0].Name, "panel theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tLEVELS\tSUBSETS\tPOINTS\tSPEED")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.1f\n", name, p.Levels, p.Subsets, p.PointsPerSubset, p.Speed)
			}
			return w.Flush()
		},
	}

	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "list the curated parameter catalog",
		RunE:  listCatalog,
	}

	rootCmd.AddCommand(newRunCmd(), newGenerateCmd(), newServeCmd(), newListCmd(), newPlotCmd(), catalogCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves preset, then config file, then explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("curated") {
		cfg.Curated = curated
	}
	if flags.Changed("levels") {
		cfg.Levels = numLevels
	}
	if flags.Changed("subsets") {
		cfg.Subsets = numSubsets
	}
	if flags.Changed("points") {
		cfg.PointsPerSubset = numPoints
	}
	if flags.Changed("workers") {
		cfg.Workers = numWorkers
	}
	if flags.Changed("fps") {
		cfg.FPS = fps
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadCatalog() (orbit.Catalog, error) {
	if catalogFile == "" {
		return orbit.DefaultCatalog(), nil
	}
	return orbit.LoadCatalog(catalogFile)
}

func newEngine(cmd *cobra.Command) (*config.Config, *engine.Engine, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	cat, err := loadCatalog()
	if err != nil {
		return nil, nil, err
	}
	eng, err := engine.New(cfg.Engine(), cat)
	if err != nil {
		return nil, nil, err
	}
	for _, m := range metrics.Defaults() {
		eng.AddMetric(m)
	}
	return cfg, eng, nil
}

func runLive(cmd *cobra.Command, args []string) error {
	if logFile != "" {
		f, err := tea.LogToFile(logFile, "hopalong")
		if err != nil {
			return err
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	cfg, eng, err := newEngine(cmd)
	if err != nil {
		return err
	}
	log.Printf("live: %dx%dx%d points, regen every %s", cfg.Levels, cfg.Subsets, cfg.PointsPerSubset, cfg.RegenInterval)

	m := viz.NewModel(eng, viz.Options{
		FrameEvery: cfg.FrameInterval(),
		RegenEvery: time.Duration(cfg.RegenInterval),
		Saturation: cfg.Saturation,
		Lightness:  cfg.Lightness,
		Theme:      theme,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func listCatalog(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tA\tB\tC\tD\tE\tBRANCH\tX0\tY0")
	for i, p := range cat {
		fmt.Fprintf(w, "%d\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%s\t%.3f\t%.3f\n",
			i, p.A, p.B, p.C, p.D, p.E, p.Branch(), p.XPreset, p.YPreset)
	}
	return w.Flush()
}

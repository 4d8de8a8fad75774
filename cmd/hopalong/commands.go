package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/hopalong/internal/api"
	"github.com/san-kum/hopalong/internal/export"
	"github.com/san-kum/hopalong/internal/levels"
	"github.com/san-kum/hopalong/internal/orbit"
	"github.com/san-kum/hopalong/internal/storage"
)

var (
	frames    int
	duration  time.Duration
	runSave   bool
	runPlot   bool
	format    string
	outPath   string
	withPts   bool
	mode      string
	index     int
	genSave   bool
	genPlot   bool
	addr      string
	serveSave bool
	maxPlot   int
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "run the animation headless and report statistics",
		RunE:  runHeadless,
	}
	cmd.Flags().IntVar(&frames, "frames", 600, "frames to step (ignored when --duration is set)")
	cmd.Flags().DurationVar(&duration, "duration", 0, "run on the wall clock for this long")
	cmd.Flags().BoolVar(&runSave, "save", false, "store every generated orbit and the history in --data")
	cmd.Flags().BoolVar(&runPlot, "plot", true, "plot orbit area per generation")
	return cmd
}

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "generate one orbit and export it",
		RunE:  generateOrbit,
	}
	cmd.Flags().StringVarP(&format, "format", "f", "svg", "output format (svg, json)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "-", "output path, - for stdout")
	cmd.Flags().BoolVar(&withPts, "points", false, "include display points in json output")
	cmd.Flags().StringVar(&mode, "mode", "", "parameter source (random, curated); defaults to config")
	cmd.Flags().IntVar(&index, "index", 0, "catalog index in curated mode")
	cmd.Flags().BoolVar(&genSave, "save", false, "store the orbit in --data")
	cmd.Flags().BoolVar(&genPlot, "plot", false, "plot the raw trajectory of the first subset")
	return cmd
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "animate headless and expose settings and parameters over http",
		RunE:  serve,
	}
	cmd.Flags().StringVar(&addr, "addr", ":4040", "listen address")
	cmd.Flags().BoolVar(&serveSave, "save", false, "store the history in --data on shutdown")
	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list stored orbits",
		RunE:  listOrbits,
	}
}

func newPlotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot [orbit_id]",
		Short: "plot a stored orbit",
		Args:  cobra.ExactArgs(1),
		RunE:  plotOrbit,
	}
	cmd.Flags().IntVar(&maxPlot, "max", 400, "points per series")
	return cmd
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, eng, err := newEngine(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if runSave {
		if err := st.Init(); err != nil {
			return err
		}
	}

	var areas []float64
	record := func(gen *levels.Generation) {
		w, h := gen.Orbit.Extent()
		areas = append(areas, w*h)
		if gen.Orbit.Reseeds > 0 {
			log.Printf("run: generation %d reseeded %d times", gen.ID, gen.Orbit.Reseeds)
		}
		if runSave {
			if _, err := st.Save(gen.Orbit, gen.Hues); err != nil {
				log.Printf("run: save generation %d: %v", gen.ID, err)
			}
		}
	}
	record(eng.Cycler().Current())
	eng.OnRegenerate(record)

	fmt.Printf("running %dx%dx%d...\n", cfg.Levels, cfg.Subsets, cfg.PointsPerSubset)
	start := time.Now()

	if duration > 0 {
		ctx, cancel := context.WithTimeout(cmd.Context(), duration)
		defer cancel()
		sched := eng.Scheduler(cfg.FrameInterval(), time.Duration(cfg.RegenInterval))
		if err := sched.Run(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
	} else {
		// regenerate on the same frame cadence the clock would use
		every := int(time.Duration(cfg.RegenInterval) / cfg.FrameInterval())
		if every < 1 {
			every = 1
		}
		for i := 1; i <= frames; i++ {
			eng.Frame()
			if i%every == 0 {
				if _, err := eng.Regenerate(); err != nil {
					return err
				}
			}
		}
	}

	elapsed := time.Since(start)
	stats := eng.Stats()

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("frames: %d\n", stats.Frames)
	fmt.Printf("regenerations: %d\n", stats.Regenerations)
	fmt.Printf("crossings: %d (%d repainted)\n", stats.Crossings, stats.Repaints)
	fmt.Printf("pending repaint: %d/%d\n", stats.Pending, eng.Cycler().Len())
	if len(stats.Metrics) > 0 {
		fmt.Println("metrics:")
		names := make([]string, 0, len(stats.Metrics))
		for name := range stats.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %s: %.4f\n", name, stats.Metrics[name])
		}
	}
	if p, ok := eng.CurrentParams(); ok {
		fmt.Printf("current: %s a=%.3f b=%.3f c=%.3f d=%.3f e=%.3f (%s)\n", p.ID, p.A, p.B, p.C, p.D, p.E, p.Branch())
	}

	if runPlot && len(areas) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(areas,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("orbit area per generation"),
		))
	}

	if runSave {
		if err := st.SaveHistory(eng.History()); err != nil {
			return err
		}
		fmt.Printf("saved to %s\n", dataDir)
	}
	return nil
}

func generateOrbit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	m := orbit.ModeRandom
	if cfg.Curated {
		m = orbit.ModeCurated
	}
	if mode != "" {
		if m, err = orbit.ParseMode(mode); err != nil {
			return err
		}
	}
	if m == orbit.ModeCurated && (index < 0 || index >= len(cat)) {
		return fmt.Errorf("catalog index %d out of range [0, %d)", index, len(cat))
	}
	if genPlot && outPath == "-" {
		return errors.New("--plot needs --out")
	}

	s := cfg.Seed
	if s == 0 {
		s = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(s, s>>1|1))

	sel := orbit.NewSelector(cat, rng)
	if m == orbit.ModeCurated {
		for i := 0; i < index; i++ {
			sel.Select(orbit.ModeCurated)
		}
	}
	p := sel.Select(m)

	gen := orbit.NewGenerator(rng, cfg.Scale)
	gen.SetWorkers(cfg.Workers)
	o, err := gen.Generate(p, cfg.Subsets, cfg.PointsPerSubset)
	if err != nil {
		return err
	}
	hues := orbit.AssignHues(rng, cfg.Subsets)

	out := os.Stdout
	if outPath != "-" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	switch format {
	case "svg":
		opts := export.DefaultSVGOptions()
		opts.Saturation, opts.Lightness = cfg.Saturation, cfg.Lightness
		if _, err := fmt.Fprintln(out, export.OrbitToSVG(o, hues, opts)); err != nil {
			return err
		}
	case "json":
		if err := export.WriteJSON(out, export.NewOrbitDocument(o, hues, withPts)); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format: %s (available: svg, json)", format)
	}

	if genSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		if _, err := st.Save(o, hues); err != nil {
			return err
		}
		log.Printf("generate: stored %s in %s", p.ID, dataDir)
	}

	if genPlot {
		xs, ys := rawSeries(o.Subsets[0], maxPlotDefault)
		fmt.Println(asciigraph.PlotMany([][]float64{xs, ys},
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.SeriesColors(asciigraph.Cyan, asciigraph.Magenta),
			asciigraph.Caption(fmt.Sprintf("subset 0: x (cyan), y (magenta); %s", p.Branch())),
		))
	}
	return nil
}

const maxPlotDefault = 400

func rawSeries(cloud orbit.PointCloud, n int) ([]float64, []float64) {
	if n <= 0 || n > len(cloud) {
		n = len(cloud)
	}
	xs, ys := make([]float64, n), make([]float64, n)
	for i := 0; i < n; i++ {
		xs[i], ys[i] = cloud[i].Raw.X, cloud[i].Raw.Y
	}
	return xs, ys
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, eng, err := newEngine(cmd)
	if err != nil {
		return err
	}

	sched := eng.Scheduler(cfg.FrameInterval(), time.Duration(cfg.RegenInterval))
	srv := api.NewHTTPServer(addr, api.New(eng, sched).Handler())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return sched.Run(ctx)
	})
	g.Go(func() error {
		log.Printf("serve: listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		sched.Stop()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdown)
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	log.Printf("serve: stopped after %d frames, %d regenerations", sched.Frames(), sched.Regens())

	if serveSave {
		st := storage.New(dataDir)
		if serr := st.SaveHistory(eng.History()); serr != nil {
			return errors.Join(err, serr)
		}
	}
	return err
}

func listOrbits(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	docs, err := st.List()
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Println("no orbits found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tBRANCH\tPOINTS\tRESEEDS\tA\tB\tC")
	for _, d := range docs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.3f\t%.3f\t%.3f\n",
			d.Params.ID,
			d.Params.CreatedAt.Format("2006-01-02 15:04:05"),
			d.Branch,
			d.NumPoints,
			d.Reseeds,
			d.Params.A, d.Params.B, d.Params.C,
		)
	}
	return w.Flush()
}

func plotOrbit(cmd *cobra.Command, args []string) error {
	id := args[0]
	st := storage.New(dataDir)
	doc, err := st.Load(id)
	if err != nil {
		return err
	}
	subs, err := st.LoadPoints(id)
	if err != nil {
		return err
	}
	if len(subs) == 0 || len(subs[0]) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("orbit: %s\n", doc.Params.ID)
	fmt.Printf("branch: %s\n", doc.Branch)
	fmt.Printf("subsets: %d\n\n", len(subs))

	n := len(subs[0])
	if maxPlot > 0 && n > maxPlot {
		n = maxPlot
	}
	xs, ys := make([]float64, n), make([]float64, n)
	for i := 0; i < n; i++ {
		xs[i], ys[i] = subs[0][i].X, subs[0][i].Y
	}
	for _, series := range []struct {
		data    []float64
		caption string
	}{{xs, "x"}, {ys, "y"}} {
		fmt.Println(asciigraph.Plot(series.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(series.caption),
		))
		fmt.Println()
	}
	return nil
}

package levels_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/hopalong/internal/levels"
	"github.com/san-kum/hopalong/internal/orbit"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func generation(id uint64, subsets int, created time.Time) *levels.Generation {
	o := &orbit.Orbit{
		Params:  orbit.Params{ID: "gen", A: float64(id), CreatedAt: created},
		Subsets: make([]orbit.PointCloud, subsets),
	}
	hues := make(orbit.HueTable, subsets)
	for s := range o.Subsets {
		o.Subsets[s] = orbit.PointCloud{{Display: orbit.Vec2{X: float64(id), Y: float64(s)}}}
		hues[s] = float64(s) / float64(subsets)
	}
	return &levels.Generation{ID: id, Orbit: o, Hues: hues}
}

var _ = Describe("Cycler", func() {
	var (
		cfg levels.Config
		c   *levels.Cycler
	)

	BeforeEach(func() {
		cfg = levels.Config{Levels: 3, Subsets: 4, LevelDepth: 600, CameraZ: 750}
		var err error
		c, err = levels.New(cfg)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("construction", func() {
		It("allocates levels times subsets groups", func() {
			Expect(c.Len()).To(Equal(12))
		})

		It("staggers groups by level and subset", func() {
			Expect(c.Group(0, 0).Depth).To(Equal(750.0))
			Expect(c.Group(0, 1).Depth).To(Equal(750.0 - 150))
			Expect(c.Group(1, 0).Depth).To(Equal(150.0))
			Expect(c.Group(2, 3).Depth).To(Equal(-1200.0 - 450 + 750))
		})

		It("gives every group a distinct arrival depth", func() {
			seen := map[float64]bool{}
			for _, g := range c.Groups() {
				Expect(seen).NotTo(HaveKey(g.Depth))
				seen[g.Depth] = true
				Expect(g.State).To(Equal(levels.Scrolling))
			}
		})

		It("rejects an empty pool", func() {
			_, err := levels.New(levels.Config{Levels: 0, Subsets: 3})
			Expect(err).To(MatchError(levels.ErrInvalidPool))
		})

		It("returns nil for out of range groups", func() {
			Expect(c.Group(3, 0)).To(BeNil())
			Expect(c.Group(0, -1)).To(BeNil())
		})
	})

	Describe("scrolling", func() {
		BeforeEach(func() {
			cfg.Subsets = 1
			var err error
			c, err = levels.New(cfg)
			Expect(err).NotTo(HaveOccurred())
		})

		It("sends a group at the camera plane to the back on the next tick", func() {
			g := c.Group(0, 0)
			Expect(g.Depth).To(Equal(750.0))

			crossings := c.Tick(2, 0)
			Expect(crossings).To(HaveLen(1))
			Expect(g.Depth).To(Equal(-1200.0))
			Expect(g.State).To(Equal(levels.Recycled))
		})

		It("reaches the camera after (750 - start) / speed ticks", func() {
			g := c.Group(1, 0)
			start := g.Depth
			ticks := int((750 - start) / 2)

			for i := 0; i < ticks; i++ {
				c.Tick(2, 0)
			}
			Expect(g.Depth).To(Equal(750.0))

			c.Tick(2, 0)
			Expect(g.Depth).To(Equal(-1200.0))
		})

		It("accumulates rotation in either direction", func() {
			c.Tick(0, 0.25)
			c.Tick(0, -1)
			Expect(c.Group(2, 0).Rotation).To(BeNumerically("~", -0.75, 1e-12))
		})

		It("does not move groups at zero speed", func() {
			before := c.Group(1, 0).Depth
			Expect(c.Tick(0, 0)).To(BeEmpty())
			Expect(c.Group(1, 0).Depth).To(Equal(before))
			Expect(c.Ticks()).To(Equal(uint64(1)))
		})
	})

	Describe("repainting", func() {
		var gen0, gen1 *levels.Generation

		BeforeEach(func() {
			gen0 = generation(0, cfg.Subsets, epoch)
			gen1 = generation(1, cfg.Subsets, epoch.Add(3*time.Second))
			c.PaintAll(gen0)
		})

		It("paints every group at start-up", func() {
			for _, g := range c.Groups() {
				Expect(g.Generation()).To(BeIdenticalTo(gen0))
				Expect(g.NeedsRepaint).To(BeFalse())
			}
		})

		It("shares one cloud per subset across levels", func() {
			a := c.Group(0, 2).Points()
			b := c.Group(2, 2).Points()
			Expect(&a[0]).To(BeIdenticalTo(&b[0]))
		})

		It("flags but does not repaint on publish", func() {
			c.Publish(gen1)
			Expect(c.Pending()).To(Equal(c.Len()))
			for _, g := range c.Groups() {
				Expect(g.Generation()).To(BeIdenticalTo(gen0))
			}
		})

		It("adopts the published generation at the crossing", func() {
			c.Publish(gen1)
			crossings := c.Tick(1, 0)

			Expect(crossings).To(HaveLen(1))
			Expect(crossings[0].Repainted).To(BeTrue())
			Expect(crossings[0].Generation).To(Equal(uint64(1)))

			g := c.Group(0, 0)
			Expect(g.State).To(Equal(levels.Repainting))
			Expect(g.Generation()).To(BeIdenticalTo(gen1))
			Expect(g.Hue()).To(Equal(gen1.Hues[0]))
			Expect(g.Points()[0].Display.X).To(Equal(1.0))
		})

		It("never clears a flag without adopting the current generation", func() {
			c.Publish(gen1)
			crossed := map[[2]int]bool{}

			for i := 0; i < 2000 && len(crossed) < c.Len(); i++ {
				for _, cr := range c.Tick(8, 0.005) {
					crossed[[2]int{cr.Level, cr.Subset}] = true
				}
				for _, g := range c.Groups() {
					if !g.NeedsRepaint {
						Expect(g.Generation()).To(BeIdenticalTo(gen1))
					}
				}
			}

			Expect(crossed).To(HaveLen(c.Len()))
			Expect(c.Pending()).To(BeZero())
		})

		It("recycles without repainting when nothing is pending", func() {
			crossings := c.Tick(1, 0)
			Expect(crossings).To(HaveLen(1))
			Expect(crossings[0].Repainted).To(BeFalse())
			Expect(c.Group(0, 0).State).To(Equal(levels.Recycled))
			Expect(c.Group(0, 0).Repaints).To(Equal(1))
		})

		It("spreads a refresh over successive crossings", func() {
			c.Publish(gen1)
			c.Tick(1, 0)
			Expect(c.Pending()).To(Equal(c.Len() - 1))
		})
	})

	Describe("active parameters", func() {
		It("is empty before any paint", func() {
			_, ok := c.ActiveParams()
			Expect(ok).To(BeFalse())
		})

		It("picks the newest generation painted on any group", func() {
			gen0 := generation(0, cfg.Subsets, epoch)
			gen1 := generation(1, cfg.Subsets, epoch.Add(time.Second))
			c.PaintAll(gen0)
			c.Publish(gen1)

			gen, _ := c.ActiveParams()
			Expect(gen).To(BeIdenticalTo(gen0))

			c.Tick(1, 0)
			gen, _ = c.ActiveParams()
			Expect(gen).To(BeIdenticalTo(gen1))
		})

		It("breaks timestamp ties by generation order", func() {
			gen0 := generation(0, cfg.Subsets, epoch)
			gen1 := generation(1, cfg.Subsets, epoch)
			c.PaintAll(gen0)
			c.Publish(gen1)
			c.Tick(1, 0)

			gen, _ := c.ActiveParams()
			Expect(gen.ID).To(Equal(uint64(1)))
		})
	})
})

package loop_test

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"strconv"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/noisefield/internal/input"
	"github.com/san-kum/noisefield/internal/loop"
	"github.com/san-kum/noisefield/internal/noise"
)

var cellPattern = regexp.MustCompile(`\x1b\[48;2;(\d+);(\d+);(\d+)m `)

type scriptedInput struct {
	chunks []string
}

func (s *scriptedInput) ReadAvailable(p []byte) (int, error) {
	if len(s.chunks) == 0 {
		return 0, nil
	}
	n := copy(p, s.chunks[0])
	s.chunks = s.chunks[1:]
	return n, nil
}

func (s *scriptedInput) push(chunk string) { s.chunks = append(s.chunks, chunk) }

type frameRecorder struct {
	frames  [][]byte
	err     error
	onWrite func()
}

func (r *frameRecorder) Write(p []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	if r.onWrite != nil {
		r.onWrite()
	}
	r.frames = append(r.frames, bytes.Clone(p))
	return len(p), nil
}

type fakeClock struct {
	now  time.Time
	step time.Duration
}

func (c *fakeClock) Now() time.Time {
	c.now = c.now.Add(c.step)
	return c.now
}

type fixture struct {
	in     *scriptedInput
	out    *frameRecorder
	clock  *fakeClock
	sleeps []time.Duration
	sizes  int
	width  int
	height int

	// sleeping advances the clock
	realSleep bool
}

func newFixture(width, height int) *fixture {
	return &fixture{
		in:     &scriptedInput{},
		out:    &frameRecorder{},
		clock:  &fakeClock{now: time.Unix(0, 0), step: time.Millisecond},
		width:  width,
		height: height,
	}
}

func (f *fixture) deps(s noise.Sampler) loop.Deps {
	return loop.Deps{
		Sampler: s,
		Input:   f.in,
		Output:  f.out,
		Size: func() (int, int) {
			f.sizes++
			return f.width, f.height
		},
		Sleep: func(d time.Duration) {
			f.sleeps = append(f.sleeps, d)
			if f.realSleep {
				f.clock.now = f.clock.now.Add(d)
			}
		},
		Now:   f.clock.Now,
	}
}

func tickN(l *loop.Loop, n int) {
	GinkgoHelper()
	for i := 0; i < n; i++ {
		more, err := l.Tick()
		Expect(err).NotTo(HaveOccurred())
		Expect(more).To(BeTrue())
	}
}

var _ = Describe("Loop", func() {
	var (
		f        *fixture
		settings loop.Settings
	)

	BeforeEach(func() {
		f = newFixture(4, 2)
		settings = loop.DefaultSettings()
	})

	Describe("construction", func() {
		It("starts initializing with the queried viewport", func() {
			l, err := loop.New(f.deps(noise.Constant(0)), settings)
			Expect(err).NotTo(HaveOccurred())
			Expect(l.State()).To(Equal(loop.StateInitializing))
			Expect(l.Viewport()).To(Equal(loop.Viewport{Width: 4, Height: 2}))
			Expect(l.Frame()).To(BeZero())
			Expect(l.Velocity()).To(Equal(input.Velocity{}))
		})

		It("rejects missing collaborators", func() {
			d := f.deps(nil)
			_, err := loop.New(d, settings)
			Expect(err).To(MatchError(loop.ErrMissingDependency))

			d = f.deps(noise.Constant(0))
			d.Output = nil
			_, err = loop.New(d, settings)
			Expect(err).To(MatchError(loop.ErrMissingDependency))
		})

		It("rejects invalid cache and pacing settings before running", func() {
			bad := settings
			bad.CacheCapacity = 0
			_, err := loop.New(f.deps(noise.Constant(0)), bad)
			Expect(err).To(MatchError(noise.ErrInvalidCapacity))

			bad = settings
			bad.FPS = 0
			_, err = loop.New(f.deps(noise.Constant(0)), bad)
			Expect(err).To(HaveOccurred())
		})
	})

	Context("with a constant field and no velocity", func() {
		It("paints every cell the same colour on every frame", func() {
			l, err := loop.New(f.deps(noise.Constant(0.5)), settings)
			Expect(err).NotTo(HaveOccurred())

			tickN(l, 5)
			Expect(l.State()).To(Equal(loop.StateRunning))
			Expect(f.out.frames).To(HaveLen(5))

			for frame, payload := range f.out.frames {
				cells := cellPattern.FindAllSubmatch(payload, -1)
				Expect(cells).To(HaveLen(8))
				for _, c := range cells {
					Expect(string(c[1])).To(Equal("191"))
					Expect(string(c[2])).To(Equal("64"))
					Expect(string(c[3])).To(Equal(strconv.Itoa(frame % 255)))
				}
			}
		})

		It("writes one payload per frame", func() {
			l, _ := loop.New(f.deps(noise.Constant(0)), settings)
			tickN(l, 3)
			Expect(f.out.frames).To(HaveLen(3))
			for _, p := range f.out.frames {
				Expect(p).To(HavePrefix("\x1b[1;1H\x1b[0m"))
			}
		})
	})

	Context("when the pointer moves", func() {
		It("raises vx in proportion to the delta and keeps it", func() {
			f.width, f.height = 80, 24
			l, _ := loop.New(f.deps(noise.Constant(0)), settings)

			f.in.push("\x1b[<35;41;13M") // centre cell, no delta
			tickN(l, 1)
			Expect(l.Velocity()).To(Equal(input.Velocity{}))

			f.in.push("\x1b[<35;43;13M") // delta (2, 0)
			tickN(l, 1)
			v := l.Velocity()
			Expect(v.X).To(BeNumerically("~", 2*settings.Sensitivity, 1e-12))
			Expect(v.Y).To(BeZero())
			Expect(v.Z).To(BeZero())

			before := l.Origin()
			tickN(l, 4)
			Expect(l.Velocity()).To(Equal(v))
			Expect(l.Origin().X).To(BeNumerically("~", before.X+4*v.X, 1e-12))
		})

		It("adjusts vz on wheel notches", func() {
			l, _ := loop.New(f.deps(noise.Constant(0)), settings)
			f.in.push("\x1b[<64;1;1M\x1b[<64;1;1M")
			tickN(l, 1)
			Expect(l.Velocity().Z).To(BeNumerically("~", 2*settings.WheelStep, 1e-12))
		})
	})

	Context("with malformed input", func() {
		It("ignores an incomplete escape sequence", func() {
			l, _ := loop.New(f.deps(noise.Constant(0)), settings)
			f.in.push("\x1b[<35;4")
			f.in.push("\x1b[")

			tickN(l, 3)
			Expect(l.Velocity()).To(Equal(input.Velocity{}))
			Expect(f.out.frames).To(HaveLen(3))
		})
	})

	Context("with a cache of one entry", func() {
		It("recomputes cells evicted by their neighbours", func() {
			f.width, f.height = 2, 1
			settings.CacheCapacity = 1

			calls := 0
			sampler := noise.Func(func(x, y, z float64) float64 {
				calls++
				return 0
			})
			l, _ := loop.New(f.deps(sampler), settings)
			tickN(l, 3)

			st := l.Summary().Cache
			Expect(calls).To(Equal(6))
			Expect(st.Hits).To(BeZero())
			Expect(st.Misses).To(Equal(uint64(6)))
			Expect(st.Evictions).To(Equal(uint64(5)))
			Expect(st.Len).To(Equal(1))
		})
	})

	Describe("termination", func() {
		It("stops on the quit key without drawing", func() {
			l, _ := loop.New(f.deps(noise.Constant(0)), settings)
			tickN(l, 2)

			f.in.push("q")
			more, err := l.Tick()
			Expect(err).NotTo(HaveOccurred())
			Expect(more).To(BeFalse())
			Expect(l.State()).To(Equal(loop.StateTerminating))
			Expect(f.out.frames).To(HaveLen(2))

			more, _ = l.Tick()
			Expect(more).To(BeFalse())
			Expect(f.out.frames).To(HaveLen(2))
		})

		It("wraps output failures in ErrOutput", func() {
			f.out.err = errors.New("broken pipe")
			l, _ := loop.New(f.deps(noise.Constant(0)), settings)

			_, err := l.Run(context.Background())
			Expect(err).To(MatchError(loop.ErrOutput))
			Expect(err.Error()).To(ContainSubstring("broken pipe"))
			Expect(l.State()).To(Equal(loop.StateTerminating))
		})

		It("returns a summary when the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			l, _ := loop.New(f.deps(noise.Constant(0)), settings)
			sum, err := l.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(sum.Frames).To(BeZero())
			Expect(f.out.frames).To(BeEmpty())
		})

		It("stops after MaxFrames", func() {
			settings.MaxFrames = 7
			l, _ := loop.New(f.deps(noise.Constant(-0.25)), settings)

			sum, err := l.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(sum.Frames).To(Equal(uint64(7)))
			Expect(sum.Min).To(Equal(-0.25))
			Expect(sum.Max).To(Equal(-0.25))
			Expect(sum.FrameTimes).To(HaveLen(7))
			Expect(sum.Elapsed).To(BeNumerically(">", 0))
		})
	})

	Describe("viewport refresh", func() {
		It("queries the size only every refresh interval", func() {
			settings.RefreshInterval = 30
			l, _ := loop.New(f.deps(noise.Constant(0)), settings)
			Expect(f.sizes).To(Equal(1))

			tickN(l, 61) // frames 0, 30 and 60 refresh
			Expect(f.sizes).To(Equal(4))
		})

		It("picks up a resize on the next refresh frame", func() {
			settings.RefreshInterval = 5
			l, _ := loop.New(f.deps(noise.Constant(0)), settings)
			tickN(l, 1)

			f.width, f.height = 6, 3
			tickN(l, 4)
			Expect(l.Viewport()).To(Equal(loop.Viewport{Width: 4, Height: 2}))

			tickN(l, 1)
			Expect(l.Viewport()).To(Equal(loop.Viewport{Width: 6, Height: 3}))
			last := f.out.frames[len(f.out.frames)-1]
			Expect(cellPattern.FindAll(last, -1)).To(HaveLen(18))
		})
	})

	Describe("pacing", func() {
		It("sleeps off the remainder of each frame period", func() {
			l, _ := loop.New(f.deps(noise.Constant(0)), settings)
			tickN(l, 3)

			want := time.Second/30 - time.Millisecond
			Expect(f.sleeps).To(Equal([]time.Duration{want, want, want}))
		})

		It("reports the achieved rate, sleep included", func() {
			f.clock.step = 0
			f.realSleep = true
			f.out.onWrite = func() { f.clock.now = f.clock.now.Add(2 * time.Millisecond) }
			settings.MaxFrames = 90

			l, _ := loop.New(f.deps(noise.Constant(0)), settings)
			sum, err := l.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(sum.Frames).To(BeEquivalentTo(90))
			Expect(sum.FPS).To(BeNumerically("~", 30, 0.01))
			Expect(sum.FrameTimes).To(HaveEach(2 * time.Millisecond))
		})

		It("skips the sleep when frames overrun", func() {
			f.clock.step = 50 * time.Millisecond
			l, _ := loop.New(f.deps(noise.Constant(0)), settings)
			tickN(l, 3)
			Expect(f.sleeps).To(BeEmpty())
		})
	})

	Context("with the header enabled", func() {
		It("reserves the top row for status", func() {
			f.width, f.height = 60, 3
			settings.ShowHeader = true
			l, _ := loop.New(f.deps(noise.Constant(0)), settings)
			tickN(l, 1)

			payload := f.out.frames[0]
			Expect(string(payload)).To(HavePrefix("\x1b[1;1H\x1b[0mMouse:"))
			Expect(cellPattern.FindAll(payload, -1)).To(HaveLen(120))
		})
	})
})

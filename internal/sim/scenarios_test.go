package sim_test

import (
	"context"
	"errors"
	"math"
	"math/cmplx"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/turb2d/internal/controllers"
	"github.com/san-kum/turb2d/internal/dynamo"
	"github.com/san-kum/turb2d/internal/forcing"
	"github.com/san-kum/turb2d/internal/metrics"
	"github.com/san-kum/turb2d/internal/physics"
	"github.com/san-kum/turb2d/internal/sim"
)

func baseConfig(n int) sim.Config {
	return sim.Config{
		Length:      2 * math.Pi,
		Resolution:  n,
		Dealias:     1.5,
		Timestepper: "RK443",
		CFL: controllers.CFLConfig{
			Safety:    0.5,
			Cadence:   10,
			MaxChange: 1.5,
			MinChange: 0.5,
			MaxDt:     1e-3,
			Threshold: 0.05,
		},
		StopIteration: 10,
	}
}

type recorder struct {
	mu      sync.Mutex
	samples []dynamo.Sample
}

func (r *recorder) Record(s dynamo.Sample) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, s)
	return nil
}

func (r *recorder) count(group string) int {
	n := 0
	for _, s := range r.samples {
		if s.Group == group {
			n++
		}
	}
	return n
}

var _ = Describe("Simulator", func() {
	Describe("a single forced step from rest", func() {
		It("confines the response to the forcing ring", func() {
			const (
				eps = 1.0
				kf  = 50.0
				kfw = 2.0
				n   = 64
			)
			l := 2 * math.Pi
			eta := eps * kf * kf

			cfg := baseConfig(n)
			cfg.Physics = physics.Params{
				Nu:    (l / n) * (l / n) * math.Cbrt(eta),
				Alpha: math.Cbrt(eps) * math.Pow(l, -2.0/3.0),
			}
			cfg.ForcingEnabled = true
			cfg.Forcing = forcing.Spec{Epsilon: eps, Kf: kf, Kfw: kfw, Seed: 1}

			s, err := sim.New(cfg, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Step(1e-5)).To(Succeed())

			g := s.Grid()
			w := s.Vorticity()
			var inside, outside float64
			for i := 0; i < g.N(); i++ {
				for j := 0; j < g.N(); j++ {
					a := cmplx.Abs(w.At(i, j))
					if g.K(i, j) < kf-7*kfw {
						outside = math.Max(outside, a)
					} else {
						inside = math.Max(inside, a)
					}
				}
			}
			Expect(inside).To(BeNumerically(">", 0))
			Expect(outside).To(BeNumerically("<", 1e-3*inside))
			Expect(w.At(0, 0)).To(BeZero())
		})
	})

	Describe("unforced inviscid flow", func() {
		It("conserves energy and enstrophy", func() {
			cfg := baseConfig(32)
			cfg.Initial = sim.InitialCondition{Type: "random", K0: 2, Amplitude: 1, Seed: 4}

			s, err := sim.New(cfg, nil)
			Expect(err).NotTo(HaveOccurred())

			e0 := metrics.Energy(s.Evaluation())
			z0 := metrics.Enstrophy(s.Evaluation())
			Expect(e0).To(BeNumerically(">", 0))

			for k := 0; k < 20; k++ {
				Expect(s.Step(1e-3)).To(Succeed())
			}

			e1 := metrics.Energy(s.Evaluation())
			z1 := metrics.Enstrophy(s.Evaluation())
			Expect(math.Abs(e1-e0) / e0).To(BeNumerically("<", 1e-6))
			Expect(math.Abs(z1-z0) / z0).To(BeNumerically("<", 1e-6))
		})
	})

	Describe("diagnostics output", func() {
		var (
			rec *recorder
			res *dynamo.Result
		)

		BeforeEach(func() {
			cfg := baseConfig(16)
			cfg.StopIteration = 0
			cfg.StopTime = 0.1
			cfg.ScalarsDt = 0.01
			cfg.SnapshotsDt = 0.05
			cfg.ForcingEnabled = true
			cfg.Forcing = forcing.Spec{Epsilon: 1, Kf: 4, Kfw: 1, Seed: 2}
			cfg.Physics = physics.Params{Nu: 1e-2, Alpha: 0.1}

			rec = &recorder{}
			s, err := sim.New(cfg, rec)
			Expect(err).NotTo(HaveOccurred())

			res, err = s.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
		})

		It("emits one set of samples per cadence crossing", func() {
			Expect(rec.count("scalars")).To(Equal(10 * len(metrics.ScalarTasks())))
			Expect(rec.count("snapshots")).To(Equal(2 * len(metrics.SnapshotTasks())))
			Expect(res.Samples).To(Equal(len(rec.samples)))
		})

		It("stops at the requested simulation time", func() {
			Expect(res.SimTime).To(BeNumerically(">=", 0.1-1e-12))
			Expect(res.SimTime).To(BeNumerically("<", 0.1+1e-3))
			Expect(res.LastDt).To(BeNumerically("<=", 1e-3))
		})

		It("reports run averages", func() {
			Expect(res.Metrics).To(HaveKey("mean_E"))
			Expect(res.Metrics).To(HaveKey("mean_Z"))
			Expect(res.Metrics["mean_injection"]).To(BeNumerically("~", 16, 8))
		})

		It("balances field snapshots with the grid", func() {
			for _, smp := range rec.samples {
				if smp.IsField() {
					Expect(smp.Values).To(HaveLen(smp.Size * smp.Size))
				}
			}
		})
	})

	Describe("reproducibility", func() {
		run := func(seed int64) *sim.Simulator {
			cfg := baseConfig(16)
			cfg.ForcingEnabled = true
			cfg.Forcing = forcing.Spec{Epsilon: 1, Kf: 4, Kfw: 1, Seed: seed}
			cfg.Physics = physics.Params{Nu: 1e-2, Alpha: 0.1}
			s, err := sim.New(cfg, nil)
			Expect(err).NotTo(HaveOccurred())
			_, err = s.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			return s
		}

		It("is bit-identical for the same seed", func() {
			a, b := run(5).Vorticity(), run(5).Vorticity()
			Expect(a.Coeffs).To(Equal(b.Coeffs))
		})

		It("differs between seeds", func() {
			a, b := run(5).Vorticity(), run(6).Vorticity()
			Expect(a.Coeffs).NotTo(Equal(b.Coeffs))
		})
	})

	Describe("ensembles", func() {
		It("runs every member to completion with its own seed", func() {
			cfg := baseConfig(16)
			cfg.ForcingEnabled = true
			cfg.Forcing = forcing.Spec{Epsilon: 1, Kf: 4, Kfw: 1}
			cfg.ScalarsDt = 1e-3

			recs := make([]*recorder, 3)
			ens := sim.NewEnsemble(cfg, 3, 10, func(member int, seed int64) (dynamo.Sink, error) {
				recs[member] = &recorder{}
				return recs[member], nil
			})

			out, err := ens.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(HaveLen(3))
			for i, m := range out {
				Expect(m.Err).NotTo(HaveOccurred())
				Expect(m.Seed).To(Equal(int64(10 + i)))
				Expect(m.Result.Iterations).To(Equal(10))
				Expect(recs[i].samples).NotTo(BeEmpty())
			}
			Expect(out[0].Result.Metrics["mean_E"]).NotTo(Equal(out[1].Result.Metrics["mean_E"]))
		})

		It("reports a failing member without failing its siblings", func() {
			cfg := baseConfig(16)
			cfg.ScalarsDt = 1e-3
			errNoSink := errors.New("no sink for member")

			ens := sim.NewEnsemble(cfg, 3, 20, func(member int, seed int64) (dynamo.Sink, error) {
				if member == 1 {
					return nil, errNoSink
				}
				return &recorder{}, nil
			})

			out, err := ens.Run(context.Background())
			Expect(err).To(MatchError(errNoSink))
			Expect(err.Error()).To(ContainSubstring("member 1 (seed 21)"))
			Expect(err.Error()).NotTo(ContainSubstring("member 0"))

			Expect(out[1].Err).To(MatchError(errNoSink))
			Expect(out[1].Result).To(BeNil())
			for _, i := range []int{0, 2} {
				Expect(out[i].Err).NotTo(HaveOccurred())
				Expect(out[i].Result.Iterations).To(Equal(10))
			}
		})
	})
})

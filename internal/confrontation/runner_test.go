package confrontation_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/junioryono/ioc/internal/confrontation"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// steppingClock advances one millisecond per reading.
func steppingClock() func() time.Time {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(time.Millisecond)
		return now
	}
}

func timing(result confrontation.Result, contender string) confrontation.Timing {
	for _, t := range result.Timings {
		if t.Contender == contender {
			return t
		}
	}
	Fail("no timing for " + contender)
	return confrontation.Timing{}
}

var _ = Describe("Scenarios", func() {
	for _, s := range confrontation.Scenarios() {
		Context(s.Title, func() {
			for _, contender := range confrontation.Contenders {
				bench, ok := s.Benches[contender]
				if !ok {
					continue
				}
				It("runs for "+contender, func() {
					Expect(bench(3)).To(Succeed())
				})
			}
		})
	}

	It("has no straight equivalent for a non-registered type", func() {
		s := confrontation.Scenarios()[0]
		Expect(s.Name).To(Equal("non-registered"))
		Expect(s.Benches).NotTo(HaveKey(confrontation.Straight))
	})

	It("has no dig equivalent for build up", func() {
		scenarios := confrontation.Scenarios()
		s := scenarios[len(scenarios)-1]
		Expect(s.Name).To(Equal("build-up"))
		Expect(s.Benches).NotTo(HaveKey(confrontation.Dig))
	})
})

var _ = Describe("Runner", func() {
	var cfg *confrontation.Config

	BeforeEach(func() {
		cfg = &confrontation.Config{
			Iterations: []int{1, 5},
			Format:     confrontation.FormatText,
		}
	})

	It("produces one round per iteration count", func() {
		report, err := confrontation.NewRunner(cfg, confrontation.WithClock(steppingClock())).Run(context.Background())

		Expect(err).NotTo(HaveOccurred())
		Expect(report.Rounds).To(HaveLen(2))
		Expect(report.Rounds[0].Iterations).To(Equal(1))
		Expect(report.Rounds[1].Iterations).To(Equal(5))
		Expect(report.Rounds[0].Results).To(HaveLen(len(confrontation.Scenarios())))
	})

	It("marks unsupported contenders", func() {
		report, err := confrontation.NewRunner(cfg, confrontation.WithClock(steppingClock())).Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		first := report.Rounds[0].Results[0]
		Expect(timing(first, confrontation.Straight).Supported).To(BeFalse())
		Expect(timing(first, confrontation.IOC).Supported).To(BeTrue())
		Expect(timing(first, confrontation.IOC).Elapsed).To(Equal(time.Millisecond))
	})

	It("keeps contenders in report order", func() {
		report, err := confrontation.NewRunner(cfg).Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		for _, result := range report.Rounds[0].Results {
			Expect(result.Timings).To(HaveLen(len(confrontation.Contenders)))
			for i, t := range result.Timings {
				Expect(t.Contender).To(Equal(confrontation.Contenders[i]))
			}
		}
	})

	It("warms up before measuring", func() {
		runs := 0
		cfg.Warmup = true
		cfg.Iterations = []int{2}
		scenario := confrontation.Scenario{
			Name:  "count",
			Title: "Count",
			Benches: map[string]confrontation.Bench{
				confrontation.IOC: func(n int) error {
					runs += n
					return nil
				},
			},
		}

		_, err := confrontation.NewRunner(cfg, confrontation.WithScenarios(scenario)).Run(context.Background())

		Expect(err).NotTo(HaveOccurred())
		Expect(runs).To(Equal(3))
	})

	It("stops at a failing bench", func() {
		boom := errors.New("boom")
		scenario := confrontation.Scenario{
			Name:  "failing",
			Title: "Failing",
			Benches: map[string]confrontation.Bench{
				confrontation.Dig: func(int) error { return boom },
			},
		}

		_, err := confrontation.NewRunner(cfg, confrontation.WithScenarios(scenario)).Run(context.Background())

		Expect(err).To(MatchError(boom))
		Expect(err.Error()).To(ContainSubstring("failing/dig with 1 iterations"))
	})

	It("stops when the context is done", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := confrontation.NewRunner(cfg).Run(ctx)

		Expect(err).To(MatchError(context.Canceled))
	})

	It("rejects an invalid config", func() {
		cfg.Iterations = nil

		_, err := confrontation.NewRunner(cfg).Run(context.Background())

		Expect(err).To(MatchError(confrontation.ErrInvalidIterations))
	})
})

var _ = Describe("Report", func() {
	var report *confrontation.Report

	BeforeEach(func() {
		cfg := &confrontation.Config{Iterations: []int{1, 10}, Format: confrontation.FormatText}
		var err error
		report, err = confrontation.NewRunner(cfg, confrontation.WithClock(steppingClock())).Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
	})

	It("renders text", func() {
		var buf bytes.Buffer
		Expect(report.Write(&buf, confrontation.FormatText)).To(Succeed())

		out := buf.String()
		Expect(out).To(ContainSubstring("One iteration:"))
		Expect(out).To(ContainSubstring("10 iterations:"))
		Expect(out).To(ContainSubstring("Chaining injection (three objects):"))
		Expect(out).To(ContainSubstring("Straight:  Not supported"))
		Expect(out).To(ContainSubstring("ioc:       1ms"))
	})

	It("renders JSON", func() {
		var buf bytes.Buffer
		Expect(report.Write(&buf, confrontation.FormatJSON)).To(Succeed())

		var decoded confrontation.Report
		Expect(json.Unmarshal(buf.Bytes(), &decoded)).To(Succeed())
		Expect(decoded).To(Equal(*report))
	})

	It("rejects unknown formats", func() {
		Expect(report.Write(&bytes.Buffer{}, "csv")).To(MatchError(confrontation.ErrInvalidFormat))
	})
})

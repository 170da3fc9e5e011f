package confrontation_test

import (
	"os"
	"path/filepath"

	"github.com/junioryono/ioc/internal/confrontation"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func setenv(key, value string) {
	Expect(os.Setenv(key, value)).To(Succeed())
	DeferCleanup(os.Unsetenv, key)
}

var _ = Describe("Config", func() {
	BeforeEach(func() {
		for _, key := range []string{
			confrontation.EnvIterations,
			confrontation.EnvWarmup,
			confrontation.EnvFormat,
		} {
			if v, ok := os.LookupEnv(key); ok {
				Expect(os.Unsetenv(key)).To(Succeed())
				DeferCleanup(os.Setenv, key, v)
			}
		}
	})

	It("defaults to one, ten and ten thousand iterations", func() {
		cfg, err := confrontation.Load(filepath.Join(GinkgoT().TempDir(), "missing.env"))

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Iterations).To(Equal([]int{1, 10, 10000}))
		Expect(cfg.Warmup).To(BeTrue())
		Expect(cfg.Format).To(Equal(confrontation.FormatText))
	})

	It("reads the environment", func() {
		setenv(confrontation.EnvIterations, "5, 50")
		setenv(confrontation.EnvWarmup, "false")
		setenv(confrontation.EnvFormat, "json")

		cfg, err := confrontation.Load(filepath.Join(GinkgoT().TempDir(), "missing.env"))

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Iterations).To(Equal([]int{5, 50}))
		Expect(cfg.Warmup).To(BeFalse())
		Expect(cfg.Format).To(Equal(confrontation.FormatJSON))
	})

	It("reads a .env file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "bench.env")
		content := confrontation.EnvIterations + "=2,4\n" + confrontation.EnvWarmup + "=0\n"
		Expect(os.WriteFile(path, []byte(content), 0o600)).To(Succeed())
		DeferCleanup(os.Unsetenv, confrontation.EnvIterations)
		DeferCleanup(os.Unsetenv, confrontation.EnvWarmup)

		cfg, err := confrontation.Load(path)

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Iterations).To(Equal([]int{2, 4}))
		Expect(cfg.Warmup).To(BeFalse())
	})

	It("prefers the environment over the .env file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "bench.env")
		Expect(os.WriteFile(path, []byte(confrontation.EnvFormat+"=json\n"), 0o600)).To(Succeed())
		setenv(confrontation.EnvFormat, "text")

		cfg, err := confrontation.Load(path)

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Format).To(Equal(confrontation.FormatText))
	})

	It("rejects an unknown format", func() {
		setenv(confrontation.EnvFormat, "yaml")

		_, err := confrontation.Load(filepath.Join(GinkgoT().TempDir(), "missing.env"))

		Expect(err).To(MatchError(confrontation.ErrInvalidFormat))
	})

	DescribeTable("ParseIterations",
		func(input string, expected []int, valid bool) {
			got, err := confrontation.ParseIterations(input)
			if !valid {
				Expect(err).To(MatchError(confrontation.ErrInvalidIterations))
				return
			}
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(expected))
		},
		Entry("single", "3", []int{3}, true),
		Entry("list", "1,10,10000", []int{1, 10, 10000}, true),
		Entry("spaces and empty parts", " 1 , ,2 ", []int{1, 2}, true),
		Entry("not a number", "1,ten", nil, false),
		Entry("zero", "0", nil, false),
		Entry("negative", "-4", nil, false),
		Entry("empty", "", nil, false),
	)
})

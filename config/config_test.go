package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/la32sim/config"
)

var _ = Describe("Config", func() {
	Describe("Default Config", func() {
		It("should be valid", func() {
			Expect(config.DefaultConfig().Validate()).To(Succeed())
		})

		It("should place memory at 0x80000000", func() {
			c := config.DefaultConfig()
			Expect(c.MemBase).To(Equal(uint32(0x80000000)))
			Expect(c.MemSize).To(Equal(uint32(128 * 1024 * 1024)))
			Expect(c.ResetVector).To(Equal(c.MemBase))
			Expect(c.ITraceDepth).To(Equal(16))
			Expect(c.Cache.Enabled).To(BeFalse())
		})
	})

	Describe("Validate", func() {
		var c *config.Config

		BeforeEach(func() {
			c = config.DefaultConfig()
		})

		It("should reject empty memory", func() {
			c.MemSize = 0
			Expect(c.Validate()).To(MatchError(config.ErrInvalidConfig))
		})

		It("should reject memory past 4 GiB", func() {
			c.MemBase = 0xF0000000
			c.MemSize = 0x20000000
			c.ResetVector = 0xF0000000
			Expect(c.Validate()).To(MatchError(config.ErrInvalidConfig))
		})

		It("should accept memory ending exactly at 4 GiB", func() {
			c.MemBase = 0xF0000000
			c.MemSize = 0x10000000
			c.ResetVector = 0xF0000000
			Expect(c.Validate()).To(Succeed())
		})

		It("should reject a reset vector outside memory", func() {
			c.ResetVector = 0x1000
			Expect(c.Validate()).To(MatchError(ContainSubstring("reset_vector")))
		})

		It("should reject a negative trace depth", func() {
			c.ITraceDepth = -1
			Expect(c.Validate()).To(HaveOccurred())
		})

		It("should reject an unknown log level", func() {
			c.LogLevel = "chatty"
			Expect(c.Validate()).To(MatchError(config.ErrInvalidConfig))
		})

		It("should only check the cache when enabled", func() {
			c.Cache.BlockSize = 48
			Expect(c.Validate()).To(Succeed())

			c.Cache.Enabled = true
			Expect(c.Validate()).To(MatchError(ContainSubstring("power of two")))
		})

		It("should reject a cache size that does not divide into sets", func() {
			c.Cache.Enabled = true
			c.Cache.Size = 1000
			Expect(c.Validate()).To(MatchError(config.ErrInvalidConfig))
		})
	})

	Describe("InMemory", func() {
		It("should bound accesses by memory", func() {
			c := config.DefaultConfig()
			Expect(c.InMemory(0x80000000, 4)).To(BeTrue())
			Expect(c.InMemory(0x87FFFFFC, 4)).To(BeTrue())
			Expect(c.InMemory(0x87FFFFFD, 4)).To(BeFalse())
			Expect(c.InMemory(0x7FFFFFFF, 1)).To(BeFalse())
		})
	})

	Describe("Clone", func() {
		It("should copy every field", func() {
			original := config.DefaultConfig()
			original.Cache.Enabled = true
			clone := original.Clone()

			Expect(clone).To(Equal(original))
			Expect(clone).NotTo(BeIdenticalTo(original))
		})

		It("should not share state with the original", func() {
			original := config.DefaultConfig()
			clone := original.Clone()

			clone.MemSize = 4096
			clone.Cache.Size = 1024

			Expect(original.MemSize).To(Equal(config.DefaultMemSize))
			Expect(original.Cache.Size).To(Equal(32 * 1024))
		})
	})

	Describe("JSON", func() {
		var tmpDir string

		BeforeEach(func() {
			var err error
			tmpDir, err = os.MkdirTemp("", "la32sim-config")
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			os.RemoveAll(tmpDir)
		})

		It("should save and load a config", func() {
			original := config.DefaultConfig()
			original.MaxInstructions = 1000
			original.MTrace = true
			original.Cache.Enabled = true

			path := filepath.Join(tmpDir, "la32sim.json")
			Expect(original.SaveConfig(path)).To(Succeed())

			loaded, err := config.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(original))
		})

		It("should keep defaults for absent fields", func() {
			path := filepath.Join(tmpDir, "partial.json")
			Expect(os.WriteFile(path, []byte(`{"max_instructions": 5, "cache": {"enabled": true}}`), 0644)).To(Succeed())

			loaded, err := config.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.MaxInstructions).To(Equal(uint64(5)))
			Expect(loaded.MemBase).To(Equal(config.DefaultMemBase))
			Expect(loaded.Cache.Enabled).To(BeTrue())
			Expect(loaded.Cache.BlockSize).To(Equal(64))
		})

		It("should fail for a missing file", func() {
			_, err := config.LoadConfig("/nonexistent/path/la32sim.json")
			Expect(err).To(MatchError(ContainSubstring("failed to read config file")))
		})

		It("should fail for malformed JSON", func() {
			path := filepath.Join(tmpDir, "bad.json")
			Expect(os.WriteFile(path, []byte("{not json"), 0644)).To(Succeed())

			_, err := config.LoadConfig(path)
			Expect(err).To(MatchError(ContainSubstring("failed to parse config")))
		})
	})
})

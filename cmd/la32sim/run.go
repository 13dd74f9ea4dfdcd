package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sarchlab/la32sim/cache"
	"github.com/sarchlab/la32sim/config"
	"github.com/sarchlab/la32sim/emu"
	"github.com/sarchlab/la32sim/loader"
	"github.com/sarchlab/la32sim/log"
	"github.com/sarchlab/la32sim/monitor"
)

type runOptions struct {
	configPath string
	logLevel   string
	logModules string
	maxInsts   uint64
	batch      bool
	itrace     bool
	mtrace     bool
	cache      bool
}

// exitError carries the process exit status of a finished run.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run [image]",
		Short: "Run an ELF or raw image, or the built-in image if none is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.resolve(cmd)
			if err != nil {
				return err
			}

			if err := initLogging(cfg, opts.logModules, cmd.ErrOrStderr()); err != nil {
				return err
			}

			image := ""
			if len(args) > 0 {
				image = args[0]
			}

			s, err := newSession(cfg, image, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			if code := s.run(opts.batch); code != 0 {
				return &exitError{code: code}
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "Path to configuration JSON file")
	flags.StringVar(&opts.logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error, crit)")
	flags.StringVar(&opts.logModules, "log-modules", "", "Comma separated modules to enable (emu,itrace,mtrace,loader,monitor,cache)")
	flags.Uint64Var(&opts.maxInsts, "max-insts", 0, "Stop after this many instructions (0 = no limit)")
	flags.BoolVarP(&opts.batch, "batch", "b", false, "Run without the interactive monitor")
	flags.BoolVar(&opts.itrace, "itrace", false, "Log every executed instruction")
	flags.BoolVar(&opts.mtrace, "mtrace", false, "Log every memory access")
	flags.BoolVar(&opts.cache, "cache", false, "Model a data cache in front of memory")

	return cmd
}

// resolve loads the configuration and applies the flags the user set.
func (o *runOptions) resolve(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if o.configPath != "" {
		var err error
		cfg, err = config.LoadConfig(o.configPath)
		if err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("max-insts") {
		cfg.MaxInstructions = o.maxInsts
	}
	if flags.Changed("itrace") {
		cfg.ITrace = o.itrace
	}
	if flags.Changed("mtrace") {
		cfg.MTrace = o.mtrace
	}
	if flags.Changed("cache") {
		cfg.Cache.Enabled = o.cache
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// initLogging installs the root logger. Requesting itrace or mtrace lowers
// the handler to trace level. Modules not listed in modules then keep only
// the records the configured level allows.
func initLogging(cfg *config.Config, modules string, w io.Writer) error {
	configured, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}

	level := cfg.LogLevel
	tracing := cfg.ITrace || cfg.MTrace
	if tracing {
		level = "trace"
	}
	if err := log.InitLogger(level, w); err != nil {
		return err
	}

	if tracing && configured > log.LevelDebug {
		for _, m := range []string{log.EmuModule, log.LoaderModule, log.MonitorModule, log.CacheModule} {
			log.DisableModule(m)
		}
	}
	if cfg.ITrace {
		log.EnableModule(log.ITraceModule)
	}
	if cfg.MTrace {
		log.EnableModule(log.MTraceModule)
	}
	log.EnableModules(modules)

	return nil
}

// session is one emulator with its program loaded.
type session struct {
	cfg   *config.Config
	emu   *emu.Emulator
	cache *cache.Cache
	out   io.Writer
}

func newSession(cfg *config.Config, image string, stdout, stderr io.Writer) (*session, error) {
	s := &session{cfg: cfg, out: stdout}

	opts := []emu.EmulatorOption{
		emu.WithStdout(stdout),
		emu.WithStderr(stderr),
		emu.WithITrace(cfg.ITraceDepth),
		emu.WithMaxInstructions(cfg.MaxInstructions),
	}

	if cfg.Cache.Enabled {
		opts = append(opts, emu.WithMemoryWrapper(func(m emu.MemoryInterface) emu.MemoryInterface {
			s.cache = cache.New(cache.Config{
				Size:          cfg.Cache.Size,
				Associativity: cfg.Cache.Associativity,
				BlockSize:     cfg.Cache.BlockSize,
			}, cache.NewMemoryBacking(m))
			return s.cache
		}))
	}

	if cfg.MTrace {
		opts = append(opts, emu.WithMTrace())
	}

	s.emu = emu.NewEmulator(opts...)

	prog, err := loadImage(image, cfg.ResetVector)
	if err != nil {
		return nil, err
	}
	if err := prog.CheckBounds(cfg.MemBase, cfg.MemSize); err != nil {
		return nil, fmt.Errorf("failed to place image: %w", err)
	}

	prog.LoadInto(s.emu.Memory())
	s.emu.SetPC(prog.EntryPoint)

	log.Info(log.LoaderModule, "image loaded",
		"image", imageName(image), "entry", fmt.Sprintf("0x%08x", prog.EntryPoint),
		"segments", len(prog.Segments), "size", prog.Size())

	return s, nil
}

func loadImage(image string, resetVector uint32) (*loader.Program, error) {
	if image == "" {
		log.Info(log.LoaderModule, "no image is given, using the built-in image")
		return loader.Builtin(resetVector), nil
	}
	return loader.Load(image, resetVector)
}

func imageName(image string) string {
	if image == "" {
		return "built-in"
	}
	return filepath.Base(image)
}

// run executes the program and returns the process exit status.
func (s *session) run(batch bool) int {
	m := monitor.New(s.emu, s.out)

	if batch {
		m.Batch()
	} else {
		history := ""
		if home, err := os.UserHomeDir(); err == nil {
			history = filepath.Join(home, ".la32sim_history")
		}
		if err := m.Run(history); err != nil {
			log.Error(log.MonitorModule, "monitor failed", "err", err)
			return 1
		}
	}

	if s.cache != nil {
		fmt.Fprintln(s.out, f("cache: %s", s.cache.Stats().String()))
	}

	return exitStatus(s.emu)
}

// exitStatus is 0 when the program hit a good trap or the user quit the
// monitor, and 1 otherwise.
func exitStatus(e *emu.Emulator) int {
	switch e.State() {
	case emu.StateQuit:
		return 0
	case emu.StateEnd:
		if e.HaltRet() == 0 {
			return 0
		}
	}
	return 1
}

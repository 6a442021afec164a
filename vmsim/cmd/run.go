package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/rs/xid"
	"github.com/sarchlab/vmsim/datarecording"
	"github.com/sarchlab/vmsim/mem/trace"
	"github.com/sarchlab/vmsim/mem/vm/mmu"
	"github.com/sarchlab/vmsim/monitoring"
	"github.com/sarchlab/vmsim/sim/hooking"
	"github.com/sarchlab/vmsim/tracing"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

var runFlags = defaultRunConfig()

var runCmd = &cobra.Command{
	Use:   "run [memory-size backing-store addresses]",
	Short: "Translate every address of a trace.",
	Long: "`run` reads one decimal logical address per line, writes " +
		"\"logical,physical,value\" for each of them, and ends the output " +
		"with the page fault rate and the TLB hit rate.",
	Args: cobra.MaximumNArgs(3),
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return applyEnv(cmd.Flags())
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := runFlags

		err := cfg.applyArgs(args)
		if err != nil {
			return err
		}

		err = cfg.validate()
		if err != nil {
			return err
		}

		cmd.SilenceUsage = true

		logger := log.New(os.Stderr, "", log.LstdFlags)

		return runSimulation(cfg, logger)
	},
}

func init() {
	cobra.OnInitialize(func() {
		err := loadDotEnv()
		if err != nil {
			log.Print(err)
		}
	})

	rootCmd.AddCommand(runCmd)

	f := runCmd.Flags()
	f.IntVar(&runFlags.MemorySize, "memory-size", runFlags.MemorySize,
		"Number of physical frames, 128 or 256.")
	f.StringVar(&runFlags.BackingStore, "backing-store", runFlags.BackingStore,
		"Backing store image that pages are loaded from.")
	f.StringVar(&runFlags.Addresses, "addresses", runFlags.Addresses,
		"Trace with one decimal logical address per line.")
	f.StringVar(&runFlags.Output, "output", "",
		"Output file. Defaults to output<memory-size>.csv.")
	f.StringVar(&runFlags.Record, "record", "",
		"Record translations into <record>.sqlite3.")
	f.BoolVar(&runFlags.TraceOutcomes, "trace-outcomes", false,
		"Log the outcome of every reference to stderr.")
	f.BoolVar(&runFlags.Monitor, "monitor", false,
		"Serve the progress and translation state over HTTP.")
	f.IntVar(&runFlags.MonitorPort, "monitor-port", 0,
		"Port of the monitoring server. A random port is used if not set.")
	f.BoolVar(&runFlags.OpenBrowser, "open-browser", false,
		"Open the monitoring server in a browser.")
}

func readTrace(path string, logger *log.Logger) ([]trace.Reference, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open address trace: %w", err)
	}
	defer f.Close()

	var refs []trace.Reference

	r := trace.NewReader(f)
	for {
		ref, err := r.Next()
		if err == io.EOF {
			return refs, nil
		}

		var perr *trace.ParseError
		if errors.As(err, &perr) {
			logger.Printf("skipping %v", perr)
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("read address trace: %w", err)
		}

		refs = append(refs, ref)
	}
}

type run struct {
	cfg    runConfig
	id     string
	logger *log.Logger

	processor *mmu.Processor
	output    *tracing.CSVWriter
	counter   *hooking.PosCountTracer
	db        *tracing.DBRecorder
	exec      *datarecording.ExecRecorder
	monitor   *monitoring.Monitor
}

func runSimulation(cfg runConfig, logger *log.Logger) error {
	store, err := mmu.OpenBackingStore(cfg.BackingStore)
	if err != nil {
		return err
	}
	defer store.Close()

	if store.Size() < mmu.ExpectedBackingStoreSize {
		logger.Printf("backing store %s holds %d bytes, pages beyond it "+
			"cannot be loaded", cfg.BackingStore, store.Size())
	}

	refs, err := readTrace(cfg.Addresses, logger)
	if err != nil {
		return err
	}

	outFile, err := os.Create(cfg.outputPath())
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer outFile.Close()

	r := &run{
		cfg:    cfg,
		id:     xid.New().String(),
		logger: logger,
		processor: mmu.MakeBuilder().
			WithNumFrames(cfg.MemorySize).
			WithBackingStore(store).
			Build("MMU"),
		output:  tracing.NewCSVWriter(outFile),
		counter: hooking.NewPosCountTracer(),
	}

	r.processor.AcceptHook(r.output)
	r.processor.AcceptHook(r.counter)

	if cfg.TraceOutcomes {
		r.processor.AcceptHook(tracing.NewOutcomeLogger(logger))
	}

	err = r.setUpRecording()
	if err != nil {
		return err
	}

	bar := r.setUpMonitoring(uint64(len(refs)))

	for _, ref := range refs {
		_, err := r.processor.Translate(ref.Address)
		if err != nil {
			logger.Printf("skipping address %d on line %d: %v",
				ref.Address, ref.Line, err)
			bar.IncrementFailed(1)

			continue
		}

		bar.IncrementFinished(1)
	}

	r.monitor.CompleteProgressBar(bar)

	return r.finish()
}

func (r *run) setUpRecording() error {
	if r.cfg.Record == "" {
		return nil
	}

	recorder, err := datarecording.New(r.cfg.Record)
	if err != nil {
		return err
	}

	atexit.Register(func() {
		err := recorder.Close()
		if err != nil {
			log.Printf("close recording: %v", err)
		}
	})

	db, err := tracing.NewDBRecorder(recorder)
	if err != nil {
		return err
	}

	exec, err := datarecording.NewExecRecorder(recorder)
	if err != nil {
		return err
	}

	exec.Start()
	exec.Set("Run ID", r.id)
	exec.Set("Memory Size", strconv.Itoa(r.cfg.MemorySize))
	exec.Set("Backing Store", r.cfg.BackingStore)
	exec.Set("Addresses", r.cfg.Addresses)

	r.db = db
	r.exec = exec
	r.processor.AcceptHook(db)

	return nil
}

func (r *run) setUpMonitoring(total uint64) *monitoring.ProgressBar {
	r.monitor = monitoring.NewMonitor()
	bar := r.monitor.CreateProgressBar("Addresses", total)

	if !r.cfg.Monitor {
		return bar
	}

	r.monitor.WithPortNumber(r.cfg.MonitorPort)
	r.monitor.RegisterStatusSource(r.processor)

	url, err := r.monitor.StartServer()
	if err != nil {
		r.logger.Printf("monitoring disabled: %v", err)
		return bar
	}

	atexit.Register(r.stopMonitoring)

	if r.cfg.OpenBrowser {
		err := r.monitor.OpenInBrowser(url)
		if err != nil {
			r.logger.Printf("cannot open browser: %v", err)
		}
	}

	return bar
}

func (r *run) stopMonitoring() {
	err := r.monitor.StopServer()
	if err != nil {
		r.logger.Printf("stop monitoring server: %v", err)
	}
}

func (r *run) finish() error {
	stats := r.processor.Stats()

	r.output.WriteSummary(stats)

	err := r.output.Flush()
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	if r.db != nil {
		err = r.db.Finish(r.id, r.cfg.MemorySize, stats)
		if err != nil {
			return fmt.Errorf("record run: %w", err)
		}

		err = r.exec.End()
		if err != nil {
			return fmt.Errorf("record run: %w", err)
		}
	}

	r.logger.Printf("%d references, %d page faults (%.2f%%), "+
		"%d TLB hits (%.2f%%), %d page-table hits, %d evictions, %d skipped",
		stats.References,
		stats.PageFaults, stats.PageFaultRate(),
		stats.TLBHits, stats.TLBHitRate(),
		stats.PageTableHits,
		r.counter.Count(mmu.HookPosPageEvicted),
		stats.Failed)

	return nil
}

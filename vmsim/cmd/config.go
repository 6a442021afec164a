package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sarchlab/vmsim/mem/vm/mmu"
	"github.com/spf13/pflag"
)

// runConfig holds the settings of one run.
type runConfig struct {
	MemorySize    int
	BackingStore  string
	Addresses     string
	Output        string
	Record        string
	TraceOutcomes bool
	Monitor       bool
	MonitorPort   int
	OpenBrowser   bool
}

// envFlags maps the flags that can take their default from the environment.
var envFlags = map[string]string{
	"memory-size":   "VMSIM_MEMORY_SIZE",
	"backing-store": "VMSIM_BACKING_STORE",
	"addresses":     "VMSIM_ADDRESSES",
	"output":        "VMSIM_OUTPUT",
}

func defaultRunConfig() runConfig {
	return runConfig{
		MemorySize:   256,
		BackingStore: "BACKING_STORE.bin",
		Addresses:    "addresses.txt",
	}
}

// loadDotEnv loads the .env file in the working directory, if there is one.
func loadDotEnv(filenames ...string) error {
	err := godotenv.Load(filenames...)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	return nil
}

// applyEnv sets the flags that are not given on the command line from the
// environment.
func applyEnv(flags *pflag.FlagSet) error {
	for flagName, envName := range envFlags {
		value, ok := os.LookupEnv(envName)
		if !ok || flags.Changed(flagName) {
			continue
		}

		err := flags.Set(flagName, value)
		if err != nil {
			return fmt.Errorf("%s=%q: %w", envName, value, err)
		}
	}

	return nil
}

// applyArgs applies the positional form
// "<memory-size> <backing-store> <addresses>".
func (c *runConfig) applyArgs(args []string) error {
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("%w: %q", mmu.ErrUnsupportedMemorySize, args[0])
		}

		c.MemorySize = n
	}

	if len(args) > 1 {
		c.BackingStore = args[1]
	}

	if len(args) > 2 {
		c.Addresses = args[2]
	}

	return nil
}

func (c *runConfig) validate() error {
	err := mmu.ValidateMemorySize(c.MemorySize)
	if err != nil {
		return err
	}

	if c.MonitorPort != 0 && !c.Monitor {
		return errors.New("monitor port cannot be set when monitoring is disabled")
	}

	return nil
}

func (c *runConfig) outputPath() string {
	if c.Output != "" {
		return c.Output
	}

	return fmt.Sprintf("output%d.csv", c.MemorySize)
}

// Package tracing turns the events of a translation run into output records.
package tracing

import (
	"bufio"
	"fmt"
	"io"

	"github.com/sarchlab/vmsim/mem/vm/mmu"
	"github.com/sarchlab/vmsim/sim/hooking"
)

// A CSVWriter is a hook that writes one "logical,physical,value" line per
// translated reference, followed by a rate summary.
type CSVWriter struct {
	w   *bufio.Writer
	err error
}

// NewCSVWriter creates a CSVWriter that writes to w. The output is buffered
// until Flush is called.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: bufio.NewWriter(w)}
}

// Func writes the record of a translated reference.
func (c *CSVWriter) Func(ctx hooking.HookCtx) {
	if ctx.Pos != mmu.HookPosTranslated {
		return
	}

	c.Write(ctx.Item.(mmu.Result))
}

// Write writes the record of one reference.
func (c *CSVWriter) Write(res mmu.Result) {
	if c.err != nil {
		return
	}

	_, c.err = fmt.Fprintf(c.w, "%d,%d,%d\n",
		res.LogicalAddress, res.PhysicalAddress, res.Value)
}

// WriteSummary writes the page fault rate and the TLB hit rate.
func (c *CSVWriter) WriteSummary(stats mmu.Statistics) {
	if c.err != nil {
		return
	}

	_, c.err = fmt.Fprintf(c.w,
		"Page Faults Rate, %.2f%%,\nTLB Hits Rate, %.2f%%,",
		stats.PageFaultRate(), stats.TLBHitRate())
}

// Flush writes the buffered output and returns the first error met.
func (c *CSVWriter) Flush() error {
	if c.err != nil {
		return c.err
	}

	return c.w.Flush()
}

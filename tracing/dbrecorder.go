package tracing

import (
	"github.com/sarchlab/vmsim/datarecording"
	"github.com/sarchlab/vmsim/mem/vm/mmu"
	"github.com/sarchlab/vmsim/sim/hooking"
)

type translationEntry struct {
	Time       uint64
	Logical    uint32
	Page       uint8
	PageOffset uint8
	Frame      uint32
	Physical   uint32
	Value      int8
	Outcome    string
}

type evictionEntry struct {
	Time       uint64
	Page       uint8
	Frame      uint32
	LastAccess uint64
}

type summaryEntry struct {
	RunID         string
	NumFrames     int
	References    uint64
	TLBHits       uint64
	PageTableHits uint64
	PageFaults    uint64
	Evictions     uint64
	Failed        uint64
	PageFaultRate float64
	TLBHitRate    float64
}

// A DBRecorder is a hook that records translations and evictions into a
// DataRecorder.
type DBRecorder struct {
	recorder datarecording.DataRecorder
	err      error
}

// NewDBRecorder creates the translation, eviction, and summary tables.
func NewDBRecorder(recorder datarecording.DataRecorder) (*DBRecorder, error) {
	r := &DBRecorder{recorder: recorder}

	tables := []struct {
		name   string
		sample any
	}{
		{"translation", translationEntry{}},
		{"eviction", evictionEntry{}},
		{"summary", summaryEntry{}},
	}

	for _, t := range tables {
		err := recorder.CreateTable(t.name, t.sample)
		if err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Func records translations and evictions.
func (r *DBRecorder) Func(ctx hooking.HookCtx) {
	if r.err != nil {
		return
	}

	switch item := ctx.Item.(type) {
	case mmu.Result:
		r.err = r.recorder.InsertData("translation", translationEntry{
			Time:       uint64(item.Time),
			Logical:    item.LogicalAddress,
			Page:       uint8(item.Page),
			PageOffset: uint8(item.Offset),
			Frame:      uint32(item.Frame),
			Physical:   uint32(item.PhysicalAddress),
			Value:      item.Value,
			Outcome:    item.Outcome.String(),
		})
	case mmu.Eviction:
		r.err = r.recorder.InsertData("eviction", evictionEntry{
			Time:       uint64(item.Time),
			Page:       uint8(item.Page),
			Frame:      uint32(item.Frame),
			LastAccess: uint64(item.LastAccess),
		})
	}
}

// Finish records the summary of the run and flushes the recorder. It returns
// the first error met while recording.
func (r *DBRecorder) Finish(
	runID string,
	numFrames int,
	stats mmu.Statistics,
) error {
	if r.err != nil {
		return r.err
	}

	err := r.recorder.InsertData("summary", summaryEntry{
		RunID:         runID,
		NumFrames:     numFrames,
		References:    stats.References,
		TLBHits:       stats.TLBHits,
		PageTableHits: stats.PageTableHits,
		PageFaults:    stats.PageFaults,
		Evictions:     stats.Evictions,
		Failed:        stats.Failed,
		PageFaultRate: stats.PageFaultRate(),
		TLBHitRate:    stats.TLBHitRate(),
	})
	if err != nil {
		return err
	}

	return r.recorder.Flush()
}

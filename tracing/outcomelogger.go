package tracing

import (
	"log"

	"github.com/sarchlab/vmsim/mem/vm/mmu"
	"github.com/sarchlab/vmsim/sim/hooking"
)

type namer interface {
	Name() string
}

// An OutcomeLogger is a hook that logs what happened to each reference.
type OutcomeLogger struct {
	logger *log.Logger
}

// NewOutcomeLogger creates an OutcomeLogger that writes with the logger.
func NewOutcomeLogger(logger *log.Logger) *OutcomeLogger {
	return &OutcomeLogger{logger: logger}
}

// Func logs the event.
func (l *OutcomeLogger) Func(ctx hooking.HookCtx) {
	where := ""
	if n, ok := ctx.Domain.(namer); ok {
		where = n.Name()
	}

	switch item := ctx.Item.(type) {
	case mmu.Result:
		l.logger.Printf("%d,%s,%s,page=%d,frame=%d,offset=%d",
			item.Time, where, item.Outcome,
			item.Page, item.Frame, item.Offset)
	case mmu.Eviction:
		l.logger.Printf("%d,%s,evict,page=%d,frame=%d,last_access=%d",
			item.Time, where, item.Page, item.Frame, item.LastAccess)
	case *mmu.BackingStoreError:
		l.logger.Printf("%s,%s", where, item)
	}
}

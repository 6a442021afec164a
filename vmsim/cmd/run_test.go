package cmd

import (
	"bytes"
	"database/sql"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/monitoring"
)

var _ = Describe("runSimulation", func() {
	var (
		dir    string
		cfg    runConfig
		logBuf *bytes.Buffer
		logger *log.Logger
	)

	writeStore := func(numPages int) {
		data := make([]byte, numPages*vm.PageSize)
		for i := range data {
			data[i] = byte(i%vm.PageSize + 1)
		}

		Expect(os.WriteFile(cfg.BackingStore, data, 0o644)).To(Succeed())
	}

	writeTrace := func(content string) {
		Expect(os.WriteFile(cfg.Addresses, []byte(content), 0o644)).
			To(Succeed())
	}

	readOutput := func() string {
		out, err := os.ReadFile(cfg.Output)
		Expect(err).NotTo(HaveOccurred())

		return string(out)
	}

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		cfg = defaultRunConfig()
		cfg.MemorySize = 128
		cfg.BackingStore = filepath.Join(dir, "BACKING_STORE.bin")
		cfg.Addresses = filepath.Join(dir, "addresses.txt")
		cfg.Output = filepath.Join(dir, "output128.csv")

		logBuf = new(bytes.Buffer)
		logger = log.New(logBuf, "", 0)
	})

	It("should fault and then hit the TLB", func() {
		writeStore(vm.NumPages)
		writeTrace("0\n0\n")

		Expect(runSimulation(cfg, logger)).To(Succeed())

		Expect(readOutput()).To(Equal(
			"0,0,1\n" +
				"0,0,1\n" +
				"Page Faults Rate, 50.00%,\n" +
				"TLB Hits Rate, 50.00%,"))
	})

	It("should skip references whose page cannot be loaded", func() {
		writeStore(1)
		writeTrace("0\n300\n1\n")

		Expect(runSimulation(cfg, logger)).To(Succeed())

		Expect(readOutput()).To(Equal(
			"0,0,1\n" +
				"1,1,2\n" +
				"Page Faults Rate, 50.00%,\n" +
				"TLB Hits Rate, 50.00%,"))
		Expect(logBuf.String()).To(ContainSubstring("skipping address 300"))
	})

	It("should skip malformed trace lines", func() {
		writeStore(vm.NumPages)
		writeTrace("0\nnot-an-address\n1\n")

		Expect(runSimulation(cfg, logger)).To(Succeed())

		Expect(readOutput()).To(HavePrefix("0,0,1\n1,1,2\n"))
		Expect(logBuf.String()).To(ContainSubstring("trace line 2"))
	})

	It("should skip trace lines that are too long", func() {
		writeStore(vm.NumPages)
		writeTrace("0\n" + strings.Repeat("1", 100000) + "\n1\n")

		Expect(runSimulation(cfg, logger)).To(Succeed())

		Expect(readOutput()).To(HavePrefix("0,0,1\n1,1,2\n"))
		Expect(logBuf.String()).To(ContainSubstring("line too long"))
	})

	It("should fail without a backing store", func() {
		writeTrace("0\n")

		Expect(runSimulation(cfg, logger)).NotTo(Succeed())
	})

	It("should fail without a trace", func() {
		writeStore(vm.NumPages)

		Expect(runSimulation(cfg, logger)).NotTo(Succeed())
	})

	It("should record the run", func() {
		writeStore(vm.NumPages)
		writeTrace("0\n256\n0\n")
		cfg.Record = filepath.Join(dir, "run")

		Expect(runSimulation(cfg, logger)).To(Succeed())

		db, err := sql.Open("sqlite3", cfg.Record+".sqlite3")
		Expect(err).NotTo(HaveOccurred())
		defer db.Close()

		var count int
		Expect(db.QueryRow("SELECT COUNT(*) FROM translation").Scan(&count)).
			To(Succeed())
		Expect(count).To(Equal(3))

		var references, faults int
		Expect(db.QueryRow(`SELECT "References", PageFaults FROM summary`).
			Scan(&references, &faults)).To(Succeed())
		Expect(references).To(Equal(3))
		Expect(faults).To(Equal(2))
	})
})

var _ = Describe("run", func() {
	It("should stop the monitoring server", func() {
		r := &run{
			logger:  log.New(io.Discard, "", 0),
			monitor: monitoring.NewMonitor(),
		}

		url, err := r.monitor.StartServer()
		Expect(err).NotTo(HaveOccurred())

		rsp, err := http.Get(url + "/api/progress")
		Expect(err).NotTo(HaveOccurred())
		rsp.Body.Close()

		r.stopMonitoring()

		_, err = http.Get(url + "/api/progress")
		Expect(err).To(HaveOccurred())
	})
})

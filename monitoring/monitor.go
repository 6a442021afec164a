// Package monitoring serves the state of a running translation over HTTP.
package monitoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strings"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/rs/xid"
	"github.com/sarchlab/vmsim/mem/vm/mmu"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
)

// A StatusSource is an object whose translation state can be monitored.
type StatusSource interface {
	Name() string
	Stats() mmu.Statistics
	Snapshot() mmu.Snapshot
}

// Monitor turns a run into a server that reports its progress and state.
type Monitor struct {
	portNumber int
	sources    []StatusSource

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar

	listener net.Listener
	server   *http.Server
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterStatusSource registers an object to be monitored.
func (m *Monitor) RegisterStatusSource(s StatusSource) {
	m.sources = append(m.sources, s)
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        xid.New().String(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar from the progress list.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Router returns the HTTP routes of the monitor.
func (m *Monitor) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/list_sources", m.listSources)
	r.HandleFunc("/api/stats/{name}", m.reportStats)
	r.HandleFunc("/api/state/{name}", m.reportState)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)

	return r
}

// StartServer starts the monitor as a web server and returns its URL.
func (m *Monitor) StartServer() (string, error) {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = fmt.Sprintf(":%d", m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	if err != nil {
		return "", err
	}

	m.listener = listener
	m.server = &http.Server{
		Handler:           m.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	go func() {
		err := m.server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("monitoring server stopped: %v", err)
		}
	}()

	return url, nil
}

// OpenInBrowser opens the URL in the default browser.
func (m *Monitor) OpenInBrowser(url string) error {
	return browser.OpenURL(url)
}

// StopServer shuts the web server down.
func (m *Monitor) StopServer() error {
	if m.server == nil {
		return nil
	}

	return m.server.Close()
}

func (m *Monitor) findSourceOr404(
	w http.ResponseWriter,
	name string,
) StatusSource {
	for _, s := range m.sources {
		if s.Name() == name {
			return s
		}
	}

	http.Error(w, "Source not found", http.StatusNotFound)

	return nil
}

func (m *Monitor) listSources(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, 0, len(m.sources))
	for _, s := range m.sources {
		names = append(names, s.Name())
	}

	writeJSON(w, names)
}

type statsRsp struct {
	References    uint64  `json:"references"`
	TLBHits       uint64  `json:"tlb_hits"`
	PageTableHits uint64  `json:"page_table_hits"`
	PageFaults    uint64  `json:"page_faults"`
	Evictions     uint64  `json:"evictions"`
	Failed        uint64  `json:"failed"`
	PageFaultRate float64 `json:"page_fault_rate"`
	TLBHitRate    float64 `json:"tlb_hit_rate"`
}

func (m *Monitor) reportStats(w http.ResponseWriter, r *http.Request) {
	source := m.findSourceOr404(w, mux.Vars(r)["name"])
	if source == nil {
		return
	}

	stats := source.Stats()
	writeJSON(w, statsRsp{
		References:    stats.References,
		TLBHits:       stats.TLBHits,
		PageTableHits: stats.PageTableHits,
		PageFaults:    stats.PageFaults,
		Evictions:     stats.Evictions,
		Failed:        stats.Failed,
		PageFaultRate: stats.PageFaultRate(),
		TLBHitRate:    stats.TLBHitRate(),
	})
}

// reportState serializes the snapshot of a source. The optional field query
// parameter, such as "TLBEntries" or "Pages.0", selects a part of it.
func (m *Monitor) reportState(w http.ResponseWriter, r *http.Request) {
	source := m.findSourceOr404(w, mux.Vars(r)["name"])
	if source == nil {
		return
	}

	snapshot := source.Snapshot()

	serializer := goseth.NewSerializer()
	serializer.SetRoot(&snapshot)
	serializer.SetMaxDepth(3)

	if field := r.URL.Query().Get("field"); field != "" {
		err := serializer.SetEntryPoint(strings.Split(field, "."))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	buf := new(bytes.Buffer)

	err := serializer.Serialize(buf)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(buf.Bytes())
	logOnErr(err)
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	bars := make([]progressBarRsp, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		bars = append(bars, b.rsp())
	}
	m.progressBarsLock.Unlock()

	writeJSON(w, bars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	memoryInfo, err := proc.MemoryInfo()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memoryInfo.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(bytes)
	logOnErr(err)
}

func logOnErr(err error) {
	if err != nil {
		log.Printf("monitoring: %v", err)
	}
}

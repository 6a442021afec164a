package datarecording

import (
	"os"
	"strings"
	"time"
)

const timeFormat = "2006-01-02 15:04:05.000000000"

type execInfo struct {
	Property string
	Value    string
}

// An ExecRecorder records how the program was executed into the exec_info
// table.
type ExecRecorder struct {
	tableName string
	recorder  DataRecorder
	entries   []execInfo
}

// NewExecRecorder creates the exec_info table in the recorder.
func NewExecRecorder(recorder DataRecorder) (*ExecRecorder, error) {
	e := &ExecRecorder{
		tableName: "exec_info",
		recorder:  recorder,
	}

	err := recorder.CreateTable(e.tableName, execInfo{})
	if err != nil {
		return nil, err
	}

	return e, nil
}

// Start notes the start time, the command line, and the working directory.
func (e *ExecRecorder) Start() {
	e.Set("Start Time", time.Now().Format(timeFormat))
	e.Set("Command", strings.Join(os.Args, " "))

	if cwd, err := os.Getwd(); err == nil {
		e.Set("Working Directory", cwd)
	}
}

// Set notes an arbitrary property of the execution.
func (e *ExecRecorder) Set(property, value string) {
	e.entries = append(e.entries, execInfo{Property: property, Value: value})
}

// End notes the end time and writes all the properties.
func (e *ExecRecorder) End() error {
	e.Set("End Time", time.Now().Format(timeFormat))

	for _, entry := range e.entries {
		err := e.recorder.InsertData(e.tableName, entry)
		if err != nil {
			return err
		}
	}

	e.entries = nil

	return e.recorder.Flush()
}

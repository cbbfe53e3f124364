// Package logging is sandworm's logging facade (spec §4.H): a single named
// logger tree built on gopkg.in/op/go-logging.v1, a verbosity toggle between
// informational and debug, an optional colour formatter, and a
// multi-producer/single-consumer pump that carries records from worker
// goroutines back to the one backend that actually writes output (spec
// §4.H "Worker initialization", §5 "Completion transport").
package logging

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
	"gopkg.in/op/go-logging.v1"
)

// Get returns the named logger in sandworm's logger tree, e.g.
// logging.Get("main"), as cmd/sandworm uses it. The library packages
// (core, build, clean, wormfile) call `logging.MustGetLogger` directly.
func Get(name string) *logging.Logger {
	return logging.MustGetLogger(name)
}

// isTerminal caches whether stderr is an interactive TTY, consulted once
// since it can't change over the process lifetime.
var isTerminal = term.IsTerminal(int(os.Stderr.Fd()))

const baseFormat = "%{time:15:04:05.000} %{level:.4s} %{module}: %{message}"

// Init installs the process-wide logging backend at the requested
// verbosity: informational by default, debug when verbose is true (spec
// §4.H). Output goes to stderr; records at ERROR or worse are coloured red
// when stderr is a terminal.
func Init(verbose bool) {
	level := logging.INFO
	if verbose {
		level = logging.DEBUG
	}
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	formatted := logging.NewBackendFormatter(backend, logging.MustStringFormatter(baseFormat))
	leveled := logging.AddModuleLevel(colorBackend{formatted})
	leveled.SetLevel(level, "")
	logging.SetBackend(leveled)
}

// colorBackend wraps a formatted backend, colouring only ERROR-or-worse
// records and only when stderr is a terminal — independent of
// go-logging's own %{color} verb, matching the CLI's final banner using
// fatih/color directly rather than the logging library's formatter DSL.
type colorBackend struct {
	logging.Backend
}

func (b colorBackend) Log(level logging.Level, calldepth int, rec *logging.Record) error {
	if !isTerminal || level > logging.ERROR {
		return b.Backend.Log(level, calldepth+1, rec)
	}
	msg := rec.Formatted(calldepth + 1)
	fmt.Fprintln(os.Stderr, color.RedString("%s", msg))
	return nil
}

// Record is a single log line a worker goroutine wants written by the
// parent's logger, carried over a Pump rather than written directly (spec
// §4.H, §5's "no shared memory between workers; all cross-process state is
// explicit messages" — the Go adaptation of that is explicit channels
// rather than explicit shared-memory avoidance).
type Record struct {
	Logger *logging.Logger
	Level  logging.Level
	Msg    string
}

// Pump is the single-consumer channel that forwards Records from any
// number of producer goroutines to one place that actually calls into the
// go-logging backend, mirroring the original's queue handler forwarding a
// worker process's log records to the parent-side log thread (spec §4.H).
type Pump struct {
	records chan Record
	done    chan struct{}
}

// NewPump creates a Pump and starts its drain goroutine. Call Close when
// no more producers remain; Close blocks until every already-sent Record
// has been written.
func NewPump() *Pump {
	p := &Pump{records: make(chan Record, 256), done: make(chan struct{})}
	go p.run()
	return p
}

func (p *Pump) run() {
	defer close(p.done)
	for rec := range p.records {
		logRecord(rec)
	}
}

func logRecord(rec Record) {
	switch rec.Level {
	case logging.CRITICAL:
		rec.Logger.Critical(rec.Msg)
	case logging.ERROR:
		rec.Logger.Error(rec.Msg)
	case logging.WARNING:
		rec.Logger.Warning(rec.Msg)
	case logging.NOTICE:
		rec.Logger.Notice(rec.Msg)
	case logging.DEBUG:
		rec.Logger.Debug(rec.Msg)
	default:
		rec.Logger.Info(rec.Msg)
	}
}

// Send queues a Record for the pump's drain goroutine to write. Safe to
// call from any number of concurrent producer goroutines.
func (p *Pump) Send(rec Record) { p.records <- rec }

// Close stops accepting new Records and waits for the drain goroutine to
// finish writing everything already queued (spec §4.H: "pumps records into
// the local logger until sentinel").
func (p *Pump) Close() {
	close(p.records)
	<-p.done
}

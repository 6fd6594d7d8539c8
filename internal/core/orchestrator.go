package core

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/agistaris/sigillink/internal/domain"
)

// ImportRequest is one path enqueued for import, per §5's FIFO import
// queue.
type ImportRequest struct {
	Path string
}

// ImportResultMsg reports one import worker's outcome.
type ImportResultMsg struct {
	Request ImportRequest
	Staged  []domain.ModEntry
	Err     error
}

// DeployResultMsg reports the deploy worker's outcome.
type DeployResultMsg struct {
	Report domain.DeployReport
	Err    error
}

// ConflictScanResultMsg reports the conflict-scan worker's outcome.
type ConflictScanResultMsg struct {
	Result PlanResult
	Err    error
}

// Orchestrator owns the library's mutable state and coordinates the
// short-lived workers described in §5: one FIFO import queue, and
// request-coalescing deploy / conflict-scan workers. It never blocks on
// worker I/O itself; callers drain the result channels on their own poll
// loop (a bubbletea Cmd, in the TUI).
type Orchestrator struct {
	mu  sync.Mutex
	log *log.Logger

	importFn func(ImportRequest) ([]domain.ModEntry, error)
	deployFn func() (domain.DeployReport, error)
	planFn   func() (PlanResult, error)

	importQueue   chan ImportRequest
	importResults chan ImportResultMsg

	deployRequested   bool
	deployActive      bool
	deployResults     chan DeployResultMsg
	conflictRequested bool
	conflictActive    bool
	conflictResults   chan ConflictScanResultMsg

	wg sync.WaitGroup
}

// NewOrchestrator builds an Orchestrator around the three operations it
// coordinates. importFn stages one import request; deployFn runs one full
// deploy; planFn runs one conflict scan (the Planner without linking).
func NewOrchestrator(importFn func(ImportRequest) ([]domain.ModEntry, error), deployFn func() (domain.DeployReport, error), planFn func() (PlanResult, error)) *Orchestrator {
	o := &Orchestrator{
		log:             log.Default(),
		importFn:        importFn,
		deployFn:        deployFn,
		planFn:          planFn,
		importQueue:     make(chan ImportRequest, 64),
		importResults:   make(chan ImportResultMsg, 64),
		deployResults:   make(chan DeployResultMsg, 1),
		conflictResults: make(chan ConflictScanResultMsg, 1),
	}
	o.wg.Add(1)
	go o.runImportWorker()
	return o
}

// EnqueueImport appends a path to the FIFO import queue; imports are
// processed strictly in enqueue order.
func (o *Orchestrator) EnqueueImport(path string) {
	o.importQueue <- ImportRequest{Path: path}
}

// ImportResults returns the channel imports complete on.
func (o *Orchestrator) ImportResults() <-chan ImportResultMsg { return o.importResults }

func (o *Orchestrator) runImportWorker() {
	defer o.wg.Done()
	for req := range o.importQueue {
		staged, err := o.importFn(req)
		if err != nil {
			o.log.Warn("import failed", "path", req.Path, "err", err)
		}
		o.importResults <- ImportResultMsg{Request: req, Staged: staged, Err: err}
	}
}

// Close stops accepting new imports and waits for the worker to drain.
func (o *Orchestrator) Close() {
	close(o.importQueue)
	o.wg.Wait()
}

// RequestDeploy coalesces: if a deploy is already active, the request is
// recorded and re-run once the active one finishes; if one is already
// pending, this is a no-op, matching §5's "collapse to at most one pending
// plus one active run".
func (o *Orchestrator) RequestDeploy() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.deployActive {
		o.deployRequested = true
		return
	}
	o.deployActive = true
	go o.runDeploy()
}

func (o *Orchestrator) runDeploy() {
	report, err := o.deployFn()
	o.deployResults <- DeployResultMsg{Report: report, Err: err}

	o.mu.Lock()
	o.deployActive = false
	rerun := o.deployRequested
	o.deployRequested = false
	o.mu.Unlock()

	if rerun {
		o.RequestDeploy()
	}
}

// DeployResults returns the channel deploys complete on.
func (o *Orchestrator) DeployResults() <-chan DeployResultMsg { return o.deployResults }

// RequestConflictScan coalesces the same way RequestDeploy does. Per §5, a
// conflict scan will not start while an import or deploy is active; callers
// should avoid calling this while an import is in flight or DeployActive()
// is true,
// though this method does not itself enforce that ordering.
func (o *Orchestrator) RequestConflictScan() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.conflictActive {
		o.conflictRequested = true
		return
	}
	o.conflictActive = true
	go o.runConflictScan()
}

func (o *Orchestrator) runConflictScan() {
	result, err := o.planFn()
	o.conflictResults <- ConflictScanResultMsg{Result: result, Err: err}

	o.mu.Lock()
	o.conflictActive = false
	rerun := o.conflictRequested
	o.conflictRequested = false
	o.mu.Unlock()

	if rerun {
		o.RequestConflictScan()
	}
}

// ConflictScanResults returns the channel conflict scans complete on.
func (o *Orchestrator) ConflictScanResults() <-chan ConflictScanResultMsg { return o.conflictResults }

// DeployActive reports whether a deploy is currently running.
func (o *Orchestrator) DeployActive() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.deployActive
}

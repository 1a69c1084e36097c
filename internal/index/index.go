// Package index maintains the regenerable `.gitgov/index.json` projection
// (spec §4.13): a point-in-time snapshot of enriched task/cycle summaries
// and activity counters, rebuilt whenever sync observes a mutation.
// index.json is a derived cache, never a source of truth — lint and the
// record store always win on disagreement.
package index

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/gitgovernance/gitgovernance/internal/ggerr"
	"github.com/gitgovernance/gitgovernance/internal/record"
	"github.com/gitgovernance/gitgovernance/internal/store"
)

// FileName is the cache file's name under the worktree root.
const FileName = "index.json"

// TaskSummary is one task's projected view in the index.
type TaskSummary struct {
	ID       string             `json:"id"`
	Title    string             `json:"title"`
	Status   record.TaskStatus  `json:"status"`
	Priority record.TaskPriority `json:"priority"`
	CycleIDs []string           `json:"cycleIds,omitempty"`
}

// CycleSummary is one cycle's projected view in the index.
type CycleSummary struct {
	ID      string             `json:"id"`
	Title   string             `json:"title"`
	Status  record.CycleStatus `json:"status"`
	TaskIDs []string           `json:"taskIds,omitempty"`
}

// Snapshot is the on-disk shape of index.json.
type Snapshot struct {
	GeneratedAt int64                    `json:"generatedAt"`
	TaskCounts  map[record.TaskStatus]int  `json:"taskCounts"`
	CycleCounts map[record.CycleStatus]int `json:"cycleCounts"`
	Tasks       []TaskSummary            `json:"tasks"`
	Cycles      []CycleSummary           `json:"cycles"`
}

// Adapter rebuilds and persists the index from the record store. Now
// supplies the generatedAt timestamp so rebuilds stay reproducible under
// a fixed test clock.
type Adapter struct {
	Store *store.FileStore
	Root  string
	Now   func() int64
}

// New constructs an Adapter rooted at the same directory the store reads
// from.
func New(s *store.FileStore, root string, now func() int64) *Adapter {
	return &Adapter{Store: s, Root: root, Now: now}
}

// path returns index.json's path under Root.
func (a *Adapter) path() string {
	return filepath.Join(a.Root, FileName)
}

// Invalidate implements sync.ProjectionInvalidator: rather than just
// marking the cache stale, it eagerly rebuilds, so callers (e.g. `status`)
// never observe a stale index between a sync operation and the next read.
func (a *Adapter) Invalidate() error {
	_, err := a.Rebuild()
	return err
}

// Rebuild scans every task and cycle record, computes the summary, writes
// it atomically to index.json and returns it.
func (a *Adapter) Rebuild() (Snapshot, error) {
	snap := Snapshot{
		GeneratedAt: a.Now(),
		TaskCounts:  make(map[record.TaskStatus]int),
		CycleCounts: make(map[record.CycleStatus]int),
	}

	taskEnvs, err := a.Store.List(record.TypeTask)
	if err != nil {
		return Snapshot{}, err
	}
	for _, env := range taskEnvs {
		p, err := record.DecodePayload(record.TypeTask, env.Payload)
		if err != nil {
			continue
		}
		tp := p.(record.TaskPayload)
		snap.Tasks = append(snap.Tasks, TaskSummary{ID: tp.ID, Title: tp.Title, Status: tp.Status, Priority: tp.Priority, CycleIDs: tp.CycleIDs})
		snap.TaskCounts[tp.Status]++
	}

	cycleEnvs, err := a.Store.List(record.TypeCycle)
	if err != nil {
		return Snapshot{}, err
	}
	for _, env := range cycleEnvs {
		p, err := record.DecodePayload(record.TypeCycle, env.Payload)
		if err != nil {
			continue
		}
		cp := p.(record.CyclePayload)
		snap.Cycles = append(snap.Cycles, CycleSummary{ID: cp.ID, Title: cp.Title, Status: cp.Status, TaskIDs: cp.TaskIDs})
		snap.CycleCounts[cp.Status]++
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return Snapshot{}, ggerr.Wrap(err)
	}
	data = append(data, '\n')
	if err := store.AtomicWrite(a.path(), data); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Load reads the last-written index.json without rebuilding it.
func (a *Adapter) Load() (Snapshot, error) {
	data, err := os.ReadFile(a.path())
	if err != nil {
		return Snapshot{}, ggerr.Wrap(err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, ggerr.Wrap(err)
	}
	return snap, nil
}

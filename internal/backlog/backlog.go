// Package backlog orchestrates task and cycle lifecycle: creation, status
// transitions, and the bidirectional task.cycleIds <-> cycle.taskIds link
// that must never be allowed to drift out of sync (spec §4.10).
package backlog

import (
	"fmt"
	"time"

	"github.com/gitgovernance/gitgovernance/internal/changelog"
	"github.com/gitgovernance/gitgovernance/internal/eventbus"
	"github.com/gitgovernance/gitgovernance/internal/execution"
	"github.com/gitgovernance/gitgovernance/internal/factory"
	"github.com/gitgovernance/gitgovernance/internal/ggerr"
	"github.com/gitgovernance/gitgovernance/internal/record"
	"github.com/gitgovernance/gitgovernance/internal/store"
	"github.com/gitgovernance/gitgovernance/internal/workflow"
)

// Adapter is the backlog orchestrator. Bus may be nil — events simply
// aren't published in that case.
type Adapter struct {
	Store   *store.FileStore
	Factory *factory.Factory
	Bus     *eventbus.Bus
	exec    *execution.Adapter
}

// New constructs an Adapter. Every status transition is logged to the
// execution adapter automatically (spec §4.11: the execution log exists
// to reconstruct what happened to a task without replaying every signed
// mutation by hand).
func New(s *store.FileStore, f *factory.Factory, bus *eventbus.Bus) *Adapter {
	return &Adapter{Store: s, Factory: f, Bus: bus, exec: execution.New(s, f)}
}

func (a *Adapter) publish(eventType string, payload any) {
	if a.Bus == nil {
		return
	}
	a.Bus.Publish(eventbus.Event{Type: eventType, Payload: payload})
}

func taskPayload(env record.Envelope) (record.TaskPayload, error) {
	p, err := record.DecodePayload(record.TypeTask, env.Payload)
	if err != nil {
		return record.TaskPayload{}, ggerr.Wrap(err)
	}
	return p.(record.TaskPayload), nil
}

func cyclePayload(env record.Envelope) (record.CyclePayload, error) {
	p, err := record.DecodePayload(record.TypeCycle, env.Payload)
	if err != nil {
		return record.CyclePayload{}, ggerr.Wrap(err)
	}
	return p.(record.CyclePayload), nil
}

// NewTask creates a task, optionally attaching it to cycleID via a paired
// write of both the new task and the cycle's updated taskIds (empty
// cycleID creates an unattached task).
func (a *Adapter) NewTask(title, description string, priority record.TaskPriority, tags []string, cycleID string, signer factory.Signer) (record.Envelope, error) {
	id, err := a.Factory.GenerateID(record.TypeTask, title)
	if err != nil {
		return record.Envelope{}, err
	}
	payload := record.TaskPayload{
		ID:          id,
		Title:       title,
		Status:      record.TaskDraft,
		Priority:    priority,
		Description: description,
		Tags:        tags,
	}
	if cycleID != "" {
		payload.CycleIDs = []string{cycleID}
	}
	taskEnv, err := a.Factory.Create(record.TypeTask, payload, signer)
	if err != nil {
		return record.Envelope{}, err
	}

	if cycleID == "" {
		if err := a.Store.Put(record.TypeTask, taskEnv); err != nil {
			return record.Envelope{}, err
		}
		a.publish("task.created", payload)
		return taskEnv, nil
	}

	cycleEnv, err := a.Store.Get(record.TypeCycle, cycleID)
	if err != nil {
		return record.Envelope{}, err
	}
	cp, err := cyclePayload(cycleEnv)
	if err != nil {
		return record.Envelope{}, err
	}
	cp.TaskIDs = appendUnique(cp.TaskIDs, id)
	newCycleEnv, err := a.Factory.Mutate(cycleEnv, cp, signer)
	if err != nil {
		return record.Envelope{}, err
	}

	if err := a.Store.PutMany(record.TypeTask, []record.Envelope{taskEnv}); err != nil {
		return record.Envelope{}, err
	}
	if err := a.Store.Put(record.TypeCycle, newCycleEnv); err != nil {
		// best-effort rollback: remove the task write that already landed,
		// then surface a referential error (spec §5 ordering).
		_ = a.Store.Delete(record.TypeTask, id)
		return record.Envelope{}, &ggerr.ReferentialError{Kind: "cycle.taskIds", From: cycleID, To: id}
	}
	a.publish("task.created", payload)
	return taskEnv, nil
}

// EditTask mutates a task's title/description/priority/tags in place,
// without touching status. Status is only ever changed through
// TransitionTask so workflow gating is never bypassed.
func (a *Adapter) EditTask(taskID, title, description string, priority record.TaskPriority, tags []string, signer factory.Signer) (record.Envelope, error) {
	env, err := a.Store.Get(record.TypeTask, taskID)
	if err != nil {
		return record.Envelope{}, err
	}
	p, err := taskPayload(env)
	if err != nil {
		return record.Envelope{}, err
	}
	p.Title = title
	p.Description = description
	p.Priority = priority
	p.Tags = tags

	next, err := a.Factory.Mutate(env, p, signer)
	if err != nil {
		return record.Envelope{}, err
	}
	if err := a.Store.Put(record.TypeTask, next); err != nil {
		return record.Envelope{}, err
	}
	return next, nil
}

// TransitionTask moves a task from its current status to `to`, gated by
// workflow.IsTaskTransitionAllowed against the roles signer's mutation
// will carry plus whatever roles already signed the record. Reaching
// done or archived auto-creates a changelog entry bundling the task
// (spec §4.11).
func (a *Adapter) TransitionTask(taskID string, to record.TaskStatus, signer factory.Signer) (record.Envelope, error) {
	env, err := a.Store.Get(record.TypeTask, taskID)
	if err != nil {
		return record.Envelope{}, err
	}
	p, err := taskPayload(env)
	if err != nil {
		return record.Envelope{}, err
	}
	from := p.Status

	signedRoles := append(workflow.SignedRoles(env), signer.Role)
	if err := workflow.IsTaskTransitionAllowed(from, to, signedRoles); err != nil {
		return record.Envelope{}, err
	}

	p.Status = to
	next, err := a.Factory.Mutate(env, p, signer)
	if err != nil {
		return record.Envelope{}, err
	}
	if err := a.Store.Put(record.TypeTask, next); err != nil {
		return record.Envelope{}, err
	}
	a.publish("task.status.changed", map[string]any{"id": taskID, "from": from, "to": to})

	if _, err := a.exec.Append(taskID, "status-change", fmt.Sprintf("%s -> %s", from, to),
		fmt.Sprintf("transitioned by %s", signer.ActorID), "", nil, signer); err != nil {
		return record.Envelope{}, err
	}

	if to == record.TaskDone || to == record.TaskArchived {
		if _, err := changelog.New(a.Store, a.Factory).AutoCreate(p.Title, []string{taskID}, time.Now().Unix(), signer); err != nil {
			return record.Envelope{}, err
		}
	}
	return next, nil
}

// DeleteTask removes a task outright. Only draft tasks may be deleted
// (spec §4.9) — anything past draft must go through
// TransitionTask(..., TaskDiscarded, ...) instead, preserving the audit
// trail.
func (a *Adapter) DeleteTask(taskID string) error {
	env, err := a.Store.Get(record.TypeTask, taskID)
	if err != nil {
		return err
	}
	p, err := taskPayload(env)
	if err != nil {
		return err
	}
	if !workflow.CanDeleteTask(p.Status) {
		return &ggerr.WorkflowError{From: string(p.Status), To: "deleted"}
	}
	return a.Store.Delete(record.TypeTask, taskID)
}

// NewCycle creates a cycle in the planning state.
func (a *Adapter) NewCycle(title string, tags []string, signer factory.Signer) (record.Envelope, error) {
	id, err := a.Factory.GenerateID(record.TypeCycle, title)
	if err != nil {
		return record.Envelope{}, err
	}
	payload := record.CyclePayload{ID: id, Title: title, Status: record.CyclePlanning, Tags: tags}
	env, err := a.Factory.Create(record.TypeCycle, payload, signer)
	if err != nil {
		return record.Envelope{}, err
	}
	if err := a.Store.Put(record.TypeCycle, env); err != nil {
		return record.Envelope{}, err
	}
	a.publish("cycle.created", payload)
	return env, nil
}

// AddTaskToCycle links taskID into cycleID: cycle.taskIds gains taskID
// and task.cycleIds gains cycleID, written as one paired operation.
func (a *Adapter) AddTaskToCycle(cycleID, taskID string, signer factory.Signer) error {
	return a.relink(cycleID, taskID, signer, true)
}

// RemoveTaskFromCycle is the inverse of AddTaskToCycle.
func (a *Adapter) RemoveTaskFromCycle(cycleID, taskID string, signer factory.Signer) error {
	return a.relink(cycleID, taskID, signer, false)
}

func (a *Adapter) relink(cycleID, taskID string, signer factory.Signer, add bool) error {
	cycleEnv, err := a.Store.Get(record.TypeCycle, cycleID)
	if err != nil {
		return err
	}
	taskEnv, err := a.Store.Get(record.TypeTask, taskID)
	if err != nil {
		return err
	}
	cp, err := cyclePayload(cycleEnv)
	if err != nil {
		return err
	}
	tp, err := taskPayload(taskEnv)
	if err != nil {
		return err
	}

	if add {
		cp.TaskIDs = appendUnique(cp.TaskIDs, taskID)
		tp.CycleIDs = appendUnique(tp.CycleIDs, cycleID)
	} else {
		cp.TaskIDs = removeString(cp.TaskIDs, taskID)
		tp.CycleIDs = removeString(tp.CycleIDs, cycleID)
	}

	newCycleEnv, err := a.Factory.Mutate(cycleEnv, cp, signer)
	if err != nil {
		return err
	}
	newTaskEnv, err := a.Factory.Mutate(taskEnv, tp, signer)
	if err != nil {
		return err
	}

	if err := a.Store.Put(record.TypeTask, newTaskEnv); err != nil {
		return err
	}
	if err := a.Store.Put(record.TypeCycle, newCycleEnv); err != nil {
		return &ggerr.ReferentialError{Kind: "cycle.taskIds", From: cycleID, To: taskID}
	}
	return nil
}

// MoveTask removes taskID from fromCycleID and then adds it to toCycleID.
// The two steps are separate writes: if the add fails, the removal stays.
func (a *Adapter) MoveTask(fromCycleID, toCycleID, taskID string, signer factory.Signer) error {
	if err := a.RemoveTaskFromCycle(fromCycleID, taskID, signer); err != nil {
		return err
	}
	return a.AddTaskToCycle(toCycleID, taskID, signer)
}

func appendUnique(list []string, v string) []string {
	for _, s := range list {
		if s == v {
			return list
		}
	}
	return append(list, v)
}

func removeString(list []string, v string) []string {
	out := list[:0:0]
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}

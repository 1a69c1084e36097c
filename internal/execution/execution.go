// Package execution implements the append-only execution log adapter
// (spec §4.11): each call creates a new, independently signed execution
// record against a task — nothing here is ever mutated once written.
package execution

import (
	"github.com/gitgovernance/gitgovernance/internal/factory"
	"github.com/gitgovernance/gitgovernance/internal/record"
	"github.com/gitgovernance/gitgovernance/internal/store"
)

// Adapter appends execution entries to the log.
type Adapter struct {
	Store   *store.FileStore
	Factory *factory.Factory
}

// New constructs an Adapter.
func New(s *store.FileStore, f *factory.Factory) *Adapter {
	return &Adapter{Store: s, Factory: f}
}

// Append creates and persists a new execution record against taskID. An
// entryType outside the known set (spec's closed vocabulary) must be
// prefixed "custom:" by the caller; NormalizedType maps any custom:*
// value back to "info" for readers that don't care about the distinction.
func (a *Adapter) Append(taskID, entryType, title, result, notes string, references []string, signer factory.Signer) (record.Envelope, error) {
	id, err := a.Factory.GenerateID(record.TypeExecution, title)
	if err != nil {
		return record.Envelope{}, err
	}
	payload := record.ExecutionPayload{
		ID:         id,
		TaskID:     taskID,
		Type:       entryType,
		Title:      title,
		Result:     result,
		Notes:      notes,
		References: references,
	}
	env, err := a.Factory.Create(record.TypeExecution, payload, signer)
	if err != nil {
		return record.Envelope{}, err
	}
	if err := a.Store.Put(record.TypeExecution, env); err != nil {
		return record.Envelope{}, err
	}
	return env, nil
}

// ForTask returns every execution record for taskID, in the order Store
// lists them (filename-sorted, which is also generated-id / creation
// order since ids carry a leading unix timestamp).
func (a *Adapter) ForTask(taskID string) ([]record.ExecutionPayload, error) {
	envs, err := a.Store.List(record.TypeExecution)
	if err != nil {
		return nil, err
	}
	var out []record.ExecutionPayload
	for _, env := range envs {
		p, err := record.DecodePayload(record.TypeExecution, env.Payload)
		if err != nil {
			continue
		}
		ep := p.(record.ExecutionPayload)
		if ep.TaskID == taskID {
			out = append(out, ep)
		}
	}
	return out, nil
}

// Package changelog implements the changelog adapter (spec §4.11):
// changelog entries are normally created automatically by the backlog
// adapter when a task enters done or archived, bundling whichever tasks
// completed together into one entry.
package changelog

import (
	"fmt"

	"github.com/gitgovernance/gitgovernance/internal/factory"
	"github.com/gitgovernance/gitgovernance/internal/record"
	"github.com/gitgovernance/gitgovernance/internal/store"
)

// Adapter creates changelog records.
type Adapter struct {
	Store   *store.FileStore
	Factory *factory.Factory
}

// New constructs an Adapter.
func New(s *store.FileStore, f *factory.Factory) *Adapter {
	return &Adapter{Store: s, Factory: f}
}

// AutoCreate creates a changelog entry bundling relatedTasks, titled
// after the task that triggered it. completedAt is a unix timestamp
// supplied by the caller so changelog creation stays reproducible under
// a fixed test clock.
func (a *Adapter) AutoCreate(taskTitle string, relatedTasks []string, completedAt int64, signer factory.Signer) (record.Envelope, error) {
	id, err := a.Factory.GenerateID(record.TypeChangelog, taskTitle)
	if err != nil {
		return record.Envelope{}, err
	}
	payload := record.ChangelogPayload{
		ID:           id,
		Title:        fmt.Sprintf("Completed: %s", taskTitle),
		Description:  fmt.Sprintf("Auto-generated on completion of %s", taskTitle),
		RelatedTasks: relatedTasks,
		CompletedAt:  completedAt,
		Version:      record.ProtocolVersion,
	}
	env, err := a.Factory.Create(record.TypeChangelog, payload, signer)
	if err != nil {
		return record.Envelope{}, err
	}
	if err := a.Store.Put(record.TypeChangelog, env); err != nil {
		return record.Envelope{}, err
	}
	return env, nil
}

// Package feedback implements the immutable feedback adapter (spec
// §4.11): feedback is never edited in place. Resolving an open item means
// creating a brand-new feedback record whose ResolvesFeedbackID points at
// the one it closes, forming a resolution chain.
package feedback

import (
	"github.com/gitgovernance/gitgovernance/internal/factory"
	"github.com/gitgovernance/gitgovernance/internal/ggerr"
	"github.com/gitgovernance/gitgovernance/internal/record"
	"github.com/gitgovernance/gitgovernance/internal/store"
)

// Adapter creates and resolves feedback records.
type Adapter struct {
	Store   *store.FileStore
	Factory *factory.Factory
}

// New constructs an Adapter.
func New(s *store.FileStore, f *factory.Factory) *Adapter {
	return &Adapter{Store: s, Factory: f}
}

// Create opens a new feedback item against an entity (a task, a cycle, or
// another feedback record).
func (a *Adapter) Create(entityType, entityID, feedbackType, content string, signer factory.Signer) (record.Envelope, error) {
	id, err := a.Factory.GenerateID(record.TypeFeedback, feedbackType+"-"+entityID)
	if err != nil {
		return record.Envelope{}, err
	}
	payload := record.FeedbackPayload{
		ID:         id,
		EntityType: entityType,
		EntityID:   entityID,
		Type:       feedbackType,
		Status:     record.FeedbackOpen,
		Content:    content,
	}
	env, err := a.Factory.Create(record.TypeFeedback, payload, signer)
	if err != nil {
		return record.Envelope{}, err
	}
	if err := a.Store.Put(record.TypeFeedback, env); err != nil {
		return record.Envelope{}, err
	}
	return env, nil
}

// Resolve closes feedbackID by creating a new, resolved feedback record
// that chains back to it via ResolvesFeedbackID. Resolving feedback that
// is already resolved, or resolving it a second time, is rejected — each
// open item resolves exactly once.
func (a *Adapter) Resolve(feedbackID, content string, signer factory.Signer) (record.Envelope, error) {
	openEnv, err := a.Store.Get(record.TypeFeedback, feedbackID)
	if err != nil {
		return record.Envelope{}, err
	}
	p, err := record.DecodePayload(record.TypeFeedback, openEnv.Payload)
	if err != nil {
		return record.Envelope{}, ggerr.Wrap(err)
	}
	open := p.(record.FeedbackPayload)
	if open.Status != record.FeedbackOpen {
		return record.Envelope{}, &ggerr.WorkflowError{From: string(open.Status), To: string(record.FeedbackResolved)}
	}
	existing, err := a.Store.List(record.TypeFeedback)
	if err != nil {
		return record.Envelope{}, err
	}
	for _, e := range existing {
		ep, err := record.DecodePayload(record.TypeFeedback, e.Payload)
		if err == nil && ep.(record.FeedbackPayload).ResolvesFeedbackID == feedbackID {
			return record.Envelope{}, &ggerr.WorkflowError{From: string(record.FeedbackResolved), To: string(record.FeedbackResolved)}
		}
	}

	id, err := a.Factory.GenerateID(record.TypeFeedback, "resolve-"+feedbackID)
	if err != nil {
		return record.Envelope{}, err
	}
	resolution := record.FeedbackPayload{
		ID:                 id,
		EntityType:         open.EntityType,
		EntityID:           open.EntityID,
		Type:               open.Type,
		Status:             record.FeedbackResolved,
		Content:            content,
		ResolvesFeedbackID: feedbackID,
	}
	env, err := a.Factory.Create(record.TypeFeedback, resolution, signer)
	if err != nil {
		return record.Envelope{}, err
	}
	if err := a.Store.Put(record.TypeFeedback, env); err != nil {
		return record.Envelope{}, err
	}
	return env, nil
}

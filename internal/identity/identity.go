// Package identity implements the actor adapter (spec §4.8): creating
// actors, rotating keys via a supersedes chain, and resolving which actor
// the CLI is currently acting as.
package identity

import (
	"crypto/ed25519"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/gitgovernance/gitgovernance/internal/factory"
	"github.com/gitgovernance/gitgovernance/internal/ggerr"
	"github.com/gitgovernance/gitgovernance/internal/keystore"
	"github.com/gitgovernance/gitgovernance/internal/record"
	"github.com/gitgovernance/gitgovernance/internal/store"
)

// SessionFileName is the worktree-local, gitignored file that pins the
// current actor when more than one key is present (spec §6 state tree).
const SessionFileName = ".session.json"

// session is the on-disk shape of .session.json.
type session struct {
	ActorID string `json:"actorId"`
}

// Adapter wires the record store and key store together for actor
// lifecycle operations.
type Adapter struct {
	Store    *store.FileStore
	Keys     keystore.Store
	Factory  *factory.Factory
	RootPath string // worktree root, where .session.json lives
}

// New constructs an Adapter.
func New(s *store.FileStore, keys keystore.Store, f *factory.Factory, rootPath string) *Adapter {
	return &Adapter{Store: s, Keys: keys, Factory: f, RootPath: rootPath}
}

// CreateActor generates a fresh Ed25519 keypair, stores it under actorID,
// and creates + persists the actor record, signed by signer (the caller's
// current actor), not by the new key.
func (a *Adapter) CreateActor(actorID, displayName string, roles []string, signer factory.Signer) (record.Envelope, error) {
	priv, err := keystore.Generate()
	if err != nil {
		return record.Envelope{}, ggerr.Wrap(err)
	}
	pub := priv.Public().(ed25519.PublicKey)

	payload := record.ActorPayload{
		ID:          actorID,
		Type:        "human",
		DisplayName: displayName,
		PublicKey:   keystore.PublicKeyBase64(pub),
		Roles:       roles,
		Status:      record.ActorActive,
	}
	env, err := a.Factory.Create(record.TypeActor, payload, signer)
	if err != nil {
		return record.Envelope{}, err
	}
	if err := a.Keys.Put(actorID, priv); err != nil {
		return record.Envelope{}, ggerr.Wrap(err)
	}
	if err := a.Store.Put(record.TypeActor, env); err != nil {
		return record.Envelope{}, err
	}
	return env, nil
}

// RotateKey retires actorID's current key and issues a successor actor
// with a fresh keypair: the old record is mutated to status=revoked with
// supersededBy pointing at the new id, and the new actor record is
// created. Both records are signed by signer, whichever actor that is.
// The old actor's private key stays in the key store, and nothing in this
// package stops it from signing later records.
func (a *Adapter) RotateKey(actorID, successorID string, signer factory.Signer) (record.Envelope, error) {
	oldEnv, err := a.Store.Get(record.TypeActor, actorID)
	if err != nil {
		return record.Envelope{}, err
	}
	oldPayloadAny, err := record.DecodePayload(record.TypeActor, oldEnv.Payload)
	if err != nil {
		return record.Envelope{}, ggerr.Wrap(err)
	}
	oldPayload := oldPayloadAny.(record.ActorPayload)

	priv, err := keystore.Generate()
	if err != nil {
		return record.Envelope{}, ggerr.Wrap(err)
	}
	pub := priv.Public().(ed25519.PublicKey)

	newPayload := record.ActorPayload{
		ID:          successorID,
		Type:        oldPayload.Type,
		DisplayName: oldPayload.DisplayName,
		PublicKey:   keystore.PublicKeyBase64(pub),
		Roles:       oldPayload.Roles,
		Status:      record.ActorActive,
	}
	newEnv, err := a.Factory.Create(record.TypeActor, newPayload, signer)
	if err != nil {
		return record.Envelope{}, err
	}

	oldPayload.Status = record.ActorRevoked
	oldPayload.SupersededBy = successorID
	revokedEnv, err := a.Factory.Mutate(oldEnv, oldPayload, signer)
	if err != nil {
		return record.Envelope{}, err
	}

	if err := a.Keys.Put(successorID, priv); err != nil {
		return record.Envelope{}, ggerr.Wrap(err)
	}
	if err := a.Store.Put(record.TypeActor, newEnv); err != nil {
		return record.Envelope{}, err
	}
	if err := a.Store.Put(record.TypeActor, revokedEnv); err != nil {
		return record.Envelope{}, err
	}
	return newEnv, nil
}

// sessionPath returns the path to .session.json under RootPath.
func (a *Adapter) sessionPath() string {
	return filepath.Join(a.RootPath, SessionFileName)
}

// PinSession writes .session.json so CurrentActor resolves to actorID
// without needing it to be the only key on disk.
func (a *Adapter) PinSession(actorID string) error {
	data, err := json.MarshalIndent(session{ActorID: actorID}, "", "  ")
	if err != nil {
		return ggerr.Wrap(err)
	}
	data = append(data, '\n')
	return store.AtomicWrite(a.sessionPath(), data)
}

// ClearSession removes .session.json, falling CurrentActor back to the
// single-key-file rule.
func (a *Adapter) ClearSession() error {
	err := os.Remove(a.sessionPath())
	if err != nil && !os.IsNotExist(err) {
		return ggerr.Wrap(err)
	}
	return nil
}

// CurrentActor resolves which actor the CLI is acting as: the pinned
// session file first, then — if there is exactly one key on disk — that
// key; more than one key with no session pinned is ambiguous (spec §4.8).
func (a *Adapter) CurrentActor() (actorID string, priv ed25519.PrivateKey, err error) {
	if raw, readErr := os.ReadFile(a.sessionPath()); readErr == nil {
		var s session
		if err := json.Unmarshal(raw, &s); err == nil && s.ActorID != "" {
			priv, err := a.Keys.Get(s.ActorID)
			if err != nil {
				return "", nil, ggerr.Wrap(err)
			}
			return s.ActorID, priv, nil
		}
	}

	ids, err := a.Keys.List()
	if err != nil {
		return "", nil, ggerr.Wrap(err)
	}
	if len(ids) == 0 {
		return "", nil, ggerr.ErrNoActor
	}
	if len(ids) > 1 {
		sort.Strings(ids)
		return "", nil, &ggerr.AmbiguousActorError{Candidates: ids}
	}
	priv, err = a.Keys.Get(ids[0])
	if err != nil {
		return "", nil, ggerr.Wrap(err)
	}
	return ids[0], priv, nil
}

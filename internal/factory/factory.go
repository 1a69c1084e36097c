// Package factory builds and mutates signed record envelopes: defaults,
// schema validation, business invariants, checksum, signature, in that
// order (spec §4.4). Nothing here touches disk — that's internal/store.
package factory

import (
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/gitgovernance/gitgovernance/internal/canon"
	"github.com/gitgovernance/gitgovernance/internal/ggerr"
	"github.com/gitgovernance/gitgovernance/internal/keystore"
	"github.com/gitgovernance/gitgovernance/internal/record"
)

// Clock returns the current unix time in seconds. Tests supply a fixed
// clock so signature timestamps and generated IDs are reproducible.
type Clock func() int64

// Signer holds the private key material and role a caller acts under when
// creating or mutating a record; the factory never looks keys up itself.
type Signer struct {
	ActorID string
	Role    string
	Notes   string
	Key     ed25519.PrivateKey
}

// Factory builds envelopes against a compiled schema cache.
type Factory struct {
	Schemas *record.SchemaCache
	Now     Clock
}

// New constructs a Factory. No default clock is applied, so callers must
// always supply one (tests pass a fixed value, cmd/gitgov passes
// time.Now().Unix).
func New(schemas *record.SchemaCache, now Clock) *Factory {
	return &Factory{Schemas: schemas, Now: now}
}

var slugSanitizer = regexp.MustCompile(`[^a-z0-9-]+`)

// Slugify lowercases s, replaces runs of non [a-z0-9-] with a single
// hyphen, and trims leading/trailing hyphens — used to build the
// human-readable suffix of generated record IDs.
func Slugify(s string) string {
	lower := strings.ToLower(s)
	slug := slugSanitizer.ReplaceAllString(lower, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "untitled"
	}
	if len(slug) > 50 {
		slug = strings.Trim(slug[:50], "-")
	}
	return slug
}

// GenerateID builds a `<unix-seconds>-<type>-<slug>` id for cycle/task/
// execution/feedback/changelog records (spec §3 id patterns).
func (f *Factory) GenerateID(t record.Type, title string) (string, error) {
	var tag string
	switch t {
	case record.TypeCycle:
		tag = "cycle"
	case record.TypeTask:
		tag = "task"
	case record.TypeExecution:
		tag = "exec"
	case record.TypeFeedback:
		tag = "feedback"
	case record.TypeChangelog:
		tag = "changelog"
	default:
		return "", fmt.Errorf("factory: type %q does not use generated ids", t)
	}
	return fmt.Sprintf("%010d-%s-%s", f.Now(), tag, Slugify(title)), nil
}

// Create runs the full pipeline for a brand-new record: schema
// validation, business invariants, checksum, and first signature.
func (f *Factory) Create(t record.Type, payload any, signer Signer) (record.Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return record.Envelope{}, ggerr.Wrap(err)
	}
	if err := f.Schemas.ValidatePayloadJSON(t, raw); err != nil {
		return record.Envelope{}, err
	}
	if err := checkBusinessInvariants(t, payload); err != nil {
		return record.Envelope{}, err
	}

	checksum, err := canon.Checksum(payload)
	if err != nil {
		return record.Envelope{}, ggerr.Wrap(err)
	}

	ts := f.Now()
	sigB64 := keystore.Sign(signer.Key, checksum, signer.ActorID, signer.Role, signer.Notes, ts)

	header := record.Header{
		Version:         record.ProtocolVersion,
		Type:            t,
		PayloadChecksum: checksum,
		Signatures: []record.Signature{{
			KeyID:     signer.ActorID,
			Role:      signer.Role,
			Notes:     signer.Notes,
			Signature: sigB64,
			Timestamp: ts,
		}},
	}

	env := record.Envelope{Header: header, Payload: raw}
	if err := f.validateEnvelope(env, payload); err != nil {
		return record.Envelope{}, err
	}
	return env, nil
}

// Mutate recomputes the checksum for a changed payload and appends a new
// signature; prior signatures are never removed, so the header grows to
// record each successive authorized change (spec §4.4, §5 ordering).
func (f *Factory) Mutate(env record.Envelope, newPayload any, signer Signer) (record.Envelope, error) {
	raw, err := json.Marshal(newPayload)
	if err != nil {
		return record.Envelope{}, ggerr.Wrap(err)
	}
	if err := f.Schemas.ValidatePayloadJSON(env.Header.Type, raw); err != nil {
		return record.Envelope{}, err
	}
	if err := checkBusinessInvariants(env.Header.Type, newPayload); err != nil {
		return record.Envelope{}, err
	}

	checksum, err := canon.Checksum(newPayload)
	if err != nil {
		return record.Envelope{}, ggerr.Wrap(err)
	}

	ts := f.Now()
	sigB64 := keystore.Sign(signer.Key, checksum, signer.ActorID, signer.Role, signer.Notes, ts)

	next := env.Clone()
	next.Header.PayloadChecksum = checksum
	next.Header.Signatures = append(next.Header.Signatures, record.Signature{
		KeyID:     signer.ActorID,
		Role:      signer.Role,
		Notes:     signer.Notes,
		Signature: sigB64,
		Timestamp: ts,
	})
	next.Payload = raw

	if err := f.validateEnvelope(next, newPayload); err != nil {
		return record.Envelope{}, err
	}
	return next, nil
}

// validateEnvelope re-runs header schema validation and recomputes the
// payload checksum against header.payloadChecksum — the final gate before
// Create/Mutate hand a record back to a caller. Signatures are not
// verified here.
func (f *Factory) validateEnvelope(env record.Envelope, payload any) error {
	headerRaw, err := json.Marshal(env.Header)
	if err != nil {
		return ggerr.Wrap(err)
	}
	if err := f.Schemas.ValidateHeaderJSON(headerRaw); err != nil {
		return err
	}

	checksum, err := canon.Checksum(payload)
	if err != nil {
		return ggerr.Wrap(err)
	}
	if checksum != env.Header.PayloadChecksum {
		return &ggerr.ChecksumError{Expected: checksum, Actual: env.Header.PayloadChecksum}
	}
	return nil
}

// checkBusinessInvariants enforces the invariants spec.md lists per
// payload type that JSON Schema cannot express alone: a revoked actor
// names its successor, a changelog references at least one task, and a
// resolved feedback record names the feedback it resolves.
func checkBusinessInvariants(t record.Type, payload any) error {
	switch p := payload.(type) {
	case record.ActorPayload:
		if p.Status == record.ActorRevoked && p.SupersededBy == "" {
			return &ggerr.SchemaError{Path: "payload.supersededBy", Message: "revoked actor must set supersededBy"}
		}
	case record.ChangelogPayload:
		if len(p.RelatedTasks) == 0 {
			return &ggerr.SchemaError{Path: "payload.relatedTasks", Message: "changelog must reference at least one task"}
		}
	case record.CyclePayload:
		_ = p
	case record.TaskPayload:
		_ = p
	case record.ExecutionPayload:
		_ = p
	case record.FeedbackPayload:
		if p.Status == record.FeedbackResolved && p.ResolvesFeedbackID == "" {
			return &ggerr.SchemaError{Path: "payload.resolvesFeedbackId", Message: "resolved feedback must reference the feedback it resolves"}
		}
	default:
		return fmt.Errorf("factory: unsupported payload type %T for %s", payload, t)
	}
	return nil
}

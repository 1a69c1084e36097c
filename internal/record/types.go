// Package record defines the record envelope and the seven concrete
// payload shapes (actor, agent, cycle, task, execution, feedback,
// changelog), plus a schema cache that compiles each payload's JSON Schema
// once and validates against it.
package record

import "encoding/json"

// ProtocolVersion is the fixed header.version tag.
const ProtocolVersion = "1.0"

// Type is the discriminator for header.type / which schema + payload shape
// applies.
type Type string

const (
	TypeActor      Type = "actor"
	TypeAgent      Type = "agent"
	TypeCycle      Type = "cycle"
	TypeTask       Type = "task"
	TypeExecution  Type = "execution"
	TypeChangelog  Type = "changelog"
	TypeFeedback   Type = "feedback"
)

// AllTypes lists every record type, in the order directories are scanned
// during discovery (C12) and Store registration.
func AllTypes() []Type {
	return []Type{TypeActor, TypeAgent, TypeCycle, TypeTask, TypeExecution, TypeFeedback, TypeChangelog}
}

// IsValid reports whether t is one of the seven known record types.
func (t Type) IsValid() bool {
	for _, v := range AllTypes() {
		if v == t {
			return true
		}
	}
	return false
}

// Directory returns the category directory name under .gitgov/ that holds
// records of this type (spec §6 state tree).
func (t Type) Directory() string {
	switch t {
	case TypeActor:
		return "actors"
	case TypeAgent:
		return "agents"
	case TypeCycle:
		return "cycles"
	case TypeTask:
		return "tasks"
	case TypeExecution:
		return "executions"
	case TypeFeedback:
		return "feedback"
	case TypeChangelog:
		return "changelog"
	default:
		return ""
	}
}

// Signature is one entry in header.signatures: an authenticated binding of
// a signer's intent (role, notes, timestamp) to the record's current
// payloadChecksum.
type Signature struct {
	KeyID     string         `json:"keyId"`
	Role      string         `json:"role"`
	Notes     string         `json:"notes"`
	Signature string         `json:"signature"`
	Timestamp int64          `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Header authenticates a record's payload: version tag, record type, the
// payload's checksum, and the ordered, non-empty list of signatures that
// have been applied to it over its lifetime (signatures accrete; they are
// never removed by Mutate).
type Header struct {
	Version         string      `json:"version"`
	Type            Type        `json:"type"`
	PayloadChecksum string      `json:"payloadChecksum"`
	Signatures      []Signature `json:"signatures"`
}

// Envelope is the on-disk/in-memory shape of every persisted record:
// {header, payload}. Payload is kept as raw JSON so the store and sync
// layers can move records around without needing to know the concrete
// payload shape; callers that need the typed payload decode it via
// DecodePayload.
type Envelope struct {
	Header  Header          `json:"header"`
	Payload json.RawMessage `json:"payload"`
}

// Clone returns a deep copy of the envelope, safe to mutate independently
// of the original (used by factory.Mutate so the caller's envelope is left
// untouched).
func (e Envelope) Clone() Envelope {
	sigs := make([]Signature, len(e.Header.Signatures))
	copy(sigs, e.Header.Signatures)
	payload := make(json.RawMessage, len(e.Payload))
	copy(payload, e.Payload)
	return Envelope{
		Header: Header{
			Version:         e.Header.Version,
			Type:            e.Header.Type,
			PayloadChecksum: e.Header.PayloadChecksum,
			Signatures:      sigs,
		},
		Payload: payload,
	}
}

// LatestSignature returns the most recently appended signature, or the
// zero value and false if there are none.
func (h Header) LatestSignature() (Signature, bool) {
	if len(h.Signatures) == 0 {
		return Signature{}, false
	}
	return h.Signatures[len(h.Signatures)-1], true
}

// ActorStatus is the lifecycle status of an ActorPayload.
type ActorStatus string

const (
	ActorActive  ActorStatus = "active"
	ActorRevoked ActorStatus = "revoked"
)

// ActorPayload is the payload of a `type: actor` record.
type ActorPayload struct {
	ID            string      `json:"id"`
	Type          string      `json:"type"`
	DisplayName   string      `json:"displayName"`
	PublicKey     string      `json:"publicKey"`
	Roles         []string    `json:"roles"`
	Status        ActorStatus `json:"status"`
	SupersededBy  string      `json:"supersededBy,omitempty"`
}

// AgentEngine discriminates the three disjoint agent engine shapes.
type AgentEngine struct {
	Type string `json:"type"` // "local" | "api" | "mcp" | "custom"
	URL  string `json:"url,omitempty"`
}

// AgentPayload is the payload of a `type: agent` record. Agent records are
// also actors (engine aside, they share displayName/publicKey/roles/status
// in the real protocol); this module models the agent-specific fields the
// spec calls out explicitly.
type AgentPayload struct {
	ID                    string            `json:"id"`
	Type                  string            `json:"type"`
	DisplayName           string            `json:"displayName"`
	PublicKey             string            `json:"publicKey"`
	Roles                 []string          `json:"roles"`
	Status                ActorStatus       `json:"status"`
	SupersededBy          string            `json:"supersededBy,omitempty"`
	Engine                AgentEngine       `json:"engine"`
	Triggers              []string          `json:"triggers,omitempty"`
	KnowledgeDependencies []string          `json:"knowledge_dependencies,omitempty"`
}

// CycleStatus is the lifecycle status of a CyclePayload.
type CycleStatus string

const (
	CyclePlanning  CycleStatus = "planning"
	CycleActive    CycleStatus = "active"
	CycleCompleted CycleStatus = "completed"
	CycleArchived  CycleStatus = "archived"
)

// CyclePayload is the payload of a `type: cycle` record.
type CyclePayload struct {
	ID             string      `json:"id"`
	Title          string      `json:"title"`
	Status         CycleStatus `json:"status"`
	TaskIDs        []string    `json:"taskIds,omitempty"`
	ChildCycleIDs  []string    `json:"childCycleIds,omitempty"`
	Tags           []string    `json:"tags,omitempty"`
}

// TaskStatus is the lifecycle status of a TaskPayload (spec §4.9).
type TaskStatus string

const (
	TaskDraft      TaskStatus = "draft"
	TaskReview     TaskStatus = "review"
	TaskReady      TaskStatus = "ready"
	TaskActive     TaskStatus = "active"
	TaskPaused     TaskStatus = "paused"
	TaskDone       TaskStatus = "done"
	TaskArchived   TaskStatus = "archived"
	TaskDiscarded  TaskStatus = "discarded"
)

// TaskPriority is the relative priority of a task.
type TaskPriority string

const (
	PriorityLow      TaskPriority = "low"
	PriorityMedium   TaskPriority = "medium"
	PriorityHigh     TaskPriority = "high"
	PriorityCritical TaskPriority = "critical"
)

// TaskPayload is the payload of a `type: task` record.
type TaskPayload struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	Description string       `json:"description"`
	CycleIDs    []string     `json:"cycleIds,omitempty"`
	References  []string     `json:"references,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
}

// ExecutionPayload is the payload of a `type: execution` record — an
// append-only audit entry against a task.
type ExecutionPayload struct {
	ID         string   `json:"id"`
	TaskID     string   `json:"taskId"`
	Type       string   `json:"type"`
	Title      string   `json:"title"`
	Result     string   `json:"result"`
	Notes      string   `json:"notes,omitempty"`
	References []string `json:"references,omitempty"`
}

// NormalizedType maps unknown custom:* execution types to "info" for
// readers, per spec §4.11.
func (e ExecutionPayload) NormalizedType() string {
	if len(e.Type) > 7 && e.Type[:7] == "custom:" {
		return "info"
	}
	return e.Type
}

// FeedbackStatus is the lifecycle status of a FeedbackPayload.
type FeedbackStatus string

const (
	FeedbackOpen     FeedbackStatus = "open"
	FeedbackResolved FeedbackStatus = "resolved"
)

// FeedbackPayload is the payload of a `type: feedback` record. Feedback is
// immutable; resolving it means creating a *new* feedback record with
// ResolvesFeedbackID pointing at this one.
type FeedbackPayload struct {
	ID                  string         `json:"id"`
	EntityType          string         `json:"entityType"`
	EntityID            string         `json:"entityId"`
	Type                string         `json:"type"`
	Status              FeedbackStatus `json:"status"`
	Content             string         `json:"content"`
	ResolvesFeedbackID  string         `json:"resolvesFeedbackId,omitempty"`
}

// ChangelogPayload is the payload of a `type: changelog` record, normally
// created automatically when a task enters done/archived.
type ChangelogPayload struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	RelatedTasks []string `json:"relatedTasks"`
	CompletedAt  int64    `json:"completedAt"`
	Version      string   `json:"version"`
}

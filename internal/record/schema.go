package record

// JSON Schema documents for the header and each of the seven payload
// shapes. additionalProperties is false at every level (spec §4.3):
// unknown top-level properties are rejected by construction.

const headerSchemaID = "https://gitgovernance.dev/schemas/header.json"

const headerSchemaJSON = `{
  "$id": "https://gitgovernance.dev/schemas/header.json",
  "type": "object",
  "additionalProperties": false,
  "required": ["version", "type", "payloadChecksum", "signatures"],
  "properties": {
    "version": { "const": "1.0" },
    "type": { "enum": ["actor", "agent", "cycle", "task", "execution", "changelog", "feedback"] },
    "payloadChecksum": { "type": "string", "pattern": "^[a-f0-9]{64}$" },
    "signatures": {
      "type": "array",
      "minItems": 1,
      "items": { "$ref": "#/$defs/signature" }
    }
  },
  "$defs": {
    "signature": {
      "type": "object",
      "additionalProperties": false,
      "required": ["keyId", "role", "notes", "signature", "timestamp"],
      "properties": {
        "keyId": { "type": "string", "pattern": "^(human|agent)(:[a-z0-9-]+)+$" },
        "role": { "type": "string", "pattern": "^([a-z-]+|custom:[a-z0-9-]+)$", "minLength": 1, "maxLength": 50 },
        "notes": { "type": "string", "minLength": 1, "maxLength": 1000 },
        "signature": { "type": "string", "pattern": "^[A-Za-z0-9+/]{86}==$" },
        "timestamp": { "type": "integer" },
        "metadata": { "type": "object" }
      }
    }
  }
}`

const actorSchemaJSON = `{
  "$id": "https://gitgovernance.dev/schemas/actor.json",
  "type": "object",
  "additionalProperties": false,
  "required": ["id", "type", "displayName", "publicKey", "roles", "status"],
  "properties": {
    "id": { "type": "string", "pattern": "^(human|agent)(:[a-z0-9-]+)+$" },
    "type": { "enum": ["human", "agent"] },
    "displayName": { "type": "string", "minLength": 1 },
    "publicKey": { "type": "string", "pattern": "^[A-Za-z0-9+/]{43}=$" },
    "roles": { "type": "array", "items": { "type": "string" }, "minItems": 1 },
    "status": { "enum": ["active", "revoked"] },
    "supersededBy": { "type": "string", "pattern": "^(human|agent)(:[a-z0-9-]+)+$" }
  },
  "if": { "properties": { "status": { "const": "revoked" } }, "required": ["status"] },
  "then": { "required": ["supersededBy"] }
}`

const agentSchemaJSON = `{
  "$id": "https://gitgovernance.dev/schemas/agent.json",
  "type": "object",
  "additionalProperties": false,
  "required": ["id", "type", "displayName", "publicKey", "roles", "status", "engine"],
  "properties": {
    "id": { "type": "string", "pattern": "^agent(:[a-z0-9-]+)+$" },
    "type": { "enum": ["human", "agent"] },
    "displayName": { "type": "string", "minLength": 1 },
    "publicKey": { "type": "string", "pattern": "^[A-Za-z0-9+/]{43}=$" },
    "roles": { "type": "array", "items": { "type": "string" }, "minItems": 1 },
    "status": { "enum": ["active", "revoked"] },
    "supersededBy": { "type": "string", "pattern": "^agent(:[a-z0-9-]+)+$" },
    "engine": {
      "type": "object",
      "additionalProperties": false,
      "required": ["type"],
      "properties": {
        "type": { "enum": ["local", "api", "mcp", "custom"] },
        "url": { "type": "string", "format": "uri" }
      },
      "if": { "properties": { "type": { "enum": ["api", "mcp"] } }, "required": ["type"] },
      "then": { "required": ["url"] }
    },
    "triggers": { "type": "array", "items": { "type": "string" } },
    "knowledge_dependencies": { "type": "array", "items": { "type": "string" } }
  }
}`

const cycleSchemaJSON = `{
  "$id": "https://gitgovernance.dev/schemas/cycle.json",
  "type": "object",
  "additionalProperties": false,
  "required": ["id", "title", "status"],
  "properties": {
    "id": { "type": "string", "pattern": "^[0-9]{10}-cycle-[a-z0-9-]{1,50}$" },
    "title": { "type": "string", "minLength": 1 },
    "status": { "enum": ["planning", "active", "completed", "archived"] },
    "taskIds": { "type": "array", "items": { "type": "string" } },
    "childCycleIds": { "type": "array", "items": { "type": "string" } },
    "tags": { "type": "array", "items": { "type": "string" } }
  }
}`

const taskSchemaJSON = `{
  "$id": "https://gitgovernance.dev/schemas/task.json",
  "type": "object",
  "additionalProperties": false,
  "required": ["id", "title", "status", "priority", "description"],
  "properties": {
    "id": { "type": "string", "pattern": "^[0-9]{10}-task-[a-z0-9-]{1,50}$" },
    "title": { "type": "string", "minLength": 1 },
    "status": { "enum": ["draft", "review", "ready", "active", "paused", "done", "archived", "discarded"] },
    "priority": { "enum": ["low", "medium", "high", "critical"] },
    "description": { "type": "string" },
    "cycleIds": { "type": "array", "items": { "type": "string" } },
    "references": { "type": "array", "items": { "type": "string" } },
    "tags": { "type": "array", "items": { "type": "string" } }
  }
}`

const executionSchemaJSON = `{
  "$id": "https://gitgovernance.dev/schemas/execution.json",
  "type": "object",
  "additionalProperties": false,
  "required": ["id", "taskId", "type", "title", "result"],
  "properties": {
    "id": { "type": "string", "pattern": "^[0-9]{10}-exec-[a-z0-9-]{1,50}$" },
    "taskId": { "type": "string", "pattern": "^[0-9]{10}-task-[a-z0-9-]{1,50}$" },
    "type": { "type": "string", "minLength": 1 },
    "title": { "type": "string", "minLength": 1 },
    "result": { "type": "string" },
    "notes": { "type": "string" },
    "references": { "type": "array", "items": { "type": "string" } }
  }
}`

const feedbackSchemaJSON = `{
  "$id": "https://gitgovernance.dev/schemas/feedback.json",
  "type": "object",
  "additionalProperties": false,
  "required": ["id", "entityType", "entityId", "type", "status", "content"],
  "properties": {
    "id": { "type": "string", "pattern": "^[0-9]{10}-feedback-[a-z0-9-]{1,50}$" },
    "entityType": { "enum": ["actor", "agent", "cycle", "task", "execution", "changelog", "feedback"] },
    "entityId": { "type": "string" },
    "type": { "type": "string", "minLength": 1 },
    "status": { "enum": ["open", "resolved"] },
    "content": { "type": "string", "minLength": 1 },
    "resolvesFeedbackId": { "type": "string", "pattern": "^[0-9]{10}-feedback-[a-z0-9-]{1,50}$" }
  }
}`

const changelogSchemaJSON = `{
  "$id": "https://gitgovernance.dev/schemas/changelog.json",
  "type": "object",
  "additionalProperties": false,
  "required": ["id", "title", "description", "relatedTasks", "completedAt", "version"],
  "properties": {
    "id": { "type": "string", "pattern": "^[0-9]{10}-changelog-[a-z0-9-]{1,50}$" },
    "title": { "type": "string", "minLength": 10 },
    "description": { "type": "string", "minLength": 20 },
    "relatedTasks": { "type": "array", "items": { "type": "string" }, "minItems": 1 },
    "completedAt": { "type": "integer" },
    "version": { "type": "string" }
  }
}`

func payloadSchemaJSON(t Type) (id, doc string, ok bool) {
	switch t {
	case TypeActor:
		return "https://gitgovernance.dev/schemas/actor.json", actorSchemaJSON, true
	case TypeAgent:
		return "https://gitgovernance.dev/schemas/agent.json", agentSchemaJSON, true
	case TypeCycle:
		return "https://gitgovernance.dev/schemas/cycle.json", cycleSchemaJSON, true
	case TypeTask:
		return "https://gitgovernance.dev/schemas/task.json", taskSchemaJSON, true
	case TypeExecution:
		return "https://gitgovernance.dev/schemas/execution.json", executionSchemaJSON, true
	case TypeFeedback:
		return "https://gitgovernance.dev/schemas/feedback.json", feedbackSchemaJSON, true
	case TypeChangelog:
		return "https://gitgovernance.dev/schemas/changelog.json", changelogSchemaJSON, true
	default:
		return "", "", false
	}
}

// Package lint implements the nine-stage validation pipeline (spec
// §4.12): discovery, schema, embedded-metadata, checksum, signature,
// referential, bidirectional, naming and temporal. Each stage appends
// zero or more Results to the report; later stages still run even when
// an earlier one finds problems — lint always reports everything it can,
// not just the first failure.
package lint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gitgovernance/gitgovernance/internal/canon"
	"github.com/gitgovernance/gitgovernance/internal/keystore"
	"github.com/gitgovernance/gitgovernance/internal/record"
	"github.com/gitgovernance/gitgovernance/internal/store"
)

// Level is the severity of a lint Result.
type Level string

const (
	LevelError   Level = "error"
	LevelWarning Level = "warning"
)

// Result is one finding from any pipeline stage.
type Result struct {
	Level     Level  `json:"level"`
	FilePath  string `json:"filePath"`
	Validator string `json:"validator"`
	Entity    string `json:"entity"`
	Message   string `json:"message"`
	Fixable   bool   `json:"fixable"`
}

// Summary aggregates a Report's Results.
type Summary struct {
	FilesChecked  int    `json:"filesChecked"`
	Errors        int    `json:"errors"`
	Warnings      int    `json:"warnings"`
	Fixable       int    `json:"fixable"`
	ExecutionTime string `json:"executionTime"`
}

// Options controls which validators run and whether lint fixes what it
// can.
type Options struct {
	Fix               bool
	FixValidators     []string
	ExcludeValidators []string
	CheckMigrations   bool
}

// Metadata records how a Report was produced.
type Metadata struct {
	Timestamp int64    `json:"timestamp"`
	Options   Options  `json:"options"`
	Version   string   `json:"version"`
}

// Report is the full lint result (spec §4.12 report shape).
type Report struct {
	Summary  Summary  `json:"summary"`
	Results  []Result `json:"results"`
	Metadata Metadata `json:"metadata"`
}

// fixableValidators is the static set of validators whose findings can be
// auto-repaired — the Open Question decision recorded in DESIGN.md: an
// entry is fixable iff its violation can be corrected without touching
// signed payload content (renaming a misnamed file to match its id).
var fixableValidators = map[string]bool{
	"naming": true,
}

// Linter runs the pipeline against a record store rooted at Root.
type Linter struct {
	Store *store.FileStore
	Schemas *record.SchemaCache
	Root  string
	Now   func() int64
}

// New constructs a Linter.
func New(s *store.FileStore, schemas *record.SchemaCache, root string, now func() int64) *Linter {
	return &Linter{Store: s, Schemas: schemas, Root: root, Now: now}
}

type loadedFile struct {
	path string
	typ  record.Type
	raw  []byte
	env  record.Envelope
	ok   bool // false when raw didn't even parse as an envelope
}

// Run executes every non-excluded validator stage and returns the
// aggregated report. paths restricts discovery to the given record
// category directories; nil/empty means the whole state tree. A path that
// is not a directory makes Run return an error.
func (l *Linter) Run(paths []string, opts Options) (Report, error) {
	start := time.Now()
	excluded := toSet(opts.ExcludeValidators)

	files, err := l.discover(paths)
	if err != nil {
		return Report{}, err
	}

	actors := l.loadActors(files)

	var results []Result
	run := func(name string, fn func() []Result) {
		if excluded[name] {
			return
		}
		results = append(results, fn()...)
	}

	run("schema", func() []Result { return l.checkSchema(files) })
	run("embedded-metadata", func() []Result { return l.checkEmbeddedMetadata(files) })
	run("checksum", func() []Result { return l.checkChecksum(files) })
	run("signature", func() []Result { return l.checkSignatures(files, actors) })
	run("referential", func() []Result { return l.checkReferential(files) })
	run("bidirectional", func() []Result { return l.checkBidirectional(files) })
	run("naming", func() []Result { return l.checkNaming(files) })
	run("temporal", func() []Result { return l.checkTemporal(files) })

	if opts.Fix {
		results = l.applyFixes(files, results, opts)
	}

	summary := Summary{FilesChecked: len(files), ExecutionTime: time.Since(start).String()}
	for _, r := range results {
		switch r.Level {
		case LevelError:
			summary.Errors++
		case LevelWarning:
			summary.Warnings++
		}
		if r.Fixable {
			summary.Fixable++
		}
	}

	return Report{
		Summary: summary,
		Results: results,
		Metadata: Metadata{
			Timestamp: l.Now(),
			Options:   opts,
			Version:   record.ProtocolVersion,
		},
	}, nil
}

// discover walks every record category directory (or the given paths)
// and reads each .json file's raw bytes, tolerating files that don't
// even parse as an envelope (schema will flag those).
func (l *Linter) discover(paths []string) ([]loadedFile, error) {
	dirs := paths
	if len(dirs) == 0 {
		for _, t := range record.AllTypes() {
			dirs = append(dirs, filepath.Join(l.Root, t.Directory()))
		}
	}

	var files []loadedFile
	for _, dir := range dirs {
		t := typeForDir(l.Root, dir)
		entries, err := os.ReadDir(dir)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		var names []string
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)
		for _, name := range names {
			p := filepath.Join(dir, name)
			raw, err := os.ReadFile(p)
			if err != nil {
				continue
			}
			var env record.Envelope
			ok := json.Unmarshal(raw, &env) == nil
			files = append(files, loadedFile{path: p, typ: t, raw: raw, env: env, ok: ok})
		}
	}
	return files, nil
}

func typeForDir(root, dir string) record.Type {
	base := filepath.Base(dir)
	for _, t := range record.AllTypes() {
		if t.Directory() == base {
			return t
		}
	}
	return ""
}

func (l *Linter) loadActors(files []loadedFile) map[string]record.ActorPayload {
	actors := make(map[string]record.ActorPayload)
	for _, f := range files {
		if f.typ != record.TypeActor || !f.ok {
			continue
		}
		p, err := record.DecodePayload(record.TypeActor, f.env.Payload)
		if err != nil {
			continue
		}
		ap := p.(record.ActorPayload)
		actors[ap.ID] = ap
	}
	return actors
}

func (l *Linter) checkSchema(files []loadedFile) []Result {
	var out []Result
	for _, f := range files {
		if !f.ok {
			out = append(out, Result{Level: LevelError, FilePath: f.path, Validator: "schema", Message: "file does not parse as a record envelope"})
			continue
		}
		headerRaw, err := json.Marshal(f.env.Header)
		if err == nil {
			if err := l.Schemas.ValidateHeaderJSON(headerRaw); err != nil {
				out = append(out, Result{Level: LevelError, FilePath: f.path, Validator: "schema", Message: err.Error()})
			}
		}
		if f.typ != "" {
			if err := l.Schemas.ValidatePayloadJSON(f.typ, f.env.Payload); err != nil {
				out = append(out, Result{Level: LevelError, FilePath: f.path, Validator: "schema", Message: err.Error()})
			}
		}
	}
	return out
}

func (l *Linter) checkEmbeddedMetadata(files []loadedFile) []Result {
	var out []Result
	for _, f := range files {
		if !f.ok || f.typ == "" {
			continue
		}
		if f.env.Header.Type != f.typ {
			out = append(out, Result{
				Level: LevelError, FilePath: f.path, Validator: "embedded-metadata",
				Message: fmt.Sprintf("header.type %q does not match containing directory %q", f.env.Header.Type, f.typ.Directory()),
			})
		}
	}
	return out
}

func (l *Linter) checkChecksum(files []loadedFile) []Result {
	var out []Result
	for _, f := range files {
		if !f.ok {
			continue
		}
		sum, err := canon.Checksum([]byte(f.env.Payload))
		if err != nil {
			continue
		}
		if sum != f.env.Header.PayloadChecksum {
			id, _ := record.PayloadID(f.env.Payload)
			out = append(out, Result{Level: LevelError, FilePath: f.path, Validator: "checksum", Entity: id, Message: "payloadChecksum does not match recomputed checksum"})
		}
	}
	return out
}

func (l *Linter) checkSignatures(files []loadedFile, actors map[string]record.ActorPayload) []Result {
	var out []Result
	for _, f := range files {
		if !f.ok {
			continue
		}
		id, _ := record.PayloadID(f.env.Payload)
		for _, sig := range f.env.Header.Signatures {
			actor, known := actors[sig.KeyID]
			if !known {
				out = append(out, Result{Level: LevelWarning, FilePath: f.path, Validator: "signature", Entity: id, Message: fmt.Sprintf("signature keyId %q does not resolve to a known actor", sig.KeyID)})
				continue
			}
			pub, err := keystore.ParsePublicKeyBase64(actor.PublicKey)
			if err != nil {
				out = append(out, Result{Level: LevelError, FilePath: f.path, Validator: "signature", Entity: id, Message: "actor publicKey is malformed"})
				continue
			}
			if !keystore.Verify(pub, f.env.Header.PayloadChecksum, sig.KeyID, sig.Role, sig.Notes, sig.Timestamp, sig.Signature) {
				out = append(out, Result{Level: LevelError, FilePath: f.path, Validator: "signature", Entity: id, Message: fmt.Sprintf("signature from %q does not verify", sig.KeyID)})
			}
		}
	}
	return out
}

func (l *Linter) checkReferential(files []loadedFile) []Result {
	var out []Result
	exists := make(map[record.Type]map[string]bool)
	for _, f := range files {
		if !f.ok || f.typ == "" {
			continue
		}
		id, _ := record.PayloadID(f.env.Payload)
		if exists[f.typ] == nil {
			exists[f.typ] = make(map[string]bool)
		}
		exists[f.typ][id] = true
	}

	check := func(f loadedFile, t record.Type, ref, kind string) {
		if ref == "" || exists[t][ref] {
			return
		}
		id, _ := record.PayloadID(f.env.Payload)
		out = append(out, Result{Level: LevelError, FilePath: f.path, Validator: "referential", Entity: id, Message: fmt.Sprintf("%s references nonexistent %s %q", kind, t, ref)})
	}

	for _, f := range files {
		if !f.ok {
			continue
		}
		switch f.typ {
		case record.TypeTask:
			p, err := record.DecodePayload(record.TypeTask, f.env.Payload)
			if err != nil {
				continue
			}
			for _, c := range p.(record.TaskPayload).CycleIDs {
				check(f, record.TypeCycle, c, "task.cycleIds")
			}
		case record.TypeCycle:
			p, err := record.DecodePayload(record.TypeCycle, f.env.Payload)
			if err != nil {
				continue
			}
			for _, t := range p.(record.CyclePayload).TaskIDs {
				check(f, record.TypeTask, t, "cycle.taskIds")
			}
		case record.TypeExecution:
			p, err := record.DecodePayload(record.TypeExecution, f.env.Payload)
			if err != nil {
				continue
			}
			check(f, record.TypeTask, p.(record.ExecutionPayload).TaskID, "execution.taskId")
		case record.TypeFeedback:
			p, err := record.DecodePayload(record.TypeFeedback, f.env.Payload)
			if err != nil {
				continue
			}
			fp := p.(record.FeedbackPayload)
			check(f, record.TypeFeedback, fp.ResolvesFeedbackID, "feedback.resolvesFeedbackId")
		case record.TypeChangelog:
			p, err := record.DecodePayload(record.TypeChangelog, f.env.Payload)
			if err != nil {
				continue
			}
			for _, t := range p.(record.ChangelogPayload).RelatedTasks {
				check(f, record.TypeTask, t, "changelog.relatedTasks")
			}
		}
	}
	return out
}

func (l *Linter) checkBidirectional(files []loadedFile) []Result {
	cycleTasks := make(map[string]map[string]bool)
	taskCycles := make(map[string]map[string]bool)
	pathOf := make(map[string]string)

	for _, f := range files {
		if !f.ok {
			continue
		}
		switch f.typ {
		case record.TypeCycle:
			p, err := record.DecodePayload(record.TypeCycle, f.env.Payload)
			if err != nil {
				continue
			}
			cp := p.(record.CyclePayload)
			pathOf[cp.ID] = f.path
			cycleTasks[cp.ID] = toSet(cp.TaskIDs)
		case record.TypeTask:
			p, err := record.DecodePayload(record.TypeTask, f.env.Payload)
			if err != nil {
				continue
			}
			tp := p.(record.TaskPayload)
			pathOf[tp.ID] = f.path
			taskCycles[tp.ID] = toSet(tp.CycleIDs)
		}
	}

	var out []Result
	for cycleID, tasks := range cycleTasks {
		for taskID := range tasks {
			if !taskCycles[taskID][cycleID] {
				out = append(out, Result{Level: LevelError, FilePath: pathOf[cycleID], Validator: "bidirectional", Entity: cycleID,
					Message: fmt.Sprintf("cycle.taskIds contains %q but task.cycleIds does not contain %q back", taskID, cycleID)})
			}
		}
	}
	for taskID, cycles := range taskCycles {
		for cycleID := range cycles {
			if !cycleTasks[cycleID][taskID] {
				out = append(out, Result{Level: LevelError, FilePath: pathOf[taskID], Validator: "bidirectional", Entity: taskID,
					Message: fmt.Sprintf("task.cycleIds contains %q but cycle.taskIds does not contain %q back", cycleID, taskID)})
			}
		}
	}
	return out
}

func (l *Linter) checkNaming(files []loadedFile) []Result {
	var out []Result
	for _, f := range files {
		if !f.ok {
			continue
		}
		id, err := record.PayloadID(f.env.Payload)
		if err != nil || id == "" {
			continue
		}
		want := strings.ReplaceAll(id, ":", "_") + ".json"
		if filepath.Base(f.path) != want {
			out = append(out, Result{Level: LevelWarning, FilePath: f.path, Validator: "naming", Entity: id, Message: fmt.Sprintf("filename does not match id; expected %q", want), Fixable: true})
		}
	}
	return out
}

func (l *Linter) checkTemporal(files []loadedFile) []Result {
	now := l.Now()
	var out []Result
	for _, f := range files {
		if !f.ok {
			continue
		}
		id, _ := record.PayloadID(f.env.Payload)
		var prev int64
		for i, sig := range f.env.Header.Signatures {
			if sig.Timestamp > now {
				out = append(out, Result{Level: LevelWarning, FilePath: f.path, Validator: "temporal", Entity: id, Message: "signature timestamp is in the future"})
			}
			if i > 0 && sig.Timestamp < prev {
				out = append(out, Result{Level: LevelError, FilePath: f.path, Validator: "temporal", Entity: id, Message: "signatures are not in non-decreasing timestamp order"})
			}
			prev = sig.Timestamp
		}
	}
	return out
}

// applyFixes repairs every fixable Result whose validator is allowed by
// opts (FixValidators empty means all fixable validators), backing up
// the original file alongside it first.
func (l *Linter) applyFixes(files []loadedFile, results []Result, opts Options) []Result {
	allow := toSet(opts.FixValidators)
	byPath := make(map[string]loadedFile, len(files))
	for _, f := range files {
		byPath[f.path] = f
	}

	for i, r := range results {
		if !r.Fixable || !fixableValidators[r.Validator] {
			continue
		}
		if len(allow) > 0 && !allow[r.Validator] {
			continue
		}
		f, ok := byPath[r.FilePath]
		if !ok {
			continue
		}
		switch r.Validator {
		case "naming":
			if l.fixNaming(f) == nil {
				results[i].Message += " (fixed)"
			}
		}
	}
	return results
}

func (l *Linter) fixNaming(f loadedFile) error {
	id, err := record.PayloadID(f.env.Payload)
	if err != nil {
		return err
	}
	backup := fmt.Sprintf("%s.backup-%d.json", strings.TrimSuffix(f.path, ".json"), l.Now())
	if err := os.WriteFile(backup, f.raw, 0o600); err != nil {
		return err
	}
	want := filepath.Join(filepath.Dir(f.path), strings.ReplaceAll(id, ":", "_")+".json")
	return os.Rename(f.path, want)
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, s := range items {
		set[s] = true
	}
	return set
}

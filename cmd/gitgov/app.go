package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/gitgovernance/gitgovernance/internal/applog"
	"github.com/gitgovernance/gitgovernance/internal/backlog"
	"github.com/gitgovernance/gitgovernance/internal/changelog"
	"github.com/gitgovernance/gitgovernance/internal/config"
	"github.com/gitgovernance/gitgovernance/internal/eventbus"
	"github.com/gitgovernance/gitgovernance/internal/execution"
	"github.com/gitgovernance/gitgovernance/internal/factory"
	"github.com/gitgovernance/gitgovernance/internal/feedback"
	"github.com/gitgovernance/gitgovernance/internal/ggerr"
	"github.com/gitgovernance/gitgovernance/internal/identity"
	"github.com/gitgovernance/gitgovernance/internal/index"
	"github.com/gitgovernance/gitgovernance/internal/keystore"
	"github.com/gitgovernance/gitgovernance/internal/lint"
	"github.com/gitgovernance/gitgovernance/internal/record"
	"github.com/gitgovernance/gitgovernance/internal/sync"
)

// app bundles every wired adapter a command needs, built once per
// invocation by newApp.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	repoRoot string
	lc       *sync.Lifecycle
	schemas  *record.SchemaCache
	factory  *factory.Factory
	bus      *eventbus.Bus
	index    *index.Adapter
	identity *identity.Adapter
	backlog  *backlog.Adapter
	exec     *execution.Adapter
	feedback *feedback.Adapter
	changelog *changelog.Adapter
	lint     *lint.Linter
}

// keysDirName is the worktree-local directory sync preserves across an
// implicit pull (internal/sync's preservedOnPull list).
const keysDirName = "keys"

func clockNow() int64 { return time.Now().Unix() }

// newApp resolves configuration, opens the gitgov-state worktree and
// wires every adapter together. It does not require the worktree to
// already be initialized — commands that do (everything but `init`) check
// sync.ConfigExists themselves.
func newApp(flagOverrides *config.Config) (*app, error) {
	cfg, err := config.Load(flagOverrides)
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if cfg.Verbose {
		level = "debug"
	}
	log, err := applog.New(level, cfg.Output == "json")
	if err != nil {
		return nil, err
	}

	repoRoot, err := os.Getwd()
	if err != nil {
		return nil, ggerr.Wrap(err)
	}

	lc, err := sync.Open(repoRoot)
	if err != nil {
		return nil, err
	}

	schemas, err := record.NewSchemaCache()
	if err != nil {
		return nil, err
	}
	f := factory.New(schemas, clockNow)

	bus := eventbus.New(func(topic string, err error) {
		log.Warn("event handler failed", zap.String("topic", topic), zap.Error(err))
	})

	idx := index.New(lc.Store, lc.WorktreePath, clockNow)
	lc.Invalidator = idx

	keys := keystore.NewFileStore(filepath.Join(lc.WorktreePath, keysDirName))
	ident := identity.New(lc.Store, keys, f, lc.WorktreePath)

	return &app{
		cfg:       cfg,
		log:       log,
		repoRoot:  repoRoot,
		lc:        lc,
		schemas:   schemas,
		factory:   f,
		bus:       bus,
		index:     idx,
		identity:  ident,
		backlog:   backlog.New(lc.Store, f, bus),
		exec:      execution.New(lc.Store, f),
		feedback:  feedback.New(lc.Store, f),
		changelog: changelog.New(lc.Store, f),
		lint:      lint.New(lc.Store, schemas, lc.WorktreePath, clockNow),
	}, nil
}

// currentSigner resolves the current actor and returns a Signer under the
// configured default role, ready to pass to any adapter call.
func (a *app) currentSigner(notes string) (factory.Signer, error) {
	actorID, priv, err := a.identity.CurrentActor()
	if err != nil {
		return factory.Signer{}, err
	}
	if notes == "" {
		notes = "via gitgov CLI"
	}
	return factory.Signer{ActorID: actorID, Role: a.cfg.DefaultRole, Notes: notes, Key: priv}, nil
}

// requireInitialized fails fast with a clear message when the worktree
// hasn't been created yet — every command but `init` needs this.
func (a *app) requireInitialized() error {
	if !sync.ConfigExists(a.lc.WorktreePath) {
		return fmt.Errorf("gitgov: not initialized in this repository; run `gitgov init` first")
	}
	return nil
}

package sync

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/gitgovernance/gitgovernance/internal/ggerr"
	"github.com/gitgovernance/gitgovernance/internal/store"
)

// ConfigFileName is the project state config, written once at init and
// read (never mutated in place by ordinary operations) on every sync.
const ConfigFileName = "config.json"

// ProjectConfig is the persisted shape of .gitgov/config.json.
type ProjectConfig struct {
	Version     string `json:"version"`
	ProtocolVer string `json:"protocolVersion"`
	RootCycleID string `json:"rootCycleId"`
	BootstrapID string `json:"bootstrapActorId"`
}

// LoadConfig reads config.json from the worktree root.
func LoadConfig(worktreePath string) (ProjectConfig, error) {
	raw, err := os.ReadFile(filepath.Join(worktreePath, ConfigFileName))
	if err != nil {
		return ProjectConfig{}, ggerr.Wrap(err)
	}
	var cfg ProjectConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return ProjectConfig{}, ggerr.Wrap(err)
	}
	return cfg, nil
}

// SaveConfig atomically writes config.json.
func SaveConfig(worktreePath string, cfg ProjectConfig) error {
	if err := os.MkdirAll(worktreePath, 0o700); err != nil {
		return ggerr.Wrap(err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return ggerr.Wrap(err)
	}
	data = append(data, '\n')
	return store.AtomicWrite(filepath.Join(worktreePath, ConfigFileName), data)
}

// ConfigExists reports whether config.json is already present — the
// signal sync.Init uses to decide whether to bootstrap or no-op.
func ConfigExists(worktreePath string) bool {
	_, err := os.Stat(filepath.Join(worktreePath, ConfigFileName))
	return err == nil
}

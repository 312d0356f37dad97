package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/curately/ResearchTools-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/curately/ResearchTools-Intelligence/pkg/errors"
)

// LoadFile reads the registry YAML at path and builds a Registry.
//
// Degradation policy: a missing file is not fatal; the built-in default
// alias set is returned so the pipeline stays functional.  A file that exists
// but fails to parse or validate IS fatal: that is a configuration error, and
// silently masking it with the builtin set would hide curator mistakes.
func LoadFile(path string) (*Registry, error) {
	if path == "" {
		return MustLoadBuiltin(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return MustLoadBuiltin(), nil
	}

	src, err := parseFile(path)
	if err != nil {
		return nil, err
	}
	return Load(src)
}

// parseFile unmarshals the YAML registry source at path.
func parseFile(path string) (*Source, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRegistrySourceInvalid,
			fmt.Sprintf("failed to read registry source %q", path))
	}
	src := &Source{}
	if err := v.Unmarshal(src); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRegistrySourceInvalid,
			fmt.Sprintf("failed to unmarshal registry source %q", path))
	}
	return src, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Provider: atomic holder with optional hot reload
// ─────────────────────────────────────────────────────────────────────────────

// Provider holds the current Registry and swaps it atomically when the
// source file changes on disk.  Readers call Current on every pipeline run;
// an in-flight run keeps the registry value it started with.
type Provider struct {
	current atomic.Pointer[Registry]
	path    string
	logger  logging.Logger
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewProvider loads the registry from path (or the builtin fallback) and
// returns a Provider serving it.
func NewProvider(path string, logger logging.Logger) (*Provider, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	reg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	p := &Provider{
		path:   path,
		logger: logger.Named("registry"),
		done:   make(chan struct{}),
	}
	p.current.Store(reg)
	return p, nil
}

// Current returns the registry value in effect right now.
func (p *Provider) Current() *Registry {
	return p.current.Load()
}

// Watch starts monitoring the source file for changes.  An edited file that
// loads and validates replaces the served registry atomically; an invalid
// edit is logged and the previous registry stays in effect.  Watch is a
// no-op when the provider was built from the builtin fallback.
func (p *Provider) Watch() error {
	if p.path == "" {
		return nil
	}
	if _, err := os.Stat(p.path); os.IsNotExist(err) {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "registry: failed to create file watcher")
	}
	// Watch the directory: editors replace files via rename, which drops a
	// watch placed on the file itself.
	if err := w.Add(filepath.Dir(p.path)); err != nil {
		_ = w.Close()
		return errors.Wrap(err, errors.ErrCodeInternal, "registry: failed to watch source directory")
	}
	p.watcher = w

	go p.watchLoop()
	return nil
}

func (p *Provider) watchLoop() {
	base := filepath.Base(p.path)
	for {
		select {
		case <-p.done:
			return
		case ev, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			p.reload()
		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			p.logger.Warn("registry watcher error", logging.Err(err))
		}
	}
}

// reload re-parses the source file and swaps the registry on success.
func (p *Provider) reload() {
	reg, err := LoadFile(p.path)
	if err != nil {
		p.logger.Error("registry reload rejected, keeping previous registry",
			logging.String("path", p.path),
			logging.Err(err),
		)
		return
	}
	p.current.Store(reg)
	p.logger.Info("registry reloaded", logging.String("path", p.path))
}

// Close stops the watcher, if running.
func (p *Provider) Close() error {
	select {
	case <-p.done:
		return nil
	default:
	}
	close(p.done)
	if p.watcher != nil {
		return p.watcher.Close()
	}
	return nil
}

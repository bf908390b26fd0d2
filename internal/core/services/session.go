package services

import (
	"context"
	"fmt"
	"iter"
	"runtime/debug"
	"slices"
	"strings"

	"github.com/custodia-labs/finconnect/internal/core/domain"
	"github.com/custodia-labs/finconnect/internal/core/ports/driven"
	"github.com/custodia-labs/finconnect/internal/logger"
)

// SessionBuilder turns a source identifier and credentials into a live
// backend session.
type SessionBuilder struct {
	modules *ModuleRegistry
	factory driven.BackendFactory
}

// NewSessionBuilder creates a session builder.
func NewSessionBuilder(modules *ModuleRegistry, factory driven.BackendFactory) *SessionBuilder {
	return &SessionBuilder{
		modules: modules,
		factory: factory,
	}
}

// Build resolves the module, installs it if needed, checks the credentials
// against the fields the module declares and creates the backend.
func (b *SessionBuilder) Build(ctx context.Context, sourceID string, creds domain.CredentialBundle) (*Session, error) {
	module, err := b.modules.Resolve(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	if module.NeedsUpdate() {
		logger.Debug("Module %s %s is behind the repository (%s)", module.ID, module.InstalledVersion, module.Version)
	}

	if err := b.modules.EnsureInstalled(ctx, module); err != nil {
		return nil, err
	}

	manifest, err := b.modules.Manifest(ctx, module.ID)
	if err != nil {
		return nil, err
	}

	sessionCreds, err := applyFields(manifest.Fields, creds)
	if err != nil {
		return nil, err
	}

	cfg := driven.BackendConfig{Manifest: *manifest, Credentials: sessionCreds}
	backend, err := guardCall(module.ID, func() (driven.Backend, error) {
		return b.factory.Create(ctx, cfg)
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("Built %s backend for module %s %s", manifest.Driver, module.ID, manifest.Version)
	return &Session{module: module.ID, backend: backend}, nil
}

// applyFields validates custom fields and fills in declared defaults.
// The caller's bundle is never modified; a new one is returned.
func applyFields(keys []domain.ConfigKey, creds domain.CredentialBundle) (domain.CredentialBundle, error) {
	declared := make(map[string]bool, len(keys))
	custom := make([]domain.CustomField, 0, len(keys))

	for _, key := range keys {
		declared[key.Key] = true
		value, ok := creds.Field(key.Key)
		if !ok || value == "" {
			value = key.Default
		}
		if value == "" {
			if key.Required {
				return domain.CredentialBundle{}, domain.NewConfigError(key.Key, "missing required field %q (%s)", key.Key, fieldLabel(key))
			}
			continue
		}
		if len(key.Choices) > 0 && !slices.Contains(key.Choices, value) {
			return domain.CredentialBundle{}, domain.NewConfigError(key.Key,
				"field %q must be one of %s", key.Key, strings.Join(key.Choices, ", "))
		}
		custom = append(custom, domain.CustomField{Name: key.Key, Value: value})
	}

	for _, name := range creds.Names() {
		if name == domain.FieldLogin || name == domain.FieldPassword || declared[name] {
			continue
		}
		logger.Warn("Ignoring field %q: not declared by the module", name)
	}

	return domain.NewCredentialBundle(creds.Login(), creds.Password(), custom)
}

func fieldLabel(key domain.ConfigKey) string {
	if key.Label != "" {
		return key.Label
	}
	return key.Key
}

// Session is a live backend. Every call into the backend is guarded: a
// panic inside a module is turned into a *domain.BackendPanic error.
type Session struct {
	module  string
	backend driven.Backend
}

// Module returns the source identifier of the session.
func (s *Session) Module() string {
	return s.module
}

// Accounts iterates the accounts of the session.
func (s *Session) Accounts(ctx context.Context) iter.Seq2[domain.RawAccount, error] {
	return guardSeq(s.module, func() iter.Seq2[domain.RawAccount, error] {
		return s.backend.Accounts(ctx)
	})
}

// History iterates the transactions of one account.
func (s *Session) History(ctx context.Context, account domain.RawAccount) iter.Seq2[domain.RawTransaction, error] {
	return guardSeq(s.module, func() iter.Seq2[domain.RawTransaction, error] {
		return s.backend.History(ctx, account)
	})
}

// Close releases the backend.
func (s *Session) Close() error {
	_, err := guardCall(s.module, func() (struct{}, error) {
		return struct{}{}, s.backend.Close()
	})
	return err
}

func newBackendPanic(module string, value any) *domain.BackendPanic {
	return &domain.BackendPanic{Module: module, Value: value, Stack: debug.Stack()}
}

// guardCall runs fn and converts a panic into an error.
func guardCall[T any](module string, fn func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			result, err = zero, newBackendPanic(module, r)
		}
	}()
	return fn()
}

// guardSeq wraps a backend sequence so that a panic while producing it or
// while producing an element ends the sequence with a *domain.BackendPanic.
// Panics raised by the consumer's loop body are not intercepted.
func guardSeq[T any](module string, open func() iter.Seq2[T, error]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		seq, err := guardCall(module, func() (iter.Seq2[T, error], error) {
			return open(), nil
		})
		if err != nil {
			yield(zero, err)
			return
		}
		if seq == nil {
			yield(zero, fmt.Errorf("backend %s returned no sequence", module))
			return
		}

		var inYield, stopped bool
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			if inYield {
				panic(r)
			}
			if !stopped {
				yield(zero, newBackendPanic(module, r))
			}
		}()

		seq(func(v T, err error) bool {
			if stopped {
				return false
			}
			inYield = true
			more := yield(v, err)
			inYield = false
			if !more {
				stopped = true
			}
			return more
		})
	}
}

// Package sigreqcfg holds the host application's default signing-request
// settings (expiration defaults, default multi-chain restriction list),
// persisted the same way as the rest of the stack's config objects.
package sigreqcfg

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"

	"sigreq/sigreq/chainid"
)

// store is a JSON-file-backed settings slot, the same load/create-if-
// missing/update-then-swap shape the ambient Config[T] pattern uses
// elsewhere in this stack. It is unexported: sigreqcfg exposes only
// SettingsStore, which layers signing-request-specific validation on top
// (a bare generic slot has no way to reject a settings value that fails
// to parse under the domain it's meant for).
type store[T any] struct {
	defaultValue T
	filePath     string

	loaded bool
	value  T
}

const dataDir = "data"
const configDir = dataDir + "/config"

func newStore[T any](fileName string, defaultValue T) *store[T] {
	return &store[T]{defaultValue: defaultValue, filePath: path.Join(configDir, fileName+".json")}
}

func (s *store[T]) init(validate func(*T) error) error {
	f, err := os.Open(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			if err := s.update(func(t *T) { *t = s.defaultValue }, validate); err != nil {
				return err
			}
		} else {
			return err
		}
	} else {
		defer f.Close()
		b, err := io.ReadAll(f)
		if err != nil {
			return err
		}
		var loaded T
		if err := json.Unmarshal(b, &loaded); err != nil {
			return err
		}
		if validate != nil {
			if err := validate(&loaded); err != nil {
				return fmt.Errorf("sigreqcfg: %s: %w", s.filePath, err)
			}
		}
		s.value = loaded
	}
	s.loaded = true
	return nil
}

func (s *store[T]) get() T { return s.value }

func (s *store[T]) update(updater func(*T), validate func(*T) error) error {
	temp := s.value
	updater(&temp)
	if validate != nil {
		if err := validate(&temp); err != nil {
			return fmt.Errorf("sigreqcfg: %s: %w", s.filePath, err)
		}
	}
	b, err := json.MarshalIndent(temp, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(path.Dir(s.filePath), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(s.filePath, b, 0644); err != nil {
		return err
	}
	s.value = temp
	return nil
}

// Settings is the host application's tunable defaults for building and
// resolving signing requests.
type Settings struct {
	// ExpireSeconds is the host's default TAPoS expiration window, for it
	// to pass to NewBlockTaposContext (spec §4.5 step 2's "default 60");
	// the sigreq package does not read it on its own. Values below
	// minExpireSeconds, zero included, are rejected on load: zero would
	// otherwise pass silently through to a resolver, which treats zero as
	// "use the default" rather than "expire immediately".
	ExpireSeconds uint32 `json:"expire_seconds"`
	// DefaultChainIdsHex is the host's default multi-chain restriction
	// list as hex-encoded ids, for it to pass to Descriptor.ChainIds or
	// Request.SetChainIds; the builder does not apply it on its own.
	DefaultChainIdsHex []string `json:"default_chain_ids"`
}

// DefaultSettings is the fallback Settings value used until a host
// application's own config file is loaded.
var DefaultSettings = Settings{ExpireSeconds: 60}

// minExpireSeconds guards against a config file that would make every
// built request expire before a wallet could plausibly sign it.
const minExpireSeconds = 5

func validateSettings(s *Settings) error {
	if s.ExpireSeconds < minExpireSeconds {
		return fmt.Errorf("expire_seconds must be at least %d, got %d", minExpireSeconds, s.ExpireSeconds)
	}
	for _, h := range s.DefaultChainIdsHex {
		if _, err := chainid.FromHex(h); err != nil {
			return fmt.Errorf("default_chain_ids entry %q: %w", h, err)
		}
	}
	return nil
}

// SettingsStore is the JSON-file-backed holder of the host application's
// Settings, validating every load and update: a config file with an
// unusably small expire_seconds or a malformed chain id in
// default_chain_ids is rejected rather than silently accepted and handed
// to the resolver later.
type SettingsStore struct {
	s *store[Settings]
}

// New returns a SettingsStore that falls back to defaultValue until Init
// loads (or creates) its backing file.
func New(defaultValue Settings) *SettingsStore {
	return &SettingsStore{s: newStore("Settings", defaultValue)}
}

// Init loads the backing file, writing defaultValue to it first if it
// does not yet exist, and validates whatever settings end up loaded.
func (c *SettingsStore) Init() error {
	return c.s.init(validateSettings)
}

// Get returns the current settings.
func (c *SettingsStore) Get() Settings { return c.s.get() }

// Update applies updater to a copy of the current settings, validates the
// result, persists it, and only then swaps it in.
func (c *SettingsStore) Update(updater func(*Settings)) error {
	return c.s.update(updater, validateSettings)
}

// ChainIds parses DefaultChainIdsHex into concrete chain ids. It never
// fails at call time: validateSettings already rejected any malformed
// entry when the settings were loaded or last updated.
func (c *SettingsStore) ChainIds() []chainid.ChainId {
	settings := c.s.get()
	out := make([]chainid.ChainId, 0, len(settings.DefaultChainIdsHex))
	for _, h := range settings.DefaultChainIdsHex {
		id, err := chainid.FromHex(h)
		if err != nil {
			// unreachable: validateSettings already parsed this entry.
			continue
		}
		out = append(out, id)
	}
	return out
}

package auth

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/zalando/go-keyring"
)

const serviceName = "gdmirror"

// Manager handles credential profile storage
type Manager struct {
	configDir      string
	useKeyring     bool
	storage        StorageBackend
	storageWarning string
}

// NewManager creates a new auth manager, preferring the system keyring and
// falling back to plain files when no keyring is reachable.
func NewManager(configDir string) *Manager {
	mgr := &Manager{configDir: configDir}

	if checkKeyringAvailable() {
		mgr.storage = NewKeyringStorage(serviceName)
		mgr.useKeyring = true
	} else {
		mgr.storage = NewPlainFileStorage(configDir)
		mgr.storageWarning = "WARNING: System keyring unavailable. Credentials are stored in plain text."
	}

	return mgr
}

// checkKeyringAvailable probes the system keyring with a throwaway entry
func checkKeyringAvailable() bool {
	const testKey = "gdmirror-keyring-test"
	if err := keyring.Set(serviceName, testKey, "test"); err != nil {
		return false
	}
	_ = keyring.Delete(serviceName, testKey)
	return true
}

// StorageWarning returns a non-empty string when a degraded backend is in use
func (m *Manager) StorageWarning() string {
	return m.storageWarning
}

// StorageName returns the name of the active storage backend
func (m *Manager) StorageName() string {
	return m.storage.Name()
}

// SaveProfile validates and stores key material under a profile name
func (m *Manager) SaveProfile(profile string, keyData []byte) error {
	if profile == "" {
		return fmt.Errorf("profile name required")
	}
	if _, err := ParseKey(keyData); err != nil {
		return err
	}
	if err := m.storage.Save(profile, keyData); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	return m.addProfileToList(profile)
}

// LoadProfile retrieves key material stored under a profile name
func (m *Manager) LoadProfile(profile string) ([]byte, error) {
	return m.storage.Load(profile)
}

// DeleteProfile removes a stored profile
func (m *Manager) DeleteProfile(profile string) error {
	if err := m.storage.Delete(profile); err != nil {
		return err
	}
	return m.removeProfileFromList(profile)
}

// ListProfiles lists all stored credential profiles
func (m *Manager) ListProfiles() ([]string, error) {
	if m.useKeyring {
		// Keyring entries cannot be enumerated; track names in a side file.
		return m.readProfileList()
	}

	credDir := filepath.Join(m.configDir, "credentials")
	entries, err := os.ReadDir(credDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	var profiles []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if ext := filepath.Ext(name); ext == ".json" {
			profiles = append(profiles, name[:len(name)-len(ext)])
		}
	}
	return profiles, nil
}

func (m *Manager) profileListPath() string {
	return filepath.Join(m.configDir, "profiles")
}

func (m *Manager) readProfileList() ([]string, error) {
	data, err := os.ReadFile(m.profileListPath())
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	var profiles []string
	for _, line := range splitLines(string(data)) {
		if line != "" {
			profiles = append(profiles, line)
		}
	}
	return profiles, nil
}

func (m *Manager) writeProfileList(profiles []string) error {
	if err := os.MkdirAll(m.configDir, 0700); err != nil {
		return err
	}
	content := ""
	for _, p := range profiles {
		content += p + "\n"
	}
	return os.WriteFile(m.profileListPath(), []byte(content), 0600)
}

func (m *Manager) addProfileToList(profile string) error {
	if !m.useKeyring {
		return nil
	}
	profiles, err := m.readProfileList()
	if err != nil {
		return err
	}
	for _, p := range profiles {
		if p == profile {
			return nil
		}
	}
	return m.writeProfileList(append(profiles, profile))
}

func (m *Manager) removeProfileFromList(profile string) error {
	if !m.useKeyring {
		return nil
	}
	profiles, err := m.readProfileList()
	if err != nil {
		return err
	}
	var updated []string
	for _, p := range profiles {
		if p != profile {
			updated = append(updated, p)
		}
	}
	return m.writeProfileList(updated)
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

package auth

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPlainFileStorage(t *testing.T) {
	tmpDir := t.TempDir()

	storage := NewPlainFileStorage(tmpDir)
	testData := []byte(`{"type":"service_account","client_email":"a@b.c"}`)

	if err := storage.Save("test-profile", testData); err != nil {
		t.Errorf("Save failed: %v", err)
	}

	credFile := filepath.Join(tmpDir, "credentials", "test-profile.json")
	if _, err := os.Stat(credFile); err != nil {
		t.Errorf("credential file missing: %v", err)
	}

	loaded, err := storage.Load("test-profile")
	if err != nil {
		t.Errorf("Load failed: %v", err)
	}
	if string(loaded) != string(testData) {
		t.Errorf("Loaded data doesn't match. Got: %s, Want: %s", string(loaded), string(testData))
	}

	if err := storage.Delete("test-profile"); err != nil {
		t.Errorf("Delete failed: %v", err)
	}
	if _, err := os.Stat(credFile); !os.IsNotExist(err) {
		t.Error("File was not deleted")
	}
}

func TestPlainFileStorageMissingProfile(t *testing.T) {
	storage := NewPlainFileStorage(t.TempDir())
	if _, err := storage.Load("nope"); err == nil {
		t.Error("expected error for missing profile")
	}
}

func TestManagerListProfilesPlainFile(t *testing.T) {
	tmpDir := t.TempDir()

	mgr := &Manager{configDir: tmpDir, storage: NewPlainFileStorage(tmpDir)}

	profiles, err := mgr.ListProfiles()
	if err != nil {
		t.Fatalf("ListProfiles failed: %v", err)
	}
	if len(profiles) != 0 {
		t.Errorf("Expected 0 profiles, got %d", len(profiles))
	}

	for _, name := range []string{"profile1", "profile2"} {
		if err := mgr.storage.Save(name, []byte(`{}`)); err != nil {
			t.Fatalf("Failed to save credentials: %v", err)
		}
	}

	profiles, err = mgr.ListProfiles()
	if err != nil {
		t.Fatalf("ListProfiles failed: %v", err)
	}
	if len(profiles) != 2 {
		t.Errorf("Expected 2 profiles, got %d", len(profiles))
	}

	profileMap := make(map[string]bool)
	for _, p := range profiles {
		profileMap[p] = true
	}
	if !profileMap["profile1"] || !profileMap["profile2"] {
		t.Errorf("Missing expected profiles. Got: %v", profiles)
	}
}

func TestManagerSaveValidatesKey(t *testing.T) {
	tmpDir := t.TempDir()
	mgr := &Manager{configDir: tmpDir, storage: NewPlainFileStorage(tmpDir)}

	if err := mgr.SaveProfile("bad", []byte("not a key")); err == nil {
		t.Error("expected validation error for garbage key material")
	}
	if err := mgr.SaveProfile("", []byte(testKeyJSON)); err == nil {
		t.Error("expected error for empty profile name")
	}
	if err := mgr.SaveProfile("good", []byte(testKeyJSON)); err != nil {
		t.Errorf("SaveProfile failed: %v", err)
	}

	loaded, err := mgr.LoadProfile("good")
	if err != nil {
		t.Fatalf("LoadProfile failed: %v", err)
	}
	if string(loaded) != testKeyJSON {
		t.Error("round trip mismatch")
	}
}

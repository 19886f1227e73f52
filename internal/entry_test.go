package internal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/crmai/internal/crm"
	"github.com/starford/crmai/internal/persist"
	"github.com/starford/crmai/internal/testutil"
)

func TestOpenStoreDrivers(t *testing.T) {
	for _, driver := range []string{DriverFS, DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			cfg := NewDefaultConfig()
			cfg.Storage.Driver = driver
			cfg.Storage.Path = filepath.Join(t.TempDir(), "data")

			b, err := OpenStore(cfg, testutil.Logger())
			if err != nil {
				t.Fatalf("OpenStore: %v", err)
			}
			if n := len(b.Store.ListContacts()); n != 5 {
				t.Errorf("demo contacts = %d", n)
			}
			if _, err := b.Store.AddTask(crm.TaskInput{Text: "Relancer"}); err != nil {
				t.Fatalf("AddTask: %v", err)
			}
			if err := b.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}

			b, err = OpenStore(cfg, testutil.Logger())
			if err != nil {
				t.Fatalf("reopen: %v", err)
			}
			defer b.Close()
			if n := len(b.Store.ListTasks(false)); n != 5 {
				t.Errorf("tasks after reopen = %d", n)
			}
			if (b.fs != nil) != (driver == DriverFS) {
				t.Errorf("fs handle = %v for %s", b.fs, driver)
			}
		})
	}
}

func TestOpenStoreWithoutDemo(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Storage.Path = t.TempDir()
	cfg.Seed.Demo = false

	b, err := OpenStore(cfg, testutil.Logger())
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	defer b.Close()
	if n := len(b.Store.ListContacts()); n != 0 {
		t.Errorf("contacts = %d, want empty", n)
	}
}

func TestOpenStoreCorruptDataFallsBack(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, persist.KeyData+".json"), []byte("{broken"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg := NewDefaultConfig()
	cfg.Storage.Path = dir

	b, err := OpenStore(cfg, testutil.Logger())
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	defer b.Close()
	if n := len(b.Store.ListContacts()); n != 5 {
		t.Errorf("contacts = %d, want demo defaults", n)
	}
}

func TestRunRequiresConfig(t *testing.T) {
	if err := Run(t.Context()); !errors.Is(err, errConfigRequired) {
		t.Fatalf("err = %v", err)
	}
}

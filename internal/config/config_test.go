package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestIndexPath_Default(t *testing.T) {
	viper.Reset()
	t.Setenv("HOME", t.TempDir())

	got := IndexPath()
	if !strings.HasSuffix(got, filepath.Join(".dcx", "devcontainer-index.json")) {
		t.Errorf("IndexPath = %q, want it under the home dot directory", got)
	}
}

func TestSetAndLoadRoundTrip(t *testing.T) {
	viper.Reset()
	home := t.TempDir()
	t.Setenv("HOME", home)

	custom := filepath.Join(home, "elsewhere", "index.json")
	if err := Set("index.path", custom); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	// A fresh process would read the value back from the file.
	viper.Reset()
	Load()
	if got := IndexPath(); got != custom {
		t.Errorf("IndexPath = %q, want %q", got, custom)
	}
}

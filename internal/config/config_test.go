package config

import (
	"path/filepath"
	"testing"
)

func testFiles(t *testing.T) *Files {
	dir := t.TempDir()
	return &Files{
		Dir:       dir,
		RelayPath: filepath.Join(dir, "relay"),
		KeyPath:   filepath.Join(dir, "key"),
	}
}

func TestMissingWhenNeitherFileExists(t *testing.T) {
	f := testFiles(t)
	if !f.Missing() {
		t.Fatal("expected Missing to be true with no files written")
	}
}

func TestWriteThenLoadRelaysRoundTrip(t *testing.T) {
	f := testFiles(t)
	urls := []string{"wss://relay.one", "wss://relay.two"}
	if err := f.WriteRelays(urls); err != nil {
		t.Fatalf("WriteRelays: %v", err)
	}
	got, err := f.LoadRelays()
	if err != nil {
		t.Fatalf("LoadRelays: %v", err)
	}
	if len(got) != 2 || got[0] != urls[0] || got[1] != urls[1] {
		t.Fatalf("expected %v, got %v", urls, got)
	}
}

func TestLoadRelaysMissingFileIsEmptyNotError(t *testing.T) {
	f := testFiles(t)
	got, err := f.LoadRelays()
	if err != nil {
		t.Fatalf("expected no error for a missing relay file, got %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty relay list, got %v", got)
	}
}

func TestWriteThenLoadKeyRoundTrip(t *testing.T) {
	f := testFiles(t)
	if err := f.WriteKey("nsec1exampleblah"); err != nil {
		t.Fatalf("WriteKey: %v", err)
	}
	got, err := f.LoadKey()
	if err != nil {
		t.Fatalf("LoadKey: %v", err)
	}
	if got != "nsec1exampleblah" {
		t.Fatalf("expected key round trip, got %q", got)
	}
}

func TestMissingFalseOnceBothFilesWritten(t *testing.T) {
	f := testFiles(t)
	if err := f.WriteRelays([]string{"wss://relay.one"}); err != nil {
		t.Fatal(err)
	}
	if err := f.WriteKey("nsec1x"); err != nil {
		t.Fatal(err)
	}
	if f.Missing() {
		t.Fatal("expected Missing to be false once both files exist")
	}
}

func TestLoadSettingsDefaultsWithoutFile(t *testing.T) {
	dir := t.TempDir()
	s, err := LoadSettings(dir)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.UndoWindow.Seconds() != 60 {
		t.Fatalf("expected default 60s undo window, got %v", s.UndoWindow)
	}
	if s.ViewDepth != 1 {
		t.Fatalf("expected default view depth 1, got %d", s.ViewDepth)
	}
	if len(s.Columns) != 4 {
		t.Fatalf("expected 4 default columns, got %v", s.Columns)
	}
}

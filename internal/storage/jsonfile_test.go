package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// TestSaveLoadRoundTrip.
func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")

	in := map[string]payload{"a": {Name: "first", Count: 2}}
	if err := Save(path, in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out := make(map[string]payload)
	if err := Load(path, &out); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out["a"] != in["a"] {
		t.Fatalf("round trip mismatch: %+v vs %+v", out, in)
	}
}

// TestLoadMissing: отсутствующий файл — os.ErrNotExist, вызывающий код
// трактует это как пустое состояние.
func TestLoadMissing(t *testing.T) {
	var out map[string]payload
	err := Load(filepath.Join(t.TempDir(), "nope.json"), &out)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}

// TestLoadEmptyFile: пустой файл эквивалентен пустому объекту.
func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	out := make(map[string]payload)
	if err := Load(path, &out); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty map, got %+v", out)
	}
}

// TestLoadMalformed: мусор в файле — ошибка разбора.
func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{{{"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var out map[string]payload
	if err := Load(path, &out); err == nil {
		t.Fatal("expected parse error")
	}
}

// TestSaveReplacesWholeFile: перезапись не оставляет временных файлов
// и полностью заменяет старое содержимое.
func TestSaveReplacesWholeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")

	if err := Save(path, map[string]payload{"old": {Name: "old"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := Save(path, map[string]payload{"new": {Name: "new"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if strings.Contains(string(data), "old") {
		t.Fatalf("stale content survived: %s", data)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

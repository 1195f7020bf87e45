package mapfile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeMap(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOpen_Success(t *testing.T) {
	path := writeMap(t, "Kobra.map", Build(4, []ItemType{
		{Type: ItemTypeVersion, Num: 1},
		{Type: ItemTypeInfo, Start: 1, Num: 1},
		{Type: ItemTypeGroup, Start: 2, Num: 2},
		{Type: ItemTypeLayer, Start: 4, Num: 5},
	}))

	m, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if m.Name != "Kobra" {
		t.Errorf("Name = %q, want %q", m.Name, "Kobra")
	}
	if m.Version() != 4 {
		t.Errorf("Version() = %d, want 4", m.Version())
	}
	if got := m.ItemCount(ItemTypeLayer); got != 5 {
		t.Errorf("ItemCount(layer) = %d, want 5", got)
	}
	if m.HasItemType(ItemTypeSound) {
		t.Error("HasItemType(sound) = true, want false")
	}
	if m.Header.NumItems != 9 {
		t.Errorf("NumItems = %d, want 9", m.Header.NumItems)
	}
	if len(m.Checksum) != 64 {
		t.Errorf("Checksum length = %d, want 64", len(m.Checksum))
	}

	facts := m.Facts()
	if facts["layers"] != int64(5) {
		t.Errorf("facts[layers] = %v, want 5", facts["layers"])
	}
}

func TestOpen_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantMsg string
	}{
		{
			name:    "too short",
			data:    []byte("DATA"),
			wantMsg: "too short",
		},
		{
			name:    "bad signature",
			data:    append([]byte("XXXX"), make([]byte, 32)...),
			wantMsg: "bad signature",
		},
		{
			name:    "unsupported version",
			data:    Build(7, nil),
			wantMsg: "unsupported datafile version",
		},
		{
			name: "truncated item table",
			data: func() []byte {
				b := Build(4, []ItemType{{Type: ItemTypeLayer, Num: 1}})
				return b[:HeaderSize+4]
			}(),
			wantMsg: "exceeds file size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeMap(t, "broken.map", tt.data)
			_, err := Open(path)
			if err == nil {
				t.Fatal("Open() error = nil, want error")
			}

			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("Open() error type = %T, want *FormatError", err)
			}
			if !strings.Contains(fe.Message, tt.wantMsg) {
				t.Errorf("Message = %q, want to contain %q", fe.Message, tt.wantMsg)
			}
		})
	}
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.map"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Open() error = %v, want os.ErrNotExist in chain", err)
	}
}

package mapfile

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// HeaderSize is the size in bytes of the fixed datafile header.
const HeaderSize = 36

// itemTypeSize is the size in bytes of one item type table entry.
const itemTypeSize = 12

// MaxFileSize is the largest datafile Open will read.
const MaxFileSize = 64 * 1024 * 1024

// Item type identifiers used by map datafiles.
const (
	ItemTypeVersion   = 0
	ItemTypeInfo      = 1
	ItemTypeImage     = 2
	ItemTypeEnvelope  = 3
	ItemTypeGroup     = 4
	ItemTypeLayer     = 5
	ItemTypeEnvPoints = 6
	ItemTypeSound     = 7
	ItemTypeUUIDIndex = 0xffff
)

var itemTypeNames = map[int]string{
	ItemTypeVersion:   "version",
	ItemTypeInfo:      "info",
	ItemTypeImage:     "image",
	ItemTypeEnvelope:  "envelope",
	ItemTypeGroup:     "group",
	ItemTypeLayer:     "layer",
	ItemTypeEnvPoints: "envpoints",
	ItemTypeSound:     "sound",
	ItemTypeUUIDIndex: "uuid_index",
}

// ItemTypeName returns a readable name for an item type id.
func ItemTypeName(typ int) string {
	if name, ok := itemTypeNames[typ]; ok {
		return name
	}
	return fmt.Sprintf("type %d", typ)
}

var (
	signature        = []byte("DATA")
	signatureSwapped = []byte("ATAD")
)

// Header is the fixed datafile header.
type Header struct {
	Version      int32
	Size         int32
	SwapLen      int32
	NumItemTypes int32
	NumItems     int32
	NumRawData   int32
	ItemSize     int32
	DataSize     int32
}

// ItemType is one entry of the item type table.
type ItemType struct {
	Type  int32
	Start int32
	Num   int32
}

// Map is the in-memory representation of a map datafile.
type Map struct {
	// Path is the location the map was read from
	Path string

	// Name is the file name without directory and extension
	Name string

	// Size is the file size in bytes
	Size int64

	// Checksum is the hex encoded SHA-256 of the file contents
	Checksum string

	Header    Header
	ItemTypes []ItemType

	raw []byte
}

// Open reads and decodes the datafile at path.
func Open(path string) (*Map, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &FormatError{Path: path, Offset: -1, Message: "failed to access file", Cause: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &FormatError{Path: path, Offset: -1, Message: "not a regular file"}
	}
	if info.Size() > MaxFileSize {
		return nil, &FormatError{
			Path:    path,
			Offset:  -1,
			Message: fmt.Sprintf("file size %d bytes exceeds maximum %d bytes", info.Size(), MaxFileSize),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FormatError{Path: path, Offset: -1, Message: "failed to read file", Cause: err}
	}
	return Decode(path, data)
}

// Decode parses datafile contents that were already read from path.
func Decode(path string, data []byte) (*Map, error) {
	if len(data) < HeaderSize {
		return nil, &FormatError{Path: path, Offset: int64(len(data)), Message: "file too short for datafile header"}
	}

	sig := data[:4]
	if !bytes.Equal(sig, signature) && !bytes.Equal(sig, signatureSwapped) {
		return nil, &FormatError{Path: path, Offset: 0, Message: fmt.Sprintf("bad signature %q", sig)}
	}

	var h Header
	if err := binary.Read(bytes.NewReader(data[4:HeaderSize]), binary.LittleEndian, &h); err != nil {
		return nil, &FormatError{Path: path, Offset: 4, Message: "failed to decode header", Cause: err}
	}
	if h.Version != 3 && h.Version != 4 {
		return nil, &FormatError{Path: path, Offset: 4, Message: fmt.Sprintf("unsupported datafile version %d", h.Version)}
	}
	if h.NumItemTypes < 0 || h.NumItems < 0 || h.NumRawData < 0 || h.ItemSize < 0 || h.DataSize < 0 {
		return nil, &FormatError{Path: path, Offset: 16, Message: "negative header counts"}
	}

	tableEnd := int64(HeaderSize) + int64(h.NumItemTypes)*itemTypeSize
	if tableEnd > int64(len(data)) {
		return nil, &FormatError{Path: path, Offset: HeaderSize, Message: "item type table exceeds file size"}
	}

	types := make([]ItemType, h.NumItemTypes)
	if err := binary.Read(bytes.NewReader(data[HeaderSize:tableEnd]), binary.LittleEndian, types); err != nil {
		return nil, &FormatError{Path: path, Offset: HeaderSize, Message: "failed to decode item types", Cause: err}
	}

	sum := sha256.Sum256(data)
	base := filepath.Base(path)

	return &Map{
		Path:      path,
		Name:      strings.TrimSuffix(base, filepath.Ext(base)),
		Size:      int64(len(data)),
		Checksum:  hex.EncodeToString(sum[:]),
		Header:    h,
		ItemTypes: types,
		raw:       data,
	}, nil
}

// Version returns the datafile format version.
func (m *Map) Version() int {
	return int(m.Header.Version)
}

// ItemCount returns the number of items of the given type.
func (m *Map) ItemCount(typ int) int {
	for _, t := range m.ItemTypes {
		if int(t.Type) == typ {
			return int(t.Num)
		}
	}
	return 0
}

// HasItemType reports whether at least one item of typ is present.
func (m *Map) HasItemType(typ int) bool {
	return m.ItemCount(typ) > 0
}

// Bytes returns the raw file contents. The slice must not be modified.
func (m *Map) Bytes() []byte {
	return m.raw
}

// Facts returns a flat description of the map suitable for expression
// evaluation and reporting.
func (m *Map) Facts() map[string]any {
	counts := make(map[string]any, len(m.ItemTypes))
	for _, t := range m.ItemTypes {
		counts[fmt.Sprintf("%d", t.Type)] = int64(t.Num)
	}
	return map[string]any{
		"path":        m.Path,
		"name":        m.Name,
		"size":        m.Size,
		"checksum":    m.Checksum,
		"version":     int64(m.Header.Version),
		"items":       int64(m.Header.NumItems),
		"raw_data":    int64(m.Header.NumRawData),
		"item_types":  int64(m.Header.NumItemTypes),
		"item_counts": counts,
		"layers":      int64(m.ItemCount(ItemTypeLayer)),
		"groups":      int64(m.ItemCount(ItemTypeGroup)),
		"images":      int64(m.ItemCount(ItemTypeImage)),
		"envelopes":   int64(m.ItemCount(ItemTypeEnvelope)),
		"sounds":      int64(m.ItemCount(ItemTypeSound)),
	}
}

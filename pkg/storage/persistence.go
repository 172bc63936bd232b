package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"sort"

	"github.com/golang/snappy"
)

// Snapshot file format:
//
//	[magic:4]["OGS1"][PayloadLen:4][Payload:N][Checksum:4]
//
// Payload is a snappy-compressed JSON document; the checksum is crc32 (IEEE)
// over the compressed payload.
var snapshotMagic = [4]byte{'O', 'G', 'S', '1'}

type snapshotDoc struct {
	GenerationID string `json:"generation_id"`
	SavedAt      int64  `json:"saved_at"`
	Nodes        []Node `json:"nodes"`
	Edges        []Edge `json:"edges"`
}

// saveSnapshot writes a generation to path via a temp file + atomic rename.
func saveSnapshot(path string, g *generation) error {
	doc := snapshotDoc{
		GenerationID: g.id,
		SavedAt:      g.createdAt,
		Nodes:        make([]Node, 0, len(g.nodes)),
		Edges:        make([]Edge, 0, len(g.edges)),
	}
	for _, n := range g.nodes {
		doc.Nodes = append(doc.Nodes, *n)
	}
	sort.Slice(doc.Nodes, func(a, b int) bool { return doc.Nodes[a].ID < doc.Nodes[b].ID })
	for _, e := range g.edges {
		doc.Edges = append(doc.Edges, *e)
	}
	sort.Slice(doc.Edges, func(a, b int) bool { return doc.Edges[a].ID < doc.Edges[b].ID })

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	compressed := snappy.Encode(nil, raw)

	buf := make([]byte, 0, 12+len(compressed))
	buf = append(buf, snapshotMagic[:]...)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(compressed)))
	buf = append(buf, compressed...)
	buf = binary.BigEndian.AppendUint32(buf, crc32.ChecksumIEEE(compressed))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, buf, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}

// loadSnapshot reads a snapshot from path. A missing file returns (nil, nil).
func loadSnapshot(path string) (*snapshotDoc, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if len(buf) < 12 {
		return nil, fmt.Errorf("snapshot too short: %d bytes", len(buf))
	}
	if [4]byte(buf[:4]) != snapshotMagic {
		return nil, fmt.Errorf("bad snapshot magic")
	}
	payloadLen := binary.BigEndian.Uint32(buf[4:8])
	if len(buf) != int(12+payloadLen) {
		return nil, fmt.Errorf("snapshot length mismatch: header says %d payload bytes, file has %d", payloadLen, len(buf)-12)
	}
	compressed := buf[8 : 8+payloadLen]
	checksum := binary.BigEndian.Uint32(buf[8+payloadLen:])
	if crc32.ChecksumIEEE(compressed) != checksum {
		return nil, fmt.Errorf("snapshot checksum mismatch")
	}

	raw, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot: %w", err)
	}
	var doc snapshotDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &doc, nil
}

// Package replay reads and writes session logs: one JSON header line with
// the pipeline configuration, then one JSON line per frame with the raw
// inputs. A logged session can be re-run offline, bit for bit, because the
// pipeline is deterministic once its inputs and tracker are fixed.
package replay

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/cyclopcam/logs"
	"github.com/googleinterns/instant-motion-tracking/pkg/pose"
)

const sessionLogVersion = 1

// Header is the first line of a session log.
type Header struct {
	Version    int             `json:"version"`
	StartedAt  int64           `json:"startedAt"` // unix milliseconds
	Intrinsics pose.Intrinsics `json:"intrinsics"`
	BoxEdge    float32         `json:"boxEdge"`
	RefDepth   float32         `json:"refDepth"`
}

// Record is one frame of inputs: the sticker wire message and the device
// rotation, row-major. A zero orientation means identity.
type Record struct {
	PTS         int64      `json:"pts"`
	Message     string     `json:"message"`
	Orientation [9]float32 `json:"orientation"`
}

// DeviceOrientation decodes the recorded rotation, treating the zero
// matrix as identity.
func (r *Record) DeviceOrientation() pose.Orientation {
	if r.Orientation == ([9]float32{}) {
		return pose.IdentityOrientation()
	}
	return pose.OrientationFromMatrix(r.Orientation)
}

// Writer appends session log records to a file.
type Writer struct {
	log logs.Log
	f   *os.File
	bw  *bufio.Writer
	enc *json.Encoder
	n   int
}

func NewWriter(log logs.Log, filename string, header Header) (*Writer, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("Failed to create session log %v: %w", filename, err)
	}
	w := &Writer{
		log: log,
		f:   f,
		bw:  bufio.NewWriter(f),
	}
	w.enc = json.NewEncoder(w.bw)
	header.Version = sessionLogVersion
	if err := w.enc.Encode(&header); err != nil {
		f.Close()
		return nil, fmt.Errorf("Failed to write session log header: %w", err)
	}
	return w, nil
}

func (w *Writer) Write(rec *Record) error {
	if err := w.enc.Encode(rec); err != nil {
		return fmt.Errorf("Failed to write session log record: %w", err)
	}
	w.n++
	return nil
}

func (w *Writer) Close() error {
	err := w.bw.Flush()
	if err2 := w.f.Close(); err == nil {
		err = err2
	}
	w.log.Infof("Session log %v closed with %v frames", w.f.Name(), w.n)
	return err
}

// ReadFile loads an entire session log. Sessions are small (one line per
// frame), so there is no streaming reader.
func ReadFile(filename string) (Header, []Record, error) {
	header := Header{}
	f, err := os.Open(filename)
	if err != nil {
		return header, nil, fmt.Errorf("Failed to open session log %v: %w", filename, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	if !sc.Scan() {
		return header, nil, fmt.Errorf("Session log %v is empty", filename)
	}
	if err := json.Unmarshal(sc.Bytes(), &header); err != nil {
		return header, nil, fmt.Errorf("Failed to parse session log header: %w", err)
	}
	if header.Version != sessionLogVersion {
		return header, nil, fmt.Errorf("Session log version %v not supported (want %v)", header.Version, sessionLogVersion)
	}

	records := []Record{}
	for sc.Scan() {
		if len(sc.Bytes()) == 0 {
			continue
		}
		rec := Record{}
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			return header, nil, fmt.Errorf("Failed to parse session log record %v: %w", len(records), err)
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return header, nil, fmt.Errorf("Failed to read session log %v: %w", filename, err)
	}
	return header, records, nil
}

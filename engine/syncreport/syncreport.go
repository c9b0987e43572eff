// Package syncreport records per-tick state digests so two lockstep peers
// can find the first tick where they disagreed.
package syncreport

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/1siamBot/rts-pathfinder/engine/sim"
)

// Record is the digest set for one tick
type Record struct {
	Tick      uint64 `msgpack:"tick"`
	Buildings string `msgpack:"buildings"`
	Units     string `msgpack:"units"`
	World     string `msgpack:"world"`
}

// Capture digests w as it stands now
func Capture(w *sim.World) Record {
	return Record{
		Tick:      w.CurrentTick(),
		Buildings: w.Buildings.Digest(),
		Units:     w.Units.Digest(),
		World:     w.Digest(),
	}
}

// Diff names the parts of two records that differ
func Diff(a, b Record) []string {
	var out []string
	if a.Tick != b.Tick {
		out = append(out, "tick")
	}
	if a.Buildings != b.Buildings {
		out = append(out, "buildings")
	}
	if a.Units != b.Units {
		out = append(out, "units")
	}
	if a.World != b.World {
		out = append(out, "world")
	}
	return out
}

// Recorder streams records as msgpack inside a zstd frame
type Recorder struct {
	file *os.File
	zw   *zstd.Encoder
	bw   *bufio.Writer
	enc  *msgpack.Encoder
	n    int
}

// NewRecorder writes to w. Close must be called to flush the frame.
func NewRecorder(w io.Writer) (*Recorder, error) {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, err
	}
	bw := bufio.NewWriterSize(zw, 64*1024)
	return &Recorder{zw: zw, bw: bw, enc: msgpack.NewEncoder(bw)}, nil
}

// Create records to a new file at path
func Create(path string) (*Recorder, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	r, err := NewRecorder(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	r.file = f
	return r, nil
}

// Record appends one record
func (r *Recorder) Record(rec Record) error {
	if err := r.enc.Encode(&rec); err != nil {
		return fmt.Errorf("sync record tick %d: %w", rec.Tick, err)
	}
	r.n++
	return nil
}

// Len returns the number of records written
func (r *Recorder) Len() int { return r.n }

// Close flushes the stream and closes the file, if any
func (r *Recorder) Close() error {
	err := r.bw.Flush()
	if cerr := r.zw.Close(); err == nil {
		err = cerr
	}
	if r.file != nil {
		if cerr := r.file.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Load reads every record from a stream written by a Recorder
func Load(r io.Reader) ([]Record, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	dec := msgpack.NewDecoder(bufio.NewReaderSize(zr, 64*1024))
	var out []Record
	for {
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return out, fmt.Errorf("sync record %d: %w", len(out), err)
		}
		out = append(out, rec)
	}
}

// LoadFile reads a sync report file
func LoadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	recs, err := Load(f)
	if err != nil {
		return recs, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}

// FirstDivergence returns the tick of the first record where a and b
// disagree. A report that stops early diverges at its first missing tick.
func FirstDivergence(a, b []Record) (uint64, bool) {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return min(a[i].Tick, b[i].Tick), true
		}
	}
	switch {
	case len(a) > n:
		return a[n].Tick, true
	case len(b) > n:
		return b[n].Tick, true
	}
	return 0, false
}

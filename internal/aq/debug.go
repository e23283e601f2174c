package aq

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/deepteams/jxl/internal/imagef"
)

// DebugSink receives diagnostic output from the quant-field search.
type DebugSink interface {
	// Logf records one formatted line of search state.
	Logf(format string, args ...interface{})
	// DumpPlane stores a labeled float plane for the given scoring pass.
	DumpPlane(label string, iter int, p *imagef.Plane) error
}

// DebugOptions selects which diagnostics the search emits. The zero value
// is silent.
type DebugOptions struct {
	// LogSearchState logs the score, field range and DC quant each pass.
	LogSearchState bool
	// DumpQuantState logs the full quant field each pass.
	DumpQuantState bool
	// Sink receives the output. Heatmap planes are dumped only when a
	// sink is installed.
	Sink DebugSink
}

func (o DebugOptions) sink() DebugSink {
	if o.Sink == nil {
		return NopSink{}
	}
	return o.Sink
}

// NopSink discards all diagnostics.
type NopSink struct{}

func (NopSink) Logf(string, ...interface{}) {}

func (NopSink) DumpPlane(string, int, *imagef.Plane) error { return nil }

// LogSink writes log lines to W and summarizes dumped planes instead of
// storing them.
type LogSink struct {
	W io.Writer
}

func (s *LogSink) Logf(format string, args ...interface{}) {
	fmt.Fprintf(s.W, format, args...)
}

func (s *LogSink) DumpPlane(label string, iter int, p *imagef.Plane) error {
	min, max := p.MinMax()
	_, err := fmt.Fprintf(s.W, "%s%05d: %dx%d range %f ... %f\n",
		label, iter, p.W, p.H, min, max)
	return err
}

// FileSink stores dumped planes as zstd-compressed raw float files under
// Dir, and mirrors log lines to Log when set.
type FileSink struct {
	Dir string
	Log io.Writer
}

func (s *FileSink) Logf(format string, args ...interface{}) {
	if s.Log != nil {
		fmt.Fprintf(s.Log, format, args...)
	}
}

// DumpPlane writes Dir/<label><iter>.f32.zst: two little-endian uint32
// dimensions followed by the visible rows as little-endian float32.
func (s *FileSink) DumpPlane(label string, iter int, p *imagef.Plane) error {
	name := filepath.Join(s.Dir, fmt.Sprintf("%s%05d.f32.zst", label, iter))
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	zw, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		return err
	}
	var header [8]byte
	binary.LittleEndian.PutUint32(header[0:], uint32(p.W))
	binary.LittleEndian.PutUint32(header[4:], uint32(p.H))
	_, err = zw.Write(header[:])
	buf := make([]byte, 4*p.W)
	for y := 0; y < p.H && err == nil; y++ {
		row := p.Row(y)
		for x, v := range row {
			binary.LittleEndian.PutUint32(buf[4*x:], math.Float32bits(v))
		}
		_, err = zw.Write(buf)
	}
	if cerr := zw.Close(); err == nil {
		err = cerr
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

package capture

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	ErrBadMagic           = errors.New("capture: not a saleae file")
	ErrUnsupportedVersion = errors.New("capture: unsupported format version")
	ErrNotDigital         = errors.New("capture: not a digital channel")
	ErrTruncated          = errors.New("capture: truncated transition data")
	ErrNonMonotonic       = errors.New("capture: transition times not strictly increasing")
)

// Load reads a digital capture from disk.
func Load(path string) (*EdgeTrace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture: %w", err)
	}
	defer f.Close()

	trace, err := Read(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return trace, nil
}

// Read parses a Saleae Logic 2 digital binary export.
func Read(r io.Reader) (*EdgeTrace, error) {
	var head fileHeader
	if err := binary.Read(r, binary.LittleEndian, &head); err != nil {
		return nil, ErrBadMagic
	}
	if string(head.Identifier[:]) != magic {
		return nil, ErrBadMagic
	}
	if head.Version != formatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, head.Version)
	}
	if head.DataType == typeAnalog {
		return nil, fmt.Errorf("%w: analog export", ErrNotDigital)
	}
	if head.DataType != typeDigital {
		return nil, fmt.Errorf("%w: data type %d", ErrNotDigital, head.DataType)
	}

	var dig digitalHeader
	if err := binary.Read(r, binary.LittleEndian, &dig); err != nil {
		return nil, fmt.Errorf("%w: digital header: %v", ErrTruncated, err)
	}
	if dig.NumTransitions < 0 {
		return nil, fmt.Errorf("%w: negative transition count %d", ErrTruncated, dig.NumTransitions)
	}

	// Grow in chunks so a corrupt count cannot force one huge allocation
	transitions := make([]float64, 0, min(dig.NumTransitions, readChunkEdges))
	remaining := dig.NumTransitions
	chunk := make([]float64, min(remaining, readChunkEdges))
	for remaining > 0 {
		n := min(remaining, int64(len(chunk)))
		if err := binary.Read(r, binary.LittleEndian, chunk[:n]); err != nil {
			return nil, fmt.Errorf("%w: want %d transitions, read %d",
				ErrTruncated, dig.NumTransitions, int64(len(transitions)))
		}
		transitions = append(transitions, chunk[:n]...)
		remaining -= n
	}

	for i := 1; i < len(transitions); i++ {
		if !(transitions[i] > transitions[i-1]) {
			return nil, fmt.Errorf("%w: index %d (%v after %v)",
				ErrNonMonotonic, i, transitions[i], transitions[i-1])
		}
	}

	return &EdgeTrace{
		InitialLevel: dig.InitialState,
		BeginTime:    dig.BeginTime,
		EndTime:      dig.EndTime,
		Transitions:  transitions,
	}, nil
}

// Write emits a trace in the same binary format Read accepts.
func Write(w io.Writer, trace *EdgeTrace) error {
	head := fileHeader{Version: formatVersion, DataType: typeDigital}
	copy(head.Identifier[:], magic)
	dig := digitalHeader{
		InitialState:   trace.InitialLevel,
		BeginTime:      trace.BeginTime,
		EndTime:        trace.EndTime,
		NumTransitions: int64(len(trace.Transitions)),
	}
	for _, v := range []any{head, dig, trace.Transitions} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return nil
}

// Save writes a trace to disk.
func Save(path string, trace *EdgeTrace) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create capture: %w", err)
	}
	bw := bufio.NewWriter(f)
	if err := Write(bw, trace); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

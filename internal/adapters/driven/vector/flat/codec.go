package flat

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

var vecMagic = [4]byte{'P', 'L', 'V', 'F'}

const vecVersion uint32 = 1

// header precedes the float32 payload of pages.vec.
type header struct {
	Magic   [4]byte
	Version uint32
	Count   uint32
	Dim     uint32
}

// writeVectors encodes count rows of dim float32 values.
func writeVectors(w io.Writer, data []float32, count, dim int) error {
	bw := bufio.NewWriter(w)
	h := header{Magic: vecMagic, Version: vecVersion, Count: uint32(count), Dim: uint32(dim)}
	if err := binary.Write(bw, binary.LittleEndian, h); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	var buf [4]byte
	for _, v := range data {
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
		if _, err := bw.Write(buf[:]); err != nil {
			return fmt.Errorf("write vectors: %w", err)
		}
	}
	return bw.Flush()
}

// readVectors decodes a matrix written by writeVectors.
func readVectors(r io.Reader) (data []float32, count, dim int, err error) {
	br := bufio.NewReader(r)
	var h header
	if err := binary.Read(br, binary.LittleEndian, &h); err != nil {
		return nil, 0, 0, fmt.Errorf("read header: %w", err)
	}
	if h.Magic != vecMagic {
		return nil, 0, 0, errors.New("bad magic")
	}
	if h.Version != vecVersion {
		return nil, 0, 0, fmt.Errorf("unsupported version %d", h.Version)
	}
	total := uint64(h.Count) * uint64(h.Dim)
	if total > math.MaxInt32 {
		return nil, 0, 0, fmt.Errorf("matrix too large (%d x %d)", h.Count, h.Dim)
	}

	data = make([]float32, total)
	var buf [4]byte
	for i := range data {
		if _, err := io.ReadFull(br, buf[:]); err != nil {
			return nil, 0, 0, fmt.Errorf("read vectors: %w", err)
		}
		data[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[:]))
	}
	if _, err := br.ReadByte(); !errors.Is(err, io.EOF) {
		return nil, 0, 0, errors.New("trailing data")
	}
	return data, int(h.Count), int(h.Dim), nil
}

package native

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/arloliu/dirfile/compress"
	"github.com/arloliu/dirfile/encoding"
	"github.com/arloliu/dirfile/format"
	"github.com/arloliu/dirfile/internal/pool"
)

// rawFile is a located raw data file.
type rawFile struct {
	path        string
	compression format.CompressionType
	info        fs.FileInfo
}

// locateRaw finds the raw file of e.
//
// The compression declared by /ENCODING is tried first, then every
// supported suffix in order.
func locateRaw(e *entry) (rawFile, error) {
	base := filepath.Join(e.dir, e.name)

	candidates := make([]format.CompressionType, 0, 5)
	if e.compression != format.CompressionNone {
		candidates = append(candidates, e.compression)
	}
	candidates = append(candidates, format.Compressions()...)

	for _, c := range candidates {
		path := base + c.Suffix()
		info, err := os.Stat(path)
		if err == nil && info.Mode().IsRegular() {
			return rawFile{path: path, compression: c, info: info}, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return rawFile{}, fmt.Errorf("stat raw file: %w", err)
		}
	}

	return rawFile{}, fmt.Errorf("raw file for field %q: %w", e.name, fs.ErrNotExist)
}

// cachedPayload is the decompressed content of a compressed raw file.
type cachedPayload struct {
	size    int64
	modTime time.Time
	data    []byte
}

// payloadCache keeps decompressed raw files for the lifetime of a handle so
// that frame counting and repeated fetches decompress each file once.
type payloadCache map[string]cachedPayload

func (c payloadCache) load(rf rawFile) ([]byte, error) {
	if cached, ok := c[rf.path]; ok &&
		cached.size == rf.info.Size() && cached.modTime.Equal(rf.info.ModTime()) {
		return cached.data, nil
	}

	codec, err := compress.GetCodec(rf.compression)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(rf.path)
	if err != nil {
		return nil, fmt.Errorf("open raw file: %w", err)
	}
	defer f.Close()

	buf := pool.GetFileBuffer()
	defer pool.PutFileBuffer(buf)

	if _, err := buf.ReadFrom(f); err != nil {
		return nil, fmt.Errorf("read raw file %s: %w", rf.path, err)
	}

	data, err := codec.Decompress(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("decompress raw file %s: %w", rf.path, err)
	}

	c[rf.path] = cachedPayload{size: rf.info.Size(), modTime: rf.info.ModTime(), data: data}

	return data, nil
}

// sampleCount returns the number of whole samples stored in rf.
func (c payloadCache) sampleCount(rf rawFile, width int) (int64, error) {
	if rf.compression == format.CompressionNone {
		return rf.info.Size() / int64(width), nil
	}

	data, err := c.load(rf)
	if err != nil {
		return 0, err
	}

	return int64(len(data)) / int64(width), nil
}

// readSamples decodes count samples of e starting at sample start into out.
func (c payloadCache) readSamples(e *entry, rf rawFile, start int64, count int, out any) (int, error) {
	width := int64(e.width)
	offset := start * width
	dec := encoding.NewRawDecoder(e.engine)

	if rf.compression != format.CompressionNone {
		data, err := c.load(rf)
		if err != nil {
			return 0, err
		}
		if offset >= int64(len(data)) {
			return 0, nil
		}

		return decodeSamples(dec, out, count, data[offset:], e.width)
	}

	available := rf.info.Size() - offset
	if available <= 0 {
		return 0, nil
	}
	length := min(int64(count)*width, available-available%width)
	if length == 0 {
		return 0, nil
	}

	f, err := os.Open(rf.path)
	if err != nil {
		return 0, fmt.Errorf("open raw file: %w", err)
	}
	defer f.Close()

	buf := pool.GetFileBuffer()
	defer pool.PutFileBuffer(buf)

	buf.Resize(int(length))
	if err := buf.ReadAt(f, offset); err != nil {
		return 0, fmt.Errorf("raw file %s: %w", rf.path, err)
	}

	return decodeSamples(dec, out, count, buf.Bytes(), e.width)
}

// decodeSamples writes up to count samples from data into the typed slice out.
func decodeSamples(dec encoding.RawDecoder, out any, count int, data []byte, width int) (int, error) {
	switch o := out.(type) {
	case []uint8:
		return encoding.DecodeInto(dec, o[:count], data)
	case []int8:
		return encoding.DecodeInto(dec, o[:count], data)
	case []uint16:
		return encoding.DecodeInto(dec, o[:count], data)
	case []int16:
		return encoding.DecodeInto(dec, o[:count], data)
	case []uint32:
		return encoding.DecodeInto(dec, o[:count], data)
	case []int32:
		return encoding.DecodeInto(dec, o[:count], data)
	case []uint64:
		return encoding.DecodeInto(dec, o[:count], data)
	case []int64:
		return encoding.DecodeInto(dec, o[:count], data)
	case []float32:
		return encoding.DecodeInto(dec, o[:count], data)
	case []float64:
		return encoding.DecodeInto(dec, o[:count], data)
	case []string:
		return encoding.DecodeText(o[:count], data, width)
	default:
		return 0, fmt.Errorf("unsupported buffer type %T", out)
	}
}

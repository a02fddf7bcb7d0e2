package igra

import (
	"archive/zip"
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/couchcryptid/sounding-service/internal/domain"
)

// Block is the set of levels read from the one header that matched the
// requested time, with counters describing how the declared lines were used.
type Block struct {
	Levels    []domain.Level
	Declared  int // data lines announced by the header
	Consumed  int // data lines read (at most Declared)
	Malformed int // lines whose fields did not parse as integers
	Rejected  int // lines with missing pressure or temperature
}

// Decode scans an IGRA v2 station file for the header whose time equals
// at.ArchiveKey() and returns the block of data lines that follows it.
//
// The scanner has two states. While skipping, data lines are ignored and
// every header is checked against the target. While collecting, exactly
// Declared data lines are consumed whether or not they parse. A header seen
// before the block is complete ends it early.
func Decode(r io.Reader, at domain.ObservationTime) (Block, error) {
	target := at.ArchiveKey()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		block      Block
		collecting bool
	)
	for sc.Scan() {
		line := sc.Text()
		if !utf8.ValidString(line) {
			return Block{}, fmt.Errorf("%w: igra: invalid UTF-8 in station file", domain.ErrDecode)
		}

		if len(line) > 0 && line[0] == headerMarker {
			if collecting {
				return block, nil
			}
			ts, err := headerTime.text(line)
			if err != nil || ts != target {
				continue
			}
			n, err := headerCount.int(line)
			if err != nil {
				return Block{}, fmt.Errorf("%w: igra: header for %s: %w", domain.ErrDecode, target, err)
			}
			if n < 0 {
				return Block{}, fmt.Errorf("%w: igra: header for %s declares %d levels", domain.ErrDecode, target, n)
			}
			block.Declared = n
			collecting = true
			if n == 0 {
				return block, nil
			}
			continue
		}

		if !collecting {
			continue
		}

		block.Consumed++
		if raw, err := parseRawLevel(line); err != nil {
			block.Malformed++
		} else if l, ok := raw.level(); ok {
			block.Levels = append(block.Levels, l)
		} else {
			block.Rejected++
		}
		if block.Consumed == block.Declared {
			return block, nil
		}
	}
	if err := sc.Err(); err != nil {
		return Block{}, fmt.Errorf("%w: igra: read station file: %w", domain.ErrDecode, err)
	}
	if !collecting {
		return Block{}, fmt.Errorf("%w: igra: no sounding for %s", domain.ErrDataUnavailable, target)
	}
	return block, nil
}

// Profile turns the block into a profile, enforcing the minimum level count.
func (b Block) Profile() (domain.Profile, error) {
	p, err := domain.NewProfile(b.Levels)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("igra: %w", err)
	}
	return p, nil
}

// unzipFirst returns the contents of the first member of a zip archive.
// Station archives hold a single text file.
func unzipFirst(data []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: igra: open archive: %w", domain.ErrDecode, err)
	}
	if len(zr.File) == 0 {
		return nil, fmt.Errorf("%w: igra: archive is empty", domain.ErrDecode)
	}
	f := zr.File[0]
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: igra: open %s: %w", domain.ErrDecode, f.Name, err)
	}
	defer rc.Close()

	text, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: igra: read %s: %w", domain.ErrDecode, f.Name, err)
	}
	return text, nil
}

// decodeArchive is Decode over an uncompressed station file held in memory.
func decodeArchive(text []byte, at domain.ObservationTime) (Block, error) {
	return Decode(bytes.NewReader(text), at)
}

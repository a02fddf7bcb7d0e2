package stations

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jszwec/csvutil"

	"github.com/couchcryptid/sounding-service/internal/domain"
)

// record is one row of the cache file: code,display_name,city,raw_name.
type record struct {
	Code        string `csv:"code"`
	DisplayName string `csv:"display_name"`
	City        string `csv:"city"`
	RawName     string `csv:"raw_name"`
}

// ReadCacheFile loads the station cache and returns it with the file's
// modification time.
func ReadCacheFile(path string) ([]domain.Station, time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, time.Time{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, time.Time{}, err
	}

	var records []record
	if err := csvutil.Unmarshal(data, &records); err != nil {
		return nil, time.Time{}, fmt.Errorf("decode %s: %w", path, err)
	}
	out := make([]domain.Station, 0, len(records))
	for _, r := range records {
		out = append(out, domain.Station{
			Code:        r.Code,
			WMO:         domain.WMOCode(r.Code),
			DisplayName: r.DisplayName,
			City:        r.City,
			RawName:     r.RawName,
		})
	}
	return out, info.ModTime(), nil
}

// WriteCacheFile replaces the cache file with the given stations. The file
// is written next to its destination and renamed into place so readers
// never see a partial table.
func WriteCacheFile(path string, stations []domain.Station) error {
	records := make([]record, len(stations))
	for i, s := range stations {
		records[i] = record{Code: s.Code, DisplayName: s.DisplayName, City: s.City, RawName: s.RawName}
	}
	data, err := csvutil.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode stations: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // already renamed on success

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}

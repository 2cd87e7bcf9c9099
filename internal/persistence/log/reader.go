package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/zstd"

	"arrowcraft.ai/internal/sim/world"
)

// Files lists <prefix>-*.jsonl.zst under dir in chronological order. The
// hour stamp in the name sorts lexically.
func Files(dir, prefix string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, prefix+"-*.jsonl.zst"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// ScanJSONL decodes each line of a zstd JSONL file into a fresh T and hands
// it to fn. fn returning an error stops the scan.
func ScanJSONL[T any](path string, fn func(T) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var v T
		if err := json.Unmarshal(sc.Bytes(), &v); err != nil {
			return fmt.Errorf("%s:%d: %w", filepath.Base(path), line, err)
		}
		if err := fn(v); err != nil {
			return err
		}
	}
	return sc.Err()
}

// ReadTicks loads every tick entry under <worldDir>/events with
// Tick >= from, in file order.
func ReadTicks(worldDir string, from uint64) ([]world.TickLogEntry, error) {
	files, err := Files(filepath.Join(worldDir, "events"), "events")
	if err != nil {
		return nil, err
	}
	var out []world.TickLogEntry
	for _, p := range files {
		err := ScanJSONL(p, func(e world.TickLogEntry) error {
			if e.Tick >= from {
				out = append(out, e)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

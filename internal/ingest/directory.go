package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/mnystrom/inkomstregister/constants"
)

// FileEntry is one discovered source file. FileID is a per-run trace ID
// carried through the pipeline and the run summary.
type FileEntry struct {
	Path    string
	FileID  uuid.UUID
	HashHex string
	Status  constants.FileStatus
	Err     string
}

// DirStats summarizes a directory scan.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Deduplicated uint32
	Failed       uint32
}

// ScanDirectory walks root, filters to the accepted extensions, skips
// hidden entries if requested, and hashes each matched file so duplicate
// content is only processed once. Per-file failures never abort the walk;
// they are recorded on the entry and counted.
func ScanDirectory(ctx context.Context, root string, skipHidden bool, logger *slog.Logger) ([]FileEntry, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	var entries []FileEntry
	var stats DirStats
	seen := map[string]string{} // content hash -> first path

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			entries = append(entries, FileEntry{Path: path, Status: constants.FileStatusFailed, Err: walkErr.Error()})
			stats.Failed++
			return nil // keep walking
		}
		if skipHidden && isHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := constants.NormalizeExt(filepath.Ext(path))
		if !constants.AllowedExt(ext) {
			return nil
		}
		stats.Matched++

		sum, err := hashFile(path)
		if err != nil {
			entries = append(entries, FileEntry{Path: path, Status: constants.FileStatusFailed, Err: err.Error()})
			stats.Failed++
			return nil
		}

		entry := FileEntry{Path: path, FileID: uuid.New(), HashHex: sum}
		if first, dup := seen[sum]; dup {
			entry.Status = constants.FileStatusSkipped
			stats.Deduplicated++
			logger.Info("duplicate content skipped", "path", path, "first_seen", first)
		} else {
			seen[sum] = path
		}
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return entries, stats, fmt.Errorf("walk: %w", err)
	}

	logger.Info("directory scan complete",
		"root", root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"deduplicated", stats.Deduplicated,
		"failed", stats.Failed)
	return entries, stats, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = f.Close()
	}()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func isHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".")
}

package filestore

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	log "github.com/sirupsen/logrus"
)

// Config carries the resolved storage roots. Both directories are exclusive
// to this service.
type Config struct {
	PlanRoot   string
	SubmitRoot string
}

// Store owns the on-disk layout:
//
//	<PlanRoot>/<planId>/<planFileName>
//	<SubmitRoot>/<planId>/<submitterId>/<submissionFileName>
//	<SubmitRoot>/<callerId>/<unixTimestamp>/files.zip
type Store struct {
	planRoot   string
	submitRoot string
}

func New(cfg Config) *Store {
	return &Store{
		planRoot:   filepath.Clean(cfg.PlanRoot),
		submitRoot: filepath.Clean(cfg.SubmitRoot),
	}
}

func (s *Store) PlanDir(planID int) string {
	return filepath.Join(s.planRoot, strconv.Itoa(planID))
}

func (s *Store) SubmitDir(planID int, submitterID string) string {
	return filepath.Join(s.submitRoot, strconv.Itoa(planID), submitterID)
}

func (s *Store) PlanSubmitDir(planID int) string {
	return filepath.Join(s.submitRoot, strconv.Itoa(planID))
}

// ScratchDir is the staging area for bulk downloads, keyed by the caller and
// the moment of the request.
func (s *Store) ScratchDir(callerID string, unixNow int64) string {
	return filepath.Join(s.submitRoot, callerID, strconv.FormatInt(unixNow, 10))
}

// WriteExclusive clears the directory and writes the single file into it.
// After the call the directory holds exactly one generation of content.
func (s *Store) WriteExclusive(dir, name string, r io.Reader) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("clear %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// RemoveDir is best-effort cleanup. A record-level operation has already
// succeeded by the time it runs, so failures are only logged.
func (s *Store) RemoveDir(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		log.Warnf("failed to remove %s: %v", dir, err)
	}
}

func (s *Store) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Open returns a reader over the stored file together with its size.
func (s *Store) Open(path string) (io.ReadCloser, int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, 0, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	return f, info.Size(), nil
}

func (s *Store) Rename(oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}

// ArchiveEntry names one stored file to pack under Name inside an archive.
type ArchiveEntry struct {
	Path string
	Name string
}

// BuildArchive writes a zip of the entries to dest. The archive is fully
// flushed and closed before return, so a follow-up read always sees a
// complete file.
func (s *Store) BuildArchive(dest string, entries []ArchiveEntry) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	zw := zip.NewWriter(out)
	for _, entry := range entries {
		src, err := os.Open(entry.Path)
		if err != nil {
			zw.Close()
			out.Close()
			return fmt.Errorf("archive source %s: %w", entry.Path, err)
		}
		w, err := zw.Create(entry.Name)
		if err == nil {
			_, err = io.Copy(w, src)
		}
		src.Close()
		if err != nil {
			zw.Close()
			out.Close()
			return fmt.Errorf("archive %s: %w", entry.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

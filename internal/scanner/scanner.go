// Package scanner builds the endpoint table from the configured JSON
// directories.
//
// Only the top level of each directory is read. A file dir/name.json is
// served as "dir/name" and dir/index.json as "dir", with any leading "./"
// removed from dir. Directories are processed in the order given and files
// within a directory in lexical order; when two files derive the same key the
// one processed last wins.
package scanner

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"jsonserve/internal/shared"
)

// Table maps endpoint keys to raw file content.
type Table map[string][]byte

// SeedProvider supplies the index.json written into a directory that had to
// be created.
type SeedProvider interface {
	IndexJSON() []byte
}

type Scanner struct {
	seed   SeedProvider
	logger log.Logger
}

func New(seed SeedProvider, logger log.Logger) *Scanner {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Scanner{seed: seed, logger: logger}
}

// Scan reads every directory in dirs. Failures do not stop the scan early:
// all of them are collected and returned together, in which case the table
// is nil.
func (s *Scanner) Scan(dirs []string) (Table, error) {
	table := make(Table)
	var errs *multierror.Error

	for _, dir := range dirs {
		if err := s.ensureDir(dir); err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		if err := s.scanDir(dir, table); err != nil {
			errs = multierror.Append(errs, err)
		}
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	level.Info(s.logger).Log("msg", "directories scanned", "dirs", len(dirs), "endpoints", len(table))
	return table, nil
}

func (s *Scanner) ensureDir(dir string) error {
	_, err := os.Stat(dir)
	if err == nil || !os.IsNotExist(err) {
		// anything other than "missing" surfaces when the directory is read
		return nil
	}

	if err := os.Mkdir(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create directory %s", dir)
	}
	seedPath := filepath.Join(dir, shared.IndexFile)
	if err := os.WriteFile(seedPath, s.seed.IndexJSON(), 0o644); err != nil {
		return errors.Wrapf(err, "write seed file %s", seedPath)
	}
	level.Info(s.logger).Log("msg", "created missing directory", "dir", dir, "seed", seedPath)
	return nil
}

func (s *Scanner) scanDir(dir string, table Table) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.Wrapf(err, "read directory %s", dir)
	}

	var errs *multierror.Error
	for _, entry := range entries {
		name := entry.Name()
		path := filepath.Join(dir, name)
		level.Debug(s.logger).Log("msg", "processing file", "path", path)

		key, ok := EndpointKey(dir, name)
		if !ok {
			continue
		}
		// Stat follows symlinks, DirEntry.Type does not. Dangling links are
		// not regular files and are skipped like directories.
		fi, err := os.Stat(path)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}

		content, err := os.ReadFile(path)
		if err != nil {
			errs = multierror.Append(errs, errors.Wrapf(err, "read file %s", path))
			continue
		}
		if _, dup := table[key]; dup {
			level.Debug(s.logger).Log("msg", "endpoint overwritten", "endpoint", key, "path", path)
		}
		table[key] = content
	}
	return errs.ErrorOrNil()
}

// EndpointKey derives the endpoint key for the file name inside dir. ok is
// false for names that are not served.
func EndpointKey(dir, name string) (key string, ok bool) {
	stem, found := strings.CutSuffix(name, shared.JSONExt)
	if !found || stem == "" {
		return "", false
	}
	base := trimDotSlash(dir)
	if stem == "index" {
		return base, true
	}
	return base + "/" + stem, true
}

func trimDotSlash(dir string) string {
	for strings.HasPrefix(dir, "./") {
		dir = dir[2:]
	}
	return dir
}

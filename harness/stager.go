package harness

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/blake2b"
)

// WorkspacePrefix prefixes every workspace directory name.
const WorkspacePrefix = "tectonic_executable_test-"

// Stager copies fixtures from a read-only root into fresh workspaces.
type Stager struct {
	root    string
	tempDir string
}

// NewStager returns a Stager reading fixtures from root.
func NewStager(root string) *Stager {
	return &Stager{root: root}
}

// WithTempDir returns a copy of s that creates workspaces under dir
// instead of the system temp directory.
func (s *Stager) WithTempDir(dir string) *Stager {
	c := *s
	c.tempDir = dir
	return &c
}

// Root returns the fixtures root.
func (s *Stager) Root() string {
	return s.root
}

// StagedFile is one fixture copied into a workspace.
type StagedFile struct {
	Path   string // relative to the workspace, slash separated
	Size   int64
	Digest string // hex BLAKE2b-256 of the contents
}

// Workspace is a private directory for one case execution.
type Workspace struct {
	Dir   string
	Files []StagedFile
}

// Path joins a slash-separated relative path onto the workspace directory.
func (w *Workspace) Path(rel string) string {
	return filepath.Join(w.Dir, filepath.FromSlash(rel))
}

// Remove deletes the workspace and everything the binary wrote into it.
func (w *Workspace) Remove() error {
	return os.RemoveAll(w.Dir)
}

// Stage creates a uniquely named workspace and copies each fixture into
// it at the same relative path. An empty list yields an empty workspace.
// On any failure the partial workspace is removed and a *SetupError is
// returned.
func (s *Stager) Stage(fixtures []string) (*Workspace, error) {
	dir, err := os.MkdirTemp(s.tempDir, WorkspacePrefix+"*")
	if err != nil {
		return nil, &SetupError{Err: err}
	}

	ws := &Workspace{Dir: dir, Files: make([]StagedFile, 0, len(fixtures))}
	for _, name := range fixtures {
		staged, err := s.copyFixture(ws, name)
		if err != nil {
			_ = ws.Remove()
			return nil, &SetupError{Fixture: name, Workspace: dir, Err: err}
		}
		ws.Files = append(ws.Files, staged)
	}

	return ws, nil
}

func (s *Stager) copyFixture(ws *Workspace, name string) (StagedFile, error) {
	rel := filepath.FromSlash(name)
	if !filepath.IsLocal(rel) {
		return StagedFile{}, errors.New("fixture path must be relative to the fixtures root")
	}

	// Parent directories for fixtures below the root
	dst := filepath.Join(ws.Dir, rel)
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return StagedFile{}, fmt.Errorf("failed to create parent directory: %w", err)
	}

	src, err := os.Open(filepath.Join(s.root, rel))
	if err != nil {
		return StagedFile{}, err
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return StagedFile{}, err
	}
	if !info.Mode().IsRegular() {
		return StagedFile{}, fmt.Errorf("%s is not a regular file", name)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return StagedFile{}, err
	}

	hash, err := blake2b.New256(nil)
	if err != nil {
		out.Close()
		return StagedFile{}, err
	}

	n, err := io.Copy(io.MultiWriter(out, hash), src)
	if err != nil {
		out.Close()
		return StagedFile{}, fmt.Errorf("failed to copy contents: %w", err)
	}
	if err := out.Close(); err != nil {
		return StagedFile{}, err
	}

	return StagedFile{
		Path:   filepath.ToSlash(rel),
		Size:   n,
		Digest: hex.EncodeToString(hash.Sum(nil)),
	}, nil
}

// Digest returns the hex BLAKE2b-256 of the file at path. It matches
// StagedFile.Digest for identical contents.
func Digest(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

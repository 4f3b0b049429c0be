package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"aidocs/internal/models"
)

// Artifact layout, relative to the project root.
const (
	AIDocsRoot     = ".kb/ai-docs"
	PlanFile       = AIDocsRoot + "/plan.json"
	DriftJSONFile  = AIDocsRoot + "/drift.json"
	DriftMDFile    = AIDocsRoot + "/drift.md"
	MetadataDir    = AIDocsRoot + "/metadata"
	BackupDir      = AIDocsRoot + "/backups"
	RunLockFile    = AIDocsRoot + "/run.lock"
	HistoryDBFile  = AIDocsRoot + "/history.db"
	SuggestionsDir = ".kb/artifacts/ai-docs/suggestions"
)

// WriteOptions controls WriteDoc.
type WriteOptions struct {
	Backup bool
}

// DriftPaths are the files written by SaveDrift.
type DriftPaths struct {
	JSONPath     string `json:"jsonPath"`
	MarkdownPath string `json:"markdownPath"`
}

// DocsRepository stores plans, documents and run artifacts under a project root.
type DocsRepository interface {
	Root() string
	Resolve(path string) string
	FileExists(path string) (bool, error)
	ModTime(path string) (time.Time, bool, error)
	ReadDoc(path string) ([]byte, bool, error)
	WriteDoc(path string, content []byte, opts WriteOptions) (string, error)
	WriteSkeleton(files map[string]string, force bool) ([]string, error)
	SavePlan(plan *models.DocsPlan, path string) (string, error)
	LoadPlan(path string) (*models.DocsPlan, error)
	StageSuggestion(sectionID string, content []byte) (string, error)
	ClearSuggestions() error
	SuggestionsPath() string
	SaveMetadata(record *models.GenerationRunMetadata) (string, error)
	SaveDrift(report *models.DriftReport, markdown string) (DriftPaths, error)
}

type docsRepository struct {
	root string
	now  func() time.Time
}

// NewDocsRepository returns a DocsRepository rooted at root. A nil clock uses time.Now.
func NewDocsRepository(root string, now func() time.Time) DocsRepository {
	if now == nil {
		now = time.Now
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	return &docsRepository{root: abs, now: now}
}

func (r *docsRepository) Root() string {
	return r.root
}

func (r *docsRepository) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(r.root, filepath.FromSlash(path))
}

// FileExists reports false without error when path does not exist.
func (r *docsRepository) FileExists(path string) (bool, error) {
	_, err := os.Stat(r.Resolve(path))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", path, err)
}

func (r *docsRepository) ModTime(path string) (time.Time, bool, error) {
	info, err := os.Stat(r.Resolve(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("stat %s: %w", path, err)
	}
	return info.ModTime(), true, nil
}

func (r *docsRepository) ReadDoc(path string) ([]byte, bool, error) {
	data, err := os.ReadFile(r.Resolve(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}
	return data, true, nil
}

// WriteDoc writes content to path. With Backup set and a file already present,
// the old file is copied under BackupDir first and the copy must succeed
// before the overwrite happens. It returns the backup path, if any.
func (r *docsRepository) WriteDoc(path string, content []byte, opts WriteOptions) (string, error) {
	resolved := r.Resolve(path)
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return "", fmt.Errorf("create directory for %s: %w", path, err)
	}

	var backupPath string
	if opts.Backup {
		exists, err := r.FileExists(resolved)
		if err != nil {
			return "", err
		}
		if exists {
			backupPath, err = copyFile(resolved, filepath.Join(r.Resolve(BackupDir), backupStamp(r.now()), r.relative(resolved)))
			if err != nil {
				return "", fmt.Errorf("backup %s: %w", path, err)
			}
		}
	}

	if err := writeFileAtomic(resolved, content); err != nil {
		return backupPath, fmt.Errorf("write %s: %w", path, err)
	}
	return backupPath, nil
}

func (r *docsRepository) WriteSkeleton(files map[string]string, force bool) ([]string, error) {
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	created := make([]string, 0, len(paths))
	for _, p := range paths {
		resolved := r.Resolve(p)
		if !force {
			exists, err := r.FileExists(resolved)
			if err != nil {
				return created, err
			}
			if exists {
				continue
			}
		}
		if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
			return created, fmt.Errorf("create directory for %s: %w", p, err)
		}
		if err := os.WriteFile(resolved, []byte(files[p]), 0o644); err != nil {
			return created, fmt.Errorf("write %s: %w", p, err)
		}
		created = append(created, resolved)
	}
	return created, nil
}

func (r *docsRepository) SavePlan(plan *models.DocsPlan, path string) (string, error) {
	if plan == nil {
		return "", fmt.Errorf("plan is required")
	}
	if path == "" {
		path = PlanFile
	}
	resolved := r.Resolve(path)
	if err := writeJSON(resolved, plan); err != nil {
		return "", fmt.Errorf("save plan: %w", err)
	}
	return resolved, nil
}

// LoadPlan returns nil without error when no plan exists at path.
func (r *docsRepository) LoadPlan(path string) (*models.DocsPlan, error) {
	if path == "" {
		path = PlanFile
	}
	data, ok, err := r.ReadDoc(path)
	if err != nil || !ok {
		return nil, err
	}
	var plan models.DocsPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("decode plan %s: %w", path, err)
	}
	if _, err := models.IndexSections(plan.Sections); err != nil {
		return nil, fmt.Errorf("plan %s: %w", path, err)
	}
	return &plan, nil
}

// StageSuggestion writes content for sectionID into the suggestions area,
// replacing any earlier suggestion for the same id.
func (r *docsRepository) StageSuggestion(sectionID string, content []byte) (string, error) {
	if sectionID == "" || strings.ContainsAny(sectionID, `/\`) || strings.Contains(sectionID, "..") {
		return "", fmt.Errorf("invalid section id %q", sectionID)
	}
	dir := r.SuggestionsPath()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create suggestions dir: %w", err)
	}
	target := filepath.Join(dir, sectionID+".md")
	if err := writeFileAtomic(target, content); err != nil {
		return "", fmt.Errorf("stage suggestion %s: %w", sectionID, err)
	}
	return target, nil
}

func (r *docsRepository) ClearSuggestions() error {
	if err := os.RemoveAll(r.SuggestionsPath()); err != nil {
		return fmt.Errorf("clear suggestions: %w", err)
	}
	return nil
}

func (r *docsRepository) SuggestionsPath() string {
	return r.Resolve(SuggestionsDir)
}

// SaveMetadata writes one new file per call and never replaces an existing one.
func (r *docsRepository) SaveMetadata(record *models.GenerationRunMetadata) (string, error) {
	dir := r.Resolve(MetadataDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create metadata dir: %w", err)
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}

	base := "metadata-" + strconv.FormatInt(r.now().UnixMilli(), 10)
	for attempt := 0; attempt < 1000; attempt++ {
		name := base
		if attempt > 0 {
			name = fmt.Sprintf("%s-%d", base, attempt)
		}
		target := filepath.Join(dir, name+".json")
		f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create metadata file: %w", err)
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			return "", fmt.Errorf("write metadata file: %w", err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("close metadata file: %w", err)
		}
		return target, nil
	}
	return "", fmt.Errorf("no free metadata file name for %s", base)
}

func (r *docsRepository) SaveDrift(report *models.DriftReport, markdown string) (DriftPaths, error) {
	paths := DriftPaths{
		JSONPath:     r.Resolve(DriftJSONFile),
		MarkdownPath: r.Resolve(DriftMDFile),
	}
	if err := writeJSON(paths.JSONPath, report); err != nil {
		return DriftPaths{}, fmt.Errorf("save drift report: %w", err)
	}
	if err := writeFileAtomic(paths.MarkdownPath, []byte(markdown)); err != nil {
		return DriftPaths{}, fmt.Errorf("save drift markdown: %w", err)
	}
	return paths, nil
}

// relative maps resolved to a path under the root, dropping any leading
// parent segments for files that live outside it.
func (r *docsRepository) relative(resolved string) string {
	rel, err := filepath.Rel(r.root, resolved)
	if err != nil {
		return filepath.Base(resolved)
	}
	for strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		rel = strings.TrimPrefix(rel, ".."+string(filepath.Separator))
	}
	return rel
}

func backupStamp(t time.Time) string {
	return strings.NewReplacer(":", "-", ".", "-").Replace(t.UTC().Format("2006-01-02T15:04:05.000Z"))
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

// copyFile copies src to dst, or to dst with a -N suffix before the extension
// when dst is taken. An existing backup is never overwritten. It returns the
// path written.
func copyFile(src, dst string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}
	ext := filepath.Ext(dst)
	stem := strings.TrimSuffix(dst, ext)
	target := dst
	var out *os.File
	for i := 1; ; i++ {
		out, err = os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			break
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", err
		}
		target = fmt.Sprintf("%s-%d%s", stem, i, ext)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return "", err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return "", err
	}
	return target, out.Close()
}

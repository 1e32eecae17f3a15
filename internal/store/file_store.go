package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"updatescan/internal/models"
	"updatescan/internal/providers"

	json "github.com/goccy/go-json"
)

// FileStore keeps the collection as one zstd-compressed JSON snapshot and each
// page's content in its own compressed file under contentDir.
type FileStore struct {
	mu         sync.RWMutex
	path       string
	contentDir string
	compressor CompressorInterface
	logger     providers.Logger
	current    *models.Collection
}

func NewFileStore(path, contentDir string, compressor CompressorInterface, logger providers.Logger) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	if err := os.MkdirAll(contentDir, 0o755); err != nil {
		return nil, fmt.Errorf("create content directory: %w", err)
	}

	fs := &FileStore{
		path:       path,
		contentDir: contentDir,
		compressor: compressor,
		logger:     logger,
	}
	collection, err := fs.readSnapshot()
	if err != nil {
		return nil, err
	}
	fs.current = collection
	return fs, nil
}

func (fs *FileStore) Load(ctx context.Context) (*models.Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.current.Clone(), nil
}

func (fs *FileStore) UpdateAutoscanTimes(ctx context.Context, updates []models.TimingUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()

	var errs []error
	for _, u := range updates {
		page, ok := fs.current.Pages[u.PageID]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrPageNotFound, u.PageID))
			continue
		}
		page.SetLastAutoscanTime(u.LastAutoscanTime)
	}
	if err := fs.writeSnapshot(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (fs *FileStore) SavePage(ctx context.Context, page *models.Page) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, ok := fs.current.Pages[page.ID]; !ok {
		return fmt.Errorf("%w: %s", ErrPageNotFound, page.ID)
	}
	fs.current.Pages[page.ID] = page.Clone()
	return fs.writeSnapshot()
}

func (fs *FileStore) UpdatePage(ctx context.Context, id string, update func(page *models.Page)) (*models.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()

	current, ok := fs.current.Pages[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPageNotFound, id)
	}
	next := current.Clone()
	update(next)
	next.ID = id

	fs.current.Pages[id] = next
	if err := fs.writeSnapshot(); err != nil {
		fs.current.Pages[id] = current
		return nil, err
	}
	return next.Clone(), nil
}

func (fs *FileStore) AddPage(ctx context.Context, page *models.Page, parentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if parentID == "" {
		parentID = fs.current.Root
	}
	parent, ok := fs.current.Folders[parentID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrFolderNotFound, parentID)
	}
	if _, exists := fs.current.Pages[page.ID]; exists {
		return fmt.Errorf("%w: %s", ErrPageExists, page.ID)
	}
	if _, exists := fs.current.Folders[page.ID]; exists {
		return fmt.Errorf("%w: %s", ErrPageExists, page.ID)
	}

	fs.current.Pages[page.ID] = page.Clone()
	parent.Children = append(parent.Children, page.ID)
	return fs.writeSnapshot()
}

func (fs *FileStore) DeletePage(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, ok := fs.current.Pages[id]; !ok {
		return fmt.Errorf("%w: %s", ErrPageNotFound, id)
	}
	delete(fs.current.Pages, id)
	if parent, ok := fs.current.ParentOf(id); ok {
		children := parent.Children[:0]
		for _, child := range parent.Children {
			if child != id {
				children = append(children, child)
			}
		}
		parent.Children = children
	}
	if err := fs.writeSnapshot(); err != nil {
		return err
	}

	for _, kind := range []ContentKind{ContentOld, ContentNew} {
		if err := os.Remove(fs.contentPath(id, kind)); err != nil && !os.IsNotExist(err) {
			fs.logger.Warnf(providers.TypeApp, "Unable to remove %s content of page %s: %s", kind, id, err)
		}
	}
	return nil
}

// LoadContent returns "" when nothing has been stored yet.
func (fs *FileStore) LoadContent(ctx context.Context, id string, kind ContentKind) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(fs.contentPath(id, kind))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read %s content of page %s: %w", kind, id, err)
	}
	plain, err := fs.compressor.Decompress(data)
	if err != nil {
		return "", fmt.Errorf("decompress %s content of page %s: %w", kind, id, err)
	}
	return string(plain), nil
}

func (fs *FileStore) SaveContent(ctx context.Context, id string, kind ContentKind, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := fs.compressor.Compress([]byte(content))
	if err != nil {
		return fmt.Errorf("compress %s content of page %s: %w", kind, id, err)
	}

	// DeletePage removes content files under the write lock, so holding the
	// read lock across the check and the write leaves no orphaned file.
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	if _, ok := fs.current.Pages[id]; !ok {
		return fmt.Errorf("%w: %s", ErrPageNotFound, id)
	}
	return writeFileAtomic(fs.contentPath(id, kind), data)
}

func (fs *FileStore) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	err := fs.writeSnapshot()
	fs.compressor.Close()
	return err
}

func (fs *FileStore) contentPath(id string, kind ContentKind) string {
	return filepath.Join(fs.contentDir, EscapeFilename(id)+"."+string(kind))
}

func (fs *FileStore) readSnapshot() (*models.Collection, error) {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			fs.logger.Infof(providers.TypeApp, "No page store at %s, starting empty", fs.path)
			return models.NewCollection(), nil
		}
		return nil, err
	}

	plain, err := fs.compressor.Decompress(data)
	if err != nil {
		return nil, fmt.Errorf("decompress page store: %w", err)
	}

	var snapshot models.Snapshot
	if err := json.Unmarshal(plain, &snapshot); err != nil {
		return nil, fmt.Errorf("decode page store: %w", err)
	}
	if snapshot.Version > models.SnapshotVersion {
		return nil, fmt.Errorf("page store version %d is newer than supported %d", snapshot.Version, models.SnapshotVersion)
	}
	return snapshot.ToCollection(), nil
}

// writeSnapshot must be called with mu held.
func (fs *FileStore) writeSnapshot() error {
	jsonData, err := json.Marshal(models.SnapshotOf(fs.current))
	if err != nil {
		return err
	}
	data, err := fs.compressor.Compress(jsonData)
	if err != nil {
		return err
	}
	return writeFileAtomic(fs.path, data)
}

func writeFileAtomic(fileName string, data []byte) error {
	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// FileStore keeps announced articles in a JSON file. It is meant for a single
// process; the whole file is rewritten on every Add.
type FileStore struct {
	filePath string

	mu     sync.RWMutex
	items  []Article
	byURL  map[string]int
	nextID int64
}

// NewFileStore loads filePath if it exists.
func NewFileStore(filePath string) (*FileStore, error) {
	fs := &FileStore{
		filePath: filePath,
		byURL:    make(map[string]int),
		nextID:   1,
	}
	if err := fs.load(); err != nil {
		return nil, err
	}
	return fs, nil
}

func (fs *FileStore) load() error {
	data, err := os.ReadFile(fs.filePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read articles file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var items []Article
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("failed to unmarshal articles: %w", err)
	}
	for _, a := range items {
		if _, dup := fs.byURL[a.URL]; dup {
			continue
		}
		fs.byURL[a.URL] = len(fs.items)
		fs.items = append(fs.items, a)
		if a.ID >= fs.nextID {
			fs.nextID = a.ID + 1
		}
	}
	return nil
}

func (fs *FileStore) save() error {
	data, err := json.MarshalIndent(fs.items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal articles: %w", err)
	}
	tmp := fs.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write articles file: %w", err)
	}
	if err := os.Rename(tmp, fs.filePath); err != nil {
		return fmt.Errorf("failed to replace articles file: %w", err)
	}
	return nil
}

func (fs *FileStore) Exists(_ context.Context, url string) (bool, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	_, ok := fs.byURL[url]
	return ok, nil
}

func (fs *FileStore) Add(_ context.Context, title, url, summary string) (int64, bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, ok := fs.byURL[url]; ok {
		return 0, false, nil
	}

	a := Article{ID: fs.nextID, Title: title, URL: url, Summary: summary, AddedAt: time.Now().UTC()}
	fs.byURL[url] = len(fs.items)
	fs.items = append(fs.items, a)
	fs.nextID++

	if err := fs.save(); err != nil {
		fs.items = fs.items[:len(fs.items)-1]
		delete(fs.byURL, url)
		fs.nextID--
		return 0, false, err
	}
	return a.ID, true, nil
}

func (fs *FileStore) Count(_ context.Context) (int, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return len(fs.items), nil
}

func (fs *FileStore) Close() error { return nil }

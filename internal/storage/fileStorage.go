package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// journalEntry is one line of the journal file: either a link or a click.
type journalEntry struct {
	Link  *ShortLink  `json:"link,omitempty"`
	Click *clickEntry `json:"click,omitempty"`
}

type clickEntry struct {
	ID string    `json:"id"`
	At time.Time `json:"at"`
}

// FileStorage keeps the registry in memory and appends every change to a
// JSON-lines journal, which is replayed on open.
type FileStorage struct {
	*MemoryStorage

	mu     sync.Mutex
	file   *os.File
	logger *zap.Logger
}

func NewFileStorage(p string, logger *zap.Logger) (*FileStorage, error) {
	if err := os.MkdirAll(filepath.Dir(p), 0770); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(p, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0660)
	if err != nil {
		return nil, err
	}

	mem, _ := CreateMemoryStorage()
	fs := &FileStorage{
		MemoryStorage: mem,
		file:          file,
		logger:        logger,
	}

	if err := fs.replay(); err != nil {
		file.Close()
		return nil, err
	}

	return fs, nil
}

func (fs *FileStorage) replay() error {
	ctx := context.Background()
	scanner := bufio.NewScanner(fs.file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	links, clicks, line := 0, 0, 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}

		var entry journalEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			return fmt.Errorf("failed to parse journal line %d: %w", line, err)
		}

		switch {
		case entry.Link != nil:
			if _, err := fs.MemoryStorage.Put(ctx, *entry.Link); err != nil {
				return fmt.Errorf("journal line %d: link %s: %w", line, entry.Link.ID, err)
			}
			links++
		case entry.Click != nil:
			if err := fs.MemoryStorage.IncrementClick(ctx, entry.Click.ID, entry.Click.At); err != nil {
				fs.logger.Warn("skipping click for unknown link", zap.Int("line", line), zap.String("id", entry.Click.ID))
				continue
			}
			clicks++
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading journal: %w", err)
	}

	fs.logger.Info("journal replayed", zap.Int("links", links), zap.Int("clicks", clicks))
	return nil
}

func (fs *FileStorage) append(entry journalEntry) error {
	b, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	_, err = fs.file.Write(append(b, '\n'))
	return err
}

// Put journals the link before making it visible.
func (fs *FileStorage) Put(ctx context.Context, link ShortLink) (*ShortLink, error) {
	if link.ID == "" {
		link.ID = uuid.NewString()
	}
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now().UTC()
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.has(link.ID) {
		return nil, ErrConflict
	}
	if err := fs.append(journalEntry{Link: &link}); err != nil {
		return nil, fmt.Errorf("failed to journal link: %w", err)
	}

	return fs.MemoryStorage.Put(ctx, link)
}

// IncrementClick journals the click before counting it.
func (fs *FileStorage) IncrementClick(ctx context.Context, id string, at time.Time) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if !fs.has(id) {
		return ErrNotFound
	}
	if err := fs.append(journalEntry{Click: &clickEntry{ID: id, At: at}}); err != nil {
		return fmt.Errorf("failed to journal click: %w", err)
	}

	return fs.MemoryStorage.IncrementClick(ctx, id, at)
}

func (fs *FileStorage) PingContext(ctx context.Context) error {
	if _, err := fs.file.Stat(); err != nil {
		return err
	}
	return ctx.Err()
}

func (fs *FileStorage) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := fs.file.Sync(); err != nil && !errors.Is(err, os.ErrClosed) {
		return err
	}
	return fs.file.Close()
}

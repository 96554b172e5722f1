package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"isafeDashboard/internal/model"
)

// JsonlStorage appends event records and account snapshots to two JSONL
// files.
type JsonlStorage struct {
	eventsPath   string
	accountsPath string
	mu           sync.Mutex
}

func NewJsonlStorage(eventsPath, accountsPath string) *JsonlStorage {
	return &JsonlStorage{eventsPath: eventsPath, accountsPath: accountsPath}
}

func (s *JsonlStorage) PutEvents(_ context.Context, records []model.EventRecord) error {
	if len(records) == 0 {
		return nil
	}
	lines := make([]any, len(records))
	for i, record := range records {
		lines[i] = record
	}
	return s.appendLines(s.eventsPath, lines)
}

func (s *JsonlStorage) PutAccount(_ context.Context, snapshot model.AccountSnapshot) error {
	if s.accountsPath == "" {
		return nil
	}
	return s.appendLines(s.accountsPath, []any{snapshot})
}

func (s *JsonlStorage) appendLines(path string, values []any) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, v := range values {
		line, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

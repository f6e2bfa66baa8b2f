package filestore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore writes uploads under a per-owner directory. The locator is the
// file path; Get refuses paths outside the store root so a tampered locator
// cannot read arbitrary files.
type DiskStore struct {
	root string
}

func NewDiskStore(root string) *DiskStore {
	return &DiskStore{root: root}
}

func (s *DiskStore) Put(ctx context.Context, ownerID, name string, data []byte) (string, error) {
	_ = ctx
	dir := filepath.Join(s.root, filepath.Base(ownerID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	sum := sha256.Sum256(data)
	fileName := hex.EncodeToString(sum[:])[:12] + "-" + filepath.Base(name)
	path := filepath.Join(dir, fileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write upload %s: %w", path, err)
	}
	return path, nil
}

func (s *DiskStore) Get(ctx context.Context, locator string) ([]byte, error) {
	_ = ctx
	rootAbs, err := filepath.Abs(s.root)
	if err != nil {
		return nil, err
	}
	pathAbs, err := filepath.Abs(locator)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(pathAbs, rootAbs+string(filepath.Separator)) {
		return nil, fmt.Errorf("locator %s is outside the store root", locator)
	}
	data, err := os.ReadFile(pathAbs)
	if err != nil {
		return nil, fmt.Errorf("read stored file: %w", err)
	}
	return data, nil
}

// Package filestore persists uploaded PDF bytes behind interchangeable
// strategies: an in-process map, a local data directory, or a remote CDN. The
// locator returned by Put is opaque to the client, which echoes it back on
// later chat requests to attach the document.
package filestore

import (
	"context"
	"fmt"
	"time"

	"github.com/Akshat29Upadhyay/chatpdf/internal/config"
)

type Store interface {
	Put(ctx context.Context, ownerID, name string, data []byte) (locator string, err error)
	Get(ctx context.Context, locator string) ([]byte, error)
}

func New(cfg config.Config) (Store, error) {
	switch cfg.FileStore {
	case "memory":
		return NewMemoryStore(time.Duration(cfg.StoreTTLSecs)*time.Second, cfg.StoreMaxEntries), nil
	case "disk":
		return NewDiskStore(cfg.DataDir), nil
	case "remote":
		return NewRemoteStore(cfg.UploadURL, cfg.UploadKey), nil
	default:
		return nil, fmt.Errorf("unsupported file store: %s", cfg.FileStore)
	}
}

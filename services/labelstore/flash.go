//go:build tinygo || cgo

package labelstore

import (
	"io"
	"os"
	"sync"

	"tinygo.org/x/tinyfs"
	"tinygo.org/x/tinyfs/littlefs"
)

// Flash keeps one littlefs file per key on a block device, normally
// machine.Flash on MCU builds.
type Flash struct {
	mu sync.Mutex
	fs *littlefs.LFS
}

// OpenFlash mounts littlefs on dev, formatting it if no filesystem is found.
func OpenFlash(dev tinyfs.BlockDevice) (*Flash, error) {
	fs := littlefs.New(dev)
	fs.Configure(&littlefs.Config{
		CacheSize:     512,
		LookaheadSize: 512,
		BlockCycles:   100,
	})
	if err := fs.Mount(); err != nil {
		if err := fs.Format(); err != nil {
			return nil, err
		}
		if err := fs.Mount(); err != nil {
			return nil, err
		}
	}
	return &Flash{fs: fs}, nil
}

func (f *Flash) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fs.Unmount()
}

func flashPath(key string) string { return "/" + key }

func (f *Flash) Load(key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fh, err := f.fs.Open(flashPath(key))
	if err != nil {
		return nil, false
	}
	defer fh.Close()
	rec, err := io.ReadAll(fh)
	if err != nil || len(rec) == 0 {
		return nil, false
	}
	return rec, true
}

func (f *Flash) Save(key string, rec []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	fh, err := f.fs.OpenFile(flashPath(key), os.O_CREATE|os.O_WRONLY|os.O_TRUNC)
	if err != nil {
		return err
	}
	if _, err := fh.Write(rec); err != nil {
		_ = fh.Close()
		return err
	}
	return fh.Close()
}

package assets

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/renderer/metadata"
)

// Directories under the asset base path, one per resource kind.
const (
	TexturesPath  = "textures"
	MaterialsPath = "materials"
	ModelsPath    = "models"
	FontsPath     = "fonts"
	ShadersPath   = "shaders"
)

// ResolvePath returns the first existing file <base>/<typePath>/<name><ext>, trying the
// extensions in order. A name that already carries an extension is tried as is first.
func ResolvePath(base, typePath, name string, extensions ...string) (string, error) {
	dir := filepath.Join(base, typePath)
	if filepath.Ext(name) != "" {
		p := filepath.Join(dir, name)
		if fileExists(p) {
			return p, nil
		}
	}
	for _, ext := range extensions {
		p := filepath.Join(dir, name+ext)
		if fileExists(p) {
			return p, nil
		}
	}
	return "", errors.Wrapf(core.ErrNotFound, "no file for '%s' under %s (tried %s)", name, dir, strings.Join(extensions, ", "))
}

func fileExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}

// DetermineAssetType maps a file extension to the resource kind it holds.
func DetermineAssetType(path string) (metadata.ResourceType, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp":
		return metadata.ResourceTypeImage, true
	case ".dmt":
		return metadata.ResourceTypeMaterial, true
	case ".obj", ".dsm", ".gltf", ".mtl":
		return metadata.ResourceTypeMesh, true
	case ".fnt":
		return metadata.ResourceTypeBitmapFont, true
	case ".txt":
		return metadata.ResourceTypeText, true
	}
	return metadata.ResourceTypeCustom, false
}

// AssetChange is a file under the watched tree that was created or written.
type AssetChange struct {
	// Name is the file name without directory and extension, the name resources are acquired by.
	Name string
	Path string
	Type metadata.ResourceType
}

// Watcher observes the asset tree and collects changes. Events arrive on the fsnotify
// goroutine; Drain hands them to the primary thread, which applies them.
type Watcher struct {
	fsnotify *fsnotify.Watcher
	root     string

	mutex    sync.Mutex
	pending  []AssetChange
	seen     map[string]int
	isClosed bool

	done chan struct{}
	wg   sync.WaitGroup
}

func NewWatcher(root string) (*Watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating fsnotify watcher")
	}
	return &Watcher{
		fsnotify: fsWatch,
		root:     root,
		seen:     make(map[string]int),
		done:     make(chan struct{}),
	}, nil
}

// Start watches the root and all sub-directories.
func (w *Watcher) Start() error {
	if err := w.watchRecursive(w.root); err != nil {
		return err
	}
	w.wg.Add(1)
	go w.run()
	core.LogInfo("watching '%s' for asset changes", w.root)
	return nil
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			if e.Op&fsnotify.Create != 0 {
				if s, err := os.Stat(e.Name); err == nil && s.IsDir() {
					if err := w.watchRecursive(e.Name); err != nil {
						core.LogWarn("unable to watch '%s': %v", e.Name, err)
					}
					continue
				}
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.handleFileEvent(e.Name)
			}
			// A removed directory cannot be stat'ed, so just try to unwatch it.
			if e.Op&fsnotify.Remove != 0 {
				_ = w.fsnotify.Remove(e.Name)
			}
		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("asset watcher: %v", err)
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) watchRecursive(path string) error {
	return filepath.WalkDir(path, func(walkPath string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fsnotify.Add(walkPath)
		}
		return nil
	})
}

// handleFileEvent coalesces repeated writes to the same file into one change.
func (w *Watcher) handleFileEvent(path string) {
	assetType, ok := DetermineAssetType(path)
	if !ok {
		return
	}
	base := filepath.Base(path)
	change := AssetChange{
		Name: strings.TrimSuffix(base, filepath.Ext(base)),
		Path: path,
		Type: assetType,
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()
	if i, ok := w.seen[path]; ok {
		w.pending[i] = change
		return
	}
	w.seen[path] = len(w.pending)
	w.pending = append(w.pending, change)
}

// Drain returns the changes collected since the last call, in arrival order.
func (w *Watcher) Drain() []AssetChange {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	out := w.pending
	w.pending = nil
	clear(w.seen)
	return out
}

func (w *Watcher) Close() error {
	w.mutex.Lock()
	if w.isClosed {
		w.mutex.Unlock()
		return nil
	}
	w.isClosed = true
	w.mutex.Unlock()

	close(w.done)
	err := w.fsnotify.Close()
	w.wg.Wait()
	return err
}

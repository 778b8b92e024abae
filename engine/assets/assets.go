package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/orrery/engine/assets/loaders"
	"github.com/spaghettifunk/orrery/engine/core"
	"github.com/spaghettifunk/orrery/engine/renderer/metadata"
)

const shaderDirectory = "shaders"

type AssetInfo struct {
	// Path is relative to the asset directory, with forward slashes.
	Path       string
	Type       metadata.ResourceType
	LastLoaded time.Time
}

// AssetManager indexes the asset directory and keeps the index current with
// fsnotify. Loaded pipeline state lives for the whole process, so changes are
// announced on the event bus but never hot swapped.
type AssetManager struct {
	root    string
	assets  map[string]AssetInfo
	loaders map[metadata.ResourceType]Loader
	bus     *core.EventBus

	mutex sync.RWMutex

	done     chan struct{}
	wg       sync.WaitGroup
	fsnotify *fsnotify.Watcher
	isClosed bool
}

// NewAssetManager returns a manager for the directory root. bus may be nil.
func NewAssetManager(root string, bus *core.EventBus) *AssetManager {
	return &AssetManager{
		root:    filepath.Clean(root),
		assets:  make(map[string]AssetInfo),
		loaders: make(map[metadata.ResourceType]Loader),
		bus:     bus,
		done:    make(chan struct{}),
	}
}

// Initialize indexes every file under the root. With watch set the index
// follows changes on disk until Shutdown.
func (am *AssetManager) Initialize(watch bool) error {
	info, err := os.Stat(am.root)
	if err != nil {
		return fmt.Errorf("asset directory %s: %w", am.root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("asset directory %s is not a directory", am.root)
	}

	am.registerLoader(metadata.ResourceTypeShader, &loaders.ShaderLoader{})
	am.registerLoader(metadata.ResourceTypeImage, &loaders.ImageLoader{})

	if watch {
		fsWatch, err := fsnotify.NewWatcher()
		if err != nil {
			return err
		}
		am.fsnotify = fsWatch
		am.wg.Add(1)
		go am.start()
	}

	if err := am.watchRecursive(am.root); err != nil {
		return err
	}
	core.LogDebug("asset manager indexed %d assets under %s", am.Count(), am.root)
	return nil
}

func (am *AssetManager) Shutdown() error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return core.ErrAlreadyShutdown
	}
	am.isClosed = true
	am.mutex.Unlock()

	if am.fsnotify != nil {
		close(am.done)
		am.wg.Wait()
	}
	return nil
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType metadata.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

// Count returns the number of indexed assets.
func (am *AssetManager) Count() int {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	return len(am.assets)
}

// Lookup returns the index entry of an asset by its relative path.
func (am *AssetManager) Lookup(name string) (AssetInfo, bool) {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	asset, ok := am.assets[filepath.ToSlash(name)]
	return asset, ok
}

// Names returns the sorted paths of every indexed asset of resourceType.
func (am *AssetManager) Names(resourceType metadata.ResourceType) []string {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	names := make([]string, 0, len(am.assets))
	for name, asset := range am.assets {
		if asset.Type == resourceType {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// ShaderPrograms returns the sorted names of the programs that have at least
// one stage under shaders/.
func (am *AssetManager) ShaderPrograms() []string {
	seen := make(map[string]bool)
	var programs []string
	for _, name := range am.Names(metadata.ResourceTypeShader) {
		base, ok := strings.CutPrefix(name, shaderDirectory+"/")
		if !ok || strings.Contains(base, "/") {
			continue
		}
		base = strings.TrimSuffix(base, ".wgsl")
		switch {
		case strings.HasSuffix(base, ".vert"):
			base = strings.TrimSuffix(base, ".vert")
		case strings.HasSuffix(base, ".frag"):
			base = strings.TrimSuffix(base, ".frag")
		default:
			continue
		}
		if !seen[base] {
			seen[base] = true
			programs = append(programs, base)
		}
	}
	return programs
}

// LoadAsset loads the asset at the relative path name, which must be indexed
// with the requested type.
func (am *AssetManager) LoadAsset(name string, resourceType metadata.ResourceType) (*metadata.Resource, error) {
	name = filepath.ToSlash(name)

	am.mutex.Lock()
	asset, exists := am.assets[name]
	if exists {
		asset.LastLoaded = time.Now()
		am.assets[name] = asset
	}
	am.mutex.Unlock()

	if !exists {
		return nil, fmt.Errorf("asset not found: %s", name)
	}
	if asset.Type != resourceType {
		return nil, fmt.Errorf("asset %s is a %s, not a %s", name, asset.Type, resourceType)
	}
	loader, ok := am.loaders[asset.Type]
	if !ok {
		return nil, fmt.Errorf("no loader registered for asset type: %s", asset.Type)
	}
	return loader.Load(filepath.Join(am.root, filepath.FromSlash(name)))
}

func (am *AssetManager) UnloadAsset(resource *metadata.Resource) error {
	if resource == nil {
		return errors.New("nil resource")
	}
	for _, loader := range am.loaders {
		if err := loader.Unload(resource); err != nil {
			return err
		}
	}
	return nil
}

// ShaderSource returns the WGSL text of a file under shaders/.
func (am *AssetManager) ShaderSource(fileName string) (string, error) {
	resource, err := am.LoadAsset(shaderDirectory+"/"+fileName, metadata.ResourceTypeShader)
	if err != nil {
		return "", err
	}
	return resource.Data.(string), nil
}

// Image decodes the image at the relative path name.
func (am *AssetManager) Image(name string) (*metadata.Surface, error) {
	resource, err := am.LoadAsset(name, metadata.ResourceTypeImage)
	if err != nil {
		return nil, err
	}
	return resource.Data.(*metadata.Surface), nil
}

func (am *AssetManager) start() {
	defer am.wg.Done()
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			am.handleWatchEvent(e)

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("asset watcher: %s", err)

		case <-am.done:
			am.fsnotify.Close()
			return
		}
	}
}

func (am *AssetManager) handleWatchEvent(e fsnotify.Event) {
	s, err := os.Stat(e.Name)
	if err == nil && s.IsDir() {
		if e.Op&fsnotify.Create != 0 {
			if err := am.watchRecursive(e.Name); err != nil {
				core.LogWarn("failed to watch %s: %s", e.Name, err)
			}
		}
		return
	}
	switch {
	case e.Op&(fsnotify.Create|fsnotify.Write) != 0:
		if rel, ok := am.handleFileEvent(e.Name); ok {
			core.LogInfo("asset %s changed on disk, restart to pick it up", rel)
			am.fire(rel, false)
		}
	case e.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		// A removed directory cannot be told apart from a file any more.
		_ = am.fsnotify.Remove(e.Name)
		if rel, ok := am.removeAsset(e.Name); ok {
			am.fire(rel, true)
		}
	}
}

func (am *AssetManager) fire(path string, removed bool) {
	if am.bus == nil {
		return
	}
	am.bus.Fire(core.EventContext{
		Type: core.EVENT_CODE_ASSET_CHANGED,
		Data: &core.AssetEvent{Path: path, Removed: removed},
	})
}

// watchRecursive indexes every file under path and, when watching, adds
// every directory to the watch list.
func (am *AssetManager) watchRecursive(path string) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if am.fsnotify != nil {
				return am.fsnotify.Add(walkPath)
			}
			return nil
		}
		am.handleFileEvent(walkPath)
		return nil
	})
}

// handleFileEvent indexes a created or modified file and returns its path
// relative to the root.
func (am *AssetManager) handleFileEvent(path string) (string, bool) {
	assetType := determineAssetType(path)
	if assetType == metadata.ResourceTypeNone {
		return "", false
	}
	rel, err := am.relative(path)
	if err != nil {
		return "", false
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.assets[rel] = AssetInfo{
		Path: rel,
		Type: assetType,
	}
	return rel, true
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) (string, bool) {
	rel, err := am.relative(path)
	if err != nil {
		return "", false
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()
	if _, ok := am.assets[rel]; !ok {
		return "", false
	}
	delete(am.assets, rel)
	return rel, true
}

func (am *AssetManager) relative(path string) (string, error) {
	rel, err := filepath.Rel(am.root, path)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

func determineAssetType(path string) metadata.ResourceType {
	switch filepath.Ext(path) {
	case ".wgsl":
		return metadata.ResourceTypeShader
	case ".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff":
		return metadata.ResourceTypeImage
	default:
		return metadata.ResourceTypeNone
	}
}

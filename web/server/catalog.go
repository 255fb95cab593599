package server

import (
	"sync"

	"github.com/df07/go-sphere-pathtracer/pkg/loaders"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// sceneCatalog caches the scene files of one directory. The directory is
// scanned on first use and again only when a lookup misses, and each file is
// parsed once per scan.
type sceneCatalog struct {
	dir string

	mu      sync.Mutex
	scanned bool
	infos   []scene.SceneInfo
	parsed  map[string]*loaders.SceneFile // by scene id
}

func newSceneCatalog(dir string) *sceneCatalog {
	return &sceneCatalog{dir: dir}
}

// list returns the cached scene files, scanning the directory on first use
func (c *sceneCatalog) list() ([]scene.SceneInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.scanned {
		if err := c.scan(); err != nil {
			return nil, err
		}
	}
	return c.infos, nil
}

// load builds the scene file with the given id. ok is false when no file in
// the directory has that id, even after a rescan.
func (c *sceneCatalog) load(id string) (d *scene.Description, ok bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	info, found := c.find(id)
	if !found {
		if err := c.scan(); err != nil {
			return nil, false, err
		}
		if info, found = c.find(id); !found {
			return nil, false, nil
		}
	}

	f := c.parsed[id]
	if f == nil {
		if f, err = loaders.ParseSceneFile(info.FilePath); err != nil {
			return nil, true, err
		}
		c.parsed[id] = f
	}

	d, err = f.Describe(info.FilePath)
	return d, true, err
}

func (c *sceneCatalog) find(id string) (scene.SceneInfo, bool) {
	for _, info := range c.infos {
		if info.ID == id {
			return info, true
		}
	}
	return scene.SceneInfo{}, false
}

// scan re-reads the directory and drops every parsed file. c.mu must be held.
func (c *sceneCatalog) scan() error {
	infos, err := loaders.ListSceneFiles(c.dir)
	if err != nil {
		return err
	}
	logger.Debugf("scanned %s: %d scene files", c.dir, len(infos))

	c.infos = infos
	c.parsed = make(map[string]*loaders.SceneFile, len(infos))
	c.scanned = true
	return nil
}

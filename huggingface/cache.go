package huggingface

import (
	"os"
	"path/filepath"
	"strings"
)

// Cache layout mirrors the Python huggingface_hub structure so both tools
// can share a cache:
//
//	<cache>/models--owner--name/snapshots/<revision>/<files>
const (
	defaultCacheSubdir = "huggingface/hub"
	cacheModelPrefix   = "models--"
)

// CacheDir returns the hub cache root, honoring HF_HUB_CACHE and HF_HOME.
func CacheDir() string {
	if dir := os.Getenv("HF_HUB_CACHE"); dir != "" {
		return dir
	}
	if hfHome := os.Getenv(EnvHome); hfHome != "" {
		return filepath.Join(hfHome, "hub")
	}
	if xdgCache := os.Getenv("XDG_CACHE_HOME"); xdgCache != "" {
		return filepath.Join(xdgCache, defaultCacheSubdir)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".cache", defaultCacheSubdir)
	}
	return filepath.Join(os.TempDir(), "huggingface_cache")
}

func repoIDToCacheDir(repoID string) string {
	return cacheModelPrefix + strings.ReplaceAll(repoID, "/", "--")
}

func cacheDirToRepoID(dir string) string {
	return strings.ReplaceAll(strings.TrimPrefix(dir, cacheModelPrefix), "--", "/")
}

func snapshotDir(repoID, revision string) string {
	return filepath.Join(CacheDir(), repoIDToCacheDir(repoID), "snapshots", revision)
}

// CachedModels lists repo ids present in the cache.
func CachedModels() ([]string, error) {
	entries, err := os.ReadDir(CacheDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var models []string
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), cacheModelPrefix) {
			models = append(models, cacheDirToRepoID(e.Name()))
		}
	}
	return models, nil
}

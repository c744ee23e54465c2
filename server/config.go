package server

import (
	"github.com/xiaoyuanzhu-com/comix/api"
	"github.com/xiaoyuanzhu-com/comix/archive"
	"github.com/xiaoyuanzhu-com/comix/library"
	"github.com/xiaoyuanzhu-com/comix/log"
)

// Config holds server configuration
type Config struct {
	// Server infrastructure
	Port int
	Host string
	Env  string // "development" or "production"

	// Paths
	CollectionDir string // comic archives, read only
	StorageDir    string // extracted pages, wiped at startup and shutdown
	TemplatePath  string

	// Extraction
	CacheSize      int
	ExtractWorkers int
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env != "production"
}

// ToLibraryConfig converts server config to indexer config
func (c *Config) ToLibraryConfig() library.Config {
	return library.Config{
		Root:   c.CollectionDir,
		Logger: log.GetLogger("library"),
	}
}

// ToArchiveConfig converts server config to resolver config
func (c *Config) ToArchiveConfig(index archive.PathLookup, storage *archive.Storage) archive.Config {
	return archive.Config{
		Index:     index,
		Storage:   storage,
		Logger:    log.GetLogger("archive"),
		CacheSize: c.CacheSize,
		Workers:   c.ExtractWorkers,
	}
}

// ToAPIConfig converts server config to HTTP layer config
func (c *Config) ToAPIConfig(index *library.Index, resolver api.PageResolver, layout string) api.Config {
	return api.Config{
		Index:    index,
		Resolver: resolver,
		Layout:   layout,
		Logger:   log.GetLogger("api"),
	}
}

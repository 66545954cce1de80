package session

import (
	"fmt"

	"github.com/rustyeddy/stakesim/catalog"
	"github.com/rustyeddy/stakesim/config"
	"github.com/rustyeddy/stakesim/journal"
	"github.com/rustyeddy/stakesim/store"
)

// NewSource picks where reference data is read from: a base URL, a
// directory, or the bundled assets.
func NewSource(cfg config.AssetsConfig) catalog.Source {
	switch {
	case cfg.BaseURL != "":
		return catalog.NewHTTPSource(cfg.BaseURL)
	case cfg.Dir != "":
		return catalog.Dir(cfg.Dir)
	default:
		return catalog.Embedded()
	}
}

// OpenStore opens the key-value store named by cfg.
func OpenStore(cfg config.StorageConfig) (store.Store, error) {
	switch cfg.Type {
	case "", "memory":
		return store.NewMemory(), nil
	case "file":
		s, err := store.OpenFile(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open state file: %w", err)
		}
		return s, nil
	case "sqlite":
		s, err := store.NewSQLite(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open state db: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}

// OpenJournal opens the journal named by cfg.
func OpenJournal(cfg config.JournalConfig) (journal.Journal, error) {
	switch cfg.Type {
	case "", "none":
		return journal.Nop{}, nil
	case "csv":
		j, err := journal.NewCSV(cfg.FillsFile, cfg.CashFile)
		if err != nil {
			return nil, fmt.Errorf("open csv journal: %w", err)
		}
		return j, nil
	case "sqlite":
		j, err := journal.NewSQLite(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite journal: %w", err)
		}
		return j, nil
	default:
		return nil, fmt.Errorf("unknown journal type %q", cfg.Type)
	}
}

// Package store persists the contract ledger as a versioned JSON
// snapshot. The engine never touches storage: callers load raw records
// through a Repository, pass them through the normalizer, and hand the
// resulting contracts to the engine. Writes are atomic (temp file +
// rename) so a concurrent reader always sees a complete snapshot.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"revenue-analytics-service/internal/models"
	apperrors "revenue-analytics-service/pkg/errors"
	"revenue-analytics-service/pkg/logger"
)

// SnapshotVersion is the schema version written by this build.
const SnapshotVersion = "1.1.0"

// Snapshot is the persisted document: the raw contract rows plus the
// configuration lists the editing UI offers.
type Snapshot struct {
	Version      string             `json:"version"`
	LastModified time.Time          `json:"lastModified"`
	Contracts    []models.RawRecord `json:"contracts"`
	Config       SnapshotConfig     `json:"config"`
}

// SnapshotConfig carries the configurable vocabularies of the ledger.
type SnapshotConfig struct {
	Currencies      []string `json:"currencies"`
	DefaultCurrency string   `json:"defaultCurrency"`
	SalesTypes      []string `json:"salesTypes"`
	StartStatuses   []string `json:"startStatuses"`
	EndStatuses     []string `json:"endStatuses"`
}

// DefaultSnapshotConfig returns the vocabulary of a fresh snapshot.
func DefaultSnapshotConfig() SnapshotConfig {
	return SnapshotConfig{
		Currencies:      []string{"CAD", "USD", "EUR"},
		DefaultCurrency: "CAD",
		SalesTypes:      []string{"N", "U", "C"},
		StartStatuses:   []string{"Signed", "Active", "Renew"},
		EndStatuses:     []string{"Active", "Churn", "End"},
	}
}

// NewSnapshot creates an empty snapshot at the current schema version.
func NewSnapshot(now time.Time) *Snapshot {
	return &Snapshot{
		Version:      SnapshotVersion,
		LastModified: now,
		Contracts:    []models.RawRecord{},
		Config:       DefaultSnapshotConfig(),
	}
}

// Repository is the injected persistence boundary. Implementations must
// serialize writes so every Load observes a consistent snapshot.
type Repository interface {
	Load() (*Snapshot, error)
	Save(*Snapshot) error
}

// FileStore is a Repository over a single JSON file.
type FileStore struct {
	path string
	now  func() time.Time
	log  logger.Logger
}

// NewFileStore creates a file-backed repository at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: path,
		now:  time.Now,
		log:  logger.GetGlobalLogger().WithComponent("store"),
	}
}

// Load reads and migrates the snapshot. A missing file yields a fresh
// empty snapshot rather than an error.
func (fs *FileStore) Load() (*Snapshot, error) {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			fs.log.WithField("path", fs.path).Info("no snapshot found, starting empty")
			return NewSnapshot(fs.now()), nil
		}
		return nil, apperrors.FileError(apperrors.CodeFilePermission, fs.path, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, apperrors.StorageError(apperrors.CodeSnapshotCorrupted, fs.path, err)
	}

	if err := Migrate(&snap, fs.now()); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Save writes the snapshot atomically, stamping version and modification
// time.
func (fs *FileStore) Save(snap *Snapshot) error {
	snap.Version = SnapshotVersion
	snap.LastModified = fs.now()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return apperrors.Wrap(err, apperrors.CategoryStorage, apperrors.CodeUnexpectedError,
			"failed to encode snapshot")
	}

	dir := filepath.Dir(fs.path)
	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return apperrors.StorageError(apperrors.CodeSnapshotWriteConflict, fs.path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return apperrors.StorageError(apperrors.CodeSnapshotWriteConflict, fs.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return apperrors.StorageError(apperrors.CodeSnapshotWriteConflict, fs.path, err)
	}

	if err := os.Rename(tmpName, fs.path); err != nil {
		os.Remove(tmpName)
		return apperrors.StorageError(apperrors.CodeSnapshotWriteConflict, fs.path, err)
	}

	fs.log.WithFields(logger.Fields{
		"path":      fs.path,
		"contracts": len(snap.Contracts),
	}).Info("snapshot saved")
	return nil
}

// Migrate upgrades a snapshot from any earlier schema version in place.
// Older snapshots lacked parts of the config vocabulary; migration fills
// the defaults without touching contract rows. Unknown future versions
// are rejected.
func Migrate(snap *Snapshot, now time.Time) error {
	switch snap.Version {
	case SnapshotVersion:
		// current
	case "", "1.0.0":
		defaults := DefaultSnapshotConfig()
		if len(snap.Config.Currencies) == 0 {
			snap.Config.Currencies = defaults.Currencies
		}
		if snap.Config.DefaultCurrency == "" {
			snap.Config.DefaultCurrency = defaults.DefaultCurrency
		}
		if len(snap.Config.SalesTypes) == 0 {
			snap.Config.SalesTypes = defaults.SalesTypes
		}
		if len(snap.Config.StartStatuses) == 0 {
			snap.Config.StartStatuses = defaults.StartStatuses
		}
		if len(snap.Config.EndStatuses) == 0 {
			snap.Config.EndStatuses = defaults.EndStatuses
		}
		snap.Version = SnapshotVersion
		snap.LastModified = now
	default:
		return apperrors.StorageError(apperrors.CodeUnsupportedVersion, snap.Version, nil)
	}

	if snap.Contracts == nil {
		snap.Contracts = []models.RawRecord{}
	}
	return nil
}

// HasCurrency reports whether the snapshot config lists the currency.
func (c SnapshotConfig) HasCurrency(code string) bool {
	for _, cur := range c.Currencies {
		if cur == code {
			return true
		}
	}
	return false
}

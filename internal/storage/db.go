package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const snapshotRowID = 1

// snapshotRecord is the single-row table holding the ledger snapshot as an
// opaque JSON document.
type snapshotRecord struct {
	ID        uint           `gorm:"primaryKey"`
	Payload   datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

func (snapshotRecord) TableName() string { return "ledger_snapshots" }

// OpenDatabase connects to the snapshot database. Postgres DSNs are
// recognised by their scheme; anything else is treated as a SQLite path.
func OpenDatabase(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database dsn must not be empty")
	}

	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to snapshot database: %w", err)
	}

	return db, nil
}

// DBGateway stores snapshots in a relational database. The whole snapshot
// lives in one row; each save replaces it inside a transaction, which gives
// the crash-safety the gateway contract requires.
type DBGateway struct {
	db *gorm.DB
}

// NewDBGateway migrates the snapshot table and returns the gateway.
func NewDBGateway(db *gorm.DB) (*DBGateway, error) {
	if err := db.AutoMigrate(&snapshotRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate snapshot table: %w", err)
	}
	return &DBGateway{db: db}, nil
}

// Load reads the durable snapshot, returning the initial empty state when
// no row exists yet.
func (g *DBGateway) Load(ctx context.Context) (Snapshot, error) {
	var record snapshotRecord
	err := g.db.WithContext(ctx).First(&record, snapshotRowID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return NewSnapshot(), nil
		}
		return Snapshot{}, fmt.Errorf("failed to load snapshot row: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(record.Payload, &snapshot); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot payload: %w", err)
	}
	snapshot.normalize()

	return snapshot, nil
}

// Save upserts the snapshot row.
func (g *DBGateway) Save(ctx context.Context, snapshot Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	record := snapshotRecord{ID: snapshotRowID, Payload: payload, UpdatedAt: time.Now().UTC()}

	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&record).Error
	})
}

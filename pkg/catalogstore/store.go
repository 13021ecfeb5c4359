package catalogstore

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kasuganosora/tablecore/pkg/catalog"
)

// schemaObjectRecord is the durable row shape for a catalog.ObjectRef.
// External is the primary key rather than ID, since External (a UUID) is
// stable across an id renumbering while ID is only a process-local
// integer handle (catalog.ObjectRef's own doc comment).
type schemaObjectRecord struct {
	External string `gorm:"primaryKey;size:36"`
	ID       int64  `gorm:"index;not null"`
	Kind     int    `gorm:"not null"`
	Schema   string
	Name     string `gorm:"not null"`
	Comment  string
	Hidden   bool
}

func (schemaObjectRecord) TableName() string { return "tablecore_schema_objects" }

func toRecord(ref catalog.ObjectRef) schemaObjectRecord {
	return schemaObjectRecord{
		External: ref.External,
		ID:       ref.ID,
		Kind:     int(ref.Kind),
		Schema:   ref.Schema,
		Name:     ref.Name,
		Comment:  ref.Comment,
		Hidden:   ref.Hidden,
	}
}

func fromRecord(r schemaObjectRecord) catalog.ObjectRef {
	return catalog.ObjectRef{
		ID:       r.ID,
		External: r.External,
		Kind:     catalog.ObjectKind(r.Kind),
		Schema:   r.Schema,
		Name:     r.Name,
		Comment:  r.Comment,
		Hidden:   r.Hidden,
	}
}

// Store is a durable, SQLite-backed schema-object registry. It stands
// alone: database.DB keeps its own schema-object map in memory and does
// not call Store from AddSchemaObject/RemoveSchemaObject/SchemaObjects.
type Store struct {
	db   *gorm.DB
	dial *Dialector
}

// Open opens (creating if absent) a SQLite-backed catalog store at dsn
// and ensures its schema table exists.
func Open(dsn string) (*Store, error) {
	dial := NewDialector(dsn)
	db, err := gorm.Open(dial, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("catalogstore: open: %w", err)
	}
	if err := db.AutoMigrate(&schemaObjectRecord{}); err != nil {
		return nil, fmt.Errorf("catalogstore: migrate: %w", err)
	}
	return &Store{db: db, dial: dial}, nil
}

// Save upserts ref, keyed by its External identity.
func (s *Store) Save(ref catalog.ObjectRef) error {
	rec := toRecord(ref)
	return s.db.Save(&rec).Error
}

// Delete removes the schema object identified by external.
func (s *Store) Delete(external string) error {
	return s.db.Where("external = ?", external).Delete(&schemaObjectRecord{}).Error
}

// Load returns every persisted schema object, for populating
// database.DB.SchemaObjects() at startup.
func (s *Store) Load() ([]catalog.ObjectRef, error) {
	var records []schemaObjectRecord
	if err := s.db.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("catalogstore: load: %w", err)
	}
	out := make([]catalog.ObjectRef, len(records))
	for i, r := range records {
		out[i] = fromRecord(r)
	}
	return out, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.dial.Close()
}

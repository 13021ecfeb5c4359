// Package database defines the Database/Session collaborator contracts
// spec.md §6 names, plus a default in-process implementation wiring the
// lock coordinator, the MVCC manager, and a schema-object registry.
package database

import (
	"sync"
	"sync/atomic"

	"github.com/kasuganosora/tablecore/pkg/catalog"
	"github.com/kasuganosora/tablecore/pkg/lock"
	"github.com/kasuganosora/tablecore/pkg/mvcc"
	"github.com/kasuganosora/tablecore/pkg/row"
)

// ReferentialIntegrity toggles whether TRUNCATE/DROP must check that no
// other table's foreign key still references the target.
type ReferentialIntegrity int

const (
	ReferentialIntegrityOn ReferentialIntegrity = iota
	ReferentialIntegrityOff
)

// Settings holds the table-layer-scoped configuration every collaborator
// reads from the Database handle, rather than a process global.
type Settings struct {
	MaxColumnsPerTable int
	IndexBuildBatchSize int
	BumpIdentityOnManualInsert bool
}

// Database is the collaborator contract spec.md §6 lists under "To
// collaborators (inputs)": the handle every table, index, and
// expression evaluator reaches back through for database-wide state —
// never through a process global, per spec.md §9's "Global mutable lock
// state" design note.
type Database interface {
	NextModificationDataID() int64
	LockMode() lock.DatabaseMode
	IsMultiVersion() bool
	IsMultiThreaded() bool
	CompareMode() catalog.CompareMode
	Sessions() []Session
	AddSchemaObject(ref catalog.ObjectRef) error
	RemoveSchemaObject(external string) error
	UpdateMeta(ref catalog.ObjectRef) error
	RemoveMeta(external string) error
	ReferentialIntegrity() ReferentialIntegrity
	Settings() Settings
	RowFactory(width int) *row.Factory

	// Lock returns the per-table lock manager, creating one on first use.
	Lock(tableName string) *lock.Manager
	// MVCC returns the shared MVCC manager used when IsMultiVersion is
	// true; nil otherwise.
	MVCC() *mvcc.Manager
}

// DB is the default in-process Database implementation: one lock
// coordinator, one MVCC manager, and a schema-object registry keyed by
// the object's external (UUID) reference.
type DB struct {
	mu sync.RWMutex

	modID int64

	lockMode      lock.DatabaseMode
	multiVersion  bool
	multiThreaded bool
	compareMode   catalog.CompareMode
	refIntegrity  ReferentialIntegrity
	settings      Settings

	coord *lock.Coordinator
	mvccM *mvcc.Manager
	locks map[string]*lock.Manager

	schema map[string]catalog.ObjectRef // external ref -> object
	byName map[string]string            // qualified name -> external ref

	sessions map[int64]Session
}

// Option configures a DB at construction time.
type Option func(*DB)

func WithMultiVersion(enabled bool) Option { return func(d *DB) { d.multiVersion = enabled } }
func WithMultiThreaded(enabled bool) Option { return func(d *DB) { d.multiThreaded = enabled } }
func WithCompareMode(mode catalog.CompareMode) Option { return func(d *DB) { d.compareMode = mode } }
func WithLockMode(mode lock.DatabaseMode) Option { return func(d *DB) { d.lockMode = mode } }
func WithSettings(s Settings) Option { return func(d *DB) { d.settings = s } }
func WithReferentialIntegrity(ri ReferentialIntegrity) Option {
	return func(d *DB) { d.refIntegrity = ri }
}

// NewDB creates a fresh in-process database handle, owning its own lock
// coordinator and MVCC manager (never the process-wide singleton, per
// spec.md §9 — each Database owns its own condvar and deadlock-detection
// lock).
func NewDB(opts ...Option) *DB {
	d := &DB{
		lockMode:      lock.DBModeReadCommitted,
		multiThreaded: true,
		compareMode:   catalog.CompareUpper,
		refIntegrity:  ReferentialIntegrityOn,
		settings: Settings{
			MaxColumnsPerTable:         1000,
			IndexBuildBatchSize:        10000,
			BumpIdentityOnManualInsert: true,
		},
		locks:    make(map[string]*lock.Manager),
		schema:   make(map[string]catalog.ObjectRef),
		byName:   make(map[string]string),
		sessions: make(map[int64]Session),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.coord = lock.NewCoordinator(d.lockMode, !d.multiThreaded)
	if d.multiVersion {
		d.mvccM = mvcc.NewManager(mvcc.RepeatableRead)
	}
	return d
}

func (d *DB) NextModificationDataID() int64 {
	return atomic.AddInt64(&d.modID, 1)
}

func (d *DB) LockMode() lock.DatabaseMode { return d.coord.Mode() }

func (d *DB) IsMultiVersion() bool { return d.multiVersion }

func (d *DB) IsMultiThreaded() bool { return d.multiThreaded }

func (d *DB) CompareMode() catalog.CompareMode { return d.compareMode }

func (d *DB) ReferentialIntegrity() ReferentialIntegrity { return d.refIntegrity }

func (d *DB) Settings() Settings { return d.settings }

func (d *DB) RowFactory(width int) *row.Factory { return row.NewFactory(width) }

func (d *DB) Lock(tableName string) *lock.Manager {
	d.mu.Lock()
	defer d.mu.Unlock()
	m, ok := d.locks[tableName]
	if !ok {
		m = d.coord.NewManager(tableName)
		d.locks[tableName] = m
	}
	return m
}

func (d *DB) MVCC() *mvcc.Manager { return d.mvccM }

func (d *DB) Sessions() []Session {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Session, 0, len(d.sessions))
	for _, s := range d.sessions {
		out = append(out, s)
	}
	return out
}

// RegisterSession makes s visible to Sessions() and deadlock/monitoring
// surfaces. Called by the session constructor, not by table code.
func (d *DB) RegisterSession(s Session) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sessions[s.ID()] = s
}

// UnregisterSession removes s, releasing its locks first.
func (d *DB) UnregisterSession(s Session) {
	d.coord.ReleaseSession(s)
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.sessions, s.ID())
}

func (d *DB) AddSchemaObject(ref catalog.ObjectRef) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.schema[ref.External] = ref
	d.byName[ref.QualifiedName()] = ref.External
	return nil
}

func (d *DB) RemoveSchemaObject(external string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	ref, ok := d.schema[external]
	if !ok {
		return nil
	}
	delete(d.schema, external)
	delete(d.byName, ref.QualifiedName())
	return nil
}

// UpdateMeta re-registers ref, overwriting any prior entry under the
// same external id (e.g. after a rename or a recompile that changes the
// object's comment).
func (d *DB) UpdateMeta(ref catalog.ObjectRef) error {
	return d.AddSchemaObject(ref)
}

func (d *DB) RemoveMeta(external string) error {
	return d.RemoveSchemaObject(external)
}

// Lookup resolves a qualified name to its current ObjectRef, for
// metadata surfaces and DDL name resolution.
func (d *DB) Lookup(qualifiedName string) (catalog.ObjectRef, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	external, ok := d.byName[qualifiedName]
	if !ok {
		return catalog.ObjectRef{}, false
	}
	ref, ok := d.schema[external]
	return ref, ok
}

// SchemaObjects returns every registered schema object, for metadata
// tables (pkg/metatable) to enumerate.
func (d *DB) SchemaObjects() []catalog.ObjectRef {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]catalog.ObjectRef, 0, len(d.schema))
	for _, ref := range d.schema {
		out = append(out, ref)
	}
	return out
}

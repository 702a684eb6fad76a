// Package memory provides an in-process implementation of the persistence
// contracts. Transactions take the store lock and roll back by restoring a
// snapshot, so committed state is never observed torn. Used by tests and the
// development seed path.
package memory

import (
	"context"
	"sync"
	"time"

	"tiendapos/internal/core/id"
	"tiendapos/internal/core/tx"
	"tiendapos/internal/domain/catalog"
	"tiendapos/internal/domain/permissions"
	"tiendapos/internal/domain/sales"
	"tiendapos/internal/domain/tenantcfg"
)

// Compile-time interface checks.
var (
	_ catalog.Repository     = (*productRepo)(nil)
	_ sales.Repository       = (*saleRepo)(nil)
	_ permissions.Repository = (*matrixRepo)(nil)
	_ tenantcfg.Store        = (*settingsRepo)(nil)
	_ tx.ReadOnlyManager     = (*Store)(nil)
)

type txKey struct{}

// Store holds all tenant data in maps keyed by tenant ID. Repository views
// over the shared state are obtained through Products, Sales, Permissions,
// and Settings.
type Store struct {
	mu sync.Mutex

	products map[id.ID]map[id.ID]*catalog.Product
	sales    map[id.ID]map[id.ID]*sales.SaleRecord
	matrices map[id.ID]permissions.Matrix
	settings map[id.ID]tenantcfg.Settings
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		products: make(map[id.ID]map[id.ID]*catalog.Product),
		sales:    make(map[id.ID]map[id.ID]*sales.SaleRecord),
		matrices: make(map[id.ID]permissions.Matrix),
		settings: make(map[id.ID]tenantcfg.Settings),
	}
}

// Products returns the stock ledger view of the store.
func (s *Store) Products() catalog.Repository { return &productRepo{store: s} }

// Sales returns the sales log view of the store.
func (s *Store) Sales() sales.Repository { return &saleRepo{store: s} }

// Permissions returns the permission matrix view of the store.
func (s *Store) Permissions() permissions.Repository { return &matrixRepo{store: s} }

// Settings returns the tenant settings view of the store.
func (s *Store) Settings() tenantcfg.Store { return &settingsRepo{store: s} }

// RunInTransaction serializes writers on the store lock and restores a
// snapshot when fn fails, so partial mutations are never visible.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.clone()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// ReadOnly runs fn under the store lock without snapshotting.
func (s *Store) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(context.WithValue(ctx, txKey{}, true))
}

// SetSettings configures a tenant. Test and seed helper.
func (s *Store) SetSettings(tenantID id.ID, settings tenantcfg.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[tenantID] = settings
}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

// lock acquires the store lock unless the context already holds it through a
// surrounding transaction.
func (s *Store) lock(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// --- snapshot / restore ---

type snapshot struct {
	products map[id.ID]map[id.ID]*catalog.Product
	sales    map[id.ID]map[id.ID]*sales.SaleRecord
	matrices map[id.ID]permissions.Matrix
	settings map[id.ID]tenantcfg.Settings
}

func (s *Store) clone() snapshot {
	snap := snapshot{
		products: make(map[id.ID]map[id.ID]*catalog.Product, len(s.products)),
		sales:    make(map[id.ID]map[id.ID]*sales.SaleRecord, len(s.sales)),
		matrices: make(map[id.ID]permissions.Matrix, len(s.matrices)),
		settings: make(map[id.ID]tenantcfg.Settings, len(s.settings)),
	}
	for tenantID, byID := range s.products {
		copied := make(map[id.ID]*catalog.Product, len(byID))
		for productID, product := range byID {
			p := *product
			copied[productID] = &p
		}
		snap.products[tenantID] = copied
	}
	for tenantID, byID := range s.sales {
		copied := make(map[id.ID]*sales.SaleRecord, len(byID))
		for saleID, record := range byID {
			copied[saleID] = cloneSale(record)
		}
		snap.sales[tenantID] = copied
	}
	for tenantID, matrix := range s.matrices {
		snap.matrices[tenantID] = matrix.Clone()
	}
	for tenantID, settings := range s.settings {
		snap.settings[tenantID] = settings
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.products = snap.products
	s.sales = snap.sales
	s.matrices = snap.matrices
	s.settings = snap.settings
}

func cloneSale(record *sales.SaleRecord) *sales.SaleRecord {
	copied := *record
	copied.Items = make([]sales.SaleItem, len(record.Items))
	copy(copied.Items, record.Items)
	return &copied
}

func nowUTC() time.Time { return time.Now().UTC() }

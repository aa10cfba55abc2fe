package sqlstore

import (
	"context"
	"fmt"

	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-leads/core"
	"github.com/goliatone/go-leads/tenants"
)

// StoreFactory builds every sql-backed store over one bun handle and acts as
// the store provider the service adopts at startup.
type StoreFactory struct {
	db *bun.DB

	leadStore      *LeadStore
	tenantStore    *TenantStore
	directory      *tenants.Directory
	outreachStore  *OutreachStore
	leadEventStore *LeadEventStore
}

func NewStoreFactory() *StoreFactory {
	return &StoreFactory{}
}

func NewStoreFactoryFromPersistence(client *persistence.Client) (*StoreFactory, error) {
	factory := NewStoreFactory()
	if _, err := factory.BuildStores(client); err != nil {
		return nil, err
	}
	return factory, nil
}

func NewStoreFactoryFromDB(db *bun.DB) (*StoreFactory, error) {
	factory := NewStoreFactory()
	if _, err := factory.BuildStores(db); err != nil {
		return nil, err
	}
	return factory, nil
}

func (f *StoreFactory) BuildStores(persistenceClient any) (core.StoreProvider, error) {
	if f == nil {
		return nil, fmt.Errorf("sqlstore: store factory is nil")
	}
	if f.db == nil {
		db, err := resolveBunDB(persistenceClient)
		if err != nil {
			return nil, err
		}
		f.db = db
	}
	if f.leadStore != nil && f.directory != nil {
		return f, nil
	}
	if err := f.initStores(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *StoreFactory) LeadStore() core.LeadStore {
	if f == nil || f.leadStore == nil {
		return nil
	}
	return f.leadStore
}

func (f *StoreFactory) TenantDirectory() core.TenantDirectory {
	if f == nil || f.directory == nil {
		return nil
	}
	return f.directory
}

func (f *StoreFactory) TenantStore() *TenantStore {
	if f == nil {
		return nil
	}
	return f.tenantStore
}

func (f *StoreFactory) OutreachLog() core.OutreachLog {
	if f == nil || f.outreachStore == nil {
		return nil
	}
	return f.outreachStore
}

func (f *StoreFactory) LeadEventLog() core.LeadEventLog {
	if f == nil || f.leadEventStore == nil {
		return nil
	}
	return f.leadEventStore
}

func (f *StoreFactory) LeadEventStore() *LeadEventStore {
	if f == nil {
		return nil
	}
	return f.leadEventStore
}

func (f *StoreFactory) DB() *bun.DB {
	if f == nil {
		return nil
	}
	return f.db
}

// SeedReferenceData runs the populate-if-absent tenant and account mapping
// seed against the factory's database handle.
func (f *StoreFactory) SeedReferenceData(ctx context.Context) error {
	if f == nil || f.db == nil {
		return fmt.Errorf("sqlstore: store factory has no database handle")
	}
	return SeedDemoData(ctx, f.db)
}

func (f *StoreFactory) initStores() error {
	leadStore, err := NewLeadStore(f.db)
	if err != nil {
		return err
	}
	f.leadStore = leadStore

	tenantStore, err := NewTenantStore(f.db)
	if err != nil {
		return err
	}
	f.tenantStore = tenantStore

	directory, err := tenants.NewDirectory(tenantStore)
	if err != nil {
		return err
	}
	f.directory = directory

	outreachStore, err := NewOutreachStore(f.db)
	if err != nil {
		return err
	}
	f.outreachStore = outreachStore

	leadEventStore, err := NewLeadEventStore(f.db)
	if err != nil {
		return err
	}
	f.leadEventStore = leadEventStore

	return nil
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}

var _ core.RepositoryStoreFactory = (*StoreFactory)(nil)
var _ core.StoreProvider = (*StoreFactory)(nil)

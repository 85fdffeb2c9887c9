package globals

import (
	"context"
	"sync"

	"covidtracker/lib/configutil/sqlitecfg"
	"covidtracker/lib/coronamonitor"
	"covidtracker/lib/countries"
	"covidtracker/lib/ingest"
	"covidtracker/lib/reqcache"
	"covidtracker/lib/store"
)

type key struct{}

// Value holds everything the commands share. The store is only opened
// by the commands that need it.
type Value struct {
	Cache     *reqcache.Cache
	Directory countries.Directory
	Monitor   coronamonitor.Client
	Database  sqlitecfg.Struct
	ChartPath string

	storeOnce sync.Once
	store     *store.Store
	storeErr  error
}

func Set(ctx context.Context, value *Value) context.Context {
	return context.WithValue(ctx, key{}, value)
}

func Get(ctx context.Context) *Value {
	return ctx.Value(key{}).(*Value)
}

// Store opens the database and creates its tables on first use.
func (v *Value) Store(ctx context.Context) (*store.Store, error) {
	v.storeOnce.Do(func() {
		db, err := v.Database.OpenDB()
		if err != nil {
			v.storeErr = err
			return
		}
		s := store.NewStore(db)
		err = s.Init(ctx)
		if err != nil {
			db.Close()
			v.storeErr = err
			return
		}
		v.store = s
	})
	return v.store, v.storeErr
}

func (v *Value) Pipeline(ctx context.Context) (ingest.Pipeline, error) {
	s, err := v.Store(ctx)
	if err != nil {
		return ingest.Pipeline{}, err
	}
	return ingest.NewPipeline(v.Directory, v.Monitor, s), nil
}

func (v *Value) Close() error {
	if v.store == nil {
		return nil
	}
	return v.store.Close()
}

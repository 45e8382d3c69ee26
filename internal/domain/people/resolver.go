package people

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Resolver finds a record by id without the caller knowing its kind. The
// cache is consulted first; any cache failure drops the call to the database
// path and skips the backfill.
type Resolver struct {
	Store StoreAPI
	Cache *RecordCache
	Log   *zap.Logger
}

func NewResolver(store StoreAPI, recordCache *RecordCache, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{Store: store, Cache: recordCache, Log: log}
}

// Resolve returns the record for id or ErrNotFound. skipCache deletes both
// cached keys before the lookup so the database is always read.
func (r *Resolver) Resolve(ctx context.Context, id string, skipCache bool) (Record, error) {
	useCache := r.Cache.enabled()

	if useCache && skipCache {
		if err := r.Cache.Invalidate(ctx, id); err != nil {
			logCacheErr(r.Log, "cache invalidate failed", id, err)
			useCache = false
		}
	}

	if useCache && !skipCache {
		rec, ok, err := r.Cache.Lookup(ctx, id)
		if err != nil {
			logCacheErr(r.Log, "cache lookup failed", id, err)
			useCache = false
		} else if ok {
			return rec, nil
		}
	}

	rec, err := r.fromStore(ctx, id)
	if err != nil {
		return Record{}, err
	}
	if useCache {
		logCacheErr(r.Log, "cache backfill failed", id, r.Cache.Put(ctx, rec))
	}
	return rec, nil
}

func (r *Resolver) fromStore(ctx context.Context, id string) (Record, error) {
	user, err := r.Store.FindStaff(ctx, id)
	if err == nil {
		return recordFromUser(user)
	}
	if !errors.Is(err, ErrNotFound) {
		return Record{}, err
	}

	user, err = r.Store.FindClient(ctx, id)
	if err != nil {
		return Record{}, err
	}
	return recordFromUser(user)
}

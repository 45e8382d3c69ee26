package people

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"careroster/internal/platform/cache"
	"careroster/internal/platform/metrics"
)

const DefaultCacheTTL = 1200 * time.Second

func StaffKey(id string) string  { return "staff:" + id }
func ClientKey(id string) string { return "client:" + id }

// PublicInfoKey is the key used by the public information routes. The space
// after the colon is part of the key, so it never collides with ClientKey.
func PublicInfoKey(id string) string { return "client: " + id }

func recordKey(kind Kind, id string) string {
	if kind == KindClient {
		return ClientKey(id)
	}
	return StaffKey(id)
}

// RecordCache stores record snapshots in a best-effort KV. A nil KV disables
// caching; every lookup is then a miss.
type RecordCache struct {
	KV      cache.KV
	TTL     time.Duration
	Metrics *metrics.Collector
}

func NewRecordCache(kv cache.KV, ttl time.Duration, m *metrics.Collector) *RecordCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RecordCache{KV: kv, TTL: ttl, Metrics: m}
}

func (c *RecordCache) enabled() bool {
	return c != nil && c.KV != nil
}

// Lookup checks the staff key, then the client key. An undecodable entry is
// treated as a miss.
func (c *RecordCache) Lookup(ctx context.Context, id string) (Record, bool, error) {
	if !c.enabled() {
		return Record{}, false, nil
	}
	for _, kind := range []Kind{KindStaff, KindClient} {
		raw, err := c.KV.Get(ctx, recordKey(kind, id))
		if errors.Is(err, cache.ErrMiss) {
			continue
		}
		if err != nil {
			c.Metrics.CacheError()
			return Record{}, false, err
		}
		rec, err := decodeRecord(kind, []byte(raw))
		if err != nil {
			continue
		}
		c.Metrics.CacheHit()
		return rec, true, nil
	}
	c.Metrics.CacheMiss()
	return Record{}, false, nil
}

func (c *RecordCache) Put(ctx context.Context, rec Record) error {
	if !c.enabled() || !rec.Found() {
		return nil
	}
	payload, err := json.Marshal(rec.body())
	if err != nil {
		return err
	}
	if err := c.KV.Set(ctx, recordKey(rec.Kind, rec.ID()), string(payload), c.TTL); err != nil {
		c.Metrics.CacheError()
		return err
	}
	return nil
}

// PutMany writes every record in one pipelined batch and waits for the result.
func (c *RecordCache) PutMany(ctx context.Context, recs []Record) error {
	if !c.enabled() || len(recs) == 0 {
		return nil
	}
	entries := make([]cache.Entry, 0, len(recs))
	for _, rec := range recs {
		if !rec.Found() {
			continue
		}
		payload, err := json.Marshal(rec.body())
		if err != nil {
			return err
		}
		entries = append(entries, cache.Entry{Key: recordKey(rec.Kind, rec.ID()), Value: string(payload)})
	}
	if err := c.KV.SetMany(ctx, entries, c.TTL); err != nil {
		c.Metrics.CacheError()
		return err
	}
	return nil
}

// Invalidate removes both record keys for every id.
func (c *RecordCache) Invalidate(ctx context.Context, ids ...string) error {
	if !c.enabled() || len(ids) == 0 {
		return nil
	}
	keys := make([]string, 0, len(ids)*2)
	for _, id := range ids {
		keys = append(keys, StaffKey(id), ClientKey(id))
	}
	if err := c.KV.Del(ctx, keys...); err != nil {
		c.Metrics.CacheError()
		return err
	}
	return nil
}

func (c *RecordCache) getPublicInfo(ctx context.Context, userID string) (*PublicInformation, bool, error) {
	if !c.enabled() {
		return nil, false, nil
	}
	raw, err := c.KV.Get(ctx, PublicInfoKey(userID))
	if errors.Is(err, cache.ErrMiss) {
		c.Metrics.CacheMiss()
		return nil, false, nil
	}
	if err != nil {
		c.Metrics.CacheError()
		return nil, false, err
	}
	var info PublicInformation
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		c.Metrics.CacheMiss()
		return nil, false, nil
	}
	c.Metrics.CacheHit()
	return &info, true, nil
}

func (c *RecordCache) putPublicInfo(ctx context.Context, userID string, info *PublicInformation) error {
	if !c.enabled() || info == nil {
		return nil
	}
	payload, err := json.Marshal(info)
	if err != nil {
		return err
	}
	if err := c.KV.Set(ctx, PublicInfoKey(userID), string(payload), c.TTL); err != nil {
		c.Metrics.CacheError()
		return err
	}
	return nil
}

func (c *RecordCache) dropPublicInfo(ctx context.Context, userID string) error {
	if !c.enabled() {
		return nil
	}
	if err := c.KV.Del(ctx, PublicInfoKey(userID)); err != nil {
		c.Metrics.CacheError()
		return err
	}
	return nil
}

func logCacheErr(log *zap.Logger, msg, id string, err error) {
	if err == nil || log == nil {
		return
	}
	log.Warn(msg, zap.String("record_id", id), zap.Error(err))
}

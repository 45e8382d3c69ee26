package people

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"careroster/internal/platform/cache"
	"careroster/internal/platform/metrics"
)

const testCompany = "7a1c2f70-0000-4000-8000-000000000001"

func newTestService(t *testing.T) (*Service, *memStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := cache.NewClient(cache.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := newMemStore()
	rc := NewRecordCache(cache.NewRedisKV(client), DefaultCacheTTL, metrics.New())
	svc := NewService(store, rc, zap.NewNop())
	svc.Now = func() time.Time { return fixedNow }
	return svc, store, mr
}

func personalFor(n int) *PersonalInput {
	in := validPersonal()
	in.FullName = fmt.Sprintf("Person %02d", n)
	in.Email = fmt.Sprintf("person%02d@example.com", n)
	return &in
}

func createStaff(t *testing.T, svc *Service, n int) Record {
	t.Helper()
	work := validWork()
	rec, err := svc.Create(context.Background(), CreateInput{
		CompanyID:       testCompany,
		PersonalDetails: personalFor(n),
		WorkDetails:     &work,
	})
	require.NoError(t, err)
	require.Equal(t, KindStaff, rec.Kind)
	return rec
}

func createClient(t *testing.T, svc *Service, n int) Record {
	t.Helper()
	rec, err := svc.Create(context.Background(), CreateInput{
		Role:            RoleClient,
		CompanyID:       testCompany,
		PersonalDetails: personalFor(n),
	})
	require.NoError(t, err)
	require.Equal(t, KindClient, rec.Kind)
	return rec
}

func TestResolveBackfillsStaffKeyWithTTL(t *testing.T) {
	svc, _, mr := newTestService(t)
	id := createStaff(t, svc, 1).ID()
	mr.FlushAll()

	rec, err := svc.Resolver.Resolve(context.Background(), id, false)

	require.NoError(t, err)
	assert.Equal(t, KindStaff, rec.Kind)
	assert.True(t, mr.Exists(StaffKey(id)))
	assert.False(t, mr.Exists(ClientKey(id)))
	assert.Equal(t, DefaultCacheTTL, mr.TTL(StaffKey(id)))
}

func TestResolveServesFromCache(t *testing.T) {
	svc, store, _ := newTestService(t)
	id := createStaff(t, svc, 1).ID()
	before := store.findCount()

	for i := 0; i < 3; i++ {
		rec, err := svc.Resolver.Resolve(context.Background(), id, false)
		require.NoError(t, err)
		assert.Equal(t, KindStaff, rec.Kind)
		assert.Equal(t, "Person 01", rec.Profile().PersonalDetails.FullName)
	}
	assert.Equal(t, before, store.findCount())
}

func TestResolveClientUsesClientKey(t *testing.T) {
	svc, _, mr := newTestService(t)
	id := createClient(t, svc, 2).ID()
	mr.FlushAll()

	first, err := svc.Resolver.Resolve(context.Background(), id, false)
	require.NoError(t, err)
	second, err := svc.Resolver.Resolve(context.Background(), id, false)
	require.NoError(t, err)

	assert.Equal(t, KindClient, first.Kind)
	assert.Equal(t, first.Kind, second.Kind)
	assert.True(t, mr.Exists(ClientKey(id)))
	assert.False(t, mr.Exists(StaffKey(id)))
	assert.Equal(t, DefaultCacheTTL, mr.TTL(ClientKey(id)))
}

func TestResolveUnknownIDIsNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	rec, err := svc.Resolver.Resolve(context.Background(), "missing", false)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, rec.Found())
}

func TestResolveSkipCacheReadsFreshRow(t *testing.T) {
	svc, store, _ := newTestService(t)
	id := createStaff(t, svc, 1).ID()
	store.setFullName(id, "Renamed Out Of Band")

	stale, err := svc.Resolver.Resolve(context.Background(), id, false)
	require.NoError(t, err)
	assert.Equal(t, "Person 01", stale.Profile().PersonalDetails.FullName)

	fresh, err := svc.Resolver.Resolve(context.Background(), id, true)
	require.NoError(t, err)
	assert.Equal(t, "Renamed Out Of Band", fresh.Profile().PersonalDetails.FullName)

	cached, err := svc.Resolver.Resolve(context.Background(), id, false)
	require.NoError(t, err)
	assert.Equal(t, "Renamed Out Of Band", cached.Profile().PersonalDetails.FullName)
}

func TestResolveFallsBackWhenCacheIsDown(t *testing.T) {
	svc, _, mr := newTestService(t)
	id := createClient(t, svc, 3).ID()
	mr.Close()

	rec, err := svc.Resolver.Resolve(context.Background(), id, false)

	require.NoError(t, err)
	assert.Equal(t, KindClient, rec.Kind)
	assert.Equal(t, id, rec.ID())
}

func TestResolveIgnoresUndecodableEntry(t *testing.T) {
	svc, _, mr := newTestService(t)
	id := createStaff(t, svc, 1).ID()
	require.NoError(t, mr.Set(StaffKey(id), "{not json"))

	rec, err := svc.Resolver.Resolve(context.Background(), id, false)

	require.NoError(t, err)
	assert.Equal(t, KindStaff, rec.Kind)
	assert.Equal(t, "Person 01", rec.Profile().PersonalDetails.FullName)
}

func TestResolveWithoutCache(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil, nil)
	svc.Now = func() time.Time { return fixedNow }
	id := createStaff(t, svc, 1).ID()

	rec, err := svc.Resolver.Resolve(context.Background(), id, false)

	require.NoError(t, err)
	assert.Equal(t, KindStaff, rec.Kind)
}

func TestRecordJSONRoundTrip(t *testing.T) {
	svc, _, _ := newTestService(t)
	rec := createStaff(t, svc, 1)

	raw, err := rec.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"type":"staff"`)

	var decoded Record
	require.NoError(t, decoded.UnmarshalJSON(raw))
	assert.Equal(t, rec.ID(), decoded.ID())
	assert.Equal(t, RoleCarer, decoded.Staff.WorkDetails.Role)

	empty, err := Record{}.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":null,"record":null}`, string(empty))
}

func TestRecordNullBodyIsNotFound(t *testing.T) {
	for _, raw := range []string{
		`{"type":"staff","record":null}`,
		`{"type":"client"}`,
		`{"type":"staff","record":{}}`,
	} {
		var decoded Record
		require.NoError(t, decoded.UnmarshalJSON([]byte(raw)), raw)
		assert.False(t, decoded.Found(), raw)
	}
}

func TestResolveIgnoresNullEntry(t *testing.T) {
	svc, _, mr := newTestService(t)
	id := createStaff(t, svc, 1).ID()
	require.NoError(t, mr.Set(StaffKey(id), "null"))

	rec, err := svc.Resolver.Resolve(context.Background(), id, false)

	require.NoError(t, err)
	assert.Equal(t, id, rec.ID())
	assert.Equal(t, "Person 01", rec.Profile().PersonalDetails.FullName)
}

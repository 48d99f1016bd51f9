package geocoder_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/gateway/geocoder"
	testlog "courier-dispatch/internal/testutil"
)

func TestCached_Hit(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	next := NewMockGeocoder(ctrl)
	cache := NewMockCache(ctrl)

	p := &domain.Coordinates{Lat: 1, Lng: 2}
	cache.EXPECT().Get(gomock.Any(), "addr").Return(p, nil)

	got, err := geocoder.NewCached(next, cache, nil).Geocode(context.Background(), "addr")
	require.NoError(t, err)
	require.Equal(t, p, got)
}

func TestCached_MissStores(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	next := NewMockGeocoder(ctrl)
	cache := NewMockCache(ctrl)

	p := &domain.Coordinates{Lat: 1, Lng: 2}
	gomock.InOrder(
		cache.EXPECT().Get(gomock.Any(), "addr").Return(nil, nil),
		next.EXPECT().Geocode(gomock.Any(), "addr").Return(p, nil),
		cache.EXPECT().Put(gomock.Any(), "addr", *p).Return(nil),
	)

	got, err := geocoder.NewCached(next, cache, nil).Geocode(context.Background(), "addr")
	require.NoError(t, err)
	require.Equal(t, p, got)
}

func TestCached_NoMatchNotStored(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	next := NewMockGeocoder(ctrl)
	cache := NewMockCache(ctrl)

	cache.EXPECT().Get(gomock.Any(), "addr").Return(nil, nil)
	next.EXPECT().Geocode(gomock.Any(), "addr").Return(nil, nil)

	got, err := geocoder.NewCached(next, cache, nil).Geocode(context.Background(), "addr")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestCached_CacheFailuresIgnored(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	next := NewMockGeocoder(ctrl)
	cache := NewMockCache(ctrl)
	rec := testlog.New()

	p := &domain.Coordinates{Lat: 1, Lng: 2}
	cache.EXPECT().Get(gomock.Any(), "addr").Return(nil, errors.New("db down"))
	next.EXPECT().Geocode(gomock.Any(), "addr").Return(p, nil)
	cache.EXPECT().Put(gomock.Any(), "addr", *p).Return(errors.New("db down"))

	got, err := geocoder.NewCached(next, cache, rec.Logger()).Geocode(context.Background(), "addr")
	require.NoError(t, err)
	require.Equal(t, p, got)
	require.Len(t, rec.Entries(), 2)
}

func TestCached_UpstreamErrorPropagates(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	next := NewMockGeocoder(ctrl)
	cache := NewMockCache(ctrl)

	boom := errors.New("boom")
	cache.EXPECT().Get(gomock.Any(), "addr").Return(nil, nil)
	next.EXPECT().Geocode(gomock.Any(), "addr").Return(nil, boom)

	_, err := geocoder.NewCached(next, cache, nil).Geocode(context.Background(), "addr")
	require.ErrorIs(t, err, boom)
}

func TestNewCached_Passthrough(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	next := NewMockGeocoder(ctrl)

	require.Nil(t, geocoder.NewCached(nil, nil, nil))
	require.Equal(t, geocoder.Geocoder(next), geocoder.NewCached(next, nil, nil))
}

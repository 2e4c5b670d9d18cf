package fuel

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshIgnoresFreshness(t *testing.T) {
	ctx := context.Background()
	ps := NewMemoryPriceStore()
	require.NoError(t, ps.Save(ctx, CachedPrice{Price: 5.0, UpdatedAt: baseTime}))
	feed := &stubFeed{price: 6.4}
	s := newService(Options{}, ps, feed)

	info, err := s.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, SourceExternal, info.Source)
	assert.Equal(t, 6.4, info.Price)

	cached, err := ps.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6.4, cached.Price)
}

func TestRefreshWithoutFeed(t *testing.T) {
	s := newService(Options{}, nil, nil)
	_, err := s.Refresh(context.Background())
	assert.True(t, errors.Is(err, ErrNoFeed))
}

func TestRefresherPollsAndNotifies(t *testing.T) {
	feed := &stubFeed{price: 6.1}
	s := newService(Options{}, nil, feed)

	updates := make(chan PriceInfo, 8)
	r := NewRefresher(s, 5*time.Millisecond, func(info PriceInfo) { updates <- info }, discardLogger())
	r.Start(context.Background())
	defer r.Stop()

	select {
	case info := <-updates:
		assert.Equal(t, 6.1, info.Price)
	case <-time.After(2 * time.Second):
		t.Fatal("refresher never reported an update")
	}
}

func TestRefresherSurvivesFeedErrors(t *testing.T) {
	feed := &stubFeed{err: errors.New("upstream down")}
	s := newService(Options{}, nil, feed)

	r := NewRefresher(s, 5*time.Millisecond, func(PriceInfo) { t.Error("unexpected update") }, discardLogger())
	r.Start(context.Background())
	assert.Eventually(t, func() bool { return feed.calls.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
	r.Stop()
	// Stop is idempotent.
	r.Stop()
}

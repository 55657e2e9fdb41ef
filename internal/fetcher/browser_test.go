package fetcher

import (
	"context"
	"testing"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/stretchr/testify/assert"
)

func TestIsDOMContentLoaded(t *testing.T) {
	assert.True(t, isDOMContentLoaded(&page.EventDomContentEventFired{}))
	assert.False(t, isDOMContentLoaded(&page.EventLoadEventFired{}))
	assert.False(t, isDOMContentLoaded(&page.EventFrameNavigated{}))
	assert.False(t, isDOMContentLoaded(nil))
}

func TestAwaitLoad(t *testing.T) {
	loaded := make(chan struct{}, 1)
	loaded <- struct{}{}
	assert.NoError(t, awaitLoad(context.Background(), loaded))
}

func TestAwaitLoadTimesOut(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := awaitLoad(ctx, make(chan struct{}))

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.ErrorContains(t, err, "DOMContentLoaded")
}

package telegram

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"MatchPublisher/internal/config"
	"MatchPublisher/internal/model"
	"MatchPublisher/internal/utils/logging"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

func TestDispatchHandlesOneUpdateAtATime(t *testing.T) {
	c := &Client{cfg: &config.TelegramConfig{HandleTimeout: time.Second}, logger: logging.Discard()}

	var running, peak, handled int32
	handler := func(ctx context.Context, in *model.Incoming) error {
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		atomic.AddInt32(&handled, 1)
		return nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			c.Dispatch(context.Background(), tgbotapi.Update{
				UpdateID: id,
				CallbackQuery: &tgbotapi.CallbackQuery{
					ID:   "cb",
					From: &tgbotapi.User{ID: 1},
					Data: "confirm_publish",
				},
			}, handler)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(5), handled)
	assert.Equal(t, int32(1), peak)
}

func TestDispatchSkipsUnsupportedUpdates(t *testing.T) {
	c := &Client{cfg: &config.TelegramConfig{}, logger: logging.Discard()}
	called := false
	c.Dispatch(context.Background(), tgbotapi.Update{UpdateID: 1}, func(context.Context, *model.Incoming) error {
		called = true
		return nil
	})
	assert.False(t, called)
}

package ws

import (
	"context"

	"github.com/redis/go-redis/v9"

	"listingtrendgo/internal/services/trending"
)

// SubscribeTrendingEvents fans out trending events published from any
// process instance to the in-process Hub.
func SubscribeTrendingEvents(ctx context.Context, rdb *redis.Client, hub *Hub) {
	pubsub := rdb.Subscribe(ctx, trending.EventsChannel)
	defer pubsub.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-pubsub.Channel():
			if !ok {
				return
			}
			hub.Broadcast([]byte(m.Payload))
		}
	}
}

package redisbus

import (
	"fmt"
	"strconv"

	"orders/internal/adapters/bus"
	"orders/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

const fieldData = "data"

func newClient(cfg Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func addArgs(stream string, maxLen int64, msg ports.Message, deliveryCount int, extra ...string) *redis.XAddArgs {
	values := []any{
		bus.HeaderMessageID, msg.ID,
		bus.HeaderType, msg.Type,
		bus.HeaderContentType, msg.ContentType,
		bus.HeaderDeliveryCount, strconv.Itoa(deliveryCount),
		fieldData, string(msg.Body),
	}
	for _, v := range extra {
		values = append(values, v)
	}

	args := &redis.XAddArgs{Stream: stream, Values: values}
	if maxLen > 0 {
		args.MaxLen = maxLen
		args.Approx = true
	}
	return args
}

func fromEntry(entry redis.XMessage) (ports.Message, int) {
	msg := ports.Message{
		ID:          field(entry, bus.HeaderMessageID),
		Type:        field(entry, bus.HeaderType),
		ContentType: field(entry, bus.HeaderContentType),
		Body:        []byte(field(entry, fieldData)),
	}
	if msg.ID == "" {
		msg.ID = entry.ID
	}
	return msg, bus.ParseDeliveryCount(field(entry, bus.HeaderDeliveryCount))
}

func field(entry redis.XMessage, name string) string {
	switch v := entry.Values[name].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

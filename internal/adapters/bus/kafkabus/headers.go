package kafkabus

import (
	"strconv"

	"orders/internal/adapters/bus"
	"orders/internal/core/ports"

	"github.com/segmentio/kafka-go"
)

func toKafkaMessage(topic string, msg ports.Message, deliveryCount int, extra ...kafka.Header) kafka.Message {
	headers := []kafka.Header{
		{Key: bus.HeaderMessageID, Value: []byte(msg.ID)},
		{Key: bus.HeaderType, Value: []byte(msg.Type)},
		{Key: bus.HeaderContentType, Value: []byte(msg.ContentType)},
		{Key: bus.HeaderDeliveryCount, Value: []byte(strconv.Itoa(deliveryCount))},
	}

	return kafka.Message{
		Topic:   topic,
		Key:     []byte(msg.ID),
		Value:   msg.Body,
		Headers: append(headers, extra...),
	}
}

func fromKafkaMessage(m kafka.Message) (ports.Message, int) {
	msg := ports.Message{Body: m.Value}
	count := ""

	for _, h := range m.Headers {
		switch h.Key {
		case bus.HeaderMessageID:
			msg.ID = string(h.Value)
		case bus.HeaderType:
			msg.Type = string(h.Value)
		case bus.HeaderContentType:
			msg.ContentType = string(h.Value)
		case bus.HeaderDeliveryCount:
			count = string(h.Value)
		}
	}

	if msg.ID == "" {
		msg.ID = string(m.Key)
	}

	return msg, bus.ParseDeliveryCount(count)
}

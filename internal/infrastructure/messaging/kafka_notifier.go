package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"slem/pkg/logger"
)

const (
	TopicOrderCreated       = "order.created"
	TopicOrderStatusChanged = "order.status_changed"
	TopicMessageDelivered   = "message.delivered"

	connectAttempts = 5
	sendAttempts    = 3
	queueSize       = 256
)

type envelope struct {
	topic string
	key   string
	data  []byte
}

// KafkaNotifier publishes notification events without blocking the caller.
// Events are queued and sent by one background worker with retries.
type KafkaNotifier struct {
	producer sarama.SyncProducer
	prefix   string
	queue    chan envelope
	done     chan struct{}
}

func NewKafkaNotifier(brokers []string, prefix string) (*KafkaNotifier, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = sendAttempts

	var (
		producer sarama.SyncProducer
		err      error
	)
	for i := 1; i <= connectAttempts; i++ {
		producer, err = sarama.NewSyncProducer(brokers, config)
		if err == nil {
			break
		}
		logger.Warn("Waiting for Kafka... (%d/%d) Error: %v", i, connectAttempts, err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to start kafka producer: %w", err)
	}

	return newKafkaNotifier(producer, prefix), nil
}

func newKafkaNotifier(producer sarama.SyncProducer, prefix string) *KafkaNotifier {
	n := &KafkaNotifier{
		producer: producer,
		prefix:   prefix,
		queue:    make(chan envelope, queueSize),
		done:     make(chan struct{}),
	}
	go n.run()
	return n
}

func (n *KafkaNotifier) Notify(ctx context.Context, topic, key string, event interface{}) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal %s event: %v", topic, err)
		return
	}

	select {
	case n.queue <- envelope{topic: n.prefix + "." + topic, key: key, data: data}:
	default:
		logger.Warn("Notification queue full, dropping %s event for %s", topic, key)
	}
}

func (n *KafkaNotifier) run() {
	defer close(n.done)

	for env := range n.queue {
		msg := &sarama.ProducerMessage{
			Topic: env.topic,
			Key:   sarama.StringEncoder(env.key),
			Value: sarama.ByteEncoder(env.data),
		}

		var err error
		for attempt := 1; attempt <= sendAttempts; attempt++ {
			if _, _, err = n.producer.SendMessage(msg); err == nil {
				logger.Debug("Published %s event: %s", env.topic, string(env.data))
				break
			}
			time.Sleep(time.Duration(attempt) * 200 * time.Millisecond)
		}
		if err != nil {
			logger.Error("Failed to send %s Kafka message: %v", env.topic, err)
		}
	}
}

// Close drains the queue and closes the producer.
func (n *KafkaNotifier) Close() error {
	close(n.queue)
	<-n.done
	return n.producer.Close()
}

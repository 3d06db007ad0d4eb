package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKafkaNotifierPublishes(t *testing.T) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, config)

	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		assert.Equal(t, "slem."+TopicOrderCreated, msg.Topic)
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		assert.Equal(t, "order-1", string(key))

		value, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var event map[string]string
		if err := json.Unmarshal(value, &event); err != nil {
			return err
		}
		assert.Equal(t, "seller-1", event["sellerId"])
		return nil
	})

	n := newKafkaNotifier(producer, "slem")
	n.Notify(context.Background(), TopicOrderCreated, "order-1", map[string]string{"sellerId": "seller-1"})
	require.NoError(t, n.Close())
}

func TestKafkaNotifierRetries(t *testing.T) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, config)

	producer.ExpectSendMessageAndFail(errors.New("broker unavailable"))
	producer.ExpectSendMessageAndSucceed()

	n := newKafkaNotifier(producer, "slem")
	n.Notify(context.Background(), TopicMessageDelivered, "chat-1", map[string]string{"text": "hello"})
	require.NoError(t, n.Close())
}

func TestNotifyDropsUnmarshalableEvents(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)

	n := newKafkaNotifier(producer, "slem")
	n.Notify(context.Background(), TopicOrderStatusChanged, "order-1", make(chan int))
	require.NoError(t, n.Close())
}

package messaging

import (
	"context"
	"encoding/json"

	"slem/pkg/logger"
)

// LogNotifier stands in for Kafka when no brokers are configured.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (LogNotifier) Notify(ctx context.Context, topic, key string, event interface{}) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal %s event: %v", topic, err)
		return
	}
	logger.Info("notification %s [%s]: %s", topic, key, string(data))
}

func (LogNotifier) Close() error {
	return nil
}

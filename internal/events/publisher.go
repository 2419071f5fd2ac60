package events

import (
	"context"
	"fmt"

	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/aggregator"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/utils"
)

// Publisher ships priced snapshots to downstream consumers
type Publisher interface {
	PublishSnapshot(ctx context.Context, snapshot *aggregator.Snapshot) error
	Close() error
}

// NopPublisher drops every snapshot
type NopPublisher struct{}

func (NopPublisher) PublishSnapshot(context.Context, *aggregator.Snapshot) error { return nil }

func (NopPublisher) Close() error { return nil }

// NewPublisher returns a Kafka publisher when kafka_brokers is set and a
// NopPublisher otherwise
func NewPublisher(cm *utils.ConfigManager, logger *utils.LogsManager) Publisher {
	brokers := cm.GetConfigSlice("kafka_brokers", nil)
	if len(brokers) == 0 {
		logger.Debug("Kafka publishing disabled: no brokers configured", "events")
		return NopPublisher{}
	}

	topic := cm.GetConfigWithDefault("kafka_topic", DefaultTopic)
	logger.Info(fmt.Sprintf("Publishing snapshots to Kafka topic %s via %v", topic, brokers), "events")
	return NewKafkaPublisher(brokers, topic, logger)
}

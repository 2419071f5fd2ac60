package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/aggregator"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/balances"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/utils"
)

const DefaultTopic = "wallet.balances"

// messageWriter is the part of *kafka.Writer the publisher uses
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// SnapshotEvent is the value written for every snapshot
type SnapshotEvent struct {
	Wallets       balances.Wallets   `json:"wallet"`
	Groups        []aggregator.Group `json:"groups"`
	TotalUSDValue float64            `json:"totalUsdValue"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// KafkaPublisher writes snapshots keyed by the EVM address
type KafkaPublisher struct {
	writer messageWriter
	logger *utils.LogsManager
	mu     sync.Mutex
}

func NewKafkaPublisher(brokers []string, topic string, logger *utils.LogsManager) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
		},
		logger: logger,
	}
}

func (k *KafkaPublisher) PublishSnapshot(ctx context.Context, snapshot *aggregator.Snapshot) error {
	if snapshot == nil {
		return nil
	}

	value, err := json.Marshal(SnapshotEvent{
		Wallets:       snapshot.Wallets,
		Groups:        snapshot.Groups,
		TotalUSDValue: snapshot.TotalUSDValue(),
		UpdatedAt:     snapshot.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if k.writer == nil {
		return fmt.Errorf("kafka publisher is closed")
	}

	err = k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(snapshot.Wallets.EVM),
		Value: value,
	})
	if err != nil {
		k.logger.Error(fmt.Sprintf("Failed to write snapshot to Kafka: %v", err), "events")
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	k.logger.Debug(fmt.Sprintf("Published snapshot for %s (%d groups)", snapshot.Wallets.EVM, len(snapshot.Groups)), "events")
	return nil
}

func (k *KafkaPublisher) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.writer != nil {
		err := k.writer.Close()
		k.writer = nil
		return err
	}
	return nil
}

package events

import (
	"context"
	"fmt"
	"time"

	ws "github.com/Trustflow-Network-Labs/sentient-wallet/internal/api/websocket"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/aggregator"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/prices"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/utils"
)

const publishTimeout = 10 * time.Second

// Broadcaster is satisfied by *websocket.Hub
type Broadcaster interface {
	BroadcastPayload(msgType ws.MessageType, payload interface{}) error
}

// Emitter forwards poller output to WebSocket clients and the Publisher
type Emitter struct {
	hub       Broadcaster
	publisher Publisher
	logger    *utils.LogsManager
}

func NewEmitter(hub Broadcaster, publisher Publisher, logger *utils.LogsManager) *Emitter {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &Emitter{
		hub:       hub,
		publisher: publisher,
		logger:    logger,
	}
}

// Attach subscribes the emitter to poller updates
func (e *Emitter) Attach(poller *aggregator.Poller) {
	poller.Subscribe(e.OnSnapshot)
	poller.SubscribePrices(e.OnPrices)
	e.logger.Info("Event emitter attached to poller", "events")
}

func (e *Emitter) OnSnapshot(snapshot *aggregator.Snapshot) {
	if e.hub != nil {
		if err := e.hub.BroadcastPayload(ws.MessageTypeBalancesUpdated, snapshot); err != nil {
			e.logger.Error(fmt.Sprintf("Failed to broadcast snapshot: %v", err), "events")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := e.publisher.PublishSnapshot(ctx, snapshot); err != nil {
		e.logger.Warn(fmt.Sprintf("Snapshot not published: %v", err), "events")
	}
}

func (e *Emitter) OnPrices(feed *prices.Feed) {
	if e.hub == nil || feed == nil {
		return
	}
	if err := e.hub.BroadcastPayload(ws.MessageTypePricesUpdated, feed); err != nil {
		e.logger.Error(fmt.Sprintf("Failed to broadcast prices: %v", err), "events")
	}
}

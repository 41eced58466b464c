package mintseed

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/mintseed/mintseed/schema"
)

const MintTopic = "mintseed_mint"

// EventHub fans confirmed mints out to connected sse clients. Delivery is
// best effort; a slow client misses events instead of blocking the pipeline.
type EventHub struct {
	locker sync.Mutex
	subs   map[chan schema.MintEvent]struct{}
}

func NewEventHub() *EventHub {
	return &EventHub{
		subs: make(map[chan schema.MintEvent]struct{}),
	}
}

func (h *EventHub) Subscribe() chan schema.MintEvent {
	ch := make(chan schema.MintEvent, 16)
	h.locker.Lock()
	h.subs[ch] = struct{}{}
	h.locker.Unlock()
	return ch
}

func (h *EventHub) Unsubscribe(ch chan schema.MintEvent) {
	h.locker.Lock()
	delete(h.subs, ch)
	h.locker.Unlock()
	close(ch)
}

func (h *EventHub) Broadcast(evt schema.MintEvent) {
	h.locker.Lock()
	defer h.locker.Unlock()
	for ch := range h.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}

func (h *EventHub) SubscriberNum() int {
	h.locker.Lock()
	defer h.locker.Unlock()
	return len(h.subs)
}

type KWriter struct {
	w *kafka.Writer
}

func NewKWriter(topic string, uri string) (*KWriter, error) {
	w := &kafka.Writer{
		Addr:     kafka.TCP(uri),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}

	return &KWriter{
		w: w,
	}, nil
}

func (kw *KWriter) Write(body []byte) error {
	err := kw.w.WriteMessages(
		context.Background(),
		kafka.Message{
			Value: body,
		},
	)
	return err
}

func (kw *KWriter) Close() {
	kw.w.Close()
}

func (s *Mintseed) notifyMint(order *schema.MintOrder, assetId string) {
	evt := schema.MintEvent{
		ID:        uuid.NewString(),
		Ordinal:   order.Ordinal,
		Name:      order.Name,
		AssetId:   assetId,
		Recipient: order.Recipient,
		MintSig:   order.MintSig,
		PaymentId: order.PaymentId,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	s.events.Broadcast(evt)

	if s.kafka != nil {
		body, _ := json.Marshal(evt)
		go func() {
			if err := s.kafka.Write(body); err != nil {
				log.Error("s.kafka.Write(body)", "err", err, "eventId", evt.ID)
			}
		}()
	}
}

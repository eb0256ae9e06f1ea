// Package notify turns order events into customer email.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	kafkax "github.com/ariefcatur/evn-storefront/internal/kafka"
	"github.com/ariefcatur/evn-storefront/internal/mail"
	"github.com/ariefcatur/evn-storefront/internal/orders"
	"github.com/ariefcatur/evn-storefront/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

type Service struct {
	Redis       redis.Cmdable
	Mail        mail.Sender
	ServiceName string
}

// HandleOrderEvent: dipasang sebagai handler consumer. Selalu return nil,
// email gagal cukup di-log, tidak ada retry.
func (s *Service) HandleOrderEvent(ctx context.Context, m kafkago.Message) error {
	// 1) decode envelope
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		log.Printf("notify: bad envelope at offset %d: %v", m.Offset, err)
		return nil
	}

	// 2) render dulu, event yang tidak dikenal di-skip
	msg, ok, err := s.render(env)
	if err != nil {
		log.Printf("notify: %s %s: %v", env.EventType, env.EventID, err)
		return nil
	}
	if !ok {
		return nil
	}

	// 3) dedup via Redis (pakai event_id)
	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	first, err := redisx.Claim(ctx, s.Redis, dkey, redisx.TTLDedup)
	if err != nil {
		log.Printf("notify: dedup %s: %v", env.EventID, err)
	} else if !first {
		return nil
	}

	// 4) kirim
	if err := s.Mail.Send(ctx, msg); err != nil {
		log.Printf("notify: send %s for order %s: %v", env.EventType, env.CorrelationID, err)
		return nil
	}
	log.Printf("notify: sent %s for order %s to %s", env.EventType, env.CorrelationID, msg.To)
	return nil
}

func (s *Service) render(env orders.Envelope) (mail.Message, bool, error) {
	switch env.EventType {
	case orders.EventOrderPlaced:
		p, err := kafkax.UnwrapPayload[orders.OrderPlacedPayload](env.Payload)
		if err != nil {
			return mail.Message{}, false, err
		}
		lines := make([]mail.OrderLine, 0, len(p.Items))
		for _, it := range p.Items {
			lines = append(lines, mail.OrderLine{
				Name:     it.Name,
				Size:     string(it.Size),
				Color:    it.Color,
				Quantity: it.Quantity,
				Price:    it.Price.StringFixed(2),
			})
		}
		m, err := mail.OrderPlaced(p.Customer.Email, mail.OrderPlacedData{
			Name:        p.Customer.Name,
			OrderNumber: p.OrderNumber,
			Items:       lines,
			Total:       p.Total.StringFixed(2),
			Payment:     string(p.Payment),
		})
		return m, err == nil, err

	case orders.EventOrderStatusChanged:
		p, err := kafkax.UnwrapPayload[orders.OrderStatusChangedPayload](env.Payload)
		if err != nil {
			return mail.Message{}, false, err
		}
		d := mail.StatusChangedData{
			Name:        p.Customer.Name,
			OrderNumber: p.OrderNumber,
			Status:      string(p.To),
			Note:        p.Note,
		}
		if p.Tracking != nil {
			d.Carrier, d.TrackingNumber = p.Tracking.Carrier, p.Tracking.Number
		}
		m, err := mail.StatusChanged(p.Customer.Email, d)
		return m, err == nil, err
	}
	return mail.Message{}, false, nil
}

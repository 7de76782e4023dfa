// Package mqtt feeds partner location reports from an MQTT broker into the
// proximity index.
package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/logx"
)

// LocationUpdater stores a partner's reported position.
type LocationUpdater interface {
	UpdateLocation(ctx context.Context, partnerID string, p domain.Point) error
}

// Config holds the broker connection settings.
type Config struct {
	Broker   string
	ClientID string
	Topic    string
	QoS      byte
	Timeout  time.Duration
}

// Report is one location message. PartnerID is only read when the topic has
// no wildcard segment.
type Report struct {
	PartnerID string  `json:"partner_id,omitempty"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
}

// Subscriber consumes location reports.
type Subscriber struct {
	cfg     Config
	client  paho.Client
	updater LocationUpdater
	logger  logx.Logger
}

// NewSubscriber returns nil when no broker is configured.
func NewSubscriber(cfg Config, updater LocationUpdater, logger logx.Logger) *Subscriber {
	if strings.TrimSpace(cfg.Broker) == "" || strings.TrimSpace(cfg.Topic) == "" {
		return nil
	}
	if cfg.ClientID == "" {
		cfg.ClientID = fmt.Sprintf("courier-dispatch-%d", time.Now().UnixNano())
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	s := &Subscriber{
		cfg:     cfg,
		updater: updater,
		logger:  logger.With(logx.String("component", "mqtt_subscriber"), logx.String("topic", cfg.Topic)),
	}
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetOrderMatters(false).
		SetAutoReconnect(true).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			s.logger.Warn("mqtt connection lost", logx.Err(err))
		}).
		SetOnConnectHandler(func(c paho.Client) {
			// subscriptions are not kept across reconnects without a session
			if err := s.subscribe(c); err != nil {
				s.logger.Error("mqtt subscribe failed", logx.Err(err))
			}
		})
	s.client = paho.NewClient(opts)
	return s
}

// Start connects to the broker. Subscription happens in the connect handler.
func (s *Subscriber) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	tok := s.client.Connect()
	if err := wait(ctx, tok, s.cfg.Timeout); err != nil {
		return fmt.Errorf("mqtt connect %s: %w", s.cfg.Broker, err)
	}
	s.logger.Info("mqtt connected", logx.String("broker", s.cfg.Broker))
	return nil
}

// Close disconnects, giving in-flight work a short quiesce period.
func (s *Subscriber) Close() error {
	if s == nil {
		return nil
	}
	s.client.Disconnect(250)
	return nil
}

func (s *Subscriber) subscribe(c paho.Client) error {
	tok := c.Subscribe(s.cfg.Topic, s.cfg.QoS, func(_ paho.Client, m paho.Message) {
		s.onMessage(m)
	})
	return wait(context.Background(), tok, s.cfg.Timeout)
}

func (s *Subscriber) onMessage(m paho.Message) {
	partnerID, p, err := ParseLocation(s.cfg.Topic, m.Topic(), m.Payload())
	if err != nil {
		s.logger.Warn("mqtt bad location", logx.String("msg_topic", m.Topic()), logx.Err(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
	defer cancel()
	if err := s.updater.UpdateLocation(ctx, partnerID, p); err != nil {
		s.logger.Error("mqtt location update failed", logx.String("partner_id", partnerID), logx.Err(err))
		return
	}
	s.logger.Debug("partner location updated",
		logx.String("partner_id", partnerID),
		logx.Float64("lat", p.Lat),
		logx.Float64("lon", p.Lon),
	)
}

// ParseLocation extracts the partner id and position from a message. The
// partner id comes from the topic segment matched by the single-level wildcard
// in pattern, or from the payload when pattern has none.
func ParseLocation(pattern, topic string, payload []byte) (string, domain.Point, error) {
	var r Report
	if err := json.Unmarshal(payload, &r); err != nil {
		return "", domain.Point{}, fmt.Errorf("decode payload: %w", errors.Join(apperr.ErrInvalid, err))
	}
	id := r.PartnerID
	if seg, ok := wildcardSegment(pattern, topic); ok {
		id = seg
	}
	id, err := domain.NormalizeID(id)
	if err != nil {
		return "", domain.Point{}, fmt.Errorf("partner id: %w", err)
	}
	p := domain.Point{Lat: r.Lat, Lon: r.Lon}
	if err := p.Validate(); err != nil {
		return "", domain.Point{}, err
	}
	return id, p, nil
}

func wildcardSegment(pattern, topic string) (string, bool) {
	pp := strings.Split(pattern, "/")
	tp := strings.Split(topic, "/")
	if len(pp) != len(tp) {
		return "", false
	}
	for i, seg := range pp {
		if seg == "+" {
			return tp[i], true
		}
	}
	return "", false
}

func wait(ctx context.Context, tok paho.Token, timeout time.Duration) error {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-tok.Done():
		return tok.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return errors.New("mqtt: operation timed out")
	}
}

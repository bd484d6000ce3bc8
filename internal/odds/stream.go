// Package odds maintains a live WebSocket feed of market prices from the
// odds provider, feeding the expected-value layer with current quotes.
package odds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/courtside/internal/config"
)

// PriceUpdate is one market quote pushed by the odds feed.
type PriceUpdate struct {
	GameID      string          `json:"game_id"`
	Selection   string          `json:"selection"`
	Bookmaker   string          `json:"bookmaker"`
	DecimalOdds decimal.Decimal `json:"decimal_odds"`
	ReceivedAt  time.Time       `json:"received_at"`
}

// PriceHandler is called for every price update received from the stream.
type PriceHandler func(update PriceUpdate) error

// ReconnectConfig controls reconnection behavior
type ReconnectConfig struct {
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// DefaultReconnectConfig returns default reconnection configuration
func DefaultReconnectConfig() ReconnectConfig {
	return ReconnectConfig{
		MaxRetries:        10,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 1.5,
	}
}

// StreamClient handles the WebSocket connection to the odds feed
type StreamClient struct {
	streamURL       string
	token           string
	mu              sync.RWMutex
	conn            *websocket.Conn
	isConnected     bool
	handlers        []PriceHandler
	reconnectConfig ReconnectConfig
	lastMessageTime time.Time
	logger          *logrus.Logger
}

// NewStreamClient creates a new stream client from odds feed configuration
func NewStreamClient(cfg *config.OddsFeedConfig, logger *logrus.Logger) *StreamClient {
	rc := DefaultReconnectConfig()
	if cfg.ReconnectSeconds > 0 {
		rc.InitialBackoff = time.Duration(cfg.ReconnectSeconds) * time.Second
	}
	if cfg.MaxReconnectDelay > 0 {
		rc.MaxBackoff = time.Duration(cfg.MaxReconnectDelay) * time.Second
	}

	return &StreamClient{
		streamURL:       cfg.StreamURL,
		token:           cfg.Token,
		handlers:        make([]PriceHandler, 0),
		reconnectConfig: rc,
		logger:          logger,
	}
}

// Connect establishes the WebSocket connection and starts the read loop
func (s *StreamClient) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isConnected {
		return fmt.Errorf("already connected")
	}

	s.logger.WithField("url", s.streamURL).Info("Connecting to odds stream")

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	var header http.Header
	if s.token != "" {
		header = http.Header{"Authorization": []string{"Bearer " + s.token}}
	}

	conn, _, err := dialer.DialContext(ctx, s.streamURL, header)
	if err != nil {
		return fmt.Errorf("failed to connect to odds stream: %w", err)
	}

	s.conn = conn
	s.isConnected = true
	s.lastMessageTime = time.Now()

	go s.readMessages(ctx)

	return nil
}

// Run keeps the stream alive, reconnecting with multiplicative backoff until
// the context is cancelled or retries are exhausted.
func (s *StreamClient) Run(ctx context.Context) error {
	backoff := s.reconnectConfig.InitialBackoff

	for attempt := 0; attempt <= s.reconnectConfig.MaxRetries; attempt++ {
		if err := s.Connect(ctx); err != nil {
			s.logger.WithFields(logrus.Fields{
				"attempt": attempt,
				"error":   err,
			}).Warn("Odds stream connection failed")
		} else {
			backoff = s.reconnectConfig.InitialBackoff
			s.waitForDisconnect(ctx)
			attempt = 0
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff = time.Duration(float64(backoff) * s.reconnectConfig.BackoffMultiplier)
		if backoff > s.reconnectConfig.MaxBackoff {
			backoff = s.reconnectConfig.MaxBackoff
		}
	}

	return fmt.Errorf("odds stream gave up after %d reconnect attempts", s.reconnectConfig.MaxRetries)
}

// Subscribe requests price updates for the given game IDs
func (s *StreamClient) Subscribe(gameIDs []string) error {
	msg := map[string]interface{}{
		"op":        "subscribe",
		"game_ids":  gameIDs,
		"heartbeat": true,
	}
	s.logger.WithField("game_count", len(gameIDs)).Info("Subscribing to odds markets")
	return s.sendMessage(msg)
}

// AddHandler registers a price handler
func (s *StreamClient) AddHandler(handler PriceHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, handler)
}

// readMessages reads messages from the WebSocket connection
func (s *StreamClient) readMessages(ctx context.Context) {
	defer s.Close()

	for {
		if ctx.Err() != nil {
			return
		}

		var raw json.RawMessage
		if err := s.conn.ReadJSON(&raw); err != nil {
			s.logger.WithError(err).Warn("Odds stream read failed")
			s.mu.Lock()
			s.isConnected = false
			s.mu.Unlock()
			return
		}

		s.mu.Lock()
		s.lastMessageTime = time.Now()
		handlers := s.handlers
		s.mu.Unlock()

		var update PriceUpdate
		if err := json.Unmarshal(raw, &update); err != nil {
			s.logger.WithError(err).Debug("Skipping unparseable stream message")
			continue
		}
		if update.GameID == "" {
			// heartbeat or control frame
			continue
		}
		update.ReceivedAt = time.Now()

		for _, handler := range handlers {
			if err := handler(update); err != nil {
				s.logger.WithError(err).Error("Price handler error")
			}
		}
	}
}

// sendMessage sends a JSON message to the stream
func (s *StreamClient) sendMessage(msg interface{}) error {
	s.mu.RLock()
	if !s.isConnected || s.conn == nil {
		s.mu.RUnlock()
		return fmt.Errorf("not connected")
	}
	conn := s.conn
	s.mu.RUnlock()

	return conn.WriteJSON(msg)
}

// IsConnected returns whether the stream is connected
func (s *StreamClient) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isConnected
}

// LastMessageTime returns the time of the last received message
func (s *StreamClient) LastMessageTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastMessageTime
}

// waitForDisconnect blocks until the read loop drops the connection or the
// context is cancelled.
func (s *StreamClient) waitForDisconnect(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.IsConnected() {
				return
			}
		}
	}
}

// Close closes the stream connection
func (s *StreamClient) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}

	s.isConnected = false
	return s.conn.Close()
}

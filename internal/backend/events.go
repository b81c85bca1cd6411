package backend

import (
	"context"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/kapu/chzzk-recorder-panel/internal/constants"
	"github.com/kapu/chzzk-recorder-panel/internal/util"
)

type StatusUpdateCallback func(update StatusUpdate)

type StateCallback func(state StreamState)

type updateEntry struct {
	id       int
	callback StatusUpdateCallback
}

type stateEntry struct {
	id       int
	callback StateCallback
}

// EventStream keeps one websocket open to the backend push endpoint and
// reconnects after drops. A maxReconnectAttempts of 0 retries forever.
type EventStream struct {
	wsURL                string
	conn                 *websocket.Conn
	connMu               sync.Mutex
	state                StreamState
	stateMu              sync.RWMutex
	updateCallbacks      []updateEntry
	stateCallbacks       []stateEntry
	nextCallbackID       int
	callbacksMu          sync.RWMutex
	reconnectAttempts    int
	maxReconnectAttempts int
	reconnectDelay       time.Duration
	handshakeTimeout     time.Duration
	logger               *zap.Logger
	stopCh               chan struct{}
	stopOnce             sync.Once
	listenerWg           sync.WaitGroup
}

func NewEventStream(wsURL string, maxReconnectAttempts int, reconnectDelay, handshakeTimeout time.Duration, logger *zap.Logger) *EventStream {
	return &EventStream{
		wsURL:                wsURL,
		state:                StreamDisconnected,
		maxReconnectAttempts: maxReconnectAttempts,
		reconnectDelay:       reconnectDelay,
		handshakeTimeout:     handshakeTimeout,
		logger:               logger,
		stopCh:               make(chan struct{}),
		nextCallbackID:       1,
	}
}

func (es *EventStream) Connect(ctx context.Context) error {
	es.stateMu.Lock()
	if es.state == StreamConnected || es.state == StreamConnecting {
		es.stateMu.Unlock()
		es.logger.Warn("Event stream already connected or connecting")
		return nil
	}
	es.stateMu.Unlock()

	if es.stopped() {
		return nil
	}

	es.setState(StreamConnecting)

	dialer := websocket.Dialer{
		Proxy:            websocket.DefaultDialer.Proxy,
		HandshakeTimeout: es.handshakeTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, es.wsURL, nil)
	if err != nil {
		es.logger.Warn("Failed to connect event stream",
			zap.String("url", es.wsURL),
			zap.Error(err),
		)
		es.setState(StreamDisconnected)
		es.scheduleReconnect(ctx)
		return err
	}

	es.connMu.Lock()
	es.conn = conn
	es.reconnectAttempts = 0
	es.connMu.Unlock()

	es.setState(StreamConnected)
	es.logger.Info("Event stream connected", zap.String("url", es.wsURL))

	es.listenerWg.Add(1)
	go es.listen(ctx, conn)

	return nil
}

func (es *EventStream) listen(ctx context.Context, conn *websocket.Conn) {
	defer es.listenerWg.Done()
	defer es.logger.Debug("Event stream listener stopped")

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-es.stopCh:
		case <-done:
		}
	}()

	for {
		_, msgBytes, err := conn.ReadMessage()
		if err != nil {
			es.connMu.Lock()
			if es.conn == conn {
				es.conn = nil
			}
			es.connMu.Unlock()
			_ = conn.Close()

			if es.stopped() || ctx.Err() != nil {
				return
			}
			es.logger.Warn("Event stream read error", zap.Error(err))
			es.setState(StreamDisconnected)
			es.scheduleReconnect(ctx)
			return
		}

		es.handleMessage(msgBytes)
	}
}

func (es *EventStream) handleMessage(data []byte) {
	update, ok, err := DecodeStatusUpdate(data)
	if err != nil {
		es.logger.Error("Failed to parse push event",
			zap.Error(err),
			zap.String("data", util.TruncateString(string(data), constants.StringLimits.ParseErrData)),
		)
		return
	}
	if !ok {
		return
	}

	es.callbacksMu.RLock()
	callbacks := make([]updateEntry, len(es.updateCallbacks))
	copy(callbacks, es.updateCallbacks)
	es.callbacksMu.RUnlock()

	for _, entry := range callbacks {
		entry.callback(update)
	}
}

// DecodeStatusUpdate accepts either an {"event","data"} envelope or a bare
// {channels, timestamp} frame. ok is false for other event types.
func DecodeStatusUpdate(data []byte) (StatusUpdate, bool, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return StatusUpdate{}, false, err
	}

	payload := data
	switch {
	case env.Event == EventStatusUpdate && len(env.Data) > 0:
		payload = env.Data
	case env.Event != "":
		return StatusUpdate{}, false, nil
	}

	var update StatusUpdate
	if err := json.Unmarshal(payload, &update); err != nil {
		return StatusUpdate{}, false, err
	}
	return update, true, nil
}

func (es *EventStream) scheduleReconnect(ctx context.Context) {
	if es.stopped() {
		return
	}

	es.connMu.Lock()
	es.reconnectAttempts++
	attempt := es.reconnectAttempts
	es.connMu.Unlock()

	if es.maxReconnectAttempts > 0 && attempt > es.maxReconnectAttempts {
		es.logger.Error("Max reconnect attempts reached",
			zap.Int("attempts", attempt),
		)
		es.setState(StreamFailed)
		return
	}

	es.setState(StreamReconnecting)

	es.logger.Info("Scheduling event stream reconnect",
		zap.Int("attempt", attempt),
		zap.Int("max", es.maxReconnectAttempts),
		zap.Duration("delay", es.reconnectDelay),
	)

	go func() {
		select {
		case <-time.After(es.reconnectDelay):
			if err := es.Connect(ctx); err != nil {
				es.logger.Debug("Reconnect failed", zap.Error(err))
			}
		case <-ctx.Done():
		case <-es.stopCh:
		}
	}()
}

func (es *EventStream) OnStatusUpdate(callback StatusUpdateCallback) func() {
	es.callbacksMu.Lock()
	id := es.nextCallbackID
	es.nextCallbackID++
	es.updateCallbacks = append(es.updateCallbacks, updateEntry{id: id, callback: callback})
	es.callbacksMu.Unlock()

	return func() {
		es.callbacksMu.Lock()
		defer es.callbacksMu.Unlock()
		for i, entry := range es.updateCallbacks {
			if entry.id == id {
				es.updateCallbacks = append(es.updateCallbacks[:i], es.updateCallbacks[i+1:]...)
				break
			}
		}
	}
}

func (es *EventStream) OnStateChange(callback StateCallback) func() {
	es.callbacksMu.Lock()
	id := es.nextCallbackID
	es.nextCallbackID++
	es.stateCallbacks = append(es.stateCallbacks, stateEntry{id: id, callback: callback})
	es.callbacksMu.Unlock()

	return func() {
		es.callbacksMu.Lock()
		defer es.callbacksMu.Unlock()
		for i, entry := range es.stateCallbacks {
			if entry.id == id {
				es.stateCallbacks = append(es.stateCallbacks[:i], es.stateCallbacks[i+1:]...)
				break
			}
		}
	}
}

func (es *EventStream) setState(newState StreamState) {
	es.stateMu.Lock()
	oldState := es.state
	es.state = newState
	es.stateMu.Unlock()

	if oldState == newState {
		return
	}

	es.logger.Debug("Event stream state changed",
		zap.String("from", oldState.String()),
		zap.String("to", newState.String()),
	)

	es.callbacksMu.RLock()
	callbacks := make([]stateEntry, len(es.stateCallbacks))
	copy(callbacks, es.stateCallbacks)
	es.callbacksMu.RUnlock()

	for _, entry := range callbacks {
		entry.callback(newState)
	}
}

func (es *EventStream) State() StreamState {
	es.stateMu.RLock()
	defer es.stateMu.RUnlock()
	return es.state
}

func (es *EventStream) IsConnected() bool {
	return es.State() == StreamConnected
}

func (es *EventStream) stopped() bool {
	select {
	case <-es.stopCh:
		return true
	default:
		return false
	}
}

// Close stops reconnecting and waits briefly for the listener to exit.
func (es *EventStream) Close() error {
	es.stopOnce.Do(func() {
		close(es.stopCh)
	})

	var closeErr error
	es.connMu.Lock()
	if es.conn != nil {
		closeErr = es.conn.Close()
		es.conn = nil
	}
	es.reconnectAttempts = 0
	es.connMu.Unlock()

	es.setState(StreamDisconnected)

	done := make(chan struct{})
	go func() {
		es.listenerWg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		es.logger.Warn("Timeout waiting for event stream listener to stop")
	}

	if closeErr != nil {
		es.logger.Warn("Failed to close event stream", zap.Error(closeErr))
	}
	return closeErr
}

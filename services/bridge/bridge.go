// bridge/bridge.go
package bridge

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"actuatorcode-go/bus"
	"actuatorcode-go/errcode"
	"actuatorcode-go/services/actuators"
	"actuatorcode-go/types"
	"actuatorcode-go/x/timex"
)

const (
	requestTimeout = 2 * time.Second
	pingInterval   = 5 * time.Second
	outQueueLen    = 16
)

// -----------------------------------------------------------------------------
// Public entry point
// -----------------------------------------------------------------------------

// Start starts the bridge service. It blocks until ctx is cancelled.
// It listens for config on topic {"config","bridge"} and (re)configures the link.
func Start(ctx context.Context, conn *bus.Connection) {
	s := &Service{
		conn:       conn,
		stateTopic: bus.T("bridge", "state"),
	}
	s.run(ctx)
}

// -----------------------------------------------------------------------------
// Service
// -----------------------------------------------------------------------------

type Service struct {
	conn       *bus.Connection
	stateTopic bus.Topic

	mu     sync.Mutex
	curRun context.CancelFunc
	curCfg atomic.Value // stores types.BridgeConfig
}

// run waits for config and supervises a single link instance.
func (s *Service) run(ctx context.Context) {
	cfgSub := s.conn.Subscribe(bus.T("config", "bridge"))
	defer s.conn.Unsubscribe(cfgSub)

	s.publishState("idle", "awaiting_config", nil)

	for {
		select {
		case <-ctx.Done():
			s.stopCurrent()
			s.publishState("stopped", "context_cancelled", nil)
			return
		case msg, ok := <-cfgSub.Channel():
			if !ok {
				s.publishState("error", "config_subscription_closed", nil)
				return
			}
			cfg, err := decodeConfig(msg.Payload)
			if err != nil {
				s.publishState("error", "config_decode_failed", err)
				continue
			}
			s.reconfigure(ctx, cfg)
		}
	}
}

func (s *Service) stopCurrent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.curRun != nil {
		s.curRun()
		s.curRun = nil
	}
}

func (s *Service) reconfigure(parent context.Context, cfg types.BridgeConfig) {
	s.mu.Lock()
	// Cancel any existing run.
	if s.curRun != nil {
		s.curRun()
		s.curRun = nil
	}
	ctx, cancel := context.WithCancel(parent)
	s.curRun = cancel
	s.mu.Unlock()

	s.curCfg.Store(cfg)
	go s.runLink(ctx, cfg)
}

// -----------------------------------------------------------------------------
// Link supervision and I/O
// -----------------------------------------------------------------------------

func (s *Service) runLink(ctx context.Context, cfg types.BridgeConfig) {
	tr, err := newTransport(cfg.Transport)
	if err != nil {
		s.publishState("error", "transport_init_failed", err)
		return
	}

	backoff := backoffSeq(250*time.Millisecond, 5*time.Second)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		rwc, err := tr.Open(ctx)
		if err != nil {
			delay := backoff()
			s.publishState("degraded", "dial_failed_retrying", err)
			if !sleep(ctx, delay) {
				return
			}
			continue
		}

		println("[bridge] link up:", tr.String())
		s.publishState("up", "link_established", nil)
		if err := s.handleLink(ctx, rwc); err != nil {
			_ = rwc.Close()
			delay := backoff()
			s.publishState("degraded", "link_lost_retrying", err)
			if !sleep(ctx, delay) {
				return
			}
			continue
		}
		_ = rwc.Close()
		// Clean close: restart only on new config.
		return
	}
}

// handleLink owns the active link lifetime. Requests are served concurrently;
// all writes go through the single writer below.
func (s *Service) handleLink(ctx context.Context, rwc io.ReadWriteCloser) error {
	rd := newFramedReader(rwc)
	wr := newFramedWriter(rwc)

	lctx, cancel := context.WithCancel(ctx)
	defer cancel()

	out := make(chan Frame, outQueueLen)
	send := func(f Frame) {
		select {
		case out <- f:
		case <-lctx.Done():
		}
	}

	// Reader
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		for {
			f, err := rd.ReadFrame()
			if err != nil {
				errCh <- err
				return
			}
			switch f.Type {
			case framePing:
				send(Frame{Type: framePong})
			case framePong:
			case frameRequest:
				go s.serveRequest(lctx, f.Payload, send)
			case frameClose:
				return
			default:
				// Unknown frame types are ignored.
			}
		}
	}()

	tick := time.NewTicker(pingInterval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			// Best-effort close.
			_ = wr.WriteFrame(Frame{Type: frameClose})
			return nil
		case err, ok := <-errCh:
			if !ok {
				// Peer sent close.
				return nil
			}
			return err
		case f := <-out:
			if err := wr.WriteFrame(f); err != nil {
				return err
			}
		case <-tick.C:
			if err := wr.WriteFrame(Frame{Type: framePing}); err != nil {
				return err
			}
		}
	}
}

// serveRequest turns one link request into a bus request and frames the reply.
func (s *Service) serveRequest(ctx context.Context, raw []byte, send func(Frame)) {
	var req types.LinkRequest
	rep := types.LinkReply{}
	if err := json.Unmarshal(raw, &req); err != nil {
		rep.Reply = types.ActuatorReply{Error: string(errcode.InvalidPayload)}
	} else {
		rep.ID = req.ID
		rep.Reply = s.forward(ctx, req)
	}
	b, err := json.Marshal(rep)
	if err != nil {
		println("[bridge] reply encode failed:", err.Error())
		return
	}
	send(Frame{Type: frameReply, Payload: b})
}

func (s *Service) forward(ctx context.Context, req types.LinkRequest) types.ActuatorReply {
	if req.Actuator == "" || req.Verb == "" {
		return types.ActuatorReply{Error: string(errcode.InvalidTopic)}
	}
	rctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	m, err := s.conn.RequestWait(rctx, s.conn.NewMessage(actuators.TopicControl(req.Actuator, req.Verb), req.Command, false))
	if err != nil {
		return types.ActuatorReply{Error: string(errcode.Timeout)}
	}
	switch r := m.Payload.(type) {
	case types.ActuatorReply:
		return r
	case *types.ActuatorReply:
		return *r
	}
	return types.ActuatorReply{Error: string(errcode.InvalidPayload)}
}

// -----------------------------------------------------------------------------
// Utilities
// -----------------------------------------------------------------------------

func decodeConfig(p any) (types.BridgeConfig, error) {
	var cfg types.BridgeConfig
	switch v := p.(type) {
	case types.BridgeConfig:
		return v, nil
	case *types.BridgeConfig:
		if v == nil {
			return cfg, errcode.InvalidPayload
		}
		return *v, nil
	case []byte:
		if err := json.Unmarshal(v, &cfg); err != nil {
			return cfg, err
		}
	case string:
		if err := json.Unmarshal([]byte(v), &cfg); err != nil {
			return cfg, err
		}
	case map[string]any:
		// Already a decoded object; re-marshal for simplicity.
		b, err := json.Marshal(v)
		if err != nil {
			return cfg, err
		}
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, errcode.InvalidPayload
	}
	return cfg, nil
}

func (s *Service) publishState(level, status string, err error) {
	st := types.ServiceState{Level: level, Status: status, TS: timex.NowMs()}
	if err != nil {
		st.Error = err.Error()
	}
	s.conn.Publish(s.conn.NewMessage(s.stateTopic, st, true))
}

func backoffSeq(min, max time.Duration) func() time.Duration {
	if min <= 0 {
		min = 100 * time.Millisecond
	}
	if max < min {
		max = min
	}
	var cur = min
	return func() time.Duration {
		d := cur
		cur *= 2
		if cur > max {
			cur = max
		}
		return d
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

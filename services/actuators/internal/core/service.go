package core

import (
	"context"
	"time"

	"actuatorcode-go/actuator"
	"actuatorcode-go/bus"
	"actuatorcode-go/errcode"
	"actuatorcode-go/fixed"
	"actuatorcode-go/types"
	"actuatorcode-go/x/timex"
)

const (
	pollQueueLen = 16
	pollJitter   = 5 * time.Millisecond
)

type entry struct {
	act    actuator.Actuator
	driver string
	cancel context.CancelFunc

	cfgErr  errcode.Code // configured settings were rejected
	link    types.Link
	linkErr errcode.Code
}

// Service owns the configured actuators and exposes them on the bus.
// All dispatch happens on the Run goroutine; actuators see one caller.
type Service struct {
	conn *bus.Connection
	res  Resources

	dev map[string]*entry // id -> actuator

	pollCh chan PollReq
	poller *Poller
}

func NewService(conn *bus.Connection, res Resources) *Service {
	s := &Service{
		conn:   conn,
		res:    res,
		dev:    map[string]*entry{},
		pollCh: make(chan PollReq, pollQueueLen),
	}
	s.poller = NewPoller(s.pollCh)
	return s
}

func (s *Service) Run(ctx context.Context) {
	cfgSub := s.conn.Subscribe(TopicConfigActuator())
	ctrlSub := s.conn.Subscribe(ctrlWildcard())
	defer s.conn.Unsubscribe(cfgSub)
	defer s.conn.Unsubscribe(ctrlSub)

	go s.poller.Run(ctx)
	s.pubState("idle", "awaiting_config")

	ready := false
	for {
		select {
		case <-ctx.Done():
			s.closeAll()
			s.pubState("stopped", "context_cancelled")
			return
		case msg := <-cfgSub.Channel():
			cfg, code := As[types.ActuatorConfig](msg.Payload)
			if code != "" {
				println("[act] ignoring config payload:", string(code))
				continue
			}
			// Additive: devices already built are left alone.
			s.applyConfig(ctx, cfg)
			if !ready {
				ready = true
				s.pubState("ready", "")
			}
		case m := <-ctrlSub.Channel():
			if !ready {
				s.replyErr(m, errcode.NotReady)
				continue
			}
			s.handleControl(m)
		case req := <-s.pollCh:
			s.sample(req.ID)
		}
	}
}

func (s *Service) applyConfig(ctx context.Context, cfg types.ActuatorConfig) {
	every := time.Duration(cfg.PollIntervalMs) * time.Millisecond
	for i := range cfg.Devices {
		dc := cfg.Devices[i]
		if _, exists := s.dev[dc.ID]; exists {
			continue
		}
		b, ok := LookupBuilder(dc.Type)
		if !ok {
			println("[act] no builder for type:", dc.Type, "id:", dc.ID)
			continue
		}
		a, err := b.Build(ctx, BuilderInput{
			ID:     dc.ID,
			Type:   dc.Type,
			Params: dc.Params,
			BusRef: dc.BusRef,
			Res:    s.res,
		})
		if err != nil {
			println("[act] build failed for:", dc.ID, "err:", err.Error())
			// Not kept, so a later config can retry the build.
			s.conn.Publish(s.conn.NewMessage(actStatus(dc.ID), types.Status{
				Link: types.LinkDown, TS: timex.NowMs(), Error: string(errcode.Of(err)),
			}, true))
			continue
		}
		e := &entry{act: a, driver: dc.Type}
		s.dev[dc.ID] = e

		s.conn.Publish(s.conn.NewMessage(actInfo(dc.ID), types.ActuatorInfo{
			SchemaVersion: 1,
			Driver:        dc.Type,
			Caps:          actuator.Capabilities(a).Names(),
		}, true))

		if err := applySettings(a, dc.Settings); err != nil {
			println("[act] settings failed for:", dc.ID, "err:", err.Error())
			e.cfgErr = errcode.Of(err)
		}
		s.setLink(dc.ID, e, types.LinkUp, "")

		if r, ok := a.(Runner); ok {
			rctx, cancel := context.WithCancel(ctx)
			e.cancel = cancel
			go r.Run(rctx)
		}
		s.poller.Upsert(dc.ID, every, pollJitter)
	}
}

// applySettings pushes configured settings through the facade. Settings are
// independent of each other, so map order is fine.
func applySettings(a actuator.Actuator, settings map[string]string) error {
	for name, text := range settings {
		id, err := actuator.ParseSetting(name)
		if err != nil {
			return &errcode.E{C: errcode.InvalidSetting, Op: "apply_settings", Msg: name}
		}
		v, err := fixed.Parse(text)
		if err != nil {
			return &errcode.E{C: errcode.Of(err), Op: "apply_settings", Msg: name + "=" + text}
		}
		if err := actuator.SetSetting(a, id, v); err != nil {
			return err
		}
	}
	return nil
}

// sample publishes the readable actuals of one actuator.
func (s *Service) sample(id string) {
	e := s.dev[id]
	if e == nil {
		s.poller.Stop(id)
		return
	}
	tel := types.ActuatorTelemetry{TS: timex.NowMs()}
	reads := []struct {
		get func(actuator.Actuator) (fixed.Value, error)
		dst **fixed.Value
	}{
		{actuator.GetTorque, &tel.Torque},
		{actuator.GetVelocity, &tel.Velocity},
		{actuator.GetPosition, &tel.Position},
	}
	n := 0
	for _, r := range reads {
		v, err := r.get(e.act)
		switch {
		case errcode.Of(err) == errcode.Unsupported:
			continue
		case err != nil:
			s.setLink(id, e, types.LinkDegraded, errcode.Of(err))
			return
		}
		*r.dst = &v
		n++
	}
	if n == 0 {
		// Nothing readable: stop polling this actuator.
		s.poller.Stop(id)
		return
	}
	s.conn.Publish(s.conn.NewMessage(actValue(id), tel, true))
	s.setLink(id, e, types.LinkUp, "")
}

// setLink publishes the retained status when it changes. A configuration
// error keeps the actuator degraded.
func (s *Service) setLink(id string, e *entry, link types.Link, code errcode.Code) {
	if link == types.LinkUp && e.cfgErr != "" {
		link, code = types.LinkDegraded, e.cfgErr
	}
	if e.link == link && e.linkErr == code {
		return
	}
	e.link, e.linkErr = link, code
	s.conn.Publish(s.conn.NewMessage(actStatus(id), types.Status{
		Link: link, TS: timex.NowMs(), Error: string(code),
	}, true))
}

func (s *Service) closeAll() {
	for id, e := range s.dev {
		if e.cancel != nil {
			e.cancel()
		}
		if c, ok := e.act.(Closer); ok {
			if err := c.Close(); err != nil {
				println("[act] close failed for:", id, "err:", err.Error())
			}
		}
		e.cfgErr = ""
		s.setLink(id, e, types.LinkDown, "")
	}
}

func (s *Service) pubState(level, status string) {
	s.conn.Publish(s.conn.NewMessage(
		topicState(),
		types.ServiceState{Level: level, Status: status, TS: timex.NowMs()},
		true,
	))
}

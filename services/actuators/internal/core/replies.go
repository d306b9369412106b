package core

import (
	"actuatorcode-go/bus"
	"actuatorcode-go/errcode"
	"actuatorcode-go/types"
)

func (s *Service) reply(m *bus.Message, r types.ActuatorReply) {
	if m.CanReply() {
		s.conn.Reply(m, r, false)
	}
}

func (s *Service) replyErr(m *bus.Message, code errcode.Code) {
	if !m.CanReply() {
		return
	}
	if code == "" {
		code = errcode.Error
	}
	s.conn.Reply(m, types.ActuatorReply{OK: false, Error: string(code)}, false)
}

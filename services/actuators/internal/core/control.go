package core

import (
	"actuatorcode-go/actuator"
	"actuatorcode-go/bus"
	"actuatorcode-go/errcode"
	"actuatorcode-go/types"
)

func (s *Service) handleControl(msg *bus.Message) {
	// act/<id>/control/<verb>
	if msg.Topic.Len() != 4 {
		s.replyErr(msg, errcode.InvalidTopic)
		return
	}
	id := msg.Topic.At(1)
	verb := msg.Topic.At(3)

	e := s.dev[id]
	if e == nil {
		s.replyErr(msg, errcode.UnknownActuator)
		return
	}
	cmd, code := As[types.ActuatorCommand](msg.Payload)
	if code != "" {
		s.replyErr(msg, code)
		return
	}
	call, err := CallFor(verb, cmd)
	if err != nil {
		s.replyErr(msg, errcode.Of(err))
		return
	}
	res, err := actuator.Do(e.act, call)
	if err != nil {
		s.replyErr(msg, errcode.Of(err))
		return
	}
	s.reply(msg, ReplyFor(call.Op, res))
}

// CallFor translates a bus verb and command into a facade call.
// Mode and setting names are decoded only for the verbs that use them.
func CallFor(verb string, cmd types.ActuatorCommand) (actuator.Call, error) {
	op, err := actuator.ParseOp(verb)
	if err != nil {
		return actuator.Call{}, err
	}
	c := actuator.Call{Op: op, Value: cmd.Value}
	switch op {
	case actuator.OpSetControlMode:
		if c.Mode, err = actuator.ParseMode(cmd.Mode); err != nil {
			return actuator.Call{}, err
		}
	case actuator.OpSetSetting, actuator.OpGetSetting:
		if c.Setting, err = actuator.ParseSetting(cmd.Setting); err != nil {
			return actuator.Call{}, err
		}
	}
	return c, nil
}

// ReplyFor shapes a successful result for op.
func ReplyFor(op actuator.Op, r actuator.Result) types.ActuatorReply {
	rep := types.ActuatorReply{OK: true}
	switch op {
	case actuator.OpGetControlMode:
		rep.Mode = r.Mode.String()
	case actuator.OpIsEnabled:
		on := r.Enabled
		rep.Enabled = &on
	case actuator.OpGetSetting, actuator.OpGetTorqueTarget, actuator.OpGetVelocityTarget,
		actuator.OpGetPositionTarget, actuator.OpGetTorque, actuator.OpGetVelocity, actuator.OpGetPosition:
		v := r.Value
		rep.Value = &v
	}
	return rep
}

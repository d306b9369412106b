package main

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/shlex"

	"actuatorcode-go/bus"
	"actuatorcode-go/errcode"
	"actuatorcode-go/fixed"
	"actuatorcode-go/services/actuators"
	"actuatorcode-go/types"
)

const requestTimeout = 2 * time.Second

var errUsage = errors.New("usage")

// printer is the output side shared by the ishell console and script mode.
type printer interface {
	Println(a ...interface{})
}

type command struct {
	name, help string
	run        func(c *console, out printer, args []string) error
}

// console keeps a view of the retained actuator topics and issues control
// requests on behalf of the user.
type console struct {
	conn *bus.Connection

	mu     sync.Mutex
	info   map[string]types.ActuatorInfo
	status map[string]types.Status
	values map[string]types.ActuatorTelemetry
}

func newConsole(conn *bus.Connection) *console {
	return &console{
		conn:   conn,
		info:   map[string]types.ActuatorInfo{},
		status: map[string]types.Status{},
		values: map[string]types.ActuatorTelemetry{},
	}
}

// watch mirrors act/+/info, act/+/status and act/+/value until ctx is done.
// The returned channel is closed once the subscription is in place.
func (c *console) watch(ctx context.Context) <-chan struct{} {
	ready := make(chan struct{})
	go func() {
		sub := c.conn.Subscribe(bus.T("act", bus.SingleWild, bus.SingleWild))
		defer c.conn.Unsubscribe(sub)
		close(ready)
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-sub.Channel():
				if !ok {
					return
				}
				c.observe(m)
			}
		}
	}()
	return ready
}

func (c *console) observe(m *bus.Message) {
	id := m.Topic.At(1)
	c.mu.Lock()
	defer c.mu.Unlock()
	switch p := m.Payload.(type) {
	case types.ActuatorInfo:
		c.info[id] = p
	case types.Status:
		c.status[id] = p
	case types.ActuatorTelemetry:
		c.values[id] = p
	}
}

func (c *console) ids() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.info))
	for id := range c.info {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// call sends one control request and turns a failed reply into an error.
func (c *console) call(id, verb string, cmd types.ActuatorCommand) (types.ActuatorReply, error) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	m, err := c.conn.RequestWait(ctx, c.conn.NewMessage(actuators.TopicControl(id, verb), cmd, false))
	if err != nil {
		return types.ActuatorReply{}, errcode.Timeout
	}
	rep, ok := m.Payload.(types.ActuatorReply)
	if !ok {
		return types.ActuatorReply{}, errcode.InvalidPayload
	}
	if !rep.OK {
		return rep, &errcode.E{C: errcode.Code(rep.Error), Op: verb, Msg: id}
	}
	return rep, nil
}

// exec runs one already tokenised command line.
func (c *console) exec(out printer, args []string) error {
	if len(args) == 0 {
		return nil
	}
	for _, cmd := range commands {
		if cmd.name == args[0] {
			err := cmd.run(c, out, args[1:])
			if errors.Is(err, errUsage) {
				return errors.New("usage: " + cmd.help)
			}
			return err
		}
	}
	return errors.New("unknown command: " + args[0])
}

// script runs "cmd; cmd; ..." and stops at the first error.
func (c *console) script(out printer, src string) error {
	for _, line := range strings.Split(src, ";") {
		args, err := shlex.Split(line)
		if err != nil {
			return err
		}
		if err := c.exec(out, args); err != nil {
			return err
		}
	}
	return nil
}

var commands []command

func init() {
	commands = []command{
		{"list", "list", cmdList},
		{"caps", "caps <id>", cmdCaps},
		{"mode", "mode <id> [torque|velocity|position]", cmdMode},
		{"enable", "enable <id>", cmdVerb("enable")},
		{"disable", "disable <id>", cmdVerb("disable")},
		{"set", "set <id> <setting> <value>", cmdSet},
		{"get", "get <id> <setting>", cmdGet},
		{"target", "target <id> <torque|velocity|position> [value]", cmdTarget},
		{"actual", "actual <id> [torque|velocity|position]", cmdActual},
		{"status", "status <id>", cmdStatus},
	}
}

func cmdList(c *console, out printer, args []string) error {
	for _, id := range c.ids() {
		c.mu.Lock()
		info, st := c.info[id], c.status[id]
		c.mu.Unlock()
		out.Println(id, info.Driver, string(st.Link))
	}
	return nil
}

func cmdCaps(c *console, out printer, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	c.mu.Lock()
	info, ok := c.info[args[0]]
	c.mu.Unlock()
	if !ok {
		return errcode.UnknownActuator
	}
	out.Println(strings.Join(info.Caps, " "))
	return nil
}

func cmdMode(c *console, out printer, args []string) error {
	switch len(args) {
	case 1:
		rep, err := c.call(args[0], "get_mode", types.ActuatorCommand{})
		if err != nil {
			return err
		}
		out.Println(rep.Mode)
		return nil
	case 2:
		_, err := c.call(args[0], "set_mode", types.ActuatorCommand{Mode: args[1]})
		return err
	}
	return errUsage
}

func cmdVerb(verb string) func(*console, printer, []string) error {
	return func(c *console, out printer, args []string) error {
		if len(args) != 1 {
			return errUsage
		}
		_, err := c.call(args[0], verb, types.ActuatorCommand{})
		return err
	}
}

func cmdSet(c *console, out printer, args []string) error {
	if len(args) != 3 {
		return errUsage
	}
	v, err := fixed.Parse(args[2])
	if err != nil {
		return err
	}
	_, err = c.call(args[0], "set_setting", types.ActuatorCommand{Setting: args[1], Value: v})
	return err
}

func cmdGet(c *console, out printer, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	rep, err := c.call(args[0], "get_setting", types.ActuatorCommand{Setting: args[1]})
	if err != nil {
		return err
	}
	printValue(out, rep)
	return nil
}

func cmdTarget(c *console, out printer, args []string) error {
	switch len(args) {
	case 2:
		rep, err := c.call(args[0], "get_"+args[1]+"_target", types.ActuatorCommand{})
		if err != nil {
			return err
		}
		printValue(out, rep)
		return nil
	case 3:
		v, err := fixed.Parse(args[2])
		if err != nil {
			return err
		}
		_, err = c.call(args[0], "set_"+args[1]+"_target", types.ActuatorCommand{Value: v})
		return err
	}
	return errUsage
}

func cmdActual(c *console, out printer, args []string) error {
	switch len(args) {
	case 1:
		for _, q := range []string{"torque", "velocity", "position"} {
			rep, err := c.call(args[0], "get_"+q, types.ActuatorCommand{})
			if errcode.Of(err) == errcode.Unsupported {
				continue
			}
			if err != nil {
				return err
			}
			out.Println(q, valueText(rep))
		}
		return nil
	case 2:
		rep, err := c.call(args[0], "get_"+args[1], types.ActuatorCommand{})
		if err != nil {
			return err
		}
		printValue(out, rep)
		return nil
	}
	return errUsage
}

func cmdStatus(c *console, out printer, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	id := args[0]
	c.mu.Lock()
	st, ok := c.status[id]
	c.mu.Unlock()
	if !ok {
		return errcode.UnknownActuator
	}
	line := []interface{}{"link", string(st.Link)}
	if st.Error != "" {
		line = append(line, "error", st.Error)
	}
	if rep, err := c.call(id, "is_enabled", types.ActuatorCommand{}); err == nil && rep.Enabled != nil {
		line = append(line, "enabled", *rep.Enabled)
	}
	if rep, err := c.call(id, "get_mode", types.ActuatorCommand{}); err == nil {
		line = append(line, "mode", rep.Mode)
	}
	out.Println(line...)
	return nil
}

func printValue(out printer, rep types.ActuatorReply) { out.Println(valueText(rep)) }

func valueText(rep types.ActuatorReply) string {
	if rep.Value == nil {
		return "-"
	}
	return rep.Value.String()
}

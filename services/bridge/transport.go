package bridge

import (
	"context"
	"io"
	"sync"

	"github.com/gorilla/websocket"
	"go.bug.st/serial"

	"actuatorcode-go/errcode"
	"actuatorcode-go/types"
)

// -----------------------------------------------------------------------------
// Transport registry
// -----------------------------------------------------------------------------

// Transport is a pluggable link dialler/owner.
type Transport interface {
	Open(ctx context.Context) (io.ReadWriteCloser, error)
	String() string
}

type TransportFactory func(types.TransportConfig) (Transport, error)

var (
	regMu    sync.RWMutex
	registry = map[string]TransportFactory{}
)

// RegisterTransport allows external packages to add transports (eg. "tcp").
// Registered names take precedence over the built-in ones.
func RegisterTransport(name string, f TransportFactory) {
	regMu.Lock()
	defer regMu.Unlock()
	registry[name] = f
}

func newTransport(cfg types.TransportConfig) (Transport, error) {
	regMu.RLock()
	f, ok := registry[cfg.Type]
	regMu.RUnlock()
	if ok {
		return f(cfg)
	}
	switch cfg.Type {
	case "serial":
		return newSerialTransport(cfg)
	case "ws":
		return newWSTransport(cfg)
	default:
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "transport", Msg: "unknown transport type: " + cfg.Type}
	}
}

// ---- serial ----

// SerialOpen opens a serial port; tests may replace it.
var SerialOpen = func(port string, mode *serial.Mode) (io.ReadWriteCloser, error) {
	return serial.Open(port, mode)
}

type serialTransport struct {
	cfg types.SerialConfig
}

func newSerialTransport(cfg types.TransportConfig) (Transport, error) {
	if cfg.Serial == nil || cfg.Serial.Port == "" {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "transport", Msg: "serial transport requires a port"}
	}
	sc := *cfg.Serial
	if sc.Baud == 0 {
		sc.Baud = 115200
	}
	return &serialTransport{cfg: sc}, nil
}

func (t *serialTransport) Open(ctx context.Context) (io.ReadWriteCloser, error) {
	return SerialOpen(t.cfg.Port, &serial.Mode{
		BaudRate: t.cfg.Baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
}

func (t *serialTransport) String() string { return "serial:" + t.cfg.Port }

// ---- websocket ----

type wsTransport struct {
	url    string
	dialer *websocket.Dialer
}

func newWSTransport(cfg types.TransportConfig) (Transport, error) {
	if cfg.WS == nil || cfg.WS.URL == "" {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "transport", Msg: "ws transport requires a url"}
	}
	return &wsTransport{url: cfg.WS.URL, dialer: websocket.DefaultDialer}, nil
}

func (t *wsTransport) Open(ctx context.Context) (io.ReadWriteCloser, error) {
	c, _, err := t.dialer.DialContext(ctx, t.url, nil)
	if err != nil {
		return nil, err
	}
	return newWSStream(c), nil
}

func (t *wsTransport) String() string { return "ws:" + t.url }

// wsStream presents a websocket as a byte stream: each Write is one binary
// message and reads run across message boundaries.
type wsStream struct {
	c *websocket.Conn
	r io.Reader

	wmu sync.Mutex
}

func newWSStream(c *websocket.Conn) *wsStream { return &wsStream{c: c} }

func (s *wsStream) Read(p []byte) (int, error) {
	for {
		if s.r == nil {
			_, r, err := s.c.NextReader()
			if err != nil {
				return 0, err
			}
			s.r = r
		}
		n, err := s.r.Read(p)
		if err == io.EOF {
			s.r = nil
			if n > 0 {
				return n, nil
			}
			continue
		}
		return n, err
	}
}

func (s *wsStream) Write(p []byte) (int, error) {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	if err := s.c.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (s *wsStream) Close() error { return s.c.Close() }

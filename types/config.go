package types

// ActuatorConfig is supplied on topic "config/actuator".
type ActuatorConfig struct {
	PollIntervalMs uint32   `json:"poll_interval_ms" yaml:"poll_interval_ms"`
	Devices        []Device `json:"devices" yaml:"devices"`
}

type Device struct {
	ID       string            `json:"id" yaml:"id"`
	Type     string            `json:"type" yaml:"type"` // e.g. "sim", "i2creg"
	Params   map[string]any    `json:"params,omitempty" yaml:"params,omitempty"`
	Settings map[string]string `json:"settings,omitempty" yaml:"settings,omitempty"` // setting name -> decimal
	BusRef   string            `json:"bus_ref,omitempty" yaml:"bus_ref,omitempty"`   // e.g. "i2c0"
}

// BridgeConfig is supplied on topic "config/bridge".
type BridgeConfig struct {
	Transport TransportConfig `json:"transport" yaml:"transport"`
}

type TransportConfig struct {
	// "serial", "ws", or a name registered with bridge.RegisterTransport.
	Type   string        `json:"type" yaml:"type"`
	Serial *SerialConfig `json:"serial,omitempty" yaml:"serial,omitempty"`
	WS     *WSConfig     `json:"ws,omitempty" yaml:"ws,omitempty"`
}

type SerialConfig struct {
	Port string `json:"port" yaml:"port"`
	Baud int    `json:"baud" yaml:"baud"`
}

type WSConfig struct {
	URL string `json:"url" yaml:"url"`
}

// LinkRequest is one framed command arriving over a bridge link.
type LinkRequest struct {
	ID       uint32          `json:"id"`
	Actuator string          `json:"actuator"`
	Verb     string          `json:"verb"`
	Command  ActuatorCommand `json:"command"`
}

// LinkReply answers a LinkRequest with the same ID.
type LinkReply struct {
	ID    uint32        `json:"id"`
	Reply ActuatorReply `json:"reply"`
}

package config

import (
	"context"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"actuatorcode-go/bus"
	"actuatorcode-go/errcode"
	"actuatorcode-go/types"
	"actuatorcode-go/x/strx"
)

const (
	serviceName  = "config"
	configPrefix = "config"

	defaultPollIntervalMs = 100
)

// File is the on-disk configuration document.
type File struct {
	PollIntervalMs uint32              `yaml:"poll_interval_ms"`
	Actuators      []types.Device      `yaml:"actuators"`
	Bridge         *types.BridgeConfig `yaml:"bridge,omitempty"`
}

// Env holds process environment overrides.
type Env struct {
	ConfigPath     string `env:"ACTUATOR_CONFIG"`
	PollIntervalMs uint32 `env:"ACTUATOR_POLL_INTERVAL_MS"`
	TickMs         int    `env:"ACTUATOR_TICK_MS"` // applied to sim actuators; drops their rate_hz
}

// EmbeddedConfigLookup resolves the configuration used when no file is given.
var EmbeddedConfigLookup = func(name string) ([]byte, bool) {
	b, ok := embeddedConfigs[name]
	return b, ok
}

// Load reads the configuration at path, or at $ACTUATOR_CONFIG, or the
// embedded default, and applies environment overrides.
func Load(path string) (File, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return File{}, &errcode.E{C: errcode.InvalidParams, Op: "config_env", Err: err}
	}

	var (
		raw []byte
		err error
	)
	if path = strx.Coalesce(path, e.ConfigPath); path != "" {
		if raw, err = os.ReadFile(path); err != nil {
			return File{}, &errcode.E{C: errcode.InvalidParams, Op: "config_read", Msg: path, Err: err}
		}
	} else {
		b, ok := EmbeddedConfigLookup("default")
		if !ok {
			return File{}, &errcode.E{C: errcode.InvalidParams, Op: "config_read", Msg: "no embedded config"}
		}
		raw = b
	}

	f, err := Parse(raw)
	if err != nil {
		return File{}, err
	}
	f.applyEnv(e)
	return f, nil
}

// Parse decodes a YAML document and fills defaults.
func Parse(raw []byte) (File, error) {
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return File{}, &errcode.E{C: errcode.InvalidPayload, Op: "config_parse", Err: err}
	}
	if f.PollIntervalMs == 0 {
		f.PollIntervalMs = defaultPollIntervalMs
	}
	seen := make(map[string]bool, len(f.Actuators))
	for _, d := range f.Actuators {
		if d.ID == "" || d.Type == "" {
			return File{}, &errcode.E{C: errcode.InvalidParams, Op: "config_parse", Msg: "actuator needs id and type"}
		}
		if seen[d.ID] {
			return File{}, &errcode.E{C: errcode.InvalidParams, Op: "config_parse", Msg: "duplicate actuator " + d.ID}
		}
		seen[d.ID] = true
	}
	return f, nil
}

func (f *File) applyEnv(e Env) {
	if e.PollIntervalMs > 0 {
		f.PollIntervalMs = e.PollIntervalMs
	}
	if e.TickMs > 0 {
		for i := range f.Actuators {
			if f.Actuators[i].Type != "sim" {
				continue
			}
			if f.Actuators[i].Params == nil {
				f.Actuators[i].Params = map[string]any{}
			}
			// rate_hz would otherwise win over tick_ms in the sim builder.
			delete(f.Actuators[i].Params, "rate_hz")
			f.Actuators[i].Params["tick_ms"] = e.TickMs
		}
	}
}

// ActuatorConfig is the section published on config/actuator.
func (f File) ActuatorConfig() types.ActuatorConfig {
	return types.ActuatorConfig{PollIntervalMs: f.PollIntervalMs, Devices: f.Actuators}
}

// -----------------------------------------------------------------------------
// Config Service
// -----------------------------------------------------------------------------

type ConfigService struct {
	Name string
	file File
}

func NewConfigService(f File) *ConfigService {
	return &ConfigService{Name: serviceName, file: f}
}

// publishConfig publishes each section as a retained message.
func (s *ConfigService) publishConfig(conn *bus.Connection) {
	conn.Publish(conn.NewMessage(bus.T(configPrefix, "actuator"), s.file.ActuatorConfig(), true))
	if s.file.Bridge != nil {
		conn.Publish(conn.NewMessage(bus.T(configPrefix, "bridge"), *s.file.Bridge, true))
	}
	println("[config] published", len(s.file.Actuators), "actuators")
}

// Start launches the config publisher in a goroutine.
func (s *ConfigService) Start(ctx context.Context, conn *bus.Connection) {
	go func() {
		if ctx.Err() != nil {
			return
		}
		s.publishConfig(conn)
	}()
}

package types

import "actuatorcode-go/fixed"

// ActuatorCommand is the payload of act/<id>/control/<verb>.
// Only the fields the verb uses are read.
type ActuatorCommand struct {
	Mode    string      `json:"mode,omitempty"`    // e.g. "velocity"
	Setting string      `json:"setting,omitempty"` // e.g. "torque_kp", "private:3"
	Value   fixed.Value `json:"value"`
}

// ActuatorReply answers a control request.
type ActuatorReply struct {
	OK      bool         `json:"ok"`
	Value   *fixed.Value `json:"value,omitempty"`
	Mode    string       `json:"mode,omitempty"`
	Enabled *bool        `json:"enabled,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// ActuatorInfo is retained on act/<id>/info.
type ActuatorInfo struct {
	SchemaVersion int      `json:"schema_version"`
	Driver        string   `json:"driver"`
	Caps          []string `json:"caps"`
}

// ActuatorTelemetry is retained on act/<id>/value. Quantities the
// actuator cannot report are nil.
type ActuatorTelemetry struct {
	Torque   *fixed.Value `json:"torque,omitempty"`
	Velocity *fixed.Value `json:"velocity,omitempty"`
	Position *fixed.Value `json:"position,omitempty"`
	TS       int64        `json:"ts_ms"`
}

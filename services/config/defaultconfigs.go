package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Used when neither a path nor $ACTUATOR_CONFIG names a file.
// Key: config name ("default")
// Val: raw YAML bytes
// -----------------------------------------------------------------------------

const cfgDefault = `
poll_interval_ms: 100
actuators:
  - id: m1
    type: sim
    params:
      mode: position
      inertia: "0.01"
      damping: "0.05"
    settings:
      position_kp: "10"
      pole_pairs: "7"
  - id: m2
    type: sim
    params:
      caps: [state, velocity, actuals]
      mode: velocity
`

var embeddedConfigs = map[string][]byte{
	"default": []byte(cfgDefault),
}

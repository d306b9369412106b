// services/actuators/actuators.go
package actuators

import (
	"context"

	"actuatorcode-go/bus"
	"actuatorcode-go/services/actuators/internal/core"

	// Register device builders.
	_ "actuatorcode-go/services/actuators/devices/i2creg"
	_ "actuatorcode-go/services/actuators/devices/sim"
)

type (
	Resources     = core.Resources
	I2CBusFactory = core.I2CBusFactory
)

// Run serves actuators on conn until ctx is done. Configuration arrives on
// config/actuator; controls on act/<id>/control/<verb>.
func Run(ctx context.Context, conn *bus.Connection, res Resources) {
	core.NewService(conn, res).Run(ctx)
}

// TopicControl is the request topic for verb on actuator id.
func TopicControl(id, verb string) bus.Topic { return core.TopicControl(id, verb) }

// TopicConfig is where the actuator service reads its configuration.
func TopicConfig() bus.Topic { return core.TopicConfigActuator() }

func TopicInfo(id string) bus.Topic   { return bus.T(core.TokActuator, id, "info") }
func TopicStatus(id string) bus.Topic { return bus.T(core.TokActuator, id, "status") }
func TopicValue(id string) bus.Topic  { return bus.T(core.TokActuator, id, "value") }
func TopicState() bus.Topic           { return bus.T(core.TokActuator, "state") }

package core

import "actuatorcode-go/bus"

const (
	TokActuator = "act"
	TokControl  = "control"
	TokConfig   = "config"
)

func TopicConfigActuator() bus.Topic { return bus.T(TokConfig, "actuator") }

func topicState() bus.Topic { return bus.T(TokActuator, "state") }

// act/<id>/...
func actBase(id string) bus.Topic { return bus.T(TokActuator, id) }

func actInfo(id string) bus.Topic   { return actBase(id).Append("info") }
func actStatus(id string) bus.Topic { return actBase(id).Append("status") }
func actValue(id string) bus.Topic  { return actBase(id).Append("value") }

// act/<id>/control/<verb>
func TopicControl(id, verb string) bus.Topic { return actBase(id).Append(TokControl, verb) }

// act/+/control/+
func ctrlWildcard() bus.Topic { return bus.T(TokActuator, bus.SingleWild, TokControl, bus.SingleWild) }

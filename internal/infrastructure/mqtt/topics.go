package mqtt

import "fmt"

// Topic prefixes for the stickd topic hierarchy.
//
// All topics use the flat scheme: stickd/{category}/{rig_id}[/{detail}].
// Category comes first so fleet-wide subscriptions stay single-wildcard.
const (
	// TopicPrefix is the base for all stickd topics.
	TopicPrefix = "stickd"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "stickd/system"
)

// Topics provides builders for stickd MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.RigState("rig-001")
//	// Returns: "stickd/state/rig-001"
type Topics struct{}

// RigState returns the topic for conditioned state published by a rig.
// Published retained so late subscribers see the current frame.
//
// Example: stickd/state/rig-001
func (Topics) RigState(rigID string) string {
	return fmt.Sprintf("%s/state/%s", TopicPrefix, rigID)
}

// RigEvent returns the topic for lifecycle events from a rig, such as
// the initialization gate opening.
//
// Example: stickd/event/rig-001/enabled
func (Topics) RigEvent(rigID, kind string) string {
	return fmt.Sprintf("%s/event/%s/%s", TopicPrefix, rigID, kind)
}

// SystemStatus returns the daemon status topic used for the online
// message and the Last Will and Testament.
//
// Example: stickd/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllRigStates returns a pattern matching state from every rig.
//
// Pattern: stickd/state/+
func (Topics) AllRigStates() string {
	return fmt.Sprintf("%s/state/+", TopicPrefix)
}

// AllRigEvents returns a pattern matching lifecycle events from every rig.
//
// Pattern: stickd/event/+/+
func (Topics) AllRigEvents() string {
	return fmt.Sprintf("%s/event/+/+", TopicPrefix)
}

// AllTopics returns a pattern matching all stickd topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: stickd/#
func (Topics) AllTopics() string {
	return "stickd/#"
}

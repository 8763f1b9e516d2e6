package mqtt

import "fmt"

// Topic prefixes for the DOMIoT MQTT namespace.
//
// Externally-fed hub topics use the flat scheme:
// domiot/{kind}/{instance}/{attribute}. External producers publish
// input states and their connection status; the daemon publishes
// output states back.
const (
	// TopicPrefix is the base for all DOMIoT topics.
	TopicPrefix = "domiot"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "domiot/system"
)

// Topics provides builders for DOMIoT MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	inputTopic := topics.VintInputs(0)
//	// Returns: "domiot/vintx6/0/input_states"
type Topics struct{}

// VintInputs returns the topic an external producer publishes input
// states to for one vintx6 instance.
//
// Example: domiot/vintx6/0/input_states
func (Topics) VintInputs(instance int) string {
	return fmt.Sprintf("%s/vintx6/%d/input_states", TopicPrefix, instance)
}

// VintConnected returns the topic an external producer publishes its
// connection status to ("1" connected, "0" disconnected, retained).
//
// Example: domiot/vintx6/0/connected
func (Topics) VintConnected(instance int) string {
	return fmt.Sprintf("%s/vintx6/%d/connected", TopicPrefix, instance)
}

// VintOutputs returns the topic the daemon publishes accepted output
// states to for one vintx6 instance.
//
// Example: domiot/vintx6/0/output_states
func (Topics) VintOutputs(instance int) string {
	return fmt.Sprintf("%s/vintx6/%d/output_states", TopicPrefix, instance)
}

// SystemStatus returns the daemon status topic, also used for the
// Last Will and Testament.
//
// Example: domiot/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllVintInputs returns a pattern matching input states for every
// vintx6 instance.
//
// Pattern: domiot/vintx6/+/input_states
func (Topics) AllVintInputs() string {
	return fmt.Sprintf("%s/vintx6/+/input_states", TopicPrefix)
}

// AllVintConnected returns a pattern matching connection status for
// every vintx6 instance.
//
// Pattern: domiot/vintx6/+/connected
func (Topics) AllVintConnected() string {
	return fmt.Sprintf("%s/vintx6/+/connected", TopicPrefix)
}

// AllTopics returns a pattern matching all DOMIoT topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: domiot/#
func (Topics) AllTopics() string {
	return "domiot/#"
}

// Package vintmqtt bridges vintx6 hubs to an external controller over
// MQTT.
//
// The controller publishes input states and a retained connection
// flag per hub instance; the bridge feeds both into the hub. Output
// writes accepted by a hub are published back to the controller on
// the instance's output topic.
//
//	domiot/vintx6/{i}/input_states   controller -> bridge (channel bits)
//	domiot/vintx6/{i}/connected      controller -> bridge ("1"/"0", retained)
//	domiot/vintx6/{i}/output_states  bridge -> controller (retained)
package vintmqtt

// Package mqtt provides MQTT client connectivity for the DOMIoT
// simulation daemon.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// MQTT connects the daemon to external controllers feeding the vintx6
// hubs. Controllers publish input states and a connection flag; the
// daemon publishes accepted output states back.
//
//	External Controller ↔ MQTT Broker ↔ DOMIoT Daemon
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Subscribe to input states for every vintx6 instance
//	err = client.Subscribe(mqtt.Topics{}.AllVintInputs(), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	// Publish output states
//	client.Publish(mqtt.Topics{}.VintOutputs(0), []byte("101010"), 1, true)
package mqtt

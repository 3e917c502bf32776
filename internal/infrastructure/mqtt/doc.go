// Package mqtt provides MQTT client connectivity for stickd.
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
// stickd publishes its conditioned controller state and lifecycle events
// over MQTT so remote consumers (dashboards, recorders, fleet tooling)
// never touch the input device or the tick loop directly. The broker
// decouples the daemon from whatever is watching it.
//
//	stickd → MQTT Broker → consumers
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Performance Characteristics
//
//   - Connection: <1 second to local broker
//   - Publish latency: <10ms for QoS 1 to local broker
//   - Reconnect: Exponential backoff with configurable bounds
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Publish the current conditioned state, retained
//	topic := mqtt.Topics{}.RigState("rig-001")
//	client.Publish(topic, payload, 1, true)
//
//	// Watch every rig on the broker
//	err = client.Subscribe(mqtt.Topics{}.AllRigStates(), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
package mqtt

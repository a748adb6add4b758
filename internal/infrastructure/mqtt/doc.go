// Package mqtt provides the MQTT client used as the bridge's bus link.
//
// This package manages:
//   - Explicit, retryable connection to the broker (no auto-reconnect - the
//     bridge's connection state machine owns the retry schedule)
//   - Message publishing with QoS and payload validation
//   - Last Will and Testament (LWT) plus retained online/offline status on
//     fronius-bridge/system/status
//
// # Architecture
//
// The bridge publishes Home Assistant discovery and state messages through
// this client:
//
//	Inverter (Modbus/SunSpec) -> Bridge -> MQTT Broker -> Home Assistant
//
// The client deliberately exposes only the contract the bridge needs:
// Connect, Close, IsConnected, Publish. Subscription support was left out;
// the bridge is a one-way telemetry publisher.
//
// # Usage
//
//	client := mqtt.New(cfg.MQTT)
//	if err := client.Connect(); err != nil {
//	    // schedule a retry with backoff
//	}
//	defer client.Close()
//
//	err := client.Publish(topic, payload, 1, true)
package mqtt

package mqtt

// Topics builds the bridge's own MQTT topics (not the Home Assistant
// discovery/state topics, which embed the device serial and are built by the
// bridge package).
type Topics struct{}

// SystemStatus is the retained online/offline status topic, also used as the
// LWT target so the broker announces an unexpected bridge death.
func (Topics) SystemStatus() string {
	return "fronius-bridge/system/status"
}

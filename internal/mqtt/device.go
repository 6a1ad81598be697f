package mqtt

import "github.com/nugget/credo-bot/internal/buildinfo"

// DeviceInfo is the Home Assistant device registry block. Every credo
// sensor hangs off one device per installation.
type DeviceInfo struct {
	Identifiers  []string `json:"identifiers"`
	Name         string   `json:"name"`
	Manufacturer string   `json:"manufacturer"`
	Model        string   `json:"model"`
	SWVersion    string   `json:"sw_version"`
}

// SensorConfig is the discovery payload for one run-summary sensor. The
// state topic is always the retained summary; ValueTemplate picks the
// field the sensor shows.
type SensorConfig struct {
	Name                string     `json:"name"`
	UniqueID            string     `json:"unique_id"`
	StateTopic          string     `json:"state_topic"`
	ValueTemplate       string     `json:"value_template"`
	JSONAttributesTopic string     `json:"json_attributes_topic,omitempty"`
	DeviceClass         string     `json:"device_class,omitempty"`
	Icon                string     `json:"icon,omitempty"`
	EntityCategory      string     `json:"entity_category,omitempty"`
	Device              DeviceInfo `json:"device"`
}

// NewDeviceInfo builds the device block for instanceID.
func NewDeviceInfo(instanceID, name string) DeviceInfo {
	return DeviceInfo{
		Identifiers:  []string{"credo_" + instanceID},
		Name:         name,
		Manufacturer: "credo-bot",
		Model:        "Daily Credo Reporter",
		SWVersion:    buildinfo.Version,
	}
}

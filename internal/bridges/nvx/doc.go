// Package nvx implements the endpoint driver for DM-NVX devices reached
// through an MQTT gateway agent.
//
// The gateway relays each device's hardware state as JSON on
// nvxfleet/device/{id}/event and accepts commands on
// nvxfleet/device/{id}/command, where {id} is the two-digit hex address.
//
// Event payload:
//
//	{"type":"stream","event_id":5,"input":1,"sync_detected":true}
//
// Types are base, name, ip, online, stream and multicast. Commands are
// register, set_name and set_multicast_address.
//
// A Device caches the last reported state and raises endpoint driver
// events from the MQTT handler goroutine, one message at a time.
package nvx

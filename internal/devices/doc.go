// Package devices exposes an ArduControl hub and its dependent endpoints as
// named devices with string properties.
//
// Every device implements Device. A property Get returns the cached value
// without touching the controller; a Set validates the text, performs the
// wire exchange through the hub and commits the cache only on success.
//
// Install creates the full set for one hub:
//
//	ArduControl-Hub            shared timing and sequencing
//	ArduControl-TriggerSelect  trigger source (state device)
//	ArduControl-Enable         global enable gate (shutter device)
//	ArduControl-OutputP1..O2   modulation channels (signal devices)
package devices

package protocol

import "time"

// Framing bytes
const (
	StartMarker byte = 0x01 // ASCII SOH
	EndMarker   byte = 0x04 // ASCII EOT
	ACK         byte = 0x06
	NACK        byte = 0x15
)

// AnswerDelimiter terminates every query answer line.
const AnswerDelimiter = "\r\n"

// Command headers. Each command is identified by one ASCII letter.
const (
	HeaderAnalogModulation  byte = 'A' // enable analog modulation (bool)
	HeaderAcquire           byte = 'B' // acquire N frames (count)
	HeaderDigitalModulation byte = 'D' // enable digital modulation (bool)
	HeaderExposure          byte = 'E' // exposure time (duration)
	HeaderFirmware          byte = 'F' // firmware identity (query)
	HeaderGate              byte = 'G' // channel gate (channel + bool)
	HeaderEnable            byte = 'H' // global enable (bool)
	HeaderAmplitude         byte = 'I' // channel amplitude (channel + byte)
	HeaderLoopFrame         byte = 'L' // loop frame (bool)
	HeaderNFrames           byte = 'M' // frames per sequence (byte)
	HeaderNSteps            byte = 'N' // steps per frame (byte)
	HeaderAnalogTable       byte = 'O' // analog modulation table
	HeaderDigitalTable      byte = 'P' // digital modulation table
	HeaderReset             byte = 'R' // reset controller state
	HeaderTrigger           byte = 'S' // trigger source (byte)
	HeaderStepTime          byte = 'T' // step duration (duration)
	HeaderVersion           byte = 'V' // firmware version (query)
	HeaderWaitBefore        byte = 'W' // wait before exposure (duration)
	HeaderWaitAfter         byte = 'X' // wait after exposure (duration)
)

// Controller identity and link parameters
const (
	// FirmwareID is the exact answer to the firmware identity query
	FirmwareID = "MM-AC"

	// MinVersion and MaxVersion bound the supported firmware versions (inclusive)
	MinVersion = 1
	MaxVersion = 2

	// BaudRate is the fixed serial speed of the firmware
	BaudRate = 9600

	// MaxSequenceLength is the largest steps*frames product the firmware can hold
	MaxSequenceLength = 250

	// MaxChannel is the highest output channel index
	MaxChannel = 3
)

// Timing defaults
const (
	// DefaultAckTimeout bounds the wait for an ACK/NACK byte
	DefaultAckTimeout = 500 * time.Millisecond

	// DefaultAnswerTimeout bounds the wait for a complete answer line after ACK
	DefaultAnswerTimeout = 500 * time.Millisecond

	// DefaultSettleDelay is how long the board ignores the link after the port opens
	// (the bootloader listens for firmware uploads first)
	DefaultSettleDelay = 2 * time.Second
)

var headerNames = map[byte]string{
	HeaderAnalogModulation:  "AnalogModulation",
	HeaderAcquire:           "Acquire",
	HeaderDigitalModulation: "DigitalModulation",
	HeaderExposure:          "Exposure",
	HeaderFirmware:          "Firmware",
	HeaderGate:              "Gate",
	HeaderEnable:            "Enable",
	HeaderAmplitude:         "Amplitude",
	HeaderLoopFrame:         "LoopFrame",
	HeaderNFrames:           "NFrames",
	HeaderNSteps:            "NSteps",
	HeaderAnalogTable:       "AnalogTable",
	HeaderDigitalTable:      "DigitalTable",
	HeaderReset:             "Reset",
	HeaderTrigger:           "Trigger",
	HeaderStepTime:          "StepTime",
	HeaderVersion:           "Version",
	HeaderWaitBefore:        "WaitBefore",
	HeaderWaitAfter:         "WaitAfter",
}

// HeaderName returns a readable name for a command header.
func HeaderName(header byte) string {
	if name, ok := headerNames[header]; ok {
		return name
	}
	return "Unknown(" + string(rune(header)) + ")"
}

// IsKnownHeader reports whether header is part of the command set.
func IsKnownHeader(header byte) bool {
	_, ok := headerNames[header]
	return ok
}

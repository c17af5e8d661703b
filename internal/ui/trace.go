package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/openlightcontrol/arductl/internal/protocol"
	"github.com/openlightcontrol/arductl/internal/transport"
)

// TraceBox shows recorded serial traffic in verbose mode
type TraceBox struct {
	Title    string
	Records  []transport.Record
	Width    int
	MaxLines int // 0 = unlimited
}

// NewTraceBox creates a trace box for records
func NewTraceBox(records []transport.Record) *TraceBox {
	return &TraceBox{
		Title:    "Wire Trace",
		Records:  records,
		Width:    GetTerminalWidth(),
		MaxLines: 200,
	}
}

// SetWidth sets the render width
func (t *TraceBox) SetWidth(width int) *TraceBox {
	t.Width = width
	return t
}

// Lines returns one unstyled line per frame or reply token, with the
// offset from the first record
func (t *TraceBox) Lines() []string {
	if len(t.Records) == 0 {
		return nil
	}
	start := t.Records[0].Time

	var lines []string
	for _, r := range t.Records {
		offset := fmt.Sprintf("%8.1fms", float64(r.Time.Sub(start).Microseconds())/1000)
		for _, item := range DescribeTraffic(r.Direction, r.Data) {
			lines = append(lines, offset+"  "+item)
		}
	}
	return lines
}

// Render returns the styled box
func (t *TraceBox) Render() string {
	width := t.Width
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	lines := t.Lines()
	truncated := 0
	if t.MaxLines > 0 && len(lines) > t.MaxLines {
		truncated = len(lines) - t.MaxLines
		lines = lines[:t.MaxLines]
	}

	styled := make([]string, 0, len(lines)+1)
	for _, line := range lines {
		styled = append(styled, styleTraceLine(line))
	}
	if truncated > 0 {
		styled = append(styled, TraceTimeStyle.Render(fmt.Sprintf("... %d more lines", truncated)))
	}
	if len(styled) == 0 {
		styled = append(styled, TraceTimeStyle.Render("(no traffic)"))
	}

	inner := lipgloss.JoinVertical(lipgloss.Left, TraceTitleStyle.Render(t.Title), "", strings.Join(styled, "\n"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(MutedColor).
		Width(width-4).
		Padding(0, 1).
		MarginLeft(2).
		Render(inner)
}

// String implements fmt.Stringer
func (t *TraceBox) String() string {
	return t.Render()
}

func styleTraceLine(line string) string {
	switch {
	case strings.Contains(line, " NACK"):
		return TraceNACKStyle.Render(line)
	case strings.Contains(line, "→"):
		return TraceTXStyle.Render(line)
	default:
		return TraceRXStyle.Render(line)
	}
}

// DescribeTraffic turns one recorded chunk into readable items. Written
// data is split into frames ("→ NSteps(N) 05"), with table frames followed
// by their decoded steps ("→   channel 1: 0-25-255"); read data into ACK,
// NACK and quoted answer text ("← ACK", "← \"MM-AC\\r\\n\"").
func DescribeTraffic(direction string, data []byte) []string {
	if direction == transport.DirectionTX {
		frames, rest := protocol.SplitFrames(data)
		items := make([]string, 0, len(frames)+1)
		for _, f := range frames {
			items = append(items, "→ "+f.String())
			if steps, ok := describeTable(f); ok {
				items = append(items, "→   "+steps)
			}
		}
		if len(rest) > 0 {
			items = append(items, "→ partial "+strconv.Quote(string(rest)))
		}
		return items
	}

	var items []string
	var text []byte
	flush := func() {
		if len(text) > 0 {
			items = append(items, "← "+strconv.Quote(string(text)))
			text = text[:0]
		}
	}
	for _, b := range data {
		switch b {
		case protocol.ACK:
			flush()
			items = append(items, "← ACK")
		case protocol.NACK:
			flush()
			items = append(items, "← NACK")
		default:
			text = append(text, b)
		}
	}
	flush()
	return items
}

func describeTable(f protocol.Frame) (string, bool) {
	var channel int
	var values []int
	var err error
	switch f.Header {
	case protocol.HeaderAnalogTable:
		channel, values, err = protocol.DecodeAnalogTable(f.Payload)
	case protocol.HeaderDigitalTable:
		channel, values, err = protocol.DecodeDigitalTable(f.Payload)
	default:
		return "", false
	}
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("channel %d: %s", channel, protocol.FormatTable(values)), true
}

package status

import (
	"fmt"
	"strings"
	"time"
)

// EmbedRich is the only embed type sent.
const EmbedRich = "rich"

// ColorChanged marks the startup summary when sources changed.
const ColorChanged = 0x00FF00

// Embed is a Discord-style rich block.
type Embed struct {
	Title       string `json:"title,omitempty"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
	Color       int    `json:"color,omitempty"`
}

// AllowedMentions restricts which mentions in Content notify anyone.
type AllowedMentions struct {
	Parse []string `json:"parse"`
}

// Payload is one status message.
type Payload struct {
	Content         string           `json:"content"`
	Embeds          []Embed          `json:"embeds,omitempty"`
	AllowedMentions *AllowedMentions `json:"allowed_mentions,omitempty"`
}

// Text returns a plain message with mentions disabled.
func Text(content string) Payload {
	return Payload{Content: content, AllowedMentions: &AllowedMentions{Parse: []string{}}}
}

// Textf formats a plain message.
func Textf(format string, args ...interface{}) Payload {
	return Text(fmt.Sprintf(format, args...))
}

// String flattens the payload into plain text.
func (p Payload) String() string {
	var parts []string
	if p.Content != "" {
		parts = append(parts, p.Content)
	}
	for _, e := range p.Embeds {
		if e.Title != "" {
			parts = append(parts, e.Title)
		}
		if e.Description != "" {
			parts = append(parts, e.Description)
		}
	}
	return strings.Join(parts, "\n")
}

// FailedToLoad reports a source excluded from its destination.
func FailedToLoad(key string) Payload {
	return Textf("Failed to load `%s`... Excluding!", key)
}

// Startup announces a server start. With changed keys it lists them in a
// green embed.
func Startup(changed []string) Payload {
	if len(changed) == 0 {
		return Text("Starting up server...")
	}

	var b strings.Builder
	b.WriteString("Here's what changed:")
	for _, key := range changed {
		fmt.Fprintf(&b, "\n - `%s`", key)
	}

	p := Text("")
	p.Embeds = []Embed{{
		Title:       "Server starting up...",
		Type:        EmbedRich,
		Description: b.String(),
		Color:       ColorChanged,
	}}
	return p
}

// RestartDelayed reports a crash-loop cooldown.
func RestartDelayed(delay time.Duration) Payload {
	return Textf("Server restarted too quickly! Waiting for %d seconds...", int64(delay.Truncate(time.Second)/time.Second))
}

// Restarting reports an immediate restart.
func Restarting() Payload {
	return Text("Server closed! Restarting...")
}

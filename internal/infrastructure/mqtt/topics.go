package mqtt

import "fmt"

// DefaultTopicPrefix is used when the configured prefix is empty.
const DefaultTopicPrefix = "ulcdeck"

// Topics builds topic names under Prefix.
type Topics struct {
	Prefix string
}

func (t Topics) prefix() string {
	if t.Prefix == "" {
		return DefaultTopicPrefix
	}
	return t.Prefix
}

// Status is the plugin's online/offline topic, also used as the LWT.
//
// Example: ulcdeck/status
func (t Topics) Status() string {
	return t.prefix() + "/status"
}

// State is the retained snapshot topic for a controller channel.
//
// Example: ulcdeck/state/lvc
func (t Topics) State(channel string) string {
	return fmt.Sprintf("%s/state/%s", t.prefix(), channel)
}

// Health is the retained connected/disconnected topic for a channel.
//
// Example: ulcdeck/health/ulc
func (t Topics) Health(channel string) string {
	return fmt.Sprintf("%s/health/%s", t.prefix(), channel)
}

// Event is the topic for one kind of deck event.
//
// Example: ulcdeck/event/intent
func (t Topics) Event(kind string) string {
	return fmt.Sprintf("%s/event/%s", t.prefix(), kind)
}

// All matches every topic under the prefix.
func (t Topics) All() string {
	return t.prefix() + "/#"
}

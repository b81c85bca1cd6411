package domain

// Channel represents one monitored live-stream source as the panel displays it.
// Display metadata may be empty; ViewerCount is nil when the backend never reported it.
type Channel struct {
	ChannelID    string `json:"channel_id"`
	ChannelName  string `json:"channel_name,omitempty"`
	ChannelImage string `json:"channel_image,omitempty"`
	LiveTitle    string `json:"live_title,omitempty"`
	IsLive       bool   `json:"is_live"`
	ViewerCount  *int64 `json:"viewer_count,omitempty"`
}

// ChannelPatch is a partial channel update keyed by ChannelID. A nil field was
// absent from the payload and must leave the stored value untouched.
type ChannelPatch struct {
	ChannelID    string  `json:"channel_id"`
	ChannelName  *string `json:"channel_name,omitempty"`
	ChannelImage *string `json:"channel_image,omitempty"`
	LiveTitle    *string `json:"live_title,omitempty"`
	IsLive       *bool   `json:"is_live,omitempty"`
	ViewerCount  *int64  `json:"viewer_count,omitempty"`
}

// NewChannel returns a channel with documented defaults: offline, no viewer count.
func NewChannel(channelID string) Channel {
	return Channel{ChannelID: channelID}
}

// Apply overwrites the fields present in p. Applying the same patch twice
// yields the same channel.
func (c Channel) Apply(p ChannelPatch) Channel {
	if p.ChannelName != nil {
		c.ChannelName = *p.ChannelName
	}
	if p.ChannelImage != nil {
		c.ChannelImage = *p.ChannelImage
	}
	if p.LiveTitle != nil {
		c.LiveTitle = *p.LiveTitle
	}
	if p.IsLive != nil {
		c.IsLive = *p.IsLive
	}
	if p.ViewerCount != nil {
		v := *p.ViewerCount
		c.ViewerCount = &v
	}
	return c.Normalize()
}

// Normalize clamps a negative viewer count to zero. Both the list load and
// push merges pass through it so either source yields the same stored value.
func (c Channel) Normalize() Channel {
	if c.ViewerCount != nil && *c.ViewerCount < 0 {
		zero := int64(0)
		c.ViewerCount = &zero
	}
	return c
}

// Clone returns a deep copy so callers cannot mutate store-owned pointers.
func (c Channel) Clone() Channel {
	if c.ViewerCount != nil {
		v := *c.ViewerCount
		c.ViewerCount = &v
	}
	return c
}

// Viewers returns the viewer count, or 0 when absent.
func (c Channel) Viewers() int64 {
	if c.ViewerCount == nil {
		return 0
	}
	return *c.ViewerCount
}

// HasImage returns true if the channel has an avatar URL
func (c Channel) HasImage() bool {
	return c.ChannelImage != ""
}

// DisplayName falls back to the raw id when the backend sent no name.
func (c Channel) DisplayName() string {
	if c.ChannelName != "" {
		return c.ChannelName
	}
	return c.ChannelID
}

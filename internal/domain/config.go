package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/kapu/chzzk-recorder-panel/pkg/errors"
)

// ConfigDocument maps section name to a flat option map of scalars
// (string, int64 or bool).
type ConfigDocument map[string]ConfigSection

type ConfigSection map[string]any

const (
	SectionRecording     = "recording"
	SectionNotifications = "notifications"
	SectionProcessing    = "processing"
	SectionSystem        = "system"
)

type FieldKind string

const (
	FieldString FieldKind = "string"
	FieldInt    FieldKind = "int"
	FieldBool   FieldKind = "bool"
)

// FieldSpec describes one editable option. Label is a translation path.
type FieldSpec struct {
	Key     string
	Label   string
	Kind    FieldKind
	Default any
	Secret  bool
}

type SectionSpec struct {
	Name   string
	Title  string
	Fields []FieldSpec
}

// ConfigSchema lists the editable sections in display order. Defaults apply
// when the server document omits an option.
var ConfigSchema = []SectionSpec{
	{
		Name:  SectionRecording,
		Title: "config.recording.title",
		Fields: []FieldSpec{
			{Key: "quality", Label: "config.recording.quality", Kind: FieldString, Default: "best"},
			{Key: "interval", Label: "config.recording.interval", Kind: FieldInt, Default: int64(600)},
			{Key: "recording_save_root_dir", Label: "config.recording.save_dir", Kind: FieldString, Default: "download/"},
			{Key: "file_name_format", Label: "config.recording.file_format", Kind: FieldString, Default: "{stream_started}.ts"},
			{Key: "vod_name_format", Label: "config.recording.vod_format", Kind: FieldString, Default: "[{username}]{stream_started}_{escaped_title}.mp4"},
			{Key: "time_format", Label: "config.recording.time_format", Kind: FieldString, Default: "%y-%m-%d"},
			{Key: "record_chat", Label: "config.recording.record_chat", Kind: FieldBool, Default: false},
			{Key: "fallback_to_current_dir", Label: "config.recording.fallback_dir", Kind: FieldBool, Default: false},
		},
	},
	{
		Name:  SectionNotifications,
		Title: "config.notifications.title",
		Fields: []FieldSpec{
			{Key: "use_telegram_bot", Label: "config.notifications.use_telegram", Kind: FieldBool, Default: false},
			{Key: "telegram_bot_token", Label: "config.notifications.telegram_token", Kind: FieldString, Default: "", Secret: true},
			{Key: "telegram_chat_id", Label: "config.notifications.telegram_chat_id", Kind: FieldString, Default: ""},
			{Key: "use_discord_bot", Label: "config.notifications.use_discord", Kind: FieldBool, Default: false},
			{Key: "discord_bot_token", Label: "config.notifications.discord_token", Kind: FieldString, Default: "", Secret: true},
			{Key: "discord_channel_id", Label: "config.notifications.discord_channel_id", Kind: FieldString, Default: ""},
		},
	},
	{
		Name:  SectionProcessing,
		Title: "config.processing.title",
		Fields: []FieldSpec{
			{Key: "auto_convert_to_mp4", Label: "config.processing.auto_convert", Kind: FieldBool, Default: false},
			{Key: "delete_ts_after_conversion", Label: "config.processing.delete_ts", Kind: FieldBool, Default: false},
			{Key: "generate_thumbnails", Label: "config.processing.generate_thumbnails", Kind: FieldBool, Default: false},
			{Key: "ffmpeg_preset", Label: "config.processing.ffmpeg_preset", Kind: FieldString, Default: "medium"},
			{Key: "ffmpeg_crf", Label: "config.processing.ffmpeg_crf", Kind: FieldInt, Default: int64(23)},
			{Key: "thumbnail_count", Label: "config.processing.thumbnail_count", Kind: FieldInt, Default: int64(6)},
			{Key: "thumbnail_width", Label: "config.processing.thumbnail_width", Kind: FieldInt, Default: int64(320)},
			{Key: "thumbnail_height", Label: "config.processing.thumbnail_height", Kind: FieldInt, Default: int64(180)},
			{Key: "cover_image_width", Label: "config.processing.cover_width", Kind: FieldInt, Default: int64(1280)},
			{Key: "cover_image_height", Label: "config.processing.cover_height", Kind: FieldInt, Default: int64(720)},
		},
	},
	{
		Name:  SectionSystem,
		Title: "config.system.title",
		Fields: []FieldSpec{
			{Key: "zmq_port", Label: "config.system.zmq_port", Kind: FieldInt, Default: int64(5555)},
			{Key: "check_interval", Label: "config.system.check_interval", Kind: FieldInt, Default: int64(120)},
			{Key: "max_restart_attempts", Label: "config.system.max_restart_attempts", Kind: FieldInt, Default: int64(5)},
			{Key: "restart_delay", Label: "config.system.restart_delay", Kind: FieldInt, Default: int64(30)},
		},
	},
}

// LookupSection returns the schema for name.
func LookupSection(name string) (SectionSpec, bool) {
	for _, s := range ConfigSchema {
		if s.Name == name {
			return s, true
		}
	}
	return SectionSpec{}, false
}

// UnmarshalJSON keeps only object-valued sections and normalizes JSON
// numbers: integral values become int64.
func (d *ConfigDocument) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	doc := make(ConfigDocument, len(raw))
	for name, value := range raw {
		options, ok := value.(map[string]any)
		if !ok {
			continue
		}
		section := make(ConfigSection, len(options))
		for key, value := range options {
			section[key] = NormalizeScalar(value)
		}
		doc[name] = section
	}
	*d = doc
	return nil
}

// NormalizeScalar maps decoded JSON values onto the three option scalar kinds.
func NormalizeScalar(v any) any {
	switch val := v.(type) {
	case float64:
		if val == math.Trunc(val) && !math.IsInf(val, 0) {
			return int64(val)
		}
		return val
	case int:
		return int64(val)
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		return val.String()
	default:
		return v
	}
}

// Clone deep-copies the section.
func (s ConfigSection) Clone() ConfigSection {
	if s == nil {
		return nil
	}
	out := make(ConfigSection, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Value returns the option value, or the schema default when absent.
func (s ConfigSection) Value(field FieldSpec) any {
	if v, ok := s[field.Key]; ok && v != nil {
		return v
	}
	return field.Default
}

// ParseField converts a submitted form value into the field's scalar kind.
// Checkboxes are absent from form posts when unchecked.
func ParseField(field FieldSpec, raw string, present bool) (any, error) {
	switch field.Kind {
	case FieldBool:
		if !present {
			return false, nil
		}
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "", "on", "true", "1", "yes":
			return true, nil
		case "off", "false", "0", "no":
			return false, nil
		default:
			return nil, errors.NewValidationError("not a boolean", field.Key, raw)
		}
	case FieldInt:
		trimmed := strings.TrimSpace(raw)
		if !present || trimmed == "" {
			return field.Default, nil
		}
		n, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return nil, errors.NewValidationError("not an integer", field.Key, raw)
		}
		if n < 0 {
			return nil, errors.NewValidationError("must not be negative", field.Key, n)
		}
		return n, nil
	default:
		return raw, nil
	}
}

// FormatScalar renders an option value for a form input.
func FormatScalar(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

// Truthy reports whether an option value should render as a checked box.
func Truthy(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		b, _ := strconv.ParseBool(val)
		return b
	case int64:
		return val != 0
	default:
		return false
	}
}

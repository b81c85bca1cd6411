package render

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/kapu/chzzk-recorder-panel/internal/domain"
	"github.com/kapu/chzzk-recorder-panel/internal/i18n"
	"github.com/kapu/chzzk-recorder-panel/internal/util"
)

// Console writes the channel table and counters as aligned terminal text.
type Console struct {
	out       io.Writer
	liveColor *color.Color
	offColor  *color.Color
	headColor *color.Color
}

// NewConsole builds a console renderer; colors are disabled when noColor is set.
func NewConsole(out io.Writer, noColor bool) *Console {
	c := &Console{
		out:       out,
		liveColor: color.New(color.FgRed, color.Bold),
		offColor:  color.New(color.FgHiBlack),
		headColor: color.New(color.FgCyan, color.Bold),
	}
	if noColor {
		c.liveColor.DisableColor()
		c.offColor.DisableColor()
		c.headColor.DisableColor()
	}
	return c
}

func (c *Console) Channels(l *i18n.Localizer, channels []domain.Channel) error {
	if len(channels) == 0 {
		_, err := fmt.Fprintln(c.out, l.T("channels.no_channels"))
		return err
	}

	headers := []string{l.T("channels.name"), l.T("channels.id"), l.T("channels.status"), l.T("channels.viewers")}
	rows := make([][]string, 0, len(channels))
	for _, ch := range channels {
		status := l.T("channels.offline")
		if ch.IsLive {
			status = l.T("channels.live")
		}
		rows = append(rows, []string{
			util.TruncateString(ch.DisplayName(), 40),
			ch.ChannelID,
			status,
			l.Count(ch.Viewers()),
		})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], utf8.RuneCountInString(cell))
		}
	}

	if _, err := fmt.Fprintln(c.out, c.headColor.Sprint(joinPadded(headers, widths))); err != nil {
		return err
	}
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = pad(cell, widths[j])
		}
		// pad before coloring so escape codes do not skew alignment
		if channels[i].IsLive {
			cells[2] = c.liveColor.Sprint(cells[2])
		} else {
			cells[2] = c.offColor.Sprint(cells[2])
		}
		if _, err := fmt.Fprintln(c.out, strings.TrimRight(strings.Join(cells, "  "), " ")); err != nil {
			return err
		}
	}
	return nil
}

func (c *Console) Stats(l *i18n.Localizer, snap domain.StatusSnapshot, channels []domain.Channel) error {
	counters := Counters(snap, channels)
	line := fmt.Sprintf("%s: %s  %s: %s  %s: %s",
		l.T("stats.total_channels"), l.Count(int64(counters.TotalChannels)),
		l.T("stats.live_channels"), c.liveColor.Sprint(l.Count(int64(counters.LiveChannels))),
		l.T("stats.recording_channels"), l.Count(int64(counters.RecordingChannels)),
	)
	if clock := l.Clock(snap.Timestamp); clock != "" {
		line += fmt.Sprintf("  %s: %s", l.T("stats.last_update"), clock)
	}
	_, err := fmt.Fprintln(c.out, line)
	return err
}

func joinPadded(cells []string, widths []int) string {
	padded := make([]string, len(cells))
	for i, cell := range cells {
		padded[i] = pad(cell, widths[i])
	}
	return strings.TrimRight(strings.Join(padded, "  "), " ")
}

func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

/*
 * clipshare fetches media shared on Discord into a Plex library.
 * Copyright (C) 2025  Lucas Duport
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

package media

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrEmptyTimestamp is returned for blank input.
var ErrEmptyTimestamp = errors.New("empty timestamp")

// MaxTimestamp bounds every parsed timestamp.
const MaxTimestamp = 24 * time.Hour

var (
	secondsField = regexp.MustCompile(`^\d+(\.\d+)?$`)
	wholeField   = regexp.MustCompile(`^\d+$`)
)

// ParseTimestamp accepts "ss", "mm:ss", "hh:mm:ss" (the last field may carry
// a fraction, e.g. "1:02.5") or a Go duration such as "1m30s". Results are
// never negative and never above MaxTimestamp.
func ParseTimestamp(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrEmptyTimestamp
	}
	if strings.HasPrefix(s, "-") {
		return 0, fmt.Errorf("negative timestamp %q", s)
	}
	if strings.ContainsAny(s, "hms") {
		d, err := time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("invalid timestamp %q: %w", s, err)
		}
		if d < 0 || d > MaxTimestamp {
			return 0, fmt.Errorf("timestamp %q out of range (max %s)", s, FormatTimestamp(MaxTimestamp))
		}
		return d, nil
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid timestamp %q: too many fields", s)
	}
	var total float64
	for i, p := range parts {
		last := i == len(parts)-1
		var v float64
		if last {
			if !secondsField.MatchString(p) {
				return 0, fmt.Errorf("invalid timestamp %q", s)
			}
			f, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return 0, fmt.Errorf("invalid timestamp %q", s)
			}
			v = f
		} else {
			if !wholeField.MatchString(p) {
				return 0, fmt.Errorf("invalid timestamp %q", s)
			}
			n, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return 0, fmt.Errorf("invalid timestamp %q", s)
			}
			v = n
		}
		// only the leading field may overflow its unit
		if i > 0 && v >= 60 {
			return 0, fmt.Errorf("invalid timestamp %q: field %q out of range", s, p)
		}
		total = total*60 + v
	}
	// compare in seconds before converting so huge inputs cannot wrap
	if total > MaxTimestamp.Seconds() {
		return 0, fmt.Errorf("timestamp %q out of range (max %s)", s, FormatTimestamp(MaxTimestamp))
	}
	return time.Duration(total * float64(time.Second)), nil
}

// FormatTimestamp renders d as h:mm:ss or m:ss.
func FormatTimestamp(d time.Duration) string {
	secs := int(d.Round(time.Second) / time.Second)
	h, m, sec := secs/3600, (secs%3600)/60, secs%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}

// ClipRange is the portion of a video to fetch.
type ClipRange struct {
	Start time.Duration
	End   time.Duration
}

// ParseClipRange parses both ends of a clip.
func ParseClipRange(start, end string) (ClipRange, error) {
	s, err := ParseTimestamp(start)
	if err != nil {
		return ClipRange{}, fmt.Errorf("start: %w", err)
	}
	e, err := ParseTimestamp(end)
	if err != nil {
		return ClipRange{}, fmt.Errorf("end: %w", err)
	}
	return ClipRange{Start: s, End: e}, nil
}

// Length of the clip.
func (c ClipRange) Length() time.Duration { return c.End - c.Start }

// Validate checks that the range is non-empty and no longer than max.
func (c ClipRange) Validate(max time.Duration) error {
	if c.Start < 0 || c.End < 0 {
		return fmt.Errorf("clip bounds must not be negative")
	}
	if c.End <= c.Start {
		return fmt.Errorf("clip end %s must be after start %s", FormatTimestamp(c.End), FormatTimestamp(c.Start))
	}
	if max > 0 && c.Length() > max {
		return fmt.Errorf("clip is %s long, the limit is %s", FormatTimestamp(c.Length()), FormatTimestamp(max))
	}
	return nil
}

// Section renders the yt-dlp --download-sections value.
func (c ClipRange) Section() string {
	return fmt.Sprintf("*%s-%s", secondsString(c.Start), secondsString(c.End))
}

func (c ClipRange) String() string {
	return FormatTimestamp(c.Start) + "-" + FormatTimestamp(c.End)
}

func secondsString(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}

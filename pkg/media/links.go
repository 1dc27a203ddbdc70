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
	"net/url"
	"regexp"
	"strings"
)

// MaxLinksPerMessage bounds how many prompts a single message can produce.
const MaxLinksPerMessage = 5

var linkPattern = regexp.MustCompile(`<?https?://[^\s<>]+>?`)

// ExtractLinks returns the distinct http(s) links in a Discord message, in
// the order they appear. Discord's <...> embed suppression and trailing
// sentence punctuation are stripped.
func ExtractLinks(content string) []string {
	matches := linkPattern.FindAllString(content, -1)
	seen := make(map[string]struct{}, len(matches))
	links := make([]string, 0, len(matches))
	for _, m := range matches {
		link := strings.TrimSuffix(strings.TrimPrefix(m, "<"), ">")
		link = strings.TrimRight(link, ".,;:!?)'\"")
		u, err := url.Parse(link)
		if err != nil || u.Host == "" {
			continue
		}
		if _, dup := seen[link]; dup {
			continue
		}
		seen[link] = struct{}{}
		links = append(links, link)
		if len(links) == MaxLinksPerMessage {
			break
		}
	}
	return links
}

// Host returns the link's host without a leading "www.", or "" when the
// link does not parse.
func Host(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

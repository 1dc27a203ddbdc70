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
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const infoFixture = `{"id": "dQw4w9WgXcQ", "title": "Never Gonna / Give You Up", "extractor": "youtube", "extractor_key": "Youtube", "duration": 212.5, "filesize": 1048576, "filepath": "%s"}`

func TestParseInfoJSON(t *testing.T) {
	res, err := ParseInfoJSON([]byte(fmt.Sprintf(infoFixture, "/tmp/x/dQw4w9WgXcQ.mp4")))
	require.NoError(t, err)
	assert.Equal(t, "dQw4w9WgXcQ", res.ID)
	assert.Equal(t, "Never Gonna / Give You Up", res.Title)
	assert.Equal(t, "Youtube", res.Extractor)
	assert.Equal(t, 212*time.Second+500*time.Millisecond, res.Duration)
	assert.Equal(t, "/tmp/x/dQw4w9WgXcQ.mp4", res.Filename)
	assert.Equal(t, int64(1048576), res.Filesize)
}

func TestParseInfoJSONFallbacks(t *testing.T) {
	res, err := ParseInfoJSON([]byte(`{"id":"abc","extractor":"generic","_filename":"/d/abc.webm","filesize_approx":2048.7}`))
	require.NoError(t, err)
	assert.Equal(t, "abc", res.Title, "title falls back to id")
	assert.Equal(t, "generic", res.Extractor)
	assert.Equal(t, "/d/abc.webm", res.Filename)
	assert.Equal(t, int64(2048), res.Filesize)

	_, err = ParseInfoJSON([]byte(`{"title":"no id"}`))
	assert.Error(t, err)
	_, err = ParseInfoJSON(nil)
	assert.Error(t, err)
}

func TestYTDLPArgs(t *testing.T) {
	y := NewYTDLP("yt-dlp", "/media", "bv*+ba/b", time.Minute)
	args := y.Args("/media/.jobs/1", Request{URL: "https://youtu.be/x"})
	joined := strings.Join(args, " ")
	assert.Contains(t, joined, "--no-playlist")
	assert.Contains(t, joined, "-f bv*+ba/b")
	assert.NotContains(t, joined, "--download-sections")
	assert.Equal(t, []string{"--", "https://youtu.be/x"}, args[len(args)-2:])

	clip := &ClipRange{Start: 10 * time.Second, End: 20 * time.Second}
	args = y.Args("/media/.jobs/1", Request{URL: "https://youtu.be/x", Clip: clip})
	assert.Contains(t, strings.Join(args, " "), "--download-sections *10-20")
}

// fakeRun pretends to be yt-dlp: it writes a file into the job directory
// and prints the info json.
func fakeRun(content string) runFunc {
	return func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
		var tmpl string
		for i, a := range args {
			if a == "-o" {
				tmpl = args[i+1]
			}
		}
		out := strings.Replace(strings.Replace(tmpl, "%(id)s", "dQw4w9WgXcQ", 1), "%(ext)s", "mp4", 1)
		if err := os.WriteFile(out, []byte(content), 0644); err != nil {
			return nil, nil, err
		}
		stdout := "[download] some noise\n" + fmt.Sprintf(infoFixture, out) + "\n"
		return []byte(stdout), nil, nil
	}
}

func TestYTDLPDownload(t *testing.T) {
	dir := t.TempDir()
	y := NewYTDLP("yt-dlp", dir, "", time.Minute)
	y.run = fakeRun("video-bytes")

	res, err := y.Download(context.Background(), Request{URL: "https://youtu.be/dQw4w9WgXcQ"})
	require.NoError(t, err)

	assert.NotEmpty(t, res.JobID)
	assert.Equal(t, filepath.Join(dir, "Never Gonna _ Give You Up [dQw4w9WgXcQ].mp4"), res.Filename)
	assert.Equal(t, int64(len("video-bytes")), res.Filesize)

	_, err = os.Stat(filepath.Join(dir, ".jobs", res.JobID))
	assert.True(t, os.IsNotExist(err), "job directory is removed")
}

func TestYTDLPDownloadKeepsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	y := NewYTDLP("yt-dlp", dir, "", time.Minute)
	ctx := context.Background()
	url := "https://youtu.be/dQw4w9WgXcQ"

	y.run = fakeRun("full")
	full, err := y.Download(ctx, Request{URL: url})
	require.NoError(t, err)

	y.run = fakeRun("clip")
	clip, err := y.Download(ctx, Request{URL: url, Clip: &ClipRange{Start: 60 * time.Second, End: 90500 * time.Millisecond}})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Never Gonna _ Give You Up [dQw4w9WgXcQ] (60-90.5).mp4"), clip.Filename)

	y.run = fakeRun("again")
	again, err := y.Download(ctx, Request{URL: url})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Never Gonna _ Give You Up [dQw4w9WgXcQ] (2).mp4"), again.Filename)

	for path, want := range map[string]string{full.Filename: "full", clip.Filename: "clip", again.Filename: "again"} {
		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, want, string(got), path)
	}
}

func TestYTDLPDownloadFailure(t *testing.T) {
	y := NewYTDLP("yt-dlp", t.TempDir(), "", time.Minute)
	y.run = func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
		return nil, []byte("WARNING: x\nERROR: Unsupported URL: https://nope\n"), errors.New("exit status 1")
	}
	_, err := y.Download(context.Background(), Request{URL: "https://nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unsupported URL")
}

func TestYTDLPDownloadCancelled(t *testing.T) {
	y := NewYTDLP("yt-dlp", t.TempDir(), "", time.Minute)
	y.run = func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
		<-ctx.Done()
		return nil, nil, errors.New("signal: killed")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := y.Download(ctx, Request{URL: "https://youtu.be/x"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestYTDLPDownloadEmptyURL(t *testing.T) {
	y := NewYTDLP("yt-dlp", t.TempDir(), "", time.Minute)
	_, err := y.Download(context.Background(), Request{})
	assert.Error(t, err)
}

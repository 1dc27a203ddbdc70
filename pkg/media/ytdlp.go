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
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/buger/jsonparser"
	"github.com/google/uuid"
	"github.com/lucasduport/clipshare/pkg/utils"
)

// Request describes one fetch.
type Request struct {
	URL  string
	Clip *ClipRange // nil downloads the whole video
}

// Result is what landed on disk.
type Result struct {
	JobID     string
	ID        string
	Title     string
	Extractor string
	Duration  time.Duration
	Filename  string // final path inside the download directory
	Filesize  int64
}

// Downloader fetches media for a link.
type Downloader interface {
	Download(ctx context.Context, req Request) (*Result, error)
}

// runFunc runs an external command and returns its stdout and stderr.
type runFunc func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

func execRun(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// YTDLP downloads with the yt-dlp command line tool.
type YTDLP struct {
	Binary  string
	Dir     string
	Format  string // passed as -f when set
	Timeout time.Duration

	run runFunc
}

// NewYTDLP returns a downloader writing into dir.
func NewYTDLP(binary, dir, format string, timeout time.Duration) *YTDLP {
	return &YTDLP{Binary: binary, Dir: dir, Format: format, Timeout: timeout, run: execRun}
}

// Args builds the yt-dlp argument list for a job directory.
func (y *YTDLP) Args(jobDir string, req Request) []string {
	args := []string{
		"--no-simulate",
		"--no-progress",
		"--no-playlist",
		"--no-color",
		"--print", "after_move:%()j",
		"-o", filepath.Join(jobDir, "%(id)s.%(ext)s"),
	}
	if y.Format != "" {
		args = append(args, "-f", y.Format)
	}
	if req.Clip != nil {
		args = append(args, "--download-sections", req.Clip.Section(), "--force-keyframes-at-cuts")
	}
	return append(args, "--", req.URL)
}

// Download runs yt-dlp in a fresh job directory and moves the result into
// the download directory under a sanitized title.
func (y *YTDLP) Download(ctx context.Context, req Request) (*Result, error) {
	if req.URL == "" {
		return nil, errors.New("ytdlp: empty url")
	}
	if y.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, y.Timeout)
		defer cancel()
	}

	jobID := uuid.New().String()
	jobDir := filepath.Join(y.Dir, ".jobs", jobID)
	if err := os.MkdirAll(jobDir, 0755); err != nil {
		return nil, fmt.Errorf("ytdlp: create job dir: %w", err)
	}
	defer os.RemoveAll(jobDir)

	run := y.run
	if run == nil {
		run = execRun
	}
	utils.DebugLog("yt-dlp job %s: %s", jobID, req.URL)
	stdout, stderr, err := run(ctx, y.Binary, y.Args(jobDir, req)...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("ytdlp: %w", ctxErr)
		}
		return nil, fmt.Errorf("ytdlp: %w: %s", err, lastLine(stderr))
	}

	res, err := ParseInfoJSON(lastLine(stdout))
	if err != nil {
		return nil, err
	}
	res.JobID = jobID
	if err := y.place(res, req.Clip); err != nil {
		return nil, err
	}
	return res, nil
}

// maxNameAttempts bounds the " (n)" suffixes tried before giving up.
const maxNameAttempts = 100

// place moves the downloaded file from the job directory to its final name.
// Clips carry their section in the name, and an existing file is never
// replaced: a numbered suffix is added instead.
func (y *YTDLP) place(res *Result, clip *ClipRange) error {
	if res.Filename == "" {
		return errors.New("ytdlp: no file path reported")
	}
	ext := filepath.Ext(res.Filename)
	base := fmt.Sprintf("%s [%s]", res.Title, res.ID)
	if clip != nil {
		base += fmt.Sprintf(" (%s-%s)", secondsString(clip.Start), secondsString(clip.End))
	}
	base = SanitizeFilename(base)

	for n := 1; n <= maxNameAttempts; n++ {
		name := base + ext
		if n > 1 {
			name = fmt.Sprintf("%s (%d)%s", base, n, ext)
		}
		final := filepath.Join(y.Dir, name)
		err := claimName(res.Filename, final)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("ytdlp: move %s: %w", filepath.Base(res.Filename), err)
		}
		res.Filename = final
		if fi, err := os.Stat(final); err == nil {
			res.Filesize = fi.Size()
		}
		return nil
	}
	return fmt.Errorf("ytdlp: no free name for %q", base+ext)
}

// claimName moves src to dst only if dst does not exist yet. A hard link
// claims the name atomically; filesystems without links fall back to a
// checked rename.
func claimName(src, dst string) error {
	err := os.Link(src, dst)
	if err == nil {
		return os.Remove(src)
	}
	if errors.Is(err, fs.ErrExist) {
		return err
	}
	if _, statErr := os.Lstat(dst); statErr == nil {
		return fs.ErrExist
	}
	return os.Rename(src, dst)
}

// ParseInfoJSON reads the fields we need from a yt-dlp info dict.
func ParseInfoJSON(data []byte) (*Result, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("ytdlp: no info json on stdout")
	}
	res := &Result{}
	var err error
	if res.ID, err = jsonparser.GetString(data, "id"); err != nil {
		return nil, fmt.Errorf("ytdlp: info json missing id: %w", err)
	}
	res.Title, _ = jsonparser.GetString(data, "title")
	if res.Title == "" {
		res.Title = res.ID
	}
	if res.Extractor, err = jsonparser.GetString(data, "extractor_key"); err != nil {
		res.Extractor, _ = jsonparser.GetString(data, "extractor")
	}
	if secs, err := jsonparser.GetFloat(data, "duration"); err == nil {
		res.Duration = time.Duration(secs * float64(time.Second))
	}
	for _, key := range []string{"filepath", "_filename", "filename"} {
		if v, err := jsonparser.GetString(data, key); err == nil && v != "" {
			res.Filename = v
			break
		}
	}
	if n, err := jsonparser.GetInt(data, "filesize"); err == nil {
		res.Filesize = n
	} else if f, err := jsonparser.GetFloat(data, "filesize_approx"); err == nil {
		res.Filesize = int64(f)
	}
	return res, nil
}

func lastLine(b []byte) []byte {
	lines := bytes.Split(bytes.TrimSpace(b), []byte("\n"))
	for i := len(lines) - 1; i >= 0; i-- {
		if l := bytes.TrimSpace(lines[i]); len(l) > 0 {
			return l
		}
	}
	return nil
}

// String is used in logs.
func (r *Result) String() string {
	return strings.TrimSpace(fmt.Sprintf("%s %q (%s, %s)", r.Extractor, r.Title, FormatTimestamp(r.Duration), utils.HumanBytes(r.Filesize)))
}

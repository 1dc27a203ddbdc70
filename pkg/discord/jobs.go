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

package discord

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/lucasduport/clipshare/pkg/database"
	"github.com/lucasduport/clipshare/pkg/media"
	"github.com/lucasduport/clipshare/pkg/types"
	"github.com/lucasduport/clipshare/pkg/utils"
)

// runJob downloads the media, records the outcome and asks Plex to rescan.
// History and Plex failures are logged; only the download decides the result.
func (b *Bot) runJob(ctx context.Context, j job) (*media.Result, error) {
	started := time.Now()
	utils.InfoLog("Discord: %s requested by %s: %s", j.Kind, j.UserID, j.URL)

	res, err := b.downloader.Download(ctx, media.Request{URL: j.URL, Clip: j.Clip})
	b.metrics.JobDone(j.Kind, started, err)
	b.recordHistory(ctx, j, res, err)
	if err != nil {
		utils.ErrorLog("Discord: %s of %s failed: %v", j.Kind, j.URL, err)
		return nil, err
	}
	utils.InfoLog("Discord: %s finished in %s: %s", j.Kind, time.Since(started).Round(time.Millisecond), res)

	if b.library != nil && b.library.Enabled() {
		if rerr := b.library.RefreshSection(ctx, b.cfg.Plex.SectionID); rerr != nil {
			utils.WarnLog("Discord: Plex refresh after %s failed: %v", j.Kind, rerr)
		}
	}
	return res, nil
}

func (b *Bot) recordHistory(ctx context.Context, j job, res *media.Result, jobErr error) {
	if b.history == nil {
		return
	}
	rec := &types.DownloadRecord{
		DiscordID: j.UserID,
		ChannelID: j.ChannelID,
		SourceURL: j.URL,
		Status:    types.DownloadCompleted,
	}
	if j.Clip != nil {
		rec.ClipSection = j.Clip.String()
	}
	if res != nil {
		rec.ID = res.JobID
		rec.Title = res.Title
		rec.FilePath = res.Filename
		rec.SizeBytes = res.Filesize
	}
	if jobErr != nil {
		rec.Status = types.DownloadFailed
		rec.Error = media.Truncate(jobErr.Error(), 500)
	}
	// Recording must outlive a cancelled job.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := b.history.RecordDownload(ctx, rec); err != nil && !errors.Is(err, database.ErrNotInitialized) {
		utils.WarnLog("Discord: failed to record download history: %v", err)
	}
}

// deliver reports the job outcome: privately to the requester, and publicly
// in the channel when it succeeded.
func (b *Bot) deliver(api discordAPI, i *discordgo.Interaction, j job, res *media.Result, err error) {
	if err != nil {
		editResponse(api, i, jobFailedEmbed(j, err))
		return
	}
	editResponse(api, i, success("Done", fmt.Sprintf("Saved as `%s`", filepath.Base(res.Filename))))

	send := &discordgo.MessageSend{
		Embeds:          []*discordgo.MessageEmbed{completionEmbed(j, res)},
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}
	if b.library != nil && b.library.Enabled() {
		send.Components = refreshButtons()
	}
	if _, serr := api.ChannelMessageSendComplex(j.ChannelID, send); serr != nil {
		utils.WarnLog("Discord: failed to announce %s in %s: %v", j.Kind, j.ChannelID, serr)
		if _, ferr := api.FollowupMessageCreate(i, false, &discordgo.WebhookParams{
			Embeds: []*discordgo.MessageEmbed{completionEmbed(j, res)},
			Flags:  discordgo.MessageFlagsEphemeral,
		}); ferr != nil {
			utils.WarnLog("Discord: followup failed: %v", ferr)
		}
	}
}

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
	"runtime/debug"

	"github.com/bwmarrin/discordgo"
	"github.com/lucasduport/clipshare/pkg/flight"
	"github.com/lucasduport/clipshare/pkg/utils"
)

// guarded runs work at most once per key at a time.
//
// The interaction is acknowledged with ack once the key is claimed. A press
// that arrives while the key is busy only gets a deferred message update, so
// Discord does not show "interaction failed" and no work starts. A panic in
// work is logged and returned as an error; the key is released either way.
func (b *Bot) guarded(api discordAPI, i *discordgo.Interaction, key flight.Key, ack *discordgo.InteractionResponse, work func(ctx context.Context) error) error {
	err := b.flights.Do(key, func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				utils.ErrorLog("Discord: %s panicked: %v\n%s", key, r, debug.Stack())
				err = fmt.Errorf("discord: %s panicked: %v", key.Kind, r)
			}
		}()
		if ack != nil {
			if err := api.InteractionRespond(i, ack); err != nil {
				return fmt.Errorf("discord: acknowledge %s: %w", key.Kind, err)
			}
		}
		return work(b.ctx)
	})
	if errors.Is(err, flight.ErrInFlight) {
		utils.DebugLog("Discord: %s already in flight, ignoring", key)
		if rerr := api.InteractionRespond(i, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseDeferredMessageUpdate,
		}); rerr != nil {
			utils.WarnLog("Discord: failed to acknowledge duplicate %s: %v", key.Kind, rerr)
		}
	}
	return err
}

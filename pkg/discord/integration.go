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
	"errors"

	"github.com/lucasduport/clipshare/pkg/config"
	"github.com/lucasduport/clipshare/pkg/utils"
)

// Integration manages the Discord bot lifecycle.
type Integration struct {
	Bot *Bot
}

// NewIntegration creates the bot. The configuration must carry a token.
func NewIntegration(cfg *config.BotConfig, deps Deps) (*Integration, error) {
	utils.InfoLog("Initializing Discord integration")
	if cfg == nil || cfg.Discord.Token == "" {
		return nil, errors.New("discord: bot token is required")
	}
	bot, err := NewBot(cfg, deps)
	if err != nil {
		utils.ErrorLog("Failed to initialize Discord bot: %v", err)
		return nil, err
	}
	return &Integration{Bot: bot}, nil
}

// Start starts the Discord bot
func (i *Integration) Start() error {
	if i == nil || i.Bot == nil {
		return nil
	}
	utils.InfoLog("Starting Discord integration")
	if err := i.Bot.Start(); err != nil {
		utils.ErrorLog("Failed to start Discord bot: %v", err)
		return err
	}
	return nil
}

// Stop stops the Discord bot
func (i *Integration) Stop() {
	if i == nil || i.Bot == nil {
		return
	}
	utils.InfoLog("Stopping Discord integration")
	i.Bot.Stop()
}

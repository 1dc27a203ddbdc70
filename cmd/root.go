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

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lucasduport/clipshare/pkg/config"
	"github.com/lucasduport/clipshare/pkg/database"
	"github.com/lucasduport/clipshare/pkg/discord"
	"github.com/lucasduport/clipshare/pkg/flight"
	"github.com/lucasduport/clipshare/pkg/media"
	"github.com/lucasduport/clipshare/pkg/metrics"
	"github.com/lucasduport/clipshare/pkg/plex"
	"github.com/lucasduport/clipshare/pkg/server"
	"github.com/lucasduport/clipshare/pkg/utils"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "clipshare",
	Short: "Discord bot that saves shared media links into a Plex library",
	Long: `clipshare watches Discord channels for media links and offers to
download them, whole or as a clip, with yt-dlp.

It supports:
- Download and Clip buttons on every shared link
- Duplicate press suppression per message and user
- Plex library refresh after each download
- Optional PostgreSQL download history
- An internal API with Prometheus metrics`,
	SilenceUsage: true,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(viper.GetViper())
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration:\n%w", err)
		}

		utils.ConfigureLogging(utils.LogOptions{
			Level:      utils.ParseLogLevel(viper.GetString("log-level"), viper.GetBool("debug-logging")),
			Debug:      viper.GetBool("debug-logging"),
			FilePath:   viper.GetString("log-file"),
			MaxSizeMB:  viper.GetInt("log-max-size-mb"),
			MaxBackups: viper.GetInt("log-max-backups"),
		})
		defer utils.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return run(ctx, cfg)
	},
}

// run wires every component and blocks until ctx is cancelled.
func run(ctx context.Context, cfg *config.BotConfig) error {
	utils.InfoLog("[clipshare] Starting (version %s)", Version)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	flights := flight.NewRegistry(flight.WithObserver(m))
	defer flights.Reset()

	if err := os.MkdirAll(cfg.Media.DownloadDir, 0755); err != nil {
		return utils.PrintErrorAndReturn(fmt.Errorf("create download dir: %w", err))
	}
	downloader := media.NewYTDLP(cfg.Media.YTDLPPath, cfg.Media.DownloadDir, cfg.Media.Format, cfg.Media.DownloadTimeout)

	library := plex.NewClient(cfg.Plex.BaseURL, cfg.Plex.Token.Reveal(), cfg.Plex.Timeout)
	if library.Enabled() {
		utils.InfoLog("Bootstrap: Plex refresh enabled for section %s at %s", cfg.Plex.SectionID, cfg.Plex.BaseURL)
	} else {
		utils.InfoLog("Bootstrap: Plex refresh is DISABLED")
	}

	deps := discord.Deps{Flights: flights, Downloader: downloader, Library: library, Metrics: m}
	apiDeps := server.Deps{Flights: flights, Gatherer: reg}
	if cfg.Database.Enabled {
		db, err := database.NewDBManager(ctx, cfg.Database)
		if err != nil {
			return utils.PrintErrorAndReturn(fmt.Errorf("database: %w", err))
		}
		defer db.Close()
		deps.History = db
		apiDeps.History = db
		utils.InfoLog("Bootstrap: Database is initialized and connected")
	} else {
		utils.WarnLog("Bootstrap: Database is DISABLED (no download history)")
	}

	integration, err := discord.NewIntegration(cfg, deps)
	if err != nil {
		return err
	}
	if err := integration.Start(); err != nil {
		return err
	}
	defer integration.Stop()

	srv := server.New(cfg.API, apiDeps)
	if err := srv.Serve(ctx); err != nil {
		return err
	}
	utils.InfoLog("[clipshare] Shutting down")
	return nil
}

// loadConfig builds the process configuration from flags, env and file.
func loadConfig(v *viper.Viper) *config.BotConfig {
	return &config.BotConfig{
		Discord: config.DiscordConfig{
			Token:           config.CredentialString(v.GetString("discord-token")),
			AdminRoleID:     v.GetString("discord-admin-role"),
			DevGuildID:      v.GetString("discord-dev-guild"),
			AllowedChannels: splitList(v.GetStringSlice("discord-channels")),
			PromptExpiry:    v.GetDuration("prompt-expiry"),
			CleanupInterval: v.GetDuration("cleanup-interval"),
		},
		Media: config.MediaConfig{
			YTDLPPath:       v.GetString("ytdlp-path"),
			DownloadDir:     v.GetString("download-dir"),
			DownloadTimeout: v.GetDuration("download-timeout"),
			MaxClipLength:   v.GetDuration("max-clip-length"),
			Format:          v.GetString("format"),
		},
		Plex: config.PlexConfig{
			BaseURL:   v.GetString("plex-url"),
			Token:     config.CredentialString(v.GetString("plex-token")),
			SectionID: v.GetString("plex-section"),
			Timeout:   v.GetDuration("plex-timeout"),
		},
		API: config.APIConfig{
			Host: v.GetString("api-host"),
			Port: v.GetInt("api-port"),
			Key:  config.CredentialString(v.GetString("api-key")),
		},
		Database: config.DatabaseConfig{
			Enabled:  v.GetBool("db-enabled"),
			Host:     v.GetString("db-host"),
			Port:     v.GetInt("db-port"),
			Name:     v.GetString("db-name"),
			User:     v.GetString("db-user"),
			Password: config.CredentialString(v.GetString("db-password")),
			SSLMode:  v.GetString("db-sslmode"),
		},
	}
}

// splitList accepts both repeated values and comma separated ones.
func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Config file flag
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default is $HOME/.clipshare.yaml)")
	setFlags(rootCmd)

	// Bind all flags to viper
	if err := viper.BindPFlags(rootCmd.Flags()); err != nil {
		fmt.Println("Error binding PFlags to viper:", err)
		os.Exit(1)
	}
}

func setFlags(c *cobra.Command) {
	// Discord flags
	c.Flags().String("discord-token", "", "Discord bot token")
	c.Flags().String("discord-admin-role", "", "Role ID allowed to use admin commands")
	c.Flags().String("discord-dev-guild", "", "Guild ID for instant slash command registration")
	c.Flags().StringSlice("discord-channels", nil, "Channel IDs to watch (default all)")
	c.Flags().Duration("prompt-expiry", 24*time.Hour, "How long Download/Clip buttons stay usable")
	c.Flags().Duration("cleanup-interval", 10*time.Minute, "How often expired prompts are dropped")

	// Media flags
	c.Flags().String("ytdlp-path", "yt-dlp", "yt-dlp executable")
	c.Flags().String("download-dir", "./downloads", "Directory that receives downloads (your Plex library folder)")
	c.Flags().Duration("download-timeout", 30*time.Minute, "Maximum time for one download")
	c.Flags().Duration("max-clip-length", 10*time.Minute, "Longest allowed clip")
	c.Flags().String("format", "", "yt-dlp format selector (default yt-dlp's best)")

	// Plex flags
	c.Flags().String("plex-url", "", "Plex server base URL (empty disables refresh)")
	c.Flags().String("plex-token", "", "Plex authentication token")
	c.Flags().String("plex-section", "", "Plex library section ID to refresh")
	c.Flags().Duration("plex-timeout", 10*time.Second, "Plex request timeout")

	// Internal API flags
	c.Flags().String("api-host", "", "Internal API listen host")
	c.Flags().Int("api-port", 8080, "Internal API listen port")
	c.Flags().String("api-key", "", "Key expected in the X-API-Key header")

	// Database flags
	c.Flags().Bool("db-enabled", false, "Keep download history in PostgreSQL")
	c.Flags().String("db-host", "localhost", "PostgreSQL host")
	c.Flags().Int("db-port", 5432, "PostgreSQL port")
	c.Flags().String("db-name", "clipshare", "PostgreSQL database")
	c.Flags().String("db-user", "clipshare", "PostgreSQL user")
	c.Flags().String("db-password", "", "PostgreSQL password")
	c.Flags().String("db-sslmode", "disable", "PostgreSQL sslmode")

	// Logging flags
	c.Flags().Bool("debug-logging", false, "Enable debug logging")
	c.Flags().String("log-level", "info", "Log level: debug, info, warn, error")
	c.Flags().String("log-file", "", "Also write logs to this file, rotated by size")
	c.Flags().Int("log-max-size-mb", 50, "Rotate the log file at this size")
	c.Flags().Int("log-max-backups", 3, "Rotated log files to keep")
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory and current directory
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".clipshare")
	}

	// Replace hyphens with underscores in environment variables
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// Read environment variables
	viper.AutomaticEnv()

	// Read in config file if found
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	internalcfg "github.com/mentorhub/datastore/internal/config"
	"github.com/mentorhub/datastore/internal/logger"
	"github.com/mentorhub/datastore/models"
	"github.com/mentorhub/datastore/types"
)

const (
	configName = ".datastore"
	envPrefix  = "MENTORHUB"
)

// GlobalAppConfig holds the global application configuration instance.
var GlobalAppConfig types.AppConfig

// GetConfig returns the loaded application configuration.
func GetConfig() types.AppConfig {
	return GlobalAppConfig
}

// InitConfig reads in the config file and ENV variables if set.
func InitConfig() {
	// Load .env first if present; a missing file is fine.
	_ = godotenv.Load()

	logger.Init()

	// Environment variable handling must be set up before reading the
	// config file so env vars can influence config loading.
	viper.SetEnvPrefix(envPrefix) // e.g. MENTORHUB_VERBOSE
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfgFileFlag := viper.GetString("config")

	rootDir := viper.GetString("project.rootDir")
	if rootDir == "" {
		rootDir = internalcfg.DefaultRootDir
	}

	if cfgFileFlag != "" {
		viper.SetConfigFile(cfgFileFlag)
	} else {
		if _, err := os.Stat(rootDir); !os.IsNotExist(err) {
			// Project-local config directory exists; prioritize it.
			viper.AddConfigPath(rootDir)
			viper.SetConfigName(configName)
		} else {
			home, err := os.UserHomeDir()
			if err == nil {
				viper.AddConfigPath(home)
			}
			viper.AddConfigPath(".")
			viper.SetConfigName(configName)
		}
	}

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	} else {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if cfgFileFlag != "" {
				fmt.Fprintln(os.Stderr, "Error: specified config file not found:", cfgFileFlag)
			} else if viper.GetBool("verbose") {
				fmt.Fprintln(os.Stderr, "No config file found. Using defaults and environment variables.")
			}
		} else {
			fmt.Fprintln(os.Stderr, "Error reading config file:", viper.ConfigFileUsed(), "-", err)
		}
	}

	viper.SetDefault("project.rootDir", internalcfg.DefaultRootDir)
	viper.SetDefault("data.dir", internalcfg.GetDataDir())
	viper.SetDefault("data.format", internalcfg.DefaultDataFormat)
	viper.SetDefault("cache.ttlMillis", internalcfg.DefaultCacheTTLMillis)

	if err := viper.Unmarshal(&GlobalAppConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Error unmarshaling config: %s\n", err)
		os.Exit(1)
	}

	// Handle a config file that exists but lacks these nested keys.
	if GlobalAppConfig.Project.RootDir == "" {
		GlobalAppConfig.Project.RootDir = viper.GetString("project.rootDir")
	}
	if GlobalAppConfig.Data.Dir == "" {
		GlobalAppConfig.Data.Dir = viper.GetString("data.dir")
	}
	if GlobalAppConfig.Data.Format == "" {
		GlobalAppConfig.Data.Format = viper.GetString("data.format")
	}

	if err := models.ValidateStruct(GlobalAppConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %s\n", err)
		os.Exit(1)
	}
}

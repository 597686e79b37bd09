package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mentorhub/datastore/store"
)

var (
	// cfgFile is the path to the configuration file.
	cfgFile string
	// verbose enables verbose output.
	verbose bool
	// version is the application version.
	version = "0.1.0"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "datastore",
	Short: "datastore manages the MentorHub collection files.",
	Long: `datastore is the admin CLI for the MentorHub embedded document store.
It initializes the data directory and inspects the persisted collections
(users, messages, sessions, resources, forums, topics, posts).`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			_ = cmd.Help()
			os.Exit(0)
		}
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(InitConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./.mentorhub/.datastore.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// GetStore opens the document store described by the loaded configuration.
func GetStore() (*store.Store, error) {
	config := GetConfig()

	format, err := store.ParseFormat(config.Data.Format)
	if err != nil {
		return nil, err
	}

	// An explicit ttlMillis of 0 means caching off; the store reserves
	// zero for "apply the default", so map it to a negative value.
	ttl := time.Duration(config.Cache.TTLMillis) * time.Millisecond
	if config.Cache.TTLMillis == 0 {
		ttl = -1
	}

	s, err := store.New(store.Config{
		Dir:      config.Data.Dir,
		Format:   format,
		CacheTTL: ttl,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open store at %s: %w", config.Data.Dir, err)
	}
	return s, nil
}

package cmd

import (
	"fmt"
	"os"

	"github.com/jscompat/jscompat/internal/utils"
	"github.com/spf13/cobra"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

const (
	LOGO = `	     _                                      _
	    | |___  ___ ___  _ __ ___  _ __   __ _| |_
	 _  | / __|/ __/ _ \| '_ ' _ \| '_ \ / _' | __|
	| |_| \__ \ (_| (_) | | | | | | |_) | (_| | |_
	 \___/|___/\___\___/|_| |_| |_| .__/ \__,_|\__|
	                              |_|

`
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jscompat",
	Short: "Check which browsers can run your JavaScript code.",
	Long: LOGO + `jscompat scans JavaScript source for API usage and tells you which browser
versions support, partially support, or need a polyfill for every feature it
detects, based on the caniuse compatibility data.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.jscompat.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
	rootCmd.PersistentFlags().String("dbpath", "", "Path to SQLite cache file (default is $HOME/.jscompat.sqlite)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".jscompat")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := home + "/.jscompat.yaml"
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s", err)
			}
		}
	}

	// Set default values for all keys
	viper.SetDefault("data.primary_url", "https://raw.githubusercontent.com/Fyrd/caniuse/main/fulldata-json/data-2.0.json")
	viper.SetDefault("data.supplemental_url", "https://raw.githubusercontent.com/jscompat/jscompat/main/data/additional.json")
	viper.SetDefault("server.username", "")
	viper.SetDefault("server.password", "")

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	utils.SetLogLevel(levelString)
}

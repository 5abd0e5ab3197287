package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hildist/hildist/pkg/api"
	"github.com/hildist/hildist/pkg/utils"
	"github.com/hildist/hildist/pkg/worker"
)

type ControlConfig struct {
	ApiURL string `mapstructure:"api_url"`
}

var configData = ControlConfig{}

var rootCmd = &cobra.Command{
	Use:   "distctl",
	Short: "HIL test distribution control command",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		viper.SetConfigName("distctl.yaml")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("/etc/hildist/")
		viper.AddConfigPath("$HOME/.config/hildist")
		viper.AddConfigPath(".")
		viper.ReadInConfig()

		viper.SetEnvPrefix("httpdist")
		viper.AutomaticEnv()

		config := ControlConfig{}
		if err := utils.UnmarshalConfig(*viper.GetViper(), &config); err != nil {
			log.Fatal(err)
		}
		configData = config
	},
}

func NewApiClient() *api.Client {
	return api.NewClient(configData.ApiURL)
}

func main() {
	rootCmd.PersistentFlags().StringP("api-url", "a", worker.DefaultApiURL, "Coordinator API URL")
	viper.BindPFlag("api_url", rootCmd.PersistentFlags().Lookup("api-url"))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

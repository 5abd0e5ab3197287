package main

import (
	"github.com/spf13/viper"

	"github.com/hildist/hildist/pkg/utils"
	"github.com/hildist/hildist/pkg/worker"
)

func LoadConfig() (*worker.Config, error) {
	config := &worker.Config{}

	err := utils.UnmarshalConfig(*viper.GetViper(), config)
	if err != nil {
		return nil, err
	}

	return config, nil
}

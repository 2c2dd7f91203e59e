package conf

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/birmarket/supportd/pkg/config"
)

const (
	AppName      = "supportd"
	EnvPrefix    = "SUPPORTD"
	EnvConfigDir = "SUPPORTD_DIR"
)

// Load reads the supportd configuration, creating the config file with
// defaults on first run. Command-line overrides take precedence over both
// the file and the environment.
func Load(configPath string, cmdConf map[string]any) (*Config, *config.Manager, error) {
	if configPath == "" {
		configPath = os.Getenv(EnvConfigDir)
	}

	cm, err := config.New(AppName, configPath, "", EnvPrefix, false)
	if err != nil {
		log.Error().Err(err).Msg("load config failed")
		return nil, nil, err
	}

	config.SetDefaults(cm.Viper, Defaults)

	for key, value := range cmdConf {
		cm.SetConfig(key, value)
	}

	conf := &Config{}
	if err := cm.Load(conf); err != nil {
		log.Error().Err(err).Msg("load config failed")
		return nil, nil, err
	}
	conf.ConfigDir = cm.Path

	return conf, cm, nil
}

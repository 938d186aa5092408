package config

const (
	defaultConfigPath           = "~/.config/mediasyncdel/config.toml"
	defaultDataDir              = "~/.local/share/mediasyncdel"
	defaultLogDir               = "~/.local/share/mediasyncdel/logs"
	defaultWebhookBind          = "127.0.0.1:7488"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultNotifyRequestTimeout = 10
	webhookTokenEnv             = "MEDIASYNCDEL_WEBHOOK_TOKEN"
	ntfyTopicEnv                = "MEDIASYNCDEL_NTFY_TOPIC"
)

// Default returns a Config populated with repository defaults. Sync starts
// disabled so a fresh install never deletes anything until an operator opts in.
func Default() Config {
	return Config{
		Sync: Sync{
			Enable:     false,
			DelSource:  false,
			SendNotify: false,
		},
		Paths: Paths{
			DataDir:     defaultDataDir,
			LogDir:      defaultLogDir,
			WebhookBind: defaultWebhookBind,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

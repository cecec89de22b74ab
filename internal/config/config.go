// Package config loads the two configuration layers: mandatory secrets from
// the environment and optional operational settings from a YAML file. Secrets
// are read once at startup and never reloaded; settings may be hot-reloaded.
package config

import (
	"os"
	"strconv"
	"strings"
)

// Environment variable names. External deployments rely on these, do not
// rename them.
const (
	EnvAPIToken = "API_TOKEN"
	EnvBotToken = "BOT_TOKEN"
	EnvChatID   = "CHAT_ID"
)

// Secrets holds the mandatory startup configuration. Immutable after load.
type Secrets struct {
	APIToken string
	BotToken string
	ChatID   int64
}

// ConfigError is fatal: the process must not enter the poll loop without a
// complete set of secrets.
type ConfigError struct {
	Missing []string
	Detail  string
}

func (e *ConfigError) Error() string {
	if len(e.Missing) > 0 {
		return "missing required environment variable(s): " + strings.Join(e.Missing, ", ")
	}
	return e.Detail
}

// LoadSecrets reads all mandatory variables and reports every missing one at
// once, so an operator fixes the deployment in a single pass.
func LoadSecrets() (Secrets, error) {
	var missing []string

	apiToken := strings.TrimSpace(os.Getenv(EnvAPIToken))
	if apiToken == "" {
		missing = append(missing, EnvAPIToken)
	}
	botToken := strings.TrimSpace(os.Getenv(EnvBotToken))
	if botToken == "" {
		missing = append(missing, EnvBotToken)
	}
	rawChat := strings.TrimSpace(os.Getenv(EnvChatID))
	if rawChat == "" {
		missing = append(missing, EnvChatID)
	}
	if len(missing) > 0 {
		return Secrets{}, &ConfigError{Missing: missing}
	}

	chatID, err := strconv.ParseInt(rawChat, 10, 64)
	if err != nil {
		return Secrets{}, &ConfigError{Detail: EnvChatID + " must be an integer chat id: " + err.Error()}
	}

	return Secrets{APIToken: apiToken, BotToken: botToken, ChatID: chatID}, nil
}

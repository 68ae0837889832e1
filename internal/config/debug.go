package config

import "os"

func IsDebug() bool {
	return os.Getenv("CHAT_DEBUG") == "1"
}

package config

import "os"

func IsDebug() bool {
	return os.Getenv("CONDUCTOR_DEBUG") == "1"
}

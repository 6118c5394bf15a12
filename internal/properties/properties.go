package properties

import (
	"os"
	"path/filepath"
)

func RootPath() string {
	return os.Getenv("ROOT_PATH")
}

// DataPath joins elem under "$ROOT_PATH/data".
func DataPath(elem ...string) string {
	return filepath.Join(append([]string{RootPath(), "data"}, elem...)...)
}

func DiscordErrorNotificationUrl() string {
	return os.Getenv("DISCORD_ERROR_NOTIFICATION_URL")
}

func DiscordSuccessNotificationUrl() string {
	return os.Getenv("DISCORD_SUCCESS_NOTIFICATION_URL")
}

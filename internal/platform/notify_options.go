package platform

import "time"

// AppName identifies the sender of desktop notifications.
const AppName = "sketchbot"

// Options configures how a notification is displayed on the host platform.
type Options struct {
	// IconPath, when non-empty, points to an image file shown next to the
	// notification where the platform supports it.
	IconPath string
	// Timeout is how long the notification stays visible. Zero selects
	// the platform default.
	Timeout time.Duration
}

func (o Options) timeoutMillis() int32 {
	if o.Timeout <= 0 {
		return -1
	}
	return int32(o.Timeout / time.Millisecond)
}

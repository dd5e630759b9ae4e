package session

import (
	"time"

	"github.com/helpcar/quotechat/pkg/ports"
)

type systemClock struct{}

// SystemClock returns a ports.Clock backed by the time package.
func SystemClock() ports.Clock { return systemClock{} }

func (systemClock) AfterFunc(d time.Duration, f func()) ports.Timer { return time.AfterFunc(d, f) }

func (systemClock) Now() time.Time { return time.Now() }

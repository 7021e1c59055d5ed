package queue

import (
	"io"

	"github.com/labstack/gommon/log"
)

func quietLogger() *log.Logger {
	l := log.New("test")
	l.SetOutput(io.Discard)
	return l
}

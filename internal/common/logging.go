package common

import (
	"io"
	"log"
	"os"
)

var (
	logger = log.New(os.Stderr, "[fbprobe] ", log.LstdFlags|log.Lmicroseconds)
)

func Logf(format string, args ...interface{}) {
	logger.Printf(format, args...)
}

func Fatalf(format string, args ...interface{}) {
	logger.Fatalf(format, args...)
}

// SetLogOutput redirects the process log, e.g. to a rotating file writer.
func SetLogOutput(w io.Writer) {
	logger.SetOutput(w)
}

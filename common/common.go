package common

import (
	"flag"

	"github.com/fuchsia74/assistant-gateway/common/helper"
)

var (
	Version   = "v0.1.0"
	StartTime = helper.GetTimestamp()
)

var (
	Port = flag.Int("port", 3000, "the listening port")
)

func Init() {
	flag.Parse()
}

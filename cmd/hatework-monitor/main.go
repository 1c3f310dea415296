// Command hatework-monitor tails the panel's snapshot stream and
// prints one JSON snapshot per line.
package main

import (
	"flag"
	"fmt"

	"github.com/r3labs/sse/v2"
	"go.uber.org/zap"
)

func main() {
	url := flag.String("url", "http://localhost:8001/events", "panel SSE endpoint")
	flag.Parse()
	dev, err := zap.NewDevelopmentConfig().Build()
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(dev)
	defer zap.S().Sync()

	client := sse.NewClient(*url)
	err = client.Subscribe("snapshot", func(msg *sse.Event) {
		fmt.Printf("%s\n", msg.Data)
	})
	if err != nil {
		zap.S().Fatalf("subscribe: %s", err)
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"voicelock-go/internal/bootstrap"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	fmt.Printf("[%s] [INFO] [BOOT] starting voicelock...\n", time.Now().Format("2006-01-02 15:04:05.000"))
	err := bootstrap.Run(context.Background(), bootstrap.Options{ConfigPath: *configPath})
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "voicelock failed: %v\n", err)
		os.Exit(1)
	}
}

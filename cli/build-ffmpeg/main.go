// Package main is the build-ffmpeg command.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/safecore/ffmpeg-android/cli"
)

func main() {
	// Interrupts cancel the context, which stops any running external process.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	app := cli.NewBuildFFmpegApp(os.Stdout, os.Stderr)
	err := app.RunContext(ctx, os.Args)
	stop()
	if err != nil {
		cli.Errorf(app.ErrWriter, "%v", err)
	}
}

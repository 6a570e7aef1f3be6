//go:build gui

package main

import (
	"context"
	"runtime"

	"medscribe/controller"
	"medscribe/gui"
)

const guiAvailable = true

// fyne needs the main OS thread.
func init() {
	runtime.LockOSThread()
}

func runGUI(ctx context.Context, ctrl *controller.Controller) error {
	return gui.Run(gui.NewApp(ctx, ctrl))
}

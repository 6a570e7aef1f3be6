//go:build !gui

package main

import (
	"context"
	"errors"

	"medscribe/controller"
)

const guiAvailable = false

func runGUI(context.Context, *controller.Controller) error {
	return errors.New("built without GUI support (rebuild with -tags gui)")
}

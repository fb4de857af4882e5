package main

import (
	"errors"

	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/spline3d/internal/logger"
)

// pickScene shows a native open-file dialog for scene documents.
func pickScene() (string, error) {
	return dialog.File().
		Filter("Scene files", "yaml", "yml").
		Filter("All Files", "*").
		Title("Open Scene").
		Load()
}

// requestOpen runs the dialog off the main thread and queues the chosen
// path; update loads it on the main thread.
func (v *viewer) requestOpen() {
	go func() {
		path, err := pickScene()
		if err != nil {
			if !errors.Is(err, dialog.ErrCancelled) {
				logger.Warn("file dialog failed", zap.Error(err))
			}
			return
		}
		select {
		case v.pending <- path:
		default:
		}
	}()
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/RepreZen/SwagEdit/cmd/swagedit/commands"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// getVersionInfo returns version information, prioritizing ldflags values over build info
func getVersionInfo() commands.BuildInfo {
	info := commands.BuildInfo{Version: version, Commit: commit, Date: date}
	if version != "dev" || commit != "none" || date != "unknown" {
		return info
	}

	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}

	if buildInfo.Main.Version != "" && buildInfo.Main.Version != "(devel)" {
		info.Version = buildInfo.Main.Version
	}
	for _, setting := range buildInfo.Settings {
		switch setting.Key {
		case "vcs.revision":
			info.Commit = setting.Value
			if len(setting.Value) >= 7 {
				info.Commit = setting.Value[:7]
			}
		case "vcs.time":
			info.Date = setting.Value
		}
	}

	return info
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := commands.NewRootCommand(getVersionInfo()).ExecuteContext(ctx)
	if err == nil {
		return
	}
	if !errors.Is(err, commands.ErrValidationFailed) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	stop()
	os.Exit(1)
}

package main

import (
	"os"

	"github.com/leefowlercu/agent-hook-guardrails/cmd"
)

// Version information set via ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	Commit    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Pass version info to cmd package
	cmd.SetVersionInfo(Version, BuildTime, Commit)

	code, _ := cmd.Execute()
	return code
}

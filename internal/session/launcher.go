package session

import (
	"os/exec"
	"time"

	"github.com/banshee-data/trackpilot/internal/monitoring"
	"github.com/banshee-data/trackpilot/internal/timeutil"
)

// SimulatorLauncher relaunches a local TORCS instance: kill any running
// simulator, start a fresh one in the background, then run the autostart
// script that puts the race into client-wait mode. The one second pauses
// give the simulator time to bind its port.
type SimulatorLauncher struct {
	// Vision adds the -vision flag so the simulator streams rendered frames.
	Vision bool
	// Autostart is the script that drives the simulator menus, default
	// "autostart.sh".
	Autostart string
	// Clock defaults to the real clock; injected in tests.
	Clock timeutil.Clock
}

func (l *SimulatorLauncher) clock() timeutil.Clock {
	if l.Clock == nil {
		return timeutil.RealClock{}
	}
	return l.Clock
}

// Restart implements Launcher.
func (l *SimulatorLauncher) Restart() error {
	// pkill failing just means nothing was running.
	if err := exec.Command("pkill", "torcs").Run(); err != nil {
		monitoring.Logf("pkill torcs: %v", err)
	}
	l.clock().Sleep(1 * time.Second)

	args := []string{"-nofuel", "-nodamage", "-nolaptime"}
	if l.Vision {
		args = append(args, "-vision")
	}
	cmd := exec.Command("torcs", args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	// Detach; the simulator outlives this client.
	if err := cmd.Process.Release(); err != nil {
		monitoring.Logf("release simulator process: %v", err)
	}
	l.clock().Sleep(1 * time.Second)

	script := l.Autostart
	if script == "" {
		script = "autostart.sh"
	}
	return exec.Command("sh", script).Run()
}

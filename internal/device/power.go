package device

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"wake_scheduler/internal/logger"
)

// PowerSwitch cuts power once the wake alarm is programmed.
type PowerSwitch interface {
	PowerOff(ctx context.Context) error
}

// CommandPowerSwitch runs a system command such as "systemctl poweroff".
type CommandPowerSwitch struct {
	Args []string
}

func (p CommandPowerSwitch) PowerOff(ctx context.Context) error {
	if len(p.Args) == 0 {
		return fmt.Errorf("power off: no command configured")
	}
	cmd := exec.CommandContext(ctx, p.Args[0], p.Args[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("power off %q: %w", p.Args, err)
	}
	return nil
}

// LogPowerSwitch only records the request; used with the simulator and on
// boards where an external supervisor removes power.
type LogPowerSwitch struct {
	Log *logger.Logger
}

func (p LogPowerSwitch) PowerOff(ctx context.Context) error {
	if p.Log != nil {
		p.Log.Infow("power off requested; leaving it to the host")
	}
	return nil
}

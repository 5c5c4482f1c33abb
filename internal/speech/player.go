package speech

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// ExecPlayer plays audio through an external command such as
// "ffplay -nodisp -autoexit -loglevel quiet". The file path is appended last.
type ExecPlayer struct {
	name string
	args []string
}

// NewExecPlayer returns nil when command is blank.
func NewExecPlayer(command string) *ExecPlayer {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil
	}
	return &ExecPlayer{name: fields[0], args: fields[1:]}
}

func (p *ExecPlayer) Play(ctx context.Context, path string) error {
	args := append(append([]string{}, p.args...), path)
	out, err := exec.CommandContext(ctx, p.name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", p.name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Package extract unpacks archives by invoking an external tool.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/statdocs/harvester/internal/harvest"
)

// Placeholders substituted into the argument template.
const (
	archivePlaceholder = "{archive}"
	destPlaceholder    = "{dest}"
)

// Command implements harvest.Extractor by running an external archive
// tool. The argument template uses {archive} and {dest} placeholders,
// so tools other than unzip can be configured without code changes.
type Command struct {
	tool   string
	args   []string
	logger *zap.Logger
}

// NewCommand builds a Command extractor. An empty tool defaults to
// unzip with overwrite-in-place semantics.
func NewCommand(tool string, args []string, logger *zap.Logger) *Command {
	if tool == "" {
		tool = "unzip"
	}
	if len(args) == 0 {
		args = []string{"-o", archivePlaceholder, "-d", destPlaceholder}
	}
	return &Command{
		tool:   tool,
		args:   args,
		logger: logger,
	}
}

// Extract unpacks archivePath into destDir, creating it if absent.
// Existing contents at the destination are overwritten, not merged.
func (c *Command) Extract(ctx context.Context, archivePath string, destDir string) error {
	if err := os.MkdirAll(destDir, 0o750); err != nil {
		return &harvest.ExtractionError{Archive: archivePath, Err: fmt.Errorf("create dest dir: %w", err)}
	}

	argv := c.BuildArgs(archivePath, destDir)
	cmd := exec.CommandContext(ctx, c.tool, argv...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	c.logger.Debug("extracting archive",
		zap.String("tool", c.tool),
		zap.Strings("args", argv),
	)
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			err = fmt.Errorf("%s: %w: %s", c.tool, err, detail)
		} else {
			err = fmt.Errorf("%s: %w", c.tool, err)
		}
		return &harvest.ExtractionError{Archive: archivePath, Err: err}
	}
	return nil
}

// BuildArgs renders the argument template for one invocation.
func (c *Command) BuildArgs(archivePath string, destDir string) []string {
	argv := make([]string, 0, len(c.args))
	for _, arg := range c.args {
		arg = strings.ReplaceAll(arg, archivePlaceholder, archivePath)
		arg = strings.ReplaceAll(arg, destPlaceholder, destDir)
		argv = append(argv, arg)
	}
	return argv
}

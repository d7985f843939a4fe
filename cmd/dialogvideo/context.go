package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/ivlev/dialogvideo/internal/engine"
)

type commandContext struct {
	projectFlag *string
	scriptFlag  *string

	logger *slog.Logger

	projectOnce sync.Once
	project     *engine.Project
	projectErr  error
}

func newCommandContext(projectFlag, scriptFlag *string) *commandContext {
	return &commandContext{
		projectFlag: projectFlag,
		scriptFlag:  scriptFlag,
		logger:      slog.Default(),
	}
}

func (c *commandContext) projectDir() string {
	if c.projectFlag == nil || strings.TrimSpace(*c.projectFlag) == "" {
		return "."
	}
	return strings.TrimSpace(*c.projectFlag)
}

// ensureProject loads the project once and logs what rendering will work
// around.
func (c *commandContext) ensureProject() (*engine.Project, error) {
	c.projectOnce.Do(func() {
		var scriptPath string
		if c.scriptFlag != nil {
			scriptPath = strings.TrimSpace(*c.scriptFlag)
		}
		p, err := engine.LoadProject(c.projectDir(), scriptPath)
		if err != nil {
			c.projectErr = err
			return
		}
		for _, w := range p.Warnings {
			c.logger.Warn(w)
		}
		c.project = p
	})
	return c.project, c.projectErr
}

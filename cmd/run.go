package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// RunCmd runs a workflow whose tasks may call the cedar/schema actions, e.g.
// regenerating a schema and authorizing sample calls against it.
type RunCmd struct {
	Location   string `short:"l" long:"location" description:"workflow definition path (YAML)" required:"yes"`
	InputFile  string `short:"i" long:"input" description:"JSON file with initial state (stdin if empty)"`
	State      string `short:"s" long:"state" description:"JSON object with initial state"`
	TimeoutSec int    `long:"timeout" description:"seconds to wait for completion" default:"30"`
}

func (c *RunCmd) Execute(_ []string) error {
	ctx := context.Background()
	wf, err := workflowSingleton(ctx)
	if err != nil {
		return err
	}
	rt := wf.Runtime()
	defer rt.Shutdown(ctx)

	workflow, err := rt.LoadWorkflow(ctx, c.Location)
	if err != nil {
		return fmt.Errorf("load workflow: %w", err)
	}
	initState, err := c.initialState()
	if err != nil {
		return err
	}

	process, wait, err := rt.StartProcess(ctx, workflow, initState)
	if err != nil {
		return fmt.Errorf("start process: %w", err)
	}
	output, err := wait(ctx, time.Duration(c.TimeoutSec)*time.Second)
	if err != nil {
		return fmt.Errorf("wait for process: %w", err)
	}
	if err := printJSON(output); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "process %s completed\n", process.ID)
	return nil
}

func (c *RunCmd) initialState() (map[string]interface{}, error) {
	ret := make(map[string]interface{})
	var data []byte
	switch {
	case c.State != "":
		data = []byte(strings.TrimSpace(c.State))
	case c.InputFile != "":
		var err error
		if data, err = os.ReadFile(c.InputFile); err != nil {
			return nil, fmt.Errorf("open input file: %w", err)
		}
	default:
		if stat, err := os.Stdin.Stat(); err == nil && stat.Mode()&os.ModeCharDevice == 0 {
			data, _ = io.ReadAll(os.Stdin)
		}
	}
	if len(data) == 0 {
		return ret, nil
	}
	if err := json.Unmarshal(data, &ret); err != nil {
		return nil, fmt.Errorf("decode initial state: %w", err)
	}
	return ret, nil
}

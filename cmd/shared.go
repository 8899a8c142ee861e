package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/cedar-policy/cedar-for-agents-sub000/mcp"
	"github.com/cedar-policy/cedar-for-agents-sub000/mcp/action"
	mcpconfig "github.com/cedar-policy/cedar-for-agents-sub000/mcp/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/viant/fluxor"
)

var (
	cfgPath  string
	logLevel string
	stdout   io.Writer = os.Stdout

	svcOnce sync.Once
	svcInst *mcp.Service
	svcErr  error
)

// setConfigPath remembers the CLI-level -f/--config parameter so that the
// service singleton can be created lazily by whichever sub-command runs.
func setConfigPath(p string) { cfgPath = p }

func setOutput(w io.Writer) { stdout = w }

// serviceSingleton initialises an mcp.Service only once and reuses the instance
// within the same CLI invocation.
func serviceSingleton() (*mcp.Service, error) {
	svcOnce.Do(func() {
		cfg := &mcpconfig.Config{}
		if cfgPath != "" {
			var err error
			if cfg, err = mcpconfig.Load(cfgPath); err != nil {
				svcErr = err
				return
			}
			if cfg.LogLevel != "" && logLevel == "" {
				if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
					zerolog.SetGlobalLevel(level)
				}
			}
			log.Debug().Str("path", cfgPath).Interface("config", cfg).Msg("loaded config")
		}
		svcInst, svcErr = mcp.New(mcp.WithConfig(cfg), mcp.WithLogger(log.Logger))
	})
	return svcInst, svcErr
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, string(data))
	return err
}

var (
	wfOnce sync.Once
	wfInst *fluxor.Service
	wfErr  error
)

// workflowSingleton starts the workflow engine exposing the schema actions.
func workflowSingleton(ctx context.Context) (*fluxor.Service, error) {
	wfOnce.Do(func() {
		svc, err := serviceSingleton()
		if err != nil {
			wfErr = err
			return
		}
		wfInst = action.NewWorkflow(svc)
		wfErr = wfInst.Runtime().Start(ctx)
	})
	return wfInst, wfErr
}

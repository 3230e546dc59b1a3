// Package mcpserver exposes discovery, the allowlist, and the job manager
// as a stdio JSON-RPC endpoint over six tools: list_tasks, status,
// task_start, task_status, task_output, task_stop (spec.md §4.8).
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/dela-run/dela/internal/allowlist"
	"github.com/dela-run/dela/internal/command"
	"github.com/dela-run/dela/internal/discovery"
	"github.com/dela-run/dela/internal/job"
	"github.com/dela-run/dela/internal/runnerdetect"
	"github.com/dela-run/dela/internal/task"
)

// Error codes carried in tool results' structured payload, per spec.md §6.
const (
	CodeInvalidParams     = -32602
	CodeInternal          = -32603
	CodeNotAllowlisted    = -32010
	CodeRunnerUnavailable = -32011
	CodeTaskNotFound      = -32012
)

// Version is the server version string advertised to MCP clients.
const Version = "0.1.0"

// Server wires discovery, the allowlist, and the job manager into an MCP
// stdio endpoint rooted at a fixed working directory.
type Server struct {
	cwd       string
	store     *allowlist.Store
	jobs      *job.Manager
	mcpServer *server.MCPServer
}

// New constructs a Server rooted at cwd. Discovery is re-run per call, so
// no tasks are cached here.
func New(cwd string, store *allowlist.Store, jobs *job.Manager) *Server {
	mcpServer := server.NewMCPServer(
		"dela",
		Version,
		server.WithToolCapabilities(true),
	)

	s := &Server{cwd: cwd, store: store, jobs: jobs, mcpServer: mcpServer}
	s.registerTools()
	return s
}

// Serve runs the server over stdio until the client disconnects. All
// non-protocol output must avoid stdout, since stdout is the JSON-RPC
// channel.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	s.registerListTasks()
	s.registerStatus()
	s.registerTaskStart()
	s.registerTaskStatus()
	s.registerTaskOutput()
	s.registerTaskStop()
}

// TaskDto is the wire representation of a discovered task.
type TaskDto struct {
	UniqueName      string `json:"unique_name"`
	SourceName      string `json:"source_name"`
	Runner          string `json:"runner"`
	Command         string `json:"command"`
	RunnerAvailable bool   `json:"runner_available"`
	Allowlisted     bool   `json:"allowlisted"`
	FilePath        string `json:"file_path"`
	Description     string `json:"description,omitempty"`
}

func (s *Server) toDto(t task.Task) TaskDto {
	cmd, cmdErr := command.For(t)
	available := runnerAvailable(t.Runner)
	allowed := s.store.IsAllowed(t) == allowlist.Allowed

	dto := TaskDto{
		UniqueName:      t.UniqueName(),
		SourceName:      t.SourceName,
		Runner:          string(t.Runner),
		RunnerAvailable: available,
		Allowlisted:     allowed,
		FilePath:        t.FilePath,
		Description:     t.Description,
	}
	if cmdErr == nil {
		dto.Command = cmd
	} else {
		dto.Command = cmdErr.Error()
	}
	return dto
}

func runnerAvailable(r task.Runner) bool {
	switch r {
	case task.RunnerShellScript, task.RunnerTravisCi:
		return true
	case task.RunnerMake:
		return runnerdetect.Available("make")
	case task.RunnerNodeNpm:
		return runnerdetect.Available("npm")
	case task.RunnerNodeYarn:
		return runnerdetect.Available("yarn")
	case task.RunnerNodePnpm:
		return runnerdetect.Available("pnpm")
	case task.RunnerNodeBun:
		return runnerdetect.Available("bun")
	case task.RunnerPythonUv:
		return runnerdetect.Available("uv")
	case task.RunnerPythonPoetry:
		return runnerdetect.Available("poetry")
	case task.RunnerPythonPoe:
		return runnerdetect.Available("poe")
	case task.RunnerTask:
		return runnerdetect.Available("task")
	case task.RunnerJust:
		return runnerdetect.Available("just")
	case task.RunnerCMake:
		return runnerdetect.Available("cmake")
	case task.RunnerGradle:
		return runnerdetect.Available("gradle")
	case task.RunnerMaven:
		return runnerdetect.Available("mvn")
	case task.RunnerDockerCompose:
		return runnerdetect.Available("docker")
	case task.RunnerAct:
		return runnerdetect.Available("act")
	default:
		return false
	}
}

func (s *Server) registerListTasks() {
	tool := mcp.Tool{
		Name:        "list_tasks",
		Description: "List discovered tasks, optionally filtered by runner short token",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"runner": map[string]interface{}{"type": "string", "description": "Filter by runner short token, exact case-sensitive match"},
			},
		},
	}

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		params := req.GetArguments()
		runnerFilter, _ := params["runner"].(string)

		discovered := discovery.DiscoverAndDisambiguate(s.cwd)

		var dtos []TaskDto
		for _, t := range discovered.Tasks {
			if runnerFilter != "" && t.Runner.ShortSuffix() != runnerFilter {
				continue
			}
			dtos = append(dtos, s.toDto(t))
		}

		return jsonResult(map[string]interface{}{"tasks": dtos})
	}

	s.mcpServer.AddTool(tool, handler)
}

// JobDto is the wire representation of a live or recently finished job.
type JobDto struct {
	PID        int    `json:"pid"`
	UniqueName string `json:"unique_name"`
	StartTime  string `json:"start_time"`
	AgeSeconds int    `json:"age_seconds"`
}

func (s *Server) registerStatus() {
	tool := mcp.Tool{
		Name:        "status",
		Description: "List all live jobs",
		InputSchema: mcp.ToolInputSchema{Type: "object", Properties: map[string]interface{}{}},
	}

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var dtos []JobDto
		now := time.Now()
		for _, j := range s.jobs.Running() {
			dtos = append(dtos, JobDto{
				PID:        j.PID,
				UniqueName: j.UniqueName,
				StartTime:  j.StartTime.Format(time.RFC3339),
				AgeSeconds: int(now.Sub(j.StartTime).Seconds()),
			})
		}
		return jsonResult(map[string]interface{}{"running": dtos})
	}

	s.mcpServer.AddTool(tool, handler)
}

func (s *Server) registerTaskStart() {
	tool := mcp.Tool{
		Name:        "task_start",
		Description: "Start a discovered task, synchronously for up to 1 second then backgrounded",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"unique_name": map[string]interface{}{"type": "string"},
				"args":        map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
				"env":         map[string]interface{}{"type": "object"},
				"cwd":         map[string]interface{}{"type": "string"},
			},
			Required: []string{"unique_name"},
		},
	}

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		params := req.GetArguments()
		uniqueName, _ := params["unique_name"].(string)
		if uniqueName == "" {
			return errorResult(CodeInvalidParams, "unique_name is required", "")
		}

		discovered := discovery.DiscoverAndDisambiguate(s.cwd)
		t, ok := discovered.ByUniqueName(uniqueName)
		if !ok {
			return errorResult(CodeTaskNotFound, fmt.Sprintf("task not found: %s", uniqueName), "")
		}

		decision := s.store.IsAllowed(t)
		if decision != allowlist.Allowed {
			return errorResult(CodeNotAllowlisted, fmt.Sprintf("task not allowlisted: %s", uniqueName),
				"run `dela allow-command "+uniqueName+"` from the CLI to grant access")
		}

		if !runnerAvailable(t.Runner) {
			return errorResult(CodeRunnerUnavailable, fmt.Sprintf("runner unavailable: %s", t.Runner),
				installHint(t.Runner))
		}

		cmdStr, err := command.For(t)
		if err != nil {
			return errorResult(CodeRunnerUnavailable, err.Error(), "")
		}
		cmdStr = command.WithArgs(cmdStr, stringArgs(params["args"]))

		spawnCwd := s.cwd
		if v, ok := params["cwd"].(string); ok && v != "" {
			spawnCwd = v
		}

		result, err := s.jobs.Start(job.SpawnSpec{
			UniqueName: uniqueName,
			Command:    cmdStr,
			Cwd:        spawnCwd,
			Env:        envPairs(params["env"]),
		})
		if err != nil {
			return errorResult(CodeInternal, err.Error(), "")
		}

		resp := map[string]interface{}{
			"state":          result.State,
			"pid":            result.PID,
			"initial_output": result.InitialOutput,
		}
		if result.ExitCode != nil {
			resp["exit_code"] = *result.ExitCode
		} else {
			resp["exit_code"] = nil
		}
		return jsonResult(resp)
	}

	s.mcpServer.AddTool(tool, handler)
}

func (s *Server) registerTaskStatus() {
	tool := mcp.Tool{
		Name:        "task_status",
		Description: "Aggregate status of every job sharing a unique_name",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"unique_name": map[string]interface{}{"type": "string"}},
			Required:   []string{"unique_name"},
		},
	}

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		uniqueName, _ := req.GetArguments()["unique_name"].(string)
		if uniqueName == "" {
			return errorResult(CodeInvalidParams, "unique_name is required", "")
		}

		var jobs []map[string]interface{}
		for _, j := range s.jobs.ByUniqueName(uniqueName) {
			st, code := j.State()
			jobs = append(jobs, map[string]interface{}{
				"pid": j.PID, "state": st, "exit_code": code, "start_time": j.StartTime.Format(time.RFC3339),
			})
		}
		return jsonResult(map[string]interface{}{"jobs": jobs})
	}

	s.mcpServer.AddTool(tool, handler)
}

func (s *Server) registerTaskOutput() {
	tool := mcp.Tool{
		Name:        "task_output",
		Description: "Tail the last N lines of a job's captured output",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"pid":   map[string]interface{}{"type": "number"},
				"lines": map[string]interface{}{"type": "number"},
			},
			Required: []string{"pid"},
		},
	}

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		params := req.GetArguments()
		pid, ok := intArg(params["pid"])
		if !ok {
			return errorResult(CodeInvalidParams, "pid is required", "")
		}
		lines, _ := intArg(params["lines"])

		j, ok := s.jobs.Get(pid)
		if !ok {
			return errorResult(CodeTaskNotFound, fmt.Sprintf("no job registered under pid %d", pid), "")
		}

		return jsonResult(map[string]interface{}{"lines": j.Tail(lines)})
	}

	s.mcpServer.AddTool(tool, handler)
}

func (s *Server) registerTaskStop() {
	tool := mcp.Tool{
		Name:        "task_stop",
		Description: "Gracefully stop a running job, escalating to SIGKILL after a grace period",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"pid":                  map[string]interface{}{"type": "number"},
				"grace_period_seconds": map[string]interface{}{"type": "number"},
			},
			Required: []string{"pid"},
		},
	}

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		params := req.GetArguments()
		pid, ok := intArg(params["pid"])
		if !ok {
			return errorResult(CodeInvalidParams, "pid is required", "")
		}
		grace := 5
		if v, ok := intArg(params["grace_period_seconds"]); ok {
			grace = v
		}

		result := s.jobs.Stop(pid, time.Duration(grace)*time.Second)
		if result.Err != "" {
			return errorResult(CodeInternal, result.Err, "")
		}
		return jsonResult(map[string]interface{}{"graceful": result.Graceful, "exit_code": result.ExitCode})
	}

	s.mcpServer.AddTool(tool, handler)
}

func installHint(r task.Runner) string {
	switch r {
	case task.RunnerNodeNpm, task.RunnerNodeYarn, task.RunnerNodePnpm, task.RunnerNodeBun:
		return "install Node.js and the matching package manager"
	case task.RunnerPythonUv, task.RunnerPythonPoetry, task.RunnerPythonPoe:
		return "install the matching Python tool (uv, poetry, or poe)"
	default:
		return fmt.Sprintf("install %s and ensure it is on PATH", r)
	}
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		logrus.WithError(err).Error("failed to marshal tool result")
		return mcp.NewToolResultError(fmt.Sprintf(`{"code":%d,"message":"failed to marshal result"}`, CodeInternal)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// errorResult encodes a domain error code alongside its message and an
// optional hint, since CallToolResult carries no first-class JSON-RPC
// error code field for tool-level failures.
func errorResult(code int, message, data string) (*mcp.CallToolResult, error) {
	payload, _ := json.Marshal(map[string]interface{}{"code": code, "message": message, "data": data})
	return mcp.NewToolResultError(string(payload)), nil
}

func stringArgs(v interface{}) []string {
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func envPairs(v interface{}) []string {
	raw, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for k, val := range raw {
		if s, ok := val.(string); ok {
			out = append(out, k+"="+s)
		}
	}
	return out
}

func intArg(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}

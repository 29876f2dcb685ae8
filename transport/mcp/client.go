package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/micromouse/game/engine"
	"github.com/wricardo/micromouse/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			// Exploring a large maze for many passes takes a while
			Timeout: 60 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Micromouse",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Micromouse - MCP Interface

This is a thin client that proxies all requests to the REST API server.

A simulated mouse starts in the north-west corner (0,0) facing east and must reach
the centre of the maze. It only learns walls by sensing them. Each explore pass
drives from the start to the goal with a strategy (floodfill, astar, bfs, dfs);
what it learns carries over to later passes. Replay drives the shortest path found.

Coordinates: x is the row (grows southward), y is the column (grows eastward).

AVAILABLE TOOLS:
- create_session: Create a mouse in a maze with a strategy
- list_sessions / get_session: Inspect sessions
- explore: Run exploration passes
- replay: Drive the best known path
- reset_knowledge: Forget all learned walls and paths
- knowledge: Show the learned walls and flood field
- describe_cell: What the mouse knows about one cell
- list_mazes / list_strategies: Available mazes and strategies
- maze_history: Stored pass results for a maze`),
	)

	c.registerTools()
}

func sessionIDSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new mouse session in a maze with the given run settings",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"maze": map[string]interface{}{
					"type":        "string",
					"description": "Maze config ID (optional, defaults to the server default)",
				},
				"strategy": map[string]interface{}{
					"type":        "string",
					"enum":        engine.Strategies(),
					"description": "Exploration strategy (default floodfill)",
				},
				"heuristic": map[string]interface{}{
					"type":        "string",
					"enum":        engine.Heuristics(),
					"description": "A* heuristic (astar only)",
				},
				"weight": map[string]interface{}{
					"type":        "number",
					"description": "A* heuristic weight (astar only)",
				},
				"passes": map[string]interface{}{
					"type":        "integer",
					"description": "Passes per explore call (default 5)",
				},
				"return": map[string]interface{}{
					"type":        "string",
					"enum":        []string{string(engine.ReturnReset), string(engine.ReturnDrive)},
					"description": "How the mouse returns to the start between passes",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all mouse sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session, including the board",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDSchema()},
			Required:   []string{"session_id"},
		},
	}, c.handleGetSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "explore",
		Description: "Run exploration passes from the start to the goal",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDSchema(),
				"passes": map[string]interface{}{
					"type":        "integer",
					"description": "Number of passes (optional, defaults to the session setting)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleExplore)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "replay",
		Description: "Drive the shortest path found so far from the start",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDSchema()},
			Required:   []string{"session_id"},
		},
	}, c.handleReplay)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_knowledge",
		Description: "Forget every learned wall and path and return the mouse to the start",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDSchema()},
			Required:   []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "knowledge",
		Description: "Show the flood field and the number of cells with known walls",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDSchema()},
			Required:   []string{"session_id"},
		},
	}, c.handleKnowledge)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Describe what the mouse knows about one cell",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDSchema(),
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "Row, 0 at the north edge",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Column, 0 at the west edge",
				},
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleDescribeCell)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_mazes",
		Description: "List available maze configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListMazes)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_strategies",
		Description: "List exploration strategies and A* heuristics",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListStrategies)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "maze_history",
		Description: "Stored pass results for a maze, best first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"maze": map[string]interface{}{
					"type":        "string",
					"description": "Maze config ID",
				},
				"strategy": map[string]interface{}{
					"type":        "string",
					"description": "Only passes of this strategy (optional)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum records (optional, default 20)",
				},
			},
			Required: []string{"maze"},
		},
	}, c.handleMazeHistory)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func stringArg(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return strings.TrimSpace(s)
}

// intArg reads a JSON number argument. ok is false when it is missing or not whole.
func intArg(args map[string]interface{}, key string) (int, bool) {
	f, ok := args[key].(float64)
	if !ok || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

func sessionPath(args map[string]interface{}, suffix string) (string, error) {
	id := stringArg(args, "session_id")
	if id == "" {
		return "", fmt.Errorf("session_id is required")
	}
	return "/api/sessions/" + url.PathEscape(id) + suffix, nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	req := service.CreateSessionRequest{
		Maze: stringArg(args, "maze"),
		Settings: engine.Config{
			Strategy:  stringArg(args, "strategy"),
			Heuristic: stringArg(args, "heuristic"),
			Return:    engine.ReturnPolicy(stringArg(args, "return")),
		},
	}
	if w, ok := args["weight"].(float64); ok {
		req.Settings.Weight = w
	}
	if p, ok := intArg(args, "passes"); ok {
		req.Settings.Passes = p
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", req, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nMaze: %s (%dx%d)\nSettings: %s\n",
		session.ID, session.MazeName, session.Width, session.Height, session.Settings.Describe())
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		fmt.Fprintf(&b, "- %s (Maze: %s, Strategy: %s, Passes: %d, Best: %d, Created: %s)\n",
			s.ID, s.MazeName, s.Settings.Strategy, s.PassesRun, s.BestLength, s.CreatedAt.Format("15:04:05"))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", path, nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleExplore(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/explore")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]int{}
	if p, ok := intArg(args, "passes"); ok {
		body["passes"] = p
	}

	var result service.ExploreResult
	if err := c.apiCall(ctx, "POST", path, body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatExploreResult(&result)), nil
}

func (c *Client) handleReplay(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/replay")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.ReplayResult
	if err := c.apiCall(ctx, "POST", path, nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := fmt.Sprintf("Replayed best path: %d cells (optimal %d)\nPath: %s\nMoves: %d, Turns: %d, Crashes: %d\n\n%s",
		result.Length, result.Optimal, result.Path, result.Stats.Moves, result.Stats.Turns, result.Stats.Crashes, result.Board)
	return mcp.NewToolResultText(text), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/reset")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response struct {
		Session service.SessionInfo `json:"session"`
	}
	if err := c.apiCall(ctx, "POST", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Knowledge cleared. Mouse is back at the start.\n\n" + formatSessionInfo(&response.Session)), nil
}

func (c *Client) handleKnowledge(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/knowledge")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var view service.KnowledgeView
	if err := c.apiCall(ctx, "GET", path, nil, &view); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatKnowledge(&view)), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	x, okX := intArg(args, "x")
	y, okY := intArg(args, "y")
	if !okX || !okY || x < 0 || y < 0 {
		return mcp.NewToolResultError("x and y must be non-negative integers"), nil
	}
	path, err := sessionPath(args, fmt.Sprintf("/cells/%d/%d", x, y))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var info service.CellInfo
	if err := c.apiCall(ctx, "GET", path, nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatCellInfo(&info)), nil
}

func (c *Client) handleListMazes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var mazes []service.MazeInfo
	if err := c.apiCall(ctx, "GET", "/api/mazes", nil, &mazes); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available mazes:\n\n")
	for _, m := range mazes {
		fmt.Fprintf(&b, "- %s: %s (%dx%d, shortest path %d, dead ends %d)\n",
			m.ConfigID, m.Description, m.Width, m.Height, m.ShortestPath, m.DeadEnds)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleListStrategies(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var strategies []service.StrategyInfo
	if err := c.apiCall(ctx, "GET", "/api/strategies", nil, &strategies); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	for _, s := range strategies {
		fmt.Fprintf(&b, "- %s: %s\n", s.Name, s.Description)
		if len(s.Heuristics) > 0 {
			fmt.Fprintf(&b, "  heuristics: %s\n", strings.Join(s.Heuristics, ", "))
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleMazeHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	name := stringArg(args, "maze")
	if name == "" {
		return mcp.NewToolResultError("maze is required"), nil
	}

	query := url.Values{}
	if s := stringArg(args, "strategy"); s != "" {
		query.Set("strategy", s)
	}
	if l, ok := intArg(args, "limit"); ok && l > 0 {
		query.Set("limit", fmt.Sprint(l))
	}
	path := "/api/mazes/" + url.PathEscape(name) + "/history"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatHistory(&history)), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\nMaze: %s (%dx%d)\nSettings: %s\n",
		session.ID, session.MazeName, session.Width, session.Height, session.Settings.Describe())
	fmt.Fprintf(&b, "Mouse at %v facing %v\n", session.Pose.Cell, session.Pose.Facing)
	fmt.Fprintf(&b, "Passes run: %d\n", session.PassesRun)
	if session.BestLength > 0 {
		fmt.Fprintf(&b, "Best path (%d cells): %s\n", session.BestLength, session.Best)
	} else {
		b.WriteString("Best path: none yet\n")
	}
	fmt.Fprintf(&b, "Moves: %d, Turns: %d, Sensor reads: %d, Crashes: %d\n",
		session.Stats.Moves, session.Stats.Turns, session.Stats.SensorReads, session.Stats.Crashes)
	if session.Board != "" {
		b.WriteString("\n" + session.Board)
	}
	return b.String()
}

func formatExploreResult(result *service.ExploreResult) string {
	var b strings.Builder
	if result.Report != nil {
		fmt.Fprintf(&b, "Explored with %s:\n", result.Report.Strategy)
		for _, p := range result.Report.Passes {
			status := "reached goal"
			if p.Aborted {
				status = "aborted: " + p.Error
			}
			fmt.Fprintf(&b, "  pass %d: %d moves, path %d cells, %s\n", p.Pass, p.Moves, len(p.Path), status)
		}
	}
	if result.Error != "" {
		fmt.Fprintf(&b, "Stopped early: %s\n", result.Error)
	}
	if result.Session != nil {
		fmt.Fprintf(&b, "Best path: %d cells (optimal %d)\n", result.Session.BestLength, result.Optimal)
		if result.Session.Board != "" {
			b.WriteString("\n" + result.Session.Board)
		}
	}
	return b.String()
}

func formatKnowledge(view *service.KnowledgeView) string {
	var b strings.Builder
	k := view.Knowledge
	if k == nil {
		return "No knowledge available"
	}
	fmt.Fprintf(&b, "Maze %dx%d, %d cells with known walls, %d passes, %d recorded paths\n\n",
		k.Width, k.Height, view.Known, k.Passes, len(k.Paths))
	b.WriteString("Flood field (distance to goal, assuming unknown walls are open):\n")
	for _, row := range k.Flood {
		for _, v := range row {
			fmt.Fprintf(&b, "%4d", v)
		}
		b.WriteString("\n")
	}
	if view.Board != "" {
		b.WriteString("\n" + view.Board)
	}
	return b.String()
}

func formatCellInfo(info *service.CellInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Cell %v\n", info.Cell)
	fmt.Fprintf(&b, "Goal: %v\nFlood value: %d\nOn best path: %v\n", info.Goal, info.Flood, info.OnBest)
	if !info.Known {
		b.WriteString("Walls: not sensed yet\n")
		return b.String()
	}
	fmt.Fprintf(&b, "Blocked: %s\nOpen: %s\n", joinOrientations(info.Blocked), joinOrientations(info.Open))
	return b.String()
}

func joinOrientations(list []engine.Orientation) string {
	if len(list) == 0 {
		return "-"
	}
	names := make([]string, len(list))
	for i, o := range list {
		names[i] = o.String()
	}
	return strings.Join(names, ", ")
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "History for %s (%d records):\n", history.Maze, len(history.Records))
	if history.Best != nil {
		fmt.Fprintf(&b, "Best: %s pass %d, path %d cells, %d moves (session %s)\n",
			history.Best.Strategy, history.Best.Pass, history.Best.PathLength, history.Best.Moves, history.Best.SessionID)
	}
	for _, r := range history.Records {
		status := "ok"
		if r.Aborted {
			status = "aborted"
		}
		fmt.Fprintf(&b, "- %s %s pass %d: path %d, moves %d, %s\n",
			r.CreatedAt.Format("2006-01-02 15:04:05"), r.Strategy, r.Pass, r.PathLength, r.Moves, status)
	}
	return b.String()
}

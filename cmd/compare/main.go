// Command compare runs every exploration strategy against one maze on a running
// micromouse server and prints how each one did.
//
//	compare -url http://localhost:8080 -maze classic -passes 5
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/wricardo/micromouse/game/engine"
	"github.com/wricardo/micromouse/game/service"
)

// Client talks to the REST API of a micromouse server.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

// call sends body as JSON and decodes a successful response into target.
func (c *Client) call(ctx context.Context, method, path string, body, target interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s failed: %s - %s", method, path, resp.Status, apiErr.Error)
		}
		return fmt.Errorf("%s %s failed: %s", method, path, resp.Status)
	}
	if target == nil {
		return nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("parse %s response: %w", path, err)
	}
	return nil
}

func (c *Client) Strategies(ctx context.Context) ([]*service.StrategyInfo, error) {
	var out []*service.StrategyInfo
	return out, c.call(ctx, http.MethodGet, "/api/strategies", nil, &out)
}

func (c *Client) CreateSession(ctx context.Context, mazeName string, settings engine.Config) (*service.SessionInfo, error) {
	var out service.SessionInfo
	err := c.call(ctx, http.MethodPost, "/api/sessions", service.CreateSessionRequest{Maze: mazeName, Settings: settings}, &out)
	return &out, err
}

func (c *Client) Explore(ctx context.Context, sessionID string, passes int) (*service.ExploreResult, error) {
	var out service.ExploreResult
	err := c.call(ctx, http.MethodPost, "/api/sessions/"+sessionID+"/explore", map[string]int{"passes": passes}, &out)
	return &out, err
}

func (c *Client) Replay(ctx context.Context, sessionID string) (*service.ReplayResult, error) {
	var out service.ReplayResult
	err := c.call(ctx, http.MethodPost, "/api/sessions/"+sessionID+"/replay", nil, &out)
	return &out, err
}

func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	return c.call(ctx, http.MethodDelete, "/api/sessions/"+sessionID, nil, nil)
}

// Row is one strategy's result.
type Row struct {
	Strategy   string
	Heuristic  string
	Passes     int
	Moves      int
	FirstRoute int
	Best       int
	Optimal    int
	Replayed   bool
	Err        string
}

// Compare runs each strategy in its own session and collects the results. Sessions
// are deleted afterwards unless keep is set.
func Compare(ctx context.Context, c *Client, mazeName string, passes int, heuristic string, keep bool) ([]Row, error) {
	strategies, err := c.Strategies(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(strategies))
	for _, s := range strategies {
		settings := engine.Config{Strategy: s.Name, Passes: passes}
		if s.Name == engine.StrategyAStar {
			settings.Heuristic = heuristic
		}
		row := Row{Strategy: s.Name}

		sess, err := c.CreateSession(ctx, mazeName, settings)
		if err != nil {
			return rows, err
		}
		row.Heuristic = sess.Settings.Heuristic

		result, err := c.Explore(ctx, sess.ID, passes)
		if err != nil {
			row.Err = err.Error()
		} else {
			fillExplore(&row, result)
		}

		if row.Err == "" {
			replay, err := c.Replay(ctx, sess.ID)
			if err != nil {
				row.Err = err.Error()
			} else {
				row.Replayed = replay.Length == row.Best
			}
		}

		if !keep {
			if err := c.DeleteSession(ctx, sess.ID); err != nil {
				log.Printf("Warning: failed to delete session %s: %v", sess.ID, err)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func fillExplore(row *Row, result *service.ExploreResult) {
	row.Optimal = result.Optimal
	row.Err = result.Error
	if result.Report == nil {
		return
	}
	row.Passes = len(result.Report.Passes)
	row.Best = len(result.Report.Best)
	for i, p := range result.Report.Passes {
		row.Moves += p.Moves
		if i == 0 {
			row.FirstRoute = len(p.Path)
		}
	}
}

func printRows(w io.Writer, mazeName string, rows []Row) {
	fmt.Fprintf(w, "Maze: %s\n\n", mazeName)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STRATEGY\tPASSES\tMOVES\tFIRST\tBEST\tOPTIMAL\tREPLAY\tERROR")
	for _, r := range rows {
		name := r.Strategy
		if r.Heuristic != "" {
			name += "(" + r.Heuristic + ")"
		}
		replay := "-"
		if r.Replayed {
			replay = "ok"
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%s\t%s\n", name, r.Passes, r.Moves, r.FirstRoute, r.Best, r.Optimal, replay, r.Err)
	}
	tw.Flush()
}

func main() {
	serverURL := flag.String("url", "http://localhost:8080", "Micromouse server URL")
	mazeName := flag.String("maze", "", "Maze config name (server default when empty)")
	passes := flag.Int("passes", engine.DefaultPasses, "Exploration passes per strategy")
	heuristic := flag.String("heuristic", "", "A* heuristic")
	keep := flag.Bool("keep", false, "Keep the sessions on the server")
	flag.Parse()

	log.Printf("Connecting to micromouse server at %s", *serverURL)
	rows, err := Compare(context.Background(), NewClient(*serverURL), *mazeName, *passes, *heuristic, *keep)
	if err != nil {
		log.Fatalf("Compare failed: %v", err)
	}
	printRows(os.Stdout, *mazeName, rows)
}

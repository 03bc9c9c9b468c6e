package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var jsonOutput bool
	var lat, lon float64
	var reportEvery time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the match over the websocket",
		Long: `Connect to the server's websocket and stream events in real-time.

Incoming frames:
  - chat: a chat message from any player
  - state: the match moved to a new phase
  - error: the server rejected a frame you sent

Lines typed on stdin are sent as chat messages. With --report, the
given position is reported periodically, standing in for a device GPS.

Press Ctrl+C to disconnect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var report *reportConfig
			if cmd.Flags().Changed("report") {
				report = &reportConfig{lat: lat, lon: lon, every: reportEvery}
			}
			return watch(jsonOutput, report)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude to report")
	cmd.Flags().Float64Var(&lon, "lon", 0, "Longitude to report")
	cmd.Flags().DurationVar(&reportEvery, "report", 0, "Location report interval (e.g. 30s)")

	return cmd
}

type reportConfig struct {
	lat, lon float64
	every    time.Duration
}

// ServerFrame is a decoded frame from the server
type ServerFrame struct {
	Op    string `json:"op"`
	State string `json:"state,omitempty"`
	Msg   string `json:"msg,omitempty"`
	Who   string `json:"who,omitempty"`
	Error string `json:"error,omitempty"`
}

func watch(jsonOutput bool, report *reportConfig) error {
	url := websocketURL(cfg.ServerURL) + "/ws?token=" + cfg.Token

	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("connection refused: HTTP %d", resp.StatusCode)
		}
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if !jsonOutput {
		fmt.Println("Connected")
	}

	done := make(chan struct{})

	// Reader: print every frame until the connection drops
	go func() {
		defer close(done)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			printFrame(data, jsonOutput)
		}
	}()

	// Stdin: each line becomes a chat message
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			frame, _ := json.Marshal(map[string]string{"op": "chat", "msg": line})
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		}
	}()

	// Periodic location reports when configured
	var reportCh <-chan time.Time
	if report != nil && report.every > 0 {
		ticker := time.NewTicker(report.every)
		defer ticker.Stop()
		reportCh = ticker.C
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-done:
			if !jsonOutput {
				fmt.Println("Disconnected")
			}
			return nil
		case <-sigCh:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			if !jsonOutput {
				fmt.Println("\nDisconnected")
			}
			return nil
		case <-reportCh:
			frame, _ := json.Marshal(map[string]any{
				"op":        "location",
				"latitude":  report.lat,
				"longitude": report.lon,
			})
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return fmt.Errorf("location report failed: %w", err)
			}
		}
	}
}

func printFrame(data []byte, jsonOutput bool) {
	if jsonOutput {
		fmt.Println(string(data))
		return
	}

	var frame ServerFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		fmt.Println(string(data))
		return
	}

	timestamp := time.Now().Format("15:04:05")
	switch frame.Op {
	case "chat":
		fmt.Printf("[%s] <%s> %s\n", timestamp, frame.Who, frame.Msg)
	case "state":
		fmt.Printf("[%s] phase: %s\n", timestamp, frame.State)
	default:
		if frame.Error != "" {
			fmt.Printf("[%s] error: %s\n", timestamp, frame.Error)
		} else {
			fmt.Printf("[%s] %s\n", timestamp, string(data))
		}
	}
}

// websocketURL rewrites an http(s) base URL to its ws(s) equivalent
func websocketURL(base string) string {
	base = strings.TrimSuffix(base, "/")
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base
}

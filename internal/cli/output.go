package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case LoginResult:
		o.printLoginResult(v)
	case Player:
		o.printPlayer(v)
	case []Player:
		o.printPlayers(v)
	case Team:
		o.printTeam(v)
	case []Team:
		o.printTeams(v)
	case Phase:
		o.printPhase(v)
	case ReadyResult:
		o.printReadyResult(v)
	case TimerResult:
		o.printTimerResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// LoginResult response type (matches API)
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Admin     bool      `json:"admin"`
}

// Player response type
type Player struct {
	Username  string    `json:"username"`
	Connected bool      `json:"connected"`
	Role      string    `json:"role"`
	Ready     bool      `json:"ready"`
	Team      string    `json:"team,omitempty"`
	Location  *Location `json:"location,omitempty"`
}

// Location response type
type Location struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}

// Team response type
type Team struct {
	Name    string   `json:"name"`
	Role    string   `json:"role"`
	Members []string `json:"members"`
}

// Phase response type
type Phase struct {
	State    string     `json:"state"`
	Deadline *time.Time `json:"deadline,omitempty"`
}

// ReadyResult response type
type ReadyResult struct {
	Ready bool `json:"ready"`
}

// TimerResult response type
type TimerResult struct {
	RemainingSeconds *int64 `json:"remaining_seconds"`
}

func (o *Output) printLoginResult(l LoginResult) {
	fmt.Println("Logged in")
	fmt.Printf("Token expires: %s\n", l.ExpiresAt.Format(time.RFC3339))
	if l.Admin {
		fmt.Println("Role: admin")
	}
}

func (o *Output) printPlayer(p Player) {
	connStr := "offline"
	if p.Connected {
		connStr = "online"
	}
	readyStr := ""
	if p.Ready {
		readyStr = " [ready]"
	}
	fmt.Printf("Player: %s (%s, %s)%s\n", p.Username, p.Role, connStr, readyStr)
	if p.Team != "" {
		fmt.Printf("Team: %s\n", p.Team)
	}
	if p.Location != nil {
		fmt.Printf("Last seen: %.5f, %.5f at %s\n",
			p.Location.Latitude, p.Location.Longitude,
			p.Location.Timestamp.Format("15:04:05"))
	}
}

func (o *Output) printPlayers(players []Player) {
	fmt.Printf("Players (%d):\n", len(players))
	for _, p := range players {
		connStr := "offline"
		if p.Connected {
			connStr = "online"
		}
		readyStr := ""
		if p.Ready {
			readyStr = " [ready]"
		}
		teamStr := ""
		if p.Team != "" {
			teamStr = " - " + p.Team
		}
		fmt.Printf("  - %s (%s, %s)%s%s\n", p.Username, p.Role, connStr, teamStr, readyStr)
	}
}

func (o *Output) printTeam(t Team) {
	fmt.Printf("Team: %s\n", t.Name)
	fmt.Printf("Role: %s\n", t.Role)
	fmt.Printf("Members (%d): %s\n", len(t.Members), strings.Join(t.Members, ", "))
}

func (o *Output) printTeams(teams []Team) {
	fmt.Printf("Teams (%d):\n", len(teams))
	for _, t := range teams {
		fmt.Printf("  - %s (%s): %s\n", t.Name, t.Role, strings.Join(t.Members, ", "))
	}
}

func (o *Output) printPhase(p Phase) {
	fmt.Printf("Phase: %s\n", p.State)
	if p.Deadline != nil {
		fmt.Printf("Until: %s\n", p.Deadline.Format(time.RFC3339))
	}
}

func (o *Output) printReadyResult(r ReadyResult) {
	if r.Ready {
		fmt.Println("Ready")
	} else {
		fmt.Println("Not ready")
	}
}

func (o *Output) printTimerResult(t TimerResult) {
	if t.RemainingSeconds == nil {
		fmt.Println("No timer running")
		return
	}
	remaining := time.Duration(*t.RemainingSeconds) * time.Second
	fmt.Printf("Remaining: %s\n", remaining)
}

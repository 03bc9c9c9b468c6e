package e2e_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/cityrunners/server/internal/api"
	"github.com/cityrunners/server/internal/api/handler"
	"github.com/cityrunners/server/internal/factory"
	"github.com/cityrunners/server/internal/model"
	"github.com/cityrunners/server/internal/services/auth"
)

const testGameCode = "e2e-code"

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
	tokenFile  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(projectRoot, "bin", "cityrunners-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/cityrunners")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	// Create temp token file
	tokenFile := filepath.Join(t.TempDir(), "token")

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		tokenFile:  tokenFile,
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	app      *factory.App
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	authCfg := auth.DefaultConfig()
	authCfg.GameCode = testGameCode

	app, err := factory.New(factory.Config{
		AuthConfig: authCfg,
		Logger:     logger,
	})
	require.NoError(t, err)

	h := handler.New(app.Registry, app.AuthService, app.Clock, app.Machine.Commands(), logger)
	router := api.NewRouter(h, app.Sessions, app.AuthService, app.Registry, logger)

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	ctx, cancel := context.WithCancel(context.Background())
	go app.Machine.Run(ctx)

	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := "http://" + addr
	waitForServer(t, serverURL+"/")

	return &testServer{
		app:  app,
		addr: serverURL,
		shutdown: func() {
			cancel()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			_ = server.Shutdown(shutdownCtx)
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// seedAdmin persists an admin roster entry directly
func seedAdmin(t *testing.T, ts *testServer, username, password string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, ts.app.Storage.SavePlayer(context.Background(), &model.RosterEntry{
		Username:     username,
		PasswordHash: string(hash),
		Admin:        true,
		CreatedAt:    time.Now(),
	}))
}

// Response types for JSON parsing

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Admin     bool      `json:"admin"`
}

type teamResponse struct {
	Name    string   `json:"name"`
	Role    string   `json:"role"`
	Members []string `json:"members"`
}

type phaseResponse struct {
	State string `json:"state"`
}

type readyResponse struct {
	Ready bool `json:"ready"`
}

type timerResponse struct {
	RemainingSeconds *int64 `json:"remaining_seconds"`
}

// Tests

func TestCLI_LoginAndTeams(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// First login registers via the game code and saves the token
	output, err := cli.run("login", "--user", "alice", "--pass", "secret", "--code", testGameCode)
	require.NoError(t, err, "output: %s", output)

	var login loginResponse
	require.NoError(t, json.Unmarshal([]byte(output), &login))
	assert.NotEmpty(t, login.Token)
	assert.False(t, login.Admin)

	// Create a team; the creator auto-joins
	output, err = cli.run("team", "create", "foxes")
	require.NoError(t, err, "output: %s", output)

	var team teamResponse
	require.NoError(t, json.Unmarshal([]byte(output), &team))
	assert.Equal(t, "foxes", team.Name)
	assert.Equal(t, []string{"alice"}, team.Members)

	// Toggle readiness
	output, err = cli.run("ready")
	require.NoError(t, err, "output: %s", output)

	var ready readyResponse
	require.NoError(t, json.Unmarshal([]byte(output), &ready))
	assert.True(t, ready.Ready)

	// Lobby phase, no timer
	output, err = cli.run("game", "state")
	require.NoError(t, err, "output: %s", output)

	var phase phaseResponse
	require.NoError(t, json.Unmarshal([]byte(output), &phase))
	assert.Equal(t, "Lobby", phase.State)

	output, err = cli.run("timer")
	require.NoError(t, err, "output: %s", output)

	var timer timerResponse
	require.NoError(t, json.Unmarshal([]byte(output), &timer))
	assert.Nil(t, timer.RemainingSeconds)
}

func TestCLI_LoginRejectsBadGameCode(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("login", "--user", "stranger", "--pass", "secret", "--code", "wrong")
	require.Error(t, err, "output: %s", output)
}

func TestCLI_AdminStartsMatch(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()
	seedAdmin(t, ts, "root", "hunter2")

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("login", "--user", "root", "--pass", "hunter2")
	require.NoError(t, err, "output: %s", output)

	var login loginResponse
	require.NoError(t, json.Unmarshal([]byte(output), &login))
	assert.True(t, login.Admin)

	output, err = cli.run("game", "start")
	require.NoError(t, err, "output: %s", output)

	// The phase machine picks the command up asynchronously
	require.Eventually(t, func() bool {
		return ts.app.Registry.Phase().Kind == model.PhaseHide
	}, 2*time.Second, 20*time.Millisecond)

	output, err = cli.run("timer")
	require.NoError(t, err, "output: %s", output)

	var timer timerResponse
	require.NoError(t, json.Unmarshal([]byte(output), &timer))
	require.NotNil(t, timer.RemainingSeconds)
	assert.Greater(t, *timer.RemainingSeconds, int64(0))
}

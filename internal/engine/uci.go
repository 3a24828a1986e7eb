package engine

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tomerk/chessmetrics/internal/errors"
	"github.com/tomerk/chessmetrics/internal/logger"
)

const (
	defaultDepth = 18
	evalTimeout  = 8 * time.Second
	probeTimeout = 2 * time.Second
)

// UCI runs a UCI-speaking engine binary (stockfish by default) as a child
// process and evaluates positions over its stdin/stdout protocol.
type UCI struct {
	path  string
	depth int
	log   *logger.Logger

	mu     sync.Mutex
	cmd    *exec.Cmd
	stdin  io.Writer
	stdout *bufio.Reader
}

// NewUCI starts the engine binary and completes the UCI handshake. A zero
// depth falls back to the default search depth.
func NewUCI(path string, depth int) (*UCI, error) {
	log := logger.Default().WithPrefix("engine")

	if path == "" {
		path = "stockfish"
	}
	if depth <= 0 {
		depth = defaultDepth
	}

	log.Info("starting engine: %s (depth %d)", path, depth)
	cmd := exec.Command(path)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.NewInternalError(err)
	}

	u := &UCI{
		path:   path,
		depth:  depth,
		log:    log,
		cmd:    cmd,
		stdin:  stdin,
		stdout: bufio.NewReader(stdout),
	}

	if err := cmd.Start(); err != nil {
		log.Error("failed to start engine: %v", err)
		return nil, errors.NewInternalError(err)
	}

	if err := u.handshake(); err != nil {
		log.Error("UCI handshake failed: %v", err)
		_ = u.Close()
		return nil, err
	}

	log.Info("engine ready")
	return u, nil
}

func (u *UCI) handshake() error {
	if err := u.send("uci"); err != nil {
		return err
	}
	if err := u.waitFor("uciok", probeTimeout); err != nil {
		return err
	}
	if err := u.send("isready"); err != nil {
		return err
	}
	return u.waitFor("readyok", probeTimeout)
}

// Close asks the engine to quit and reaps the child process.
func (u *UCI) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.cmd == nil {
		return nil
	}

	u.log.Debug("closing engine")
	_ = u.sendLocked("quit")
	err := u.cmd.Wait()
	u.cmd = nil
	return err
}

// Evaluate scores one FEN position at the configured depth. Scores are
// normalized to white's perspective using the side-to-move field of the FEN.
func (u *UCI) Evaluate(ctx context.Context, fen string) (Evaluation, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.cmd == nil {
		return Evaluation{}, errors.NewContractError("engine is closed")
	}

	start := time.Now()
	if err := u.sendLocked("position fen " + fen); err != nil {
		return Evaluation{}, errors.NewContractError("engine write failed: %v", err)
	}
	if err := u.sendLocked(fmt.Sprintf("go depth %d", u.depth)); err != nil {
		return Evaluation{}, errors.NewContractError("engine write failed: %v", err)
	}

	fields := strings.Fields(fen)
	blackToMove := len(fields) > 1 && fields[1] == "b"

	var (
		eval    Evaluation
		scored  bool
		timeout = time.Now().Add(evalTimeout)
	)
	for {
		if ctx.Err() != nil {
			u.log.Warn("evaluation cancelled: %v", ctx.Err())
			return Evaluation{}, ctx.Err()
		}
		if time.Now().After(timeout) {
			return Evaluation{}, errors.NewContractError("engine timed out after %v", evalTimeout)
		}
		line, err := u.stdout.ReadString('\n')
		if err != nil {
			return Evaluation{}, errors.NewContractError("engine read failed: %v", err)
		}
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "info ") {
			if e, ok := parseScore(line, blackToMove); ok {
				eval.Kind, eval.Value = e.Kind, e.Value
				scored = true
			}
			continue
		}
		if strings.HasPrefix(line, "bestmove") {
			if !scored {
				return Evaluation{}, errors.NewContractError("engine reported no score for position")
			}
			if parts := strings.Fields(line); len(parts) >= 2 {
				eval.BestMove = parts[1]
			}
			u.log.Debug("evaluated position in %v: %s=%.0f best=%s",
				time.Since(start), eval.Kind, eval.Value, eval.BestMove)
			return eval, nil
		}
	}
}

// parseScore extracts "score cp N" or "score mate N" from a UCI info line.
// UCI scores are from the side to move; flip them when black moves.
func parseScore(line string, blackToMove bool) (Evaluation, bool) {
	parts := strings.Fields(line)
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] != "score" {
			continue
		}
		v, err := strconv.Atoi(parts[i+2])
		if err != nil {
			return Evaluation{}, false
		}
		value := float64(v)
		if blackToMove {
			value = -value
		}
		switch parts[i+1] {
		case "cp":
			return Evaluation{Kind: Centipawn, Value: value}, true
		case "mate":
			return Evaluation{Kind: Mate, Value: value}, true
		}
	}
	return Evaluation{}, false
}

func (u *UCI) send(cmd string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.sendLocked(cmd)
}

func (u *UCI) sendLocked(cmd string) error {
	_, err := u.stdin.Write([]byte(cmd + "\n"))
	return err
}

func (u *UCI) waitFor(marker string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if time.Now().After(deadline) {
			return errors.NewContractError("timeout waiting for %s", marker)
		}
		line, err := u.stdout.ReadString('\n')
		if err != nil {
			return errors.NewContractError("engine read failed: %v", err)
		}
		if strings.Contains(line, marker) {
			return nil
		}
	}
}

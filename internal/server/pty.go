package server

import (
	"encoding/json"
	"io"
	"log"
	"os"
	"os/exec"

	"github.com/creack/pty"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ptyControl is a text-frame control message on the terminal socket.
// Binary frames carry raw keyboard input.
type ptyControl struct {
	Type string `json:"type"`
	Rows uint16 `json:"rows"`
	Cols uint16 `json:"cols"`
}

// handleTerminal bridges a websocket to a shell on a pseudo-terminal.
// The shell starts at the workspace root; output streams back as binary
// frames. Closing the socket kills the shell.
func (s *Server) handleTerminal(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("terminal upgrade: %v", err)
		return
	}
	defer func() { _ = conn.Close() }()

	sessionID := uuid.NewString()

	cmd := exec.Command("/bin/sh")
	cmd.Dir = s.cfg.Workspace
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")

	ptmx, err := pty.Start(cmd)
	if err != nil {
		log.Printf("terminal %s: start pty: %v", sessionID, err)
		_ = conn.WriteMessage(websocket.TextMessage, []byte("failed to start terminal\r\n"))
		return
	}
	defer func() { _ = ptmx.Close() }()

	log.Printf("terminal %s: connected", sessionID)
	done := make(chan struct{})

	go func() {
		defer close(done)
		buf := make([]byte, 4096)
		for {
			n, err := ptmx.Read(buf)
			if err != nil {
				if err != io.EOF {
					log.Printf("terminal %s: pty read: %v", sessionID, err)
				}
				return
			}
			if err := conn.WriteMessage(websocket.BinaryMessage, buf[:n]); err != nil {
				return
			}
		}
	}()

readLoop:
	for {
		select {
		case <-done:
			// Shell exited.
			_ = cmd.Wait()
			log.Printf("terminal %s: shell exited", sessionID)
			return
		default:
		}

		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("terminal %s: read: %v", sessionID, err)
			}
			break
		}

		if msgType == websocket.TextMessage {
			var ctl ptyControl
			if json.Unmarshal(msg, &ctl) == nil && ctl.Type == "resize" {
				_ = pty.Setsize(ptmx, &pty.Winsize{Rows: ctl.Rows, Cols: ctl.Cols})
				continue
			}
			// Non-control text falls through as input.
		}

		if msgType == websocket.TextMessage || msgType == websocket.BinaryMessage {
			if _, err := ptmx.Write(msg); err != nil {
				log.Printf("terminal %s: pty write: %v", sessionID, err)
				break readLoop
			}
		}
	}

	_ = cmd.Process.Kill()
	_ = cmd.Wait()
	log.Printf("terminal %s: disconnected", sessionID)
}

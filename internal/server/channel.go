package server

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/mitchellh/mapstructure"
)

// channel is one websocket event connection. Requests are handled
// sequentially in arrival order; writes are serialised because handlers
// and the watcher both push frames.
type channel struct {
	conn *websocket.Conn

	writeMu sync.Mutex
}

func newChannel(conn *websocket.Conn) *channel {
	return &channel{conn: conn}
}

// send writes one JSON frame to the connection.
func (c *channel) send(resp Response) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(resp)
}

// serve reads requests until the connection closes.
func (s *Server) serve(ctx context.Context, ch *channel) {
	for {
		var req Request
		if err := ch.conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("event channel read: %v", err)
			}
			return
		}

		payload, err := s.dispatch(ctx, req)
		resp := Response{ID: req.ID, Type: req.Type + ".result"}
		if err != nil {
			resp.Error = classify(err)
		} else {
			resp.Payload = payload
		}
		if err := ch.send(resp); err != nil {
			return
		}
	}
}

// dispatch decodes the payload for the request type and invokes the
// matching service operation.
func (s *Server) dispatch(ctx context.Context, req Request) (any, error) {
	switch req.Type {
	case "fs.list":
		var p pathRequest
		if err := decode(req.Payload, &p); err != nil {
			return nil, err
		}
		return s.files.List(p.Path)

	case "fs.read":
		var p pathRequest
		if err := decode(req.Payload, &p); err != nil {
			return nil, err
		}
		content, err := s.files.Read(p.Path)
		if err != nil {
			return nil, err
		}
		return map[string]string{"path": p.Path, "content": content}, nil

	case "fs.write":
		var p writeRequest
		if err := decode(req.Payload, &p); err != nil {
			return nil, err
		}
		return okPayload(), s.files.Write(p.Path, p.Content)

	case "fs.create":
		var p pathRequest
		if err := decode(req.Payload, &p); err != nil {
			return nil, err
		}
		return okPayload(), s.files.Create(p.Path)

	case "fs.mkdir":
		var p pathRequest
		if err := decode(req.Payload, &p); err != nil {
			return nil, err
		}
		return okPayload(), s.files.Mkdir(p.Path)

	case "fs.delete":
		var p pathRequest
		if err := decode(req.Payload, &p); err != nil {
			return nil, err
		}
		return okPayload(), s.files.Delete(p.Path)

	case "fs.rename":
		var p renameRequest
		if err := decode(req.Payload, &p); err != nil {
			return nil, err
		}
		return okPayload(), s.files.Rename(p.OldPath, p.NewPath)

	case "fs.project_files":
		files, err := s.files.ProjectFiles(s.cfg.Files.MaxProjectFiles)
		if err != nil {
			return nil, err
		}
		return map[string]any{"files": files}, nil

	case "terminal.run":
		var p terminalRunRequest
		if err := decode(req.Payload, &p); err != nil {
			return nil, err
		}
		return s.term.Execute(ctx, p.Session, p.Command)

	case "terminal.resize":
		var p terminalResizeRequest
		if err := decode(req.Payload, &p); err != nil {
			return nil, err
		}
		s.term.Resize(p.Session, p.Rows, p.Cols)
		return okPayload(), nil

	case "git.status":
		return s.git.GetStatus(ctx)

	case "git.init":
		return okPayload(), s.git.Init(ctx)

	case "git.diff":
		var p pathRequest
		if err := decode(req.Payload, &p); err != nil {
			return nil, err
		}
		diff, err := s.git.Diff(ctx, p.Path)
		if err != nil {
			return nil, err
		}
		return map[string]string{"diff": diff}, nil

	case "git.add":
		var p gitAddRequest
		if err := decode(req.Payload, &p); err != nil {
			return nil, err
		}
		return okPayload(), s.git.Add(ctx, p.Paths)

	case "git.commit":
		var p gitCommitRequest
		if err := decode(req.Payload, &p); err != nil {
			return nil, err
		}
		return okPayload(), s.git.Commit(ctx, p.Message, p.Paths)

	case "git.push":
		var p gitRemoteRequest
		if err := decode(req.Payload, &p); err != nil {
			return nil, err
		}
		return okPayload(), s.git.Push(ctx, p.Remote, p.Branch)

	case "git.pull":
		var p gitRemoteRequest
		if err := decode(req.Payload, &p); err != nil {
			return nil, err
		}
		return okPayload(), s.git.Pull(ctx, p.Remote, p.Branch)

	case "ai.chat":
		var p chatRequest
		if err := decode(req.Payload, &p); err != nil {
			return nil, err
		}
		text, err := s.ai.Chat(ctx, p.Message, p.Context)
		if err != nil {
			return nil, err
		}
		return map[string]string{"response": text}, nil

	case "ai.complete":
		var p completeRequest
		if err := decode(req.Payload, &p); err != nil {
			return nil, err
		}
		text, err := s.ai.Complete(ctx, p.Prompt, p.Context)
		if err != nil {
			return nil, err
		}
		return map[string]string{"response": text}, nil

	case "ai.refactor":
		var p refactorRequest
		if err := decode(req.Payload, &p); err != nil {
			return nil, err
		}
		text, err := s.ai.Refactor(ctx, p.Code, p.Language, p.Instruction)
		if err != nil {
			return nil, err
		}
		return map[string]string{"response": text}, nil

	case "ai.tests":
		var p testsRequest
		if err := decode(req.Payload, &p); err != nil {
			return nil, err
		}
		text, err := s.ai.GenerateTests(ctx, p.Code, p.Language)
		if err != nil {
			return nil, err
		}
		return map[string]string{"response": text}, nil

	default:
		return nil, &unknownTypeError{requestType: req.Type}
	}
}

// decode maps a loose JSON payload onto a typed request.
func decode(payload map[string]any, out any) error {
	if err := mapstructure.Decode(payload, out); err != nil {
		return &decodeError{cause: err}
	}
	return nil
}

func okPayload() map[string]bool {
	return map[string]bool{"ok": true}
}

type unknownTypeError struct {
	requestType string
}

func (e *unknownTypeError) Error() string {
	return fmt.Sprintf("unknown request type %q", e.requestType)
}

type decodeError struct {
	cause error
}

func (e *decodeError) Error() string { return "malformed payload: " + e.cause.Error() }
func (e *decodeError) Unwrap() error { return e.cause }

package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"skillscan/internal/models"
	"skillscan/internal/types"
	"skillscan/pkg/pipeline"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Be careful with this in production
	},
}

type Message struct {
	Type    string      `json:"type"`
	Content string      `json:"content"`
	Data    interface{} `json:"data,omitempty"`
}

// analyzeRequest is the one message type clients send: a resume to run
// through the whole pipeline server-side.
type analyzeRequest struct {
	Type      string `json:"type"`
	Filename  string `json:"filename"`
	MediaType string `json:"mediaType"`
	Data      string `json:"data"` // base64 document bytes
}

// wsSession serializes writes to one connection; analyses run in their own
// goroutines while the session keeps reading.
type wsSession struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (ws *wsSession) send(msg Message) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if err := ws.conn.WriteJSON(msg); err != nil {
		log.Printf("[server] error sending message: %v", err)
	}
}

// handleWebSocket runs analyses over one connection, streaming step progress
// as the pipeline advances. When the peer disconnects the read loop cancels
// the connection context, aborting any in-flight run.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[server] websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	session := &wsSession{conn: conn}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var req analyzeRequest
		if err := json.Unmarshal(raw, &req); err != nil || req.Type != "analyze" {
			session.send(Message{Type: "error", Content: "Invalid message"})
			continue
		}

		go s.runAnalysis(ctx, session, req)
	}
}

func (s *Server) runAnalysis(ctx context.Context, session *wsSession, req analyzeRequest) {
	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		session.send(Message{Type: "error", Content: "Invalid document encoding"})
		return
	}

	doc := models.Document{
		Filename:  req.Filename,
		MediaType: req.MediaType,
		Data:      data,
	}

	result, err := s.pipeline.Analyze(ctx, doc, func(step types.Step) {
		session.send(Message{
			Type:    "step",
			Content: step.String(),
			Data:    int(step),
		})
	})
	if err != nil {
		kind, _ := types.KindOf(err)
		session.send(Message{
			Type:    "error",
			Content: pipeline.FailureMessage(err),
			Data:    kind.String(),
		})
		return
	}

	session.send(Message{Type: "result", Data: result})
}

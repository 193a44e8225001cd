// Package http exposes the service over websockets. One connection is one
// authenticated view: it signs the user in on connect, streams state
// snapshots out, accepts intents in, and owns a single study timer that is
// torn down with the connection.
package http

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"studybank/internal/app"
	"studybank/internal/backend"
	"studybank/internal/domain"
	"studybank/internal/export"
	"studybank/internal/identity"
	"studybank/internal/timer"
)

type WSHandler struct {
	backend  backend.Backend
	log      *slog.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(b backend.Backend, log *slog.Logger) *WSHandler {
	return &WSHandler{
		backend: b,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type recordRef struct {
	ID string `json:"id"`
}

type updateFolderPayload struct {
	ID string `json:"id"`
	domain.FolderDraft
}

type updateQuestionPayload struct {
	ID string `json:"id"`
	domain.QuestionDraft
}

type timerStartPayload struct {
	FolderID string `json:"folderId"`
	Minutes  int    `json:"minutes"`
}

type exportPayload struct {
	FolderID string `json:"folderId"`
}

type exportResult struct {
	FileName string `json:"fileName"`
	Data     string `json:"data"` // base64 PDF
}

// ServeWS upgrades the request and runs one view session until the client
// disconnects.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	name := r.URL.Query().Get("name")
	if userID == "" || name == "" {
		http.Error(w, "missing userId or name", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("ws upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	// Per-view store: the identity provider and state cell live and die with
	// this connection, while the backend is shared across views.
	provider := identity.NewMemoryProvider()
	store := app.NewStore(h.backend, provider, h.log)
	defer store.Close()

	states, cancelStates := store.Subscribe()
	defer cancelStates()

	send := make(chan outboundMessage[any], 16)
	timerEvents := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	statesDone := make(chan struct{})
	timerDone := make(chan struct{})

	sessionTimer := timer.New(timer.Config{
		Logger: h.log,
		OnTick: func(s domain.StudySession) {
			select {
			case timerEvents <- outboundMessage[any]{Type: "timer", Payload: s}:
			default:
			}
		},
		Notifier: timer.NotifierFunc(func(c timer.Completion) {
			select {
			case timerEvents <- outboundMessage[any]{Type: "timerDone", Payload: c}:
			default:
			}
		}),
	})
	defer sessionTimer.Close()

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Error("ws write failed", "err", err)
				return
			}
		}
	}()

	go func() {
		defer close(statesDone)
		for {
			select {
			case state, ok := <-states:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "state", Payload: state}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	go func() {
		defer close(timerDone)
		for {
			select {
			case msg := <-timerEvents:
				select {
				case send <- msg:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	provider.SignIn(userID, name)
	defer provider.SignOut()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		h.handle(r, store, sessionTimer, send, inbound)
	}

	close(closeSignals)
	<-statesDone
	<-timerDone
	close(send)
	<-writerDone
}

func (h *WSHandler) handle(r *http.Request, store *app.Store, sessionTimer *timer.Timer, send chan<- outboundMessage[any], inbound inboundMessage) {
	ctx := r.Context()

	fail := func(err error) {
		send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
	}
	badPayload := func() {
		send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid payload for " + inbound.Type}}
	}
	pushTimer := func() {
		send <- outboundMessage[any]{Type: "timer", Payload: sessionTimer.Snapshot()}
	}

	switch inbound.Type {
	case "createFolder":
		var draft domain.FolderDraft
		if err := json.Unmarshal(inbound.Payload, &draft); err != nil {
			badPayload()
			return
		}
		if _, err := store.CreateFolder(ctx, draft); err != nil {
			fail(err)
		}
	case "updateFolder":
		var payload updateFolderPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			badPayload()
			return
		}
		if _, err := store.UpdateFolder(ctx, payload.ID, payload.FolderDraft); err != nil {
			fail(err)
		}
	case "deleteFolder":
		var ref recordRef
		if err := json.Unmarshal(inbound.Payload, &ref); err != nil {
			badPayload()
			return
		}
		if err := store.DeleteFolder(ctx, ref.ID); err != nil {
			fail(err)
		}
	case "createQuestion":
		var draft domain.QuestionDraft
		if err := json.Unmarshal(inbound.Payload, &draft); err != nil {
			badPayload()
			return
		}
		if _, err := store.CreateQuestion(ctx, draft); err != nil {
			fail(err)
		}
	case "updateQuestion":
		var payload updateQuestionPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			badPayload()
			return
		}
		if _, err := store.UpdateQuestion(ctx, payload.ID, payload.QuestionDraft); err != nil {
			fail(err)
		}
	case "deleteQuestion":
		var ref recordRef
		if err := json.Unmarshal(inbound.Payload, &ref); err != nil {
			badPayload()
			return
		}
		if err := store.DeleteQuestion(ctx, ref.ID); err != nil {
			fail(err)
		}
	case "export":
		var payload exportPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			badPayload()
			return
		}
		folder, questions, err := store.FolderWithQuestions(payload.FolderID)
		if err != nil {
			fail(err)
			return
		}
		var buf bytes.Buffer
		if err := export.ToPDF(&buf, folder, questions); err != nil {
			h.log.Error("export failed", "folderID", payload.FolderID, "err", err)
			fail(err)
			return
		}
		send <- outboundMessage[any]{Type: "export", Payload: exportResult{
			FileName: folder.Name + ".pdf",
			Data:     base64.StdEncoding.EncodeToString(buf.Bytes()),
		}}
	case "timerStart":
		var payload timerStartPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			badPayload()
			return
		}
		if err := sessionTimer.Start(payload.FolderID, payload.Minutes); err != nil {
			fail(err)
			return
		}
		pushTimer()
	case "timerPause":
		if err := sessionTimer.Pause(); err != nil {
			fail(err)
			return
		}
		pushTimer()
	case "timerStop":
		if err := sessionTimer.Stop(); err != nil {
			fail(err)
			return
		}
		pushTimer()
	case "timerReset":
		if err := sessionTimer.Reset(); err != nil {
			fail(err)
			return
		}
		pushTimer()
	default:
		send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
	}
}

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/djc132/Computer-Architecture-Project/service"
	"github.com/djc132/Computer-Architecture-Project/vm"
)

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method %s not allowed", r.Method)
		return
	}
	writeJSON(w, http.StatusOK, VersionResponse{
		Version: s.version,
		Commit:  s.commit,
		Date:    s.date,
	})
}

// handleSessions covers POST /api/sessions (create)
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method %s not allowed", r.Method)
		return
	}

	session, err := s.sessions.Create()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "%v", err)
		return
	}

	writeJSON(w, http.StatusCreated, SessionCreateResponse{
		SessionID: session.ID,
		CreatedAt: session.CreatedAt,
	})
}

// handleSession covers /api/sessions/<id> and /api/sessions/<id>/<action>
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	id, action := splitSessionPath(r.URL.Path, "/api/sessions/")

	session, err := s.sessions.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "%v", err)
		return
	}

	switch {
	case action == "" && r.Method == http.MethodDelete:
		if err := s.sessions.Delete(id); err != nil {
			writeError(w, http.StatusNotFound, "%v", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	case action == "" && r.Method == http.MethodGet:
		s.handleStatus(w, session)

	case action == "load" && r.Method == http.MethodPost:
		s.handleLoad(w, r, session)

	case action == "step" && r.Method == http.MethodPost:
		s.handleStep(w, session)

	case action == "run" && r.Method == http.MethodPost:
		s.handleRun(w, session)

	case action == "reset" && r.Method == http.MethodPost:
		session.Service.Reset()
		s.broadcaster.Broadcast(Event{Type: "reset", SessionID: session.ID})
		s.handleStatus(w, session)

	case action == "debug" && r.Method == http.MethodPost:
		var req DebugModeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: %v", err)
			return
		}
		session.Service.SetDebugMode(req.Enabled)
		s.handleStatus(w, session)

	case action == "registers" && r.Method == http.MethodGet:
		regs := session.Service.Registers()
		writeJSON(w, http.StatusOK, RegistersResponse{
			Registers:        regs.Registers,
			PC:               regs.PC,
			HI:               regs.HI,
			LO:               regs.LO,
			Cycles:           regs.Cycles,
			InstructionCount: regs.InstructionCount,
		})

	case action == "memory" && r.Method == http.MethodGet:
		s.handleMemory(w, r, session)

	case action == "touched" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, TouchedResponse{Ranges: session.Service.TouchedRanges()})

	case action == "instructions" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, InstructionsResponse{Instructions: session.Service.Instructions()})

	case action == "pipeline" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, PipelineResponse{Stages: session.Service.Pipeline()})

	case action == "trace" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, session.Service.TraceEntries())

	default:
		writeError(w, http.StatusNotFound, "unknown endpoint: %s %s", r.Method, r.URL.Path)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, session *Session) {
	regs := session.Service.Registers()
	resp := StatusResponse{
		SessionID: session.ID,
		State:     string(session.Service.State()),
		PC:        regs.PC,
		Cycles:    regs.Cycles,
	}
	if err := session.Service.LastError(); err != nil {
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request, session *Session) {
	var req LoadProgramRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: %v", err)
		return
	}

	filename := req.Filename
	if filename == "" {
		filename = "program.s"
	}

	count, err := session.Service.Load(req.Source, filename)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, LoadProgramResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	s.broadcaster.Broadcast(Event{Type: "loaded", SessionID: session.ID})
	writeJSON(w, http.StatusOK, LoadProgramResponse{
		Success:            true,
		InstructionsLoaded: count,
		Symbols:            session.Service.Symbols(),
	})
}

func (s *Server) handleStep(w http.ResponseWriter, session *Session) {
	info, err := session.Service.Step()
	state := string(session.Service.State())

	if err != nil {
		status := http.StatusConflict
		if errors.Is(err, vm.ErrPCOutOfBounds) {
			// Running off the end is a halt, not a client mistake
			status = http.StatusOK
		}
		writeJSON(w, status, StepResponse{Success: false, State: state, Error: err.Error()})
		return
	}

	s.broadcaster.Broadcast(Event{Type: "step", SessionID: session.ID, Payload: info})
	writeJSON(w, http.StatusOK, StepResponse{Success: true, State: state, Step: info})
}

func (s *Server) handleRun(w http.ResponseWriter, session *Session) {
	steps, err := session.Service.Run()
	state := string(session.Service.State())

	resp := RunResponse{Success: err == nil, State: state, StepsExecuted: steps}
	if err != nil {
		resp.Error = err.Error()
		if errors.Is(err, vm.ErrPCOutOfBounds) {
			// Terminal but expected for programs without an exit syscall
			resp.Success = true
		}
	}

	eventType := "run"
	if state := session.Service.State(); state == service.StateHalted || state == service.StateError {
		eventType = "halted"
	}
	s.broadcaster.Broadcast(Event{Type: eventType, SessionID: session.ID, Payload: resp})

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMemory(w http.ResponseWriter, r *http.Request, session *Session) {
	address, err := parseUint32Query(r, "address", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	length, err := parseUint32Query(r, "length", 256)
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	if length > vm.MemorySize {
		length = vm.MemorySize
	}

	region := session.Service.Memory(address, length)
	writeJSON(w, http.StatusOK, MemoryResponse{Address: region.Address, Data: region.Data})
}

// handleWebSocket covers GET /api/ws/<id>
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	id, _ := splitSessionPath(r.URL.Path, "/api/ws/")

	if _, err := s.sessions.Get(id); err != nil {
		writeError(w, http.StatusNotFound, "%v", err)
		return
	}
	if err := s.broadcaster.Subscribe(w, r, id); err != nil {
		writeError(w, http.StatusInternalServerError, "websocket upgrade failed: %v", err)
	}
}

func parseUint32Query(r *http.Request, key string, fallback uint32) (uint32, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}

	var parsed uint64
	var err error
	if len(raw) > 2 && (raw[:2] == "0x" || raw[:2] == "0X") {
		parsed, err = strconv.ParseUint(raw[2:], 16, 32)
	} else {
		parsed, err = strconv.ParseUint(raw, 10, 32)
	}
	if err != nil {
		return 0, errors.New("invalid " + key + " parameter")
	}
	return uint32(parsed), nil
}

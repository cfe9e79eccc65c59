package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/aleksaelezovic/sparqlconsole/internal/history"
	"github.com/aleksaelezovic/sparqlconsole/pkg/console"
	"github.com/aleksaelezovic/sparqlconsole/pkg/render"
)

const maxQueryBody = 1 << 20

// handleRoot serves an empty console
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	page := newConsolePage(console.NewState(s.options), s.datasets.ListDatasets(r.Context()))
	page.History = s.recentHistory()
	s.writePage(w, page)
}

// handleQuery executes the query of the console form and redirects to the
// result page
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxQueryBody)
	if err := r.ParseForm(); err != nil {
		s.writeError(w, http.StatusBadRequest, "Failed to parse form")
		return
	}

	action, format, err := parseExecuteForm(r.FormValue("query"), r.FormValue("queryType"), r.FormValue("dataset"), r.FormValue("format"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	state, _ := s.execute(r.Context(), action, format)
	id := s.sessions.create(state)
	http.Redirect(w, r, resultPath(id), http.StatusSeeOther)
}

type apiQueryRequest struct {
	Query     string `json:"query"`
	QueryType string `json:"queryType"`
	Dataset   string `json:"dataset"`
	Format    string `json:"format"`
}

type apiQueryResponse struct {
	ID   uuid.UUID     `json:"id"`
	View *console.View `json:"view"`
}

// handleAPIQuery executes a JSON query request and returns the rendered view
func (s *Server) handleAPIQuery(w http.ResponseWriter, r *http.Request) {
	var req apiQueryRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxQueryBody)).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	action, format, err := parseExecuteForm(req.Query, req.QueryType, req.Dataset, req.Format)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	state, instr := s.execute(r.Context(), action, format)
	if instr == console.InstructionStatusOnly {
		s.writeError(w, http.StatusBadRequest, state.Status)
		return
	}
	id := s.sessions.create(state)

	view, err := s.dispatcher.Render(state, resultPath(id))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Render error: %v", err))
		return
	}
	s.writeJSON(w, http.StatusOK, apiQueryResponse{ID: id, View: view})
}

func parseExecuteForm(query, queryType, dataset, format string) (console.ExecuteAction, render.Format, error) {
	qt, err := console.ParseQueryType(queryType)
	if err != nil {
		return console.ExecuteAction{}, "", err
	}
	f, err := render.ParseFormat(format)
	if err != nil {
		return console.ExecuteAction{}, "", err
	}
	return console.ExecuteAction{Query: query, QueryType: qt, Dataset: dataset}, f, nil
}

// execute runs a query in a fresh console state and records it in the
// history
func (s *Server) execute(ctx context.Context, action console.ExecuteAction, format render.Format) (console.State, console.Instruction) {
	state := console.NewState(s.options)
	state.Format = format
	state, instr := console.OnExecute(ctx, state, action, s.runner)
	if instr != console.InstructionStatusOnly {
		s.record(state)
	}
	return state, instr
}

func (s *Server) record(state console.State) {
	if s.history == nil {
		return
	}
	entry := history.Entry{
		Query:     state.Query,
		QueryType: string(state.QueryType),
		Dataset:   state.Dataset,
		Duration:  state.QueryTime,
		Error:     state.ErrorPanel,
	}
	if state.ErrorPanel == "" && state.Result != nil {
		entry.Rows = state.Result.Len()
	}
	if _, err := s.history.Record(entry); err != nil {
		log.Printf("Failed to record query history: %v", err)
	}
}

// handleResults shows a result page. The format, action, goto and size
// parameters drive the console transitions before rendering.
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	id, state, view, ok := s.renderSession(w, r)
	if !ok {
		return
	}

	page := newConsolePage(state, s.datasets.ListDatasets(r.Context()))
	page.Action = resultPath(id)
	page.View = view
	page.History = s.recentHistory()
	s.writePage(w, page)
}

// handleAPIResults returns the rendered view of a result as JSON
func (s *Server) handleAPIResults(w http.ResponseWriter, r *http.Request) {
	_, _, view, ok := s.renderSession(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

// renderSession applies the request parameters to a session and renders
// the resulting view
func (s *Server) renderSession(w http.ResponseWriter, r *http.Request) (uuid.UUID, console.State, *console.View, bool) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return uuid.Nil, console.State{}, nil, false
	}

	var paramErr error
	q := r.URL.Query()
	state, found := s.sessions.update(id, func(st console.State) console.State {
		st, paramErr = applyParams(st, q.Get("format"), q.Get("action"), q.Get("goto"), q.Get("size"))
		return st
	})
	if !found {
		s.writeError(w, http.StatusNotFound, "Result not found")
		return uuid.Nil, console.State{}, nil, false
	}
	if paramErr != nil {
		s.writeError(w, http.StatusBadRequest, paramErr.Error())
		return uuid.Nil, console.State{}, nil, false
	}

	view, err := s.dispatcher.Render(state, resultPath(id))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Render error: %v", err))
		return uuid.Nil, console.State{}, nil, false
	}
	return id, state, view, true
}

// applyParams applies the result page query parameters to a state. Only an
// unknown format is an error; other bad values leave the state unchanged.
func applyParams(st console.State, format, action, gotoPage, size string) (console.State, error) {
	if format != "" {
		f, err := render.ParseFormat(format)
		if err != nil {
			return st, err
		}
		if f != st.Format {
			st, _ = console.OnFormatChange(st, f)
		}
	}

	if gotoPage != "" {
		if n, err := strconv.Atoi(gotoPage); err == nil {
			st, _ = console.OnPageChange(st, console.PageGoto, n)
		}
		return st, nil
	}

	switch a := console.PageAction(action); a {
	case "":
	case "size":
		if n, err := strconv.Atoi(size); err == nil {
			st, _ = console.OnPageSizeChange(st, n)
		} else {
			st.Status = "Error: invalid page size " + strconv.Quote(size)
		}
	default:
		st, _ = console.OnPageChange(st, a, 0)
	}
	return st, nil
}

// handleClear empties a session and returns to its page
func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	_, found := s.sessions.update(id, func(st console.State) console.State {
		st, _ = console.OnClear(st)
		return st
	})
	if !found {
		s.writeError(w, http.StatusNotFound, "Result not found")
		return
	}
	http.Redirect(w, r, resultPath(id), http.StatusSeeOther)
}

// exportOf resolves the session and export format of a download or raw
// request. Without a format parameter the Accept header decides.
func (s *Server) exportOf(w http.ResponseWriter, r *http.Request) (*render.Export, bool) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return nil, false
	}
	state, found := s.sessions.get(id)
	if !found {
		s.writeError(w, http.StatusNotFound, "Result not found")
		return nil, false
	}
	if state.Result == nil {
		s.writeError(w, http.StatusConflict, console.StatusNoResults)
		return nil, false
	}

	format := render.Format(strings.ToLower(r.URL.Query().Get("format")))
	if format == "" {
		format = s.negotiateFormat(r.Header.Get("Accept"))
	}

	export, err := render.Download(format, state.Result, state.Options.MaxGraphBindings)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return export, true
}

// handleDownload sends a result as a file attachment
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	export, ok := s.exportOf(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", export.MIMEType+"; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(export.Content) // #nosec G104 - error writing response is logged elsewhere if needed
}

// handleRaw shows a result verbatim in a minimal HTML page
func (s *Server) handleRaw(w http.ResponseWriter, r *http.Request) {
	export, ok := s.exportOf(w, r)
	if !ok {
		return
	}
	writeHTML(w, http.StatusOK, render.RawDocument(export))
}

// handleDatasets lists the selectable datasets
func (s *Server) handleDatasets(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.datasets.ListDatasets(r.Context()))
}

// handleHistory lists recent queries, newest first
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeError(w, http.StatusNotFound, "Query history is disabled")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, http.StatusBadRequest, "Invalid 'limit' parameter")
			return
		}
		limit = n
	}

	entries, err := s.history.List(limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, entries)
}

// handleAPIGraph returns the graph model of a result as JSON
func (s *Server) handleAPIGraph(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	state, found := s.sessions.get(id)
	if !found {
		s.writeError(w, http.StatusNotFound, "Result not found")
		return
	}
	if state.Result == nil {
		s.writeError(w, http.StatusConflict, console.StatusNoResults)
		return
	}

	g := state.Graph
	if g == nil {
		g = render.ExtractGraph(state.Result, state.Options.MaxGraphBindings)
	}
	s.writeJSON(w, http.StatusOK, g)
}

func (s *Server) recentHistory() []history.Entry {
	if s.history == nil {
		return nil
	}
	entries, err := s.history.List(historyOnPage)
	if err != nil {
		log.Printf("Failed to list query history: %v", err)
		return nil
	}
	return entries
}

func (s *Server) writePage(w http.ResponseWriter, page consolePage) {
	var b strings.Builder
	if err := page.write(&b); err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Render error: %v", err))
		return
	}
	writeHTML(w, http.StatusOK, b.String())
}

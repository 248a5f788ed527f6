package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/roach88/updatelog/internal/record"
)

// MeetingRequest is the body of POST and PUT /api/meetings.
type MeetingRequest struct {
	Client          string `json:"client" validate:"required,max=200"`
	PeopleConnected string `json:"people_connected"`
	Actions         string `json:"actions"`
	NextMeeting     string `json:"next_meeting"`
	Address         string `json:"address"`
	ActionsTaken    string `json:"actions_taken"`
	MeetingDate     string `json:"meeting_date"`
}

func (m MeetingRequest) content() record.Content {
	return record.Content{
		PeopleConnected: m.PeopleConnected,
		Actions:         m.Actions,
		NextMeeting:     m.NextMeeting,
		Address:         m.Address,
		ActionsTaken:    m.ActionsTaken,
		MeetingDate:     m.MeetingDate,
	}
}

// BulkDeleteRequest is the body of POST /api/meetings/bulk-delete.
type BulkDeleteRequest struct {
	IDs []int64 `json:"meeting_ids" validate:"required,min=1,dive,gt=0"`
}

// ReorderRequest is the body of POST /api/meetings/reorder.
type ReorderRequest struct {
	DraggedID int64 `json:"dragged_id" validate:"required,gt=0"`
	TargetID  int64 `json:"target_id" validate:"required,gt=0"`
}

// RenumberRequest is the body of POST /api/meetings/renumber. An empty
// client renumbers every client.
type RenumberRequest struct {
	Client string `json:"client"`
}

// ClientResponse is one entry of GET /api/clients.
type ClientResponse struct {
	Name string `json:"name"`
}

// AddressResponse is one entry of GET /api/clients/{client}/addresses.
type AddressResponse struct {
	Address string `json:"address"`
}

// StatsResponse is the body of GET /api/dashboard/stats.
type StatsResponse struct {
	TotalClients  int `json:"total_clients"`
	TotalMeetings int `json:"total_meetings"`
}

// listMeetings handles GET /api/meetings?client=. The client parameter
// matches any label containing it, ignoring case.
func (s *Server) listMeetings(w http.ResponseWriter, r *http.Request) {
	records, err := s.engine.List(r.Context(), record.Filter{ClientContains: r.URL.Query().Get("client")})
	if err != nil {
		s.respondEngineError(w, r, "list meetings", err)
		return
	}
	s.respondJSON(w, http.StatusOK, records)
}

// listGroups handles GET /api/groups?client=.
func (s *Server) listGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.engine.Groups(r.Context(), record.Filter{ClientContains: r.URL.Query().Get("client")})
	if err != nil {
		s.respondEngineError(w, r, "list groups", err)
		return
	}
	s.respondJSON(w, http.StatusOK, groups)
}

func (s *Server) getMeeting(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	rec, err := s.engine.Get(r.Context(), id)
	if err != nil {
		s.respondEngineError(w, r, "get meeting", err)
		return
	}
	s.respondJSON(w, http.StatusOK, rec)
}

func (s *Server) createMeeting(w http.ResponseWriter, r *http.Request) {
	var req MeetingRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	rec, err := s.engine.Create(r.Context(), req.Client, req.content())
	if err != nil {
		s.respondEngineError(w, r, "create meeting", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, rec)
}

func (s *Server) updateMeeting(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var req MeetingRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	rec, err := s.engine.Update(r.Context(), id, req.Client, req.content())
	if err != nil {
		s.respondEngineError(w, r, "update meeting", err)
		return
	}
	s.respondJSON(w, http.StatusOK, rec)
}

func (s *Server) deleteMeeting(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	n, err := s.engine.Delete(r.Context(), id)
	if err != nil {
		s.respondEngineError(w, r, "delete meeting", err)
		return
	}
	s.respondJSON(w, http.StatusOK, MessageResponse{Message: "Meeting deleted successfully", Count: n})
}

func (s *Server) bulkDelete(w http.ResponseWriter, r *http.Request) {
	var req BulkDeleteRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	n, err := s.engine.BulkDelete(r.Context(), req.IDs)
	if err != nil {
		s.respondEngineError(w, r, "delete meetings", err)
		return
	}
	s.respondJSON(w, http.StatusOK, MessageResponse{Message: "Meetings deleted successfully", Count: n})
}

func (s *Server) reorder(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	n, err := s.engine.Reorder(r.Context(), req.DraggedID, req.TargetID)
	if err != nil {
		s.respondEngineError(w, r, "reorder meetings", err)
		return
	}
	s.respondJSON(w, http.StatusOK, MessageResponse{Message: "Reordered successfully", Count: n})
}

func (s *Server) renumber(w http.ResponseWriter, r *http.Request) {
	var req RenumberRequest
	if r.ContentLength != 0 && !s.decodeJSON(w, r, &req) {
		return
	}
	n, err := s.engine.Renumber(r.Context(), req.Client)
	if err != nil {
		s.respondEngineError(w, r, "renumber meetings", err)
		return
	}
	s.respondJSON(w, http.StatusOK, MessageResponse{Message: "Renumbered successfully", Count: n})
}

func (s *Server) listClients(w http.ResponseWriter, r *http.Request) {
	clients, err := s.engine.Clients(r.Context())
	if err != nil {
		s.respondEngineError(w, r, "list clients", err)
		return
	}
	out := make([]ClientResponse, len(clients))
	for i, c := range clients {
		out[i] = ClientResponse{Name: c}
	}
	s.respondJSON(w, http.StatusOK, out)
}

// clientAddresses handles GET /api/clients/{client}/addresses: the distinct
// non-empty addresses on the client's records, in display order.
func (s *Server) clientAddresses(w http.ResponseWriter, r *http.Request) {
	records, err := s.engine.List(r.Context(), record.Filter{Client: chi.URLParam(r, "client")})
	if err != nil {
		s.respondEngineError(w, r, "list addresses", err)
		return
	}

	out := []AddressResponse{}
	seen := make(map[string]bool)
	for _, rec := range records {
		if rec.Address == "" || seen[rec.Address] {
			continue
		}
		seen[rec.Address] = true
		out = append(out, AddressResponse{Address: rec.Address})
	}
	s.respondJSON(w, http.StatusOK, out)
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	groups, err := s.engine.Groups(r.Context(), record.Filter{})
	if err != nil {
		s.respondEngineError(w, r, "load stats", err)
		return
	}

	var stats StatsResponse
	for _, g := range groups {
		if g.Client != "" {
			stats.TotalClients++
		}
		stats.TotalMeetings += len(g.Records)
	}
	s.respondJSON(w, http.StatusOK, stats)
}

package crm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateLeadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/leads/l1", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "follow_up", body["status"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"l1","title":"Wedding at Riverside","status":"follow_up"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-token")
	lead, err := c.UpdateLeadStatus(context.Background(), "l1", "follow_up")

	require.NoError(t, err)
	assert.Equal(t, "l1", lead.ID)
	assert.Equal(t, "follow_up", lead.Status)
}

func TestUpdateLeadStatusBusinessRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"insufficient permissions"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-token")
	_, err := c.UpdateLeadStatus(context.Background(), "l1", "converted")

	var rej *RejectionError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, "insufficient permissions", rej.Message)
}

func TestUpdateLeadStatusMessageField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message":"invalid status transition"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-token")
	_, err := c.UpdateLeadStatus(context.Background(), "l1", "converted")

	var rej *RejectionError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, "invalid status transition", rej.Message)
}

func TestUpdateLeadStatusOpaqueServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("upstream exploded"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-token")
	_, err := c.UpdateLeadStatus(context.Background(), "l1", "follow_up")

	require.Error(t, err)
	var rej *RejectionError
	assert.False(t, errors.As(err, &rej), "opaque errors must not be treated as business rejections")
}

func TestListLeads(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/leads", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"leads":[{"id":"l1","status":"new"},{"id":"l2","status":"lost"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-token")
	leads, err := c.ListLeads(context.Background())

	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, "l1", leads[0].ID)
	assert.Equal(t, "lost", leads[1].Status)
}

func TestGetLead(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/leads/l7", r.URL.Path)
		w.Write([]byte(`{"id":"l7","title":"Product launch","status":"quotation_sent"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-token")
	lead, err := c.GetLead(context.Background(), "l7")

	require.NoError(t, err)
	assert.Equal(t, "quotation_sent", lead.Status)
}

func TestListLeadsTransportError(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "test-token")
	_, err := c.ListLeads(context.Background())
	require.Error(t, err)
}

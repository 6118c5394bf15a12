package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscordSuccess(t *testing.T) {
	var got DiscordMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d := &Discord{SuccessURL: srv.URL}
	err := d.Success(context.Background(), "crop preparation finished", DiscordField{Name: "written", Value: "12", Inline: true})
	require.NoError(t, err)
	require.Len(t, got.Embeds, 1)
	assert.Equal(t, "crop preparation finished", got.Embeds[0].Description)
	assert.Equal(t, colorGreen, got.Embeds[0].Color)
	assert.Equal(t, "12", got.Embeds[0].Fields[0].Value)
}

func TestDiscordErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	d := &Discord{ErrorURL: srv.URL}
	err := d.Error(context.Background(), "3 crops failed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestDiscordDisabled(t *testing.T) {
	d := &Discord{}
	require.NoError(t, d.Success(context.Background(), "nothing to see"))
	require.NoError(t, d.Error(context.Background(), "nothing to see"))
}

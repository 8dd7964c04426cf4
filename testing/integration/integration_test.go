//go:build integration
// +build integration

package integration

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type config struct {
	serviceURL string
	cleanURL   string
	dbURL      string
	httpclient *http.Client
	dbPool     *pgxpool.Pool
}

var cfg config

func TestMain(m *testing.M) {
	cfg.serviceURL = GetEnvOrFail("SERVICE_URL")
	cfg.cleanURL = GetEnvOrFail("CLEAN_URL")
	cfg.dbURL = GetEnvOrFail("DB_URL")
	cfg.httpclient = &http.Client{Timeout: time.Second * 60}

	tCtx, cf := context.WithTimeout(context.Background(), time.Second*20)
	defer cf()
	WaitForOpenOrFail(tCtx, cfg.dbURL)
	WaitForOpenOrFail(tCtx, cfg.serviceURL)
	WaitForOpenOrFail(tCtx, cfg.cleanURL)
	waitForDB(tCtx, cfg.dbURL)

	var err error
	cfg.dbPool, err = pgxpool.New(tCtx, cfg.dbURL)
	if err != nil {
		log.Fatalf("FAIL: can't init db pool")
	}
	defer cfg.dbPool.Close()

	// inference mock - the docker compose points openai.url here
	l, ts := startMockService(9876)
	defer ts.Close()
	defer l.Close()

	os.Exit(m.Run())
}

func TestServiceLive(t *testing.T) {
	t.Parallel()
	CheckCode(t, Invoke(t, cfg.httpclient, NewRequest(t, http.MethodGet, cfg.serviceURL, "/live")), http.StatusOK)
}

func TestCleanLive(t *testing.T) {
	t.Parallel()
	CheckCode(t, Invoke(t, cfg.httpclient, NewRequest(t, http.MethodGet, cfg.cleanURL, "/live")), http.StatusOK)
}

func TestIngest_Unauthorized(t *testing.T) {
	t.Parallel()
	req := newIngestRequest(t, "audio.wav", "")
	CheckCode(t, Invoke(t, cfg.httpclient, req), http.StatusUnauthorized)
}

type ingestResponse struct {
	Success    bool   `json:"success"`
	Transcript string `json:"transcript"`
}

func TestIngest(t *testing.T) {
	token := newSession(t)
	req := newIngestRequest(t, "audio.wav", token)
	resp := CheckCode(t, Invoke(t, cfg.httpclient, req), http.StatusOK)
	var res ingestResponse
	Decode(t, resp, &res)
	assert.True(t, res.Success)
	assert.NotEmpty(t, res.Transcript)

	var status string
	err := cfg.dbPool.QueryRow(context.Background(),
		`SELECT processing_status FROM entry ORDER BY created_at DESC LIMIT 1`).Scan(&status)
	require.Nil(t, err)
	assert.Equal(t, "completed", status)
}

func TestClean_Delete(t *testing.T) {
	t.Parallel()
	req := NewRequest(t, http.MethodDelete, cfg.cleanURL, "/delete/"+uuid.NewString())
	CheckCode(t, Invoke(t, cfg.httpclient, req), http.StatusOK)
}

func newSession(t *testing.T) string {
	t.Helper()
	token := uuid.NewString()
	_, err := cfg.dbPool.Exec(context.Background(),
		`INSERT INTO auth.sessions(token, user_id, expires_at) VALUES($1, $2, $3)`,
		token, "test-user", time.Now().Add(time.Hour))
	require.Nil(t, err)
	return token
}

func newIngestRequest(t *testing.T, file, token string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, _ := writer.CreateFormFile("audio", file)
	_, _ = io.Copy(part, strings.NewReader("RIFF fake audio content"))
	_ = writer.WriteField("title", "integration run")
	writer.Close()
	req, err := http.NewRequest(http.MethodPost, cfg.serviceURL+"/reflections", body)
	require.Nil(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func startMockService(port int) (net.Listener, *httptest.Server) {
	l, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		log.Fatalf("can't start mock service: %v", err)
	}
	ts := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/audio/transcriptions":
			io.Copy(w, strings.NewReader(`{"text":"Today the demo went well."}`))
		case "/v1/responses":
			io.Copy(w, strings.NewReader(`{"output_text":"{\"meta\":{\"language\":\"en\",\"wordCount\":5},\"mood\":{\"overallSentiment\":0.4,\"moodLabel\":\"calm\"}}"}`))
		default:
			log.Printf("Unknown request to: " + r.URL.String())
		}
	}))

	ts.Listener.Close()
	ts.Listener = l

	ts.Start()
	log.Printf("started mock srv on port: %d", port)
	return l, ts
}

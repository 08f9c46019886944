package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vburojevic/logscope/internal/domain"
)

func TestResolvePath(t *testing.T) {
	cases := []struct {
		base, p, want string
	}{
		{"http://localhost:8000", "/metrics/summary", "http://localhost:8000/metrics/summary"},
		{"http://localhost:8000/", "/anomalies/", "http://localhost:8000/anomalies/"},
		{"http://gw.local/api", "metrics/daily", "http://gw.local/api/metrics/daily"},
		{"http://gw.local/api/", "/rca/", "http://gw.local/api/rca/"},
	}
	for _, tc := range cases {
		c := NewClient(tc.base, time.Second)
		assert.Equal(t, tc.want, c.resolvePath(tc.p), "%s + %s", tc.base, tc.p)
	}
}

func TestRequestHeaders(t *testing.T) {
	var got http.Header
	c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		respond(w, http.StatusOK, `[]`)
	})

	_, err := c.ListAnomalies(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Len(t, got.Get("X-Request-ID"), 36)
}

func TestListAnomalies(t *testing.T) {
	t.Run("decodes entries", func(t *testing.T) {
		var path string
		c := serve(t, func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.Path
			respond(w, http.StatusOK, `[
				{"id": 1, "timestamp": "2024-01-02T10:00:00", "type": "error_spike", "severity": "HIGH", "score": 0.93, "message": "spike", "log_id": 7},
				{"id": 2, "timestamp": "2024-01-02T11:00:00", "type": "latency", "severity": "low", "score": null, "message": null}
			]`)
		})

		list, err := c.ListAnomalies(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "/anomalies/", path)
		require.Len(t, list, 2)

		assert.Equal(t, domain.SeverityHigh, list[0].Severity)
		score, ok := list[0].ScoreValue()
		assert.True(t, ok)
		assert.InDelta(t, 0.93, score, 1e-9)
		assert.Equal(t, "spike", list[0].MessageText())
		require.NotNil(t, list[0].LogID)
		assert.Equal(t, 7, *list[0].LogID)

		assert.Nil(t, list[1].Score)
		assert.Nil(t, list[1].Message)
		assert.Nil(t, list[1].LogID)
	})

	t.Run("non-array bodies become empty lists", func(t *testing.T) {
		for _, body := range []string{`{"data": []}`, `null`, `"oops"`, `42`, `not json`} {
			c := serve(t, func(w http.ResponseWriter, r *http.Request) {
				respond(w, http.StatusOK, body)
			})
			list, err := c.ListAnomalies(context.Background())
			require.NoError(t, err, body)
			assert.NotNil(t, list, body)
			assert.Empty(t, list, body)
		}
	})
}

func TestMetricsSummary(t *testing.T) {
	t.Run("decodes counts", func(t *testing.T) {
		c := serve(t, func(w http.ResponseWriter, r *http.Request) {
			respond(w, http.StatusOK, `{
				"total_logs": 200, "error_count": 10, "error_rate": 0.05,
				"avg_response_time": 123.4, "stdev_response_time": 12.1,
				"severity": {"low": 2, "medium": 3, "high": 1, "critical": 0}
			}`)
		})

		s, err := c.MetricsSummary(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 200, s.TotalLogs)
		assert.Equal(t, 10, s.ErrorCount)
		assert.InDelta(t, 0.05, s.ErrorRate, 1e-9)
		assert.Equal(t, domain.SeverityCounts{Low: 2, Medium: 3, High: 1}, s.Severity)
		assert.Empty(t, s.Validate())
	})

	t.Run("missing severity keys count as zero", func(t *testing.T) {
		c := serve(t, func(w http.ResponseWriter, r *http.Request) {
			respond(w, http.StatusOK, `{"total_logs": 5, "severity": {"high": 2}}`)
		})
		s, err := c.MetricsSummary(context.Background())
		require.NoError(t, err)
		assert.Equal(t, domain.SeverityCounts{High: 2}, s.Severity)
	})

	t.Run("array body is a shape error", func(t *testing.T) {
		c := serve(t, func(w http.ResponseWriter, r *http.Request) {
			respond(w, http.StatusOK, `[]`)
		})
		_, err := c.MetricsSummary(context.Background())
		var shapeErr *ShapeError
		require.ErrorAs(t, err, &shapeErr)
		assert.Equal(t, PathMetricsSummary, shapeErr.Path)
	})
}

func TestDailyMetrics(t *testing.T) {
	c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, `[{"error_count": 4}, {"error_count": 0}, {}]`)
	})

	points, err := c.DailyMetrics(context.Background())
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, "Day 1", points[0].Label)
	assert.Equal(t, 4, points[0].ErrorCount)
	assert.Equal(t, "Day 3", points[2].Label)
	assert.Equal(t, 0, points[2].ErrorCount)
}

func TestTopErrors(t *testing.T) {
	t.Run("bare array", func(t *testing.T) {
		c := serve(t, func(w http.ResponseWriter, r *http.Request) {
			respond(w, http.StatusOK, `[{"endpoint": "/login", "error_count": 9, "error_percent": 45.0}]`)
		})
		list, err := c.TopErrors(context.Background())
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "/login", list[0].Endpoint)
		assert.Equal(t, 9, list[0].ErrorCount)
		require.NotNil(t, list[0].ErrorPercent)
	})

	t.Run("data envelope with aliases", func(t *testing.T) {
		c := serve(t, func(w http.ResponseWriter, r *http.Request) {
			respond(w, http.StatusOK, `{"data": [{"path": "/pay", "count": 3}, {"count": 1}]}`)
		})
		list, err := c.TopErrors(context.Background())
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "/pay", list[0].Endpoint)
		assert.Equal(t, 3, list[0].ErrorCount)
		assert.Equal(t, "unknown", list[1].Endpoint)
		assert.Nil(t, list[1].ErrorPercent)
	})
}

func TestAuxiliaryLists(t *testing.T) {
	c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case PathTopAnomalyTypes:
			respond(w, http.StatusOK, `[{"type": "error_spike", "count": 4, "percent": 66.7}]`)
		case PathSlowestEndpoints:
			respond(w, http.StatusOK, `[{"endpoint": "/search", "avg": 812.5, "p95": 1400, "count": 20}]`)
		case PathDowntimeIndicators:
			respond(w, http.StatusOK, `[{"endpoint": "/pay", "issues": 6, "total_hits": 8, "severity": "critical", "downtime_score": 0.75, "message": "mostly failing"}]`)
		case PathParsedLogs:
			assert.Equal(t, "25", r.URL.Query().Get("limit"))
			respond(w, http.StatusOK, `[{"id": 1, "level": "ERROR", "message": "boom", "endpoint": "/pay", "response_time": 30.5}]`)
		default:
			respond(w, http.StatusNotFound, `{"detail": "Not Found"}`)
		}
	})
	ctx := context.Background()

	types, err := c.TopAnomalyTypes(ctx)
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.Equal(t, "error_spike", types[0].Type)

	slow, err := c.SlowestEndpoints(ctx)
	require.NoError(t, err)
	require.Len(t, slow, 1)
	assert.InDelta(t, 1400.0, slow[0].P95, 1e-9)

	down, err := c.DowntimeIndicators(ctx)
	require.NoError(t, err)
	require.Len(t, down, 1)
	assert.Equal(t, domain.SeverityCritical, down[0].Severity)

	logs, err := c.ParsedLogs(ctx, 25)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "boom", logs[0].Message)
}

func TestRootCause(t *testing.T) {
	c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathRootCause, r.URL.Path)
		respond(w, http.StatusOK, `{"status": "ok", "analysis": {"top_endpoint": "/pay"}}`)
	})
	rc, err := c.RootCause(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", rc.Status)
	assert.JSONEq(t, `{"top_endpoint": "/pay"}`, string(rc.Analysis))
}

func TestDetectionTriggers(t *testing.T) {
	var calls []string
	c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		calls = append(calls, r.URL.Path)
		switch r.URL.Path {
		case PathSecurityDetection:
			respond(w, http.StatusOK, `{"status": "security detection completed", "total_detected": 3}`)
		default:
			respond(w, http.StatusOK, `{"status": "done", "detected": 5}`)
		}
	})
	ctx := context.Background()

	res, err := c.RunDetection(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Count())

	res, err = c.RunSecurityDetection(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Count())

	_, err = c.RunErrorSpikeDetection(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{PathRunDetection, PathSecurityDetection, PathErrorSpike}, calls)
}

func TestUploadLog(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "app.log")
	require.NoError(t, os.WriteFile(logPath, []byte("2024-01-02 ERROR boom\n"), 0644))

	var gotName, gotContent string
	c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathUpload, r.URL.Path)
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))
		f, hdr, err := r.FormFile(UploadField)
		if !assert.NoError(t, err) {
			respond(w, http.StatusBadRequest, `{"detail": "no file"}`)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		gotName = hdr.Filename
		gotContent = string(data)
		respond(w, http.StatusOK, `{"status": "uploaded", "saved": 1}`)
	})

	ack, err := c.UploadLog(context.Background(), domain.UploadedFile{Path: logPath})
	require.NoError(t, err)
	assert.Equal(t, 1, ack.Saved)
	assert.Equal(t, "app.log", gotName)
	assert.Equal(t, "2024-01-02 ERROR boom\n", gotContent)
}

func TestUploadLogMissingFile(t *testing.T) {
	c := NewClient("http://localhost:8000", time.Second)
	_, err := c.UploadLog(context.Background(), domain.UploadedFile{Path: "/does/not/exist.log"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestErrorResponses(t *testing.T) {
	t.Run("detail string", func(t *testing.T) {
		c := serve(t, func(w http.ResponseWriter, r *http.Request) {
			respond(w, http.StatusInternalServerError, `{"detail": "database unavailable"}`)
		})
		_, err := c.MetricsSummary(context.Background())
		require.Error(t, err)
		assert.Equal(t, 500, StatusCode(err))
		assert.Equal(t, "database unavailable", ServerMessage(err))
		assert.False(t, IsNetworkError(err))
	})

	t.Run("validation list", func(t *testing.T) {
		c := serve(t, func(w http.ResponseWriter, r *http.Request) {
			respond(w, http.StatusUnprocessableEntity, `{"detail": [{"msg": "field required"}, {"msg": "bad type"}]}`)
		})
		_, err := c.RunDetection(context.Background())
		assert.Equal(t, "field required; bad type", ServerMessage(err))
	})

	t.Run("no message", func(t *testing.T) {
		c := serve(t, func(w http.ResponseWriter, r *http.Request) {
			respond(w, http.StatusBadGateway, `<html>bad gateway</html>`)
		})
		_, err := c.ListAnomalies(context.Background())
		require.Error(t, err)
		assert.Empty(t, ServerMessage(err))
		assert.Contains(t, err.Error(), "status 502")
	})

	t.Run("transport failure", func(t *testing.T) {
		obs := &recordingObserver{}
		c := NewClient("http://backend.invalid", time.Second,
			WithHTTPClient(newTestClient(func(*http.Request) (*http.Response, error) {
				return nil, errors.New("connection refused")
			})),
			WithObserver(obs),
		)
		_, err := c.Ping(context.Background())
		require.Error(t, err)
		assert.True(t, IsNetworkError(err))
		assert.Equal(t, 0, StatusCode(err))
		assert.Equal(t, []int{0}, obs.statuses)
	})

	t.Run("missing base url", func(t *testing.T) {
		c := NewClient("", time.Second)
		_, err := c.ListAnomalies(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "base URL")
	})
}

func TestObserverSeesEndpoints(t *testing.T) {
	obs := &recordingObserver{}
	c := NewClient("http://backend.local", time.Second,
		WithHTTPClient(newTestClient(func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(`{"message": "Log analyzer up"}`)),
				Header:     make(http.Header),
			}, nil
		})),
		WithObserver(obs),
	)

	msg, err := c.Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Log analyzer up", msg)
	assert.Equal(t, []string{PathRoot}, obs.endpoints)
	assert.Equal(t, []int{200}, obs.statuses)
}

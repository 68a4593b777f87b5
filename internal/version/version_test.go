package version

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.2.0", "1.10.0", -1},
		{"2.0", "2.0.0", 0},
		{"3.1.5", "3.1", 1},
		{"1.0.0", "1.0.0", 0},
		{"v1.4.2", "1.4.2", 0},
		{"1.x.3", "1.0.3", 0},
		{"", "0.0.1", -1},
		{"10", "9.9.9", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, Compare(tt.a, tt.b))
			assert.Equal(t, -tt.want, Compare(tt.b, tt.a), "compare must be antisymmetric")
		})
	}
}

func TestVersionsFor(t *testing.T) {
	v := Versions{Android: "1.2.0", IOS: "1.3.0"}
	assert.Equal(t, "1.2.0", v.For("android"))
	assert.Equal(t, "1.3.0", v.For("ios"))
	assert.Equal(t, "1.3.0", v.For("IOS"))
}

func TestClientFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"android":"1.5.0","ios":"1.6.0"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	minimum, err := c.Minimum(context.Background(), "ios")
	require.NoError(t, err)
	assert.Equal(t, "1.6.0", minimum)
}

func TestClientBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Fetch(context.Background())
	assert.ErrorIs(t, err, ErrBadStatus)
}

type navigatorStub struct{ urls []string }

func (n *navigatorStub) Navigate(url string) { n.urls = append(n.urls, url) }

type updaterStub struct {
	calls int
	err   error
}

func (u *updaterStub) Sync(ctx context.Context) error {
	u.calls++
	return u.err
}

type sourceStub struct {
	min string
	err error
}

func (s sourceStub) Minimum(ctx context.Context, platform string) (string, error) {
	return s.min, s.err
}

func newGate(src Source, nav *navigatorStub, upd *updaterStub) *Gate {
	return &Gate{
		Source:        src,
		Navigator:     nav,
		Updater:       upd,
		Platform:      "android",
		Current:       "1.4.0",
		UpdateInfoURL: "https://content.example/app_update_info.php",
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestGateCheck(t *testing.T) {
	t.Run("OutdatedRedirectsOnce", func(t *testing.T) {
		nav, upd := &navigatorStub{}, &updaterStub{}
		g := newGate(sourceStub{min: "1.10.0"}, nav, upd)

		assert.Equal(t, DecisionUpdate, g.Check(context.Background()))
		assert.Equal(t, []string{"https://content.example/app_update_info.php"}, nav.urls)
		assert.Zero(t, upd.calls)
	})

	t.Run("CurrentSyncs", func(t *testing.T) {
		nav, upd := &navigatorStub{}, &updaterStub{}
		g := newGate(sourceStub{min: "1.4"}, nav, upd)

		assert.Equal(t, DecisionProceed, g.Check(context.Background()))
		assert.Empty(t, nav.urls)
		assert.Equal(t, 1, upd.calls)
	})

	t.Run("SyncErrorStillProceeds", func(t *testing.T) {
		nav, upd := &navigatorStub{}, &updaterStub{err: errors.New("offline")}
		g := newGate(sourceStub{min: "1.0.0"}, nav, upd)

		assert.Equal(t, DecisionProceed, g.Check(context.Background()))
		assert.Equal(t, 1, upd.calls)
	})

	t.Run("FetchErrorFailsOpen", func(t *testing.T) {
		nav, upd := &navigatorStub{}, &updaterStub{}
		g := newGate(sourceStub{err: errors.New("timeout")}, nav, upd)

		assert.Equal(t, DecisionUnreachable, g.Check(context.Background()))
		assert.Empty(t, nav.urls)
		assert.Zero(t, upd.calls)
	})

	t.Run("AgainstHTTPEndpoint", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"android":"2.0.0","ios":"1.0.0"}`))
		}))
		defer srv.Close()

		nav, upd := &navigatorStub{}, &updaterStub{}
		g := newGate(NewClient(srv.URL), nav, upd)

		assert.Equal(t, DecisionUpdate, g.Check(context.Background()))
		assert.Len(t, nav.urls, 1)
	})
}

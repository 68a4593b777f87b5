package natsbus

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"coquiz/internal/bridge"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentRequest struct {
	subject string
	data    string
}

// fakeConn answers requests from a subject -> reply table
type fakeConn struct {
	replies   map[string]string
	err       error
	requests  []sentRequest
	published []sentRequest
}

func (f *fakeConn) RequestWithContext(ctx context.Context, subject string, data []byte) (*nats.Msg, error) {
	f.requests = append(f.requests, sentRequest{subject: subject, data: string(data)})
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("request without deadline")
	}
	if f.err != nil {
		return nil, f.err
	}
	return &nats.Msg{Subject: subject, Data: []byte(f.replies[subject])}, nil
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	f.published = append(f.published, sentRequest{subject: subject, data: string(data)})
	return nil
}

func newTestBus(conn *fakeConn) *Bus {
	return newBus(conn, conn, "coquiz", time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testVendor() Vendor {
	return Vendor{
		RewardedUnit:   "unit-rewarded",
		FullscreenUnit: "unit-fullscreen",
		Wallet:         WalletMetadata{Name: "COQUIZ", Description: "COQUIZ", URL: "https://www.coquiz.space"},
	}
}

func TestSubjects(t *testing.T) {
	b := newTestBus(&fakeConn{})
	assert.Equal(t, "coquiz.cap.ads.show", b.capabilitySubject("ads", "show"))
	assert.Equal(t, "coquiz.event.>", b.eventSubject(">"))
}

func TestCapabilityRequests(t *testing.T) {
	conn := &fakeConn{replies: map[string]string{
		"coquiz.cap.ads.is_loaded":    `{"data":{"loaded":true}}`,
		"coquiz.cap.push.token":       `{"data":{"token":"tok-1"}}`,
		"coquiz.cap.device.unique_id": `{"data":{"id":"device-9"}}`,
		"coquiz.cap.wallet.address":   `{"data":{"address":"0xabc"}}`,
	}}
	caps := newTestBus(conn).Capabilities(testVendor())
	ctx := context.Background()

	assert.True(t, caps.Ads.IsLoaded(ctx, bridge.AdFullscreen))
	assert.JSONEq(t, `{"kind":"fullscreen","unit":"unit-fullscreen"}`, conn.requests[0].data)

	token, err := caps.Push.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)

	id, err := caps.Device.UniqueID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "device-9", id)

	assert.Equal(t, "0xabc", caps.Wallet.Address(ctx))

	require.NoError(t, caps.Vibration.VibratePattern(ctx, []int{400, 500, 400}))
	last := conn.requests[len(conn.requests)-1]
	assert.Equal(t, "coquiz.cap.vibration.pattern", last.subject)
	assert.JSONEq(t, `{"pattern":[400,500,400]}`, last.data)

	require.NoError(t, caps.Wallet.Open(ctx))
	last = conn.requests[len(conn.requests)-1]
	assert.Equal(t, "coquiz.cap.wallet.open", last.subject)
	assert.Contains(t, last.data, `"name":"COQUIZ"`)
}

func TestRemoteError(t *testing.T) {
	conn := &fakeConn{replies: map[string]string{
		"coquiz.cap.ads.show": `{"error":"no fill"}`,
	}}
	caps := newTestBus(conn).Capabilities(testVendor())

	err := caps.Ads.Show(context.Background(), bridge.AdRewarded)
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "no fill", remote.Message)
	assert.Equal(t, "coquiz.cap.ads.show", remote.Subject)
}

func TestTransportErrorDegrades(t *testing.T) {
	conn := &fakeConn{err: nats.ErrTimeout}
	caps := newTestBus(conn).Capabilities(testVendor())
	ctx := context.Background()

	assert.False(t, caps.Ads.IsLoaded(ctx, bridge.AdRewarded))
	assert.False(t, caps.Wallet.IsConnected(ctx))
	assert.ErrorIs(t, caps.Audio.Stop(ctx), nats.ErrTimeout)
}

func TestInvalidReply(t *testing.T) {
	conn := &fakeConn{replies: map[string]string{"coquiz.cap.push.token": `not json`}}
	_, err := newTestBus(conn).Capabilities(testVendor()).Push.Token(context.Background())
	assert.Error(t, err)
}

func TestPublishNavigate(t *testing.T) {
	conn := &fakeConn{}
	newTestBus(conn).PublishNavigate("https://content.example/update")

	require.Len(t, conn.published, 1)
	assert.Equal(t, "coquiz.shell.navigate", conn.published[0].subject)
	assert.JSONEq(t, `{"url":"https://content.example/update"}`, conn.published[0].data)
}

func TestUpdaterSync(t *testing.T) {
	conn := &fakeConn{}
	require.NoError(t, newTestBus(conn).Updater().Sync(context.Background()))
	assert.Equal(t, "coquiz.cap.update.sync", conn.requests[0].subject)
}

// recordingSink remembers which callback fired and with what
type recordingSink struct {
	calls []string
	last  any
}

func (r *recordingSink) PurchaseUpdated(ctx context.Context, p bridge.Purchase) {
	r.calls = append(r.calls, "purchase_updated")
	r.last = p
}
func (r *recordingSink) PurchaseFailed(ctx context.Context, code string) {
	r.calls = append(r.calls, "purchase_failed")
	r.last = code
}
func (r *recordingSink) AdClosed(ctx context.Context, kind bridge.AdKind, earned bool) {
	r.calls = append(r.calls, "ad_closed")
	r.last = []any{kind, earned}
}
func (r *recordingSink) WalletChanged(ctx context.Context, address string) {
	r.calls = append(r.calls, "wallet_changed")
	r.last = address
}
func (r *recordingSink) BackPressed(ctx context.Context) {
	r.calls = append(r.calls, "back_pressed")
}
func (r *recordingSink) AppStateChanged(ctx context.Context, state bridge.AppState) {
	r.calls = append(r.calls, "app_state")
	r.last = state
}
func (r *recordingSink) BackgroundTrackFinished(ctx context.Context) {
	r.calls = append(r.calls, "track_finished")
}
func (r *recordingSink) ConnectivityChanged(ctx context.Context, online bool) {
	r.calls = append(r.calls, "connectivity")
	r.last = online
}

func TestDispatchEvent(t *testing.T) {
	b := newTestBus(&fakeConn{})
	ctx := context.Background()

	purchase, err := json.Marshal(bridge.Purchase{ProductID: "coin_100", TransactionID: "tx-1", Receipt: "r", Platform: "ios"})
	require.NoError(t, err)

	tests := []struct {
		name     string
		subject  string
		data     string
		wantCall string
		wantLast any
	}{
		{"purchase", "coquiz.event.purchase_updated", string(purchase), "purchase_updated",
			bridge.Purchase{ProductID: "coin_100", TransactionID: "tx-1", Receipt: "r", Platform: "ios"}},
		{"purchase failed", "coquiz.event.purchase_failed", `{"code":"E_USER_CANCELED"}`, "purchase_failed", "E_USER_CANCELED"},
		{"ad closed", "coquiz.event.ad_closed", `{"kind":"rewarded","earned":true}`, "ad_closed", []any{bridge.AdRewarded, true}},
		{"wallet", "coquiz.event.wallet_changed", `{"address":""}`, "wallet_changed", ""},
		{"back", "coquiz.event.back_pressed", ``, "back_pressed", nil},
		{"app state", "coquiz.event.app_state", `{"state":"background"}`, "app_state", bridge.AppBackground},
		{"track", "coquiz.event.track_finished", ``, "track_finished", nil},
		{"connectivity", "coquiz.event.connectivity", `{"online":false}`, "connectivity", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &recordingSink{}
			require.NoError(t, b.dispatchEvent(ctx, tt.subject, []byte(tt.data), sink))
			assert.Equal(t, []string{tt.wantCall}, sink.calls)
			assert.Equal(t, tt.wantLast, sink.last)
		})
	}
}

func TestDispatchEventRejects(t *testing.T) {
	b := newTestBus(&fakeConn{})
	ctx := context.Background()

	cases := map[string][2]string{
		"unknown event":   {"coquiz.event.teleport", `{}`},
		"foreign subject": {"other.event.back_pressed", ``},
		"bad payload":     {"coquiz.event.purchase_failed", `{"code":`},
		"missing payload": {"coquiz.event.wallet_changed", ``},
		"bad ad kind":     {"coquiz.event.ad_closed", `{"kind":"banner"}`},
		"bad app state":   {"coquiz.event.app_state", `{"state":"asleep"}`},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			sink := &recordingSink{}
			assert.Error(t, b.dispatchEvent(ctx, c[0], []byte(c[1]), sink))
			assert.Empty(t, sink.calls)
		})
	}
}

func TestSubscribeRequiresConnection(t *testing.T) {
	b := newTestBus(&fakeConn{})
	assert.Error(t, b.Subscribe(context.Background(), &recordingSink{}))
	assert.False(t, b.IsConnected())
}

package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"
)

// recorder collects capability calls in order, e.g. "audio.play:bgm_normal".
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *recorder) count(call string) int {
	n := 0
	for _, c := range r.list() {
		if c == call {
			n++
		}
	}
	return n
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

type fakeAds struct {
	rec     *recorder
	loaded  map[AdKind]bool
	showErr error
	loadErr error
}

func (f *fakeAds) Init(ctx context.Context) error { f.rec.add("ads.init"); return nil }
func (f *fakeAds) IsLoaded(ctx context.Context, kind AdKind) bool {
	return f.loaded[kind]
}
func (f *fakeAds) Load(ctx context.Context, kind AdKind) error {
	f.rec.add("ads.load:" + string(kind))
	return f.loadErr
}
func (f *fakeAds) Show(ctx context.Context, kind AdKind) error {
	f.rec.add("ads.show:" + string(kind))
	return f.showErr
}

type fakePurchases struct {
	rec       *recorder
	skus      []string
	buyErr    error
	finishErr error
}

func (f *fakePurchases) Init(ctx context.Context) error { f.rec.add("purchases.init"); return nil }
func (f *fakePurchases) FetchProducts(ctx context.Context, skus []string) error {
	f.skus = skus
	f.rec.add("purchases.fetch")
	return nil
}
func (f *fakePurchases) RequestPurchase(ctx context.Context, sku string) error {
	f.rec.add("purchases.request:" + sku)
	return f.buyErr
}
func (f *fakePurchases) FinishTransaction(ctx context.Context, p Purchase) error {
	f.rec.add("purchases.finish:" + p.TransactionID)
	return f.finishErr
}

type fakeWallet struct {
	rec       *recorder
	connected bool
	address   string
	openErr   error
}

func (f *fakeWallet) IsConnected(ctx context.Context) bool { return f.connected }
func (f *fakeWallet) Address(ctx context.Context) string   { return f.address }
func (f *fakeWallet) Open(ctx context.Context) error {
	f.rec.add("wallet.open")
	return f.openErr
}

type fakePush struct {
	rec      *recorder
	token    string
	tokenErr error
}

func (f *fakePush) RequestPermission(ctx context.Context) error {
	f.rec.add("push.permission")
	return nil
}
func (f *fakePush) Register(ctx context.Context) error { f.rec.add("push.register"); return nil }
func (f *fakePush) Token(ctx context.Context) (string, error) {
	f.rec.add("push.token")
	return f.token, f.tokenErr
}
func (f *fakePush) DeleteToken(ctx context.Context) error { f.rec.add("push.delete"); return nil }

type fakeDevice struct {
	id  string
	err error
}

func (f *fakeDevice) UniqueID(ctx context.Context) (string, error) { return f.id, f.err }

type fakeAudio struct{ rec *recorder }

func (f *fakeAudio) Play(ctx context.Context, track string) error {
	f.rec.add("audio.play:" + track)
	return nil
}
func (f *fakeAudio) Stop(ctx context.Context) error   { f.rec.add("audio.stop"); return nil }
func (f *fakeAudio) Pause(ctx context.Context) error  { f.rec.add("audio.pause"); return nil }
func (f *fakeAudio) Resume(ctx context.Context) error { f.rec.add("audio.resume"); return nil }

type fakeSound struct{ rec *recorder }

func (f *fakeSound) PlayEffect(ctx context.Context, file string) error {
	f.rec.add("sound.play:" + file)
	return nil
}

type fakeVibrator struct {
	rec      *recorder
	patterns [][]int
}

func (f *fakeVibrator) Vibrate(ctx context.Context) error {
	f.rec.add("vibrate.default")
	return nil
}
func (f *fakeVibrator) VibratePattern(ctx context.Context, pattern []int) error {
	f.rec.add("vibrate.pattern")
	f.patterns = append(f.patterns, pattern)
	return nil
}

type fakeAnalytics struct{ rec *recorder }

func (f *fakeAnalytics) SetUserProperty(ctx context.Context, name, value string) error {
	f.rec.add("analytics.property:" + name + "=" + value)
	return nil
}
func (f *fakeAnalytics) LogEvent(ctx context.Context, name string) error {
	f.rec.add("analytics.event:" + name)
	return nil
}

type fakeApp struct{ rec *recorder }

func (f *fakeApp) SetLoading(ctx context.Context, visible bool) error {
	if visible {
		f.rec.add("app.loading:on")
	} else {
		f.rec.add("app.loading:off")
	}
	return nil
}
func (f *fakeApp) Exit(ctx context.Context) error { f.rec.add("app.exit"); return nil }

// fakeView captures every message posted to the content.
type fakeView struct {
	mu     sync.Mutex
	msgs   []Message
	closed bool
	err    error
}

func (v *fakeView) PostMessage(data []byte) error {
	if v.err != nil {
		return v.err
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.msgs = append(v.msgs, msg)
	return nil
}

func (v *fakeView) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	return nil
}

func (v *fakeView) messages() []Message {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]Message(nil), v.msgs...)
}

func (v *fakeView) ofType(t CommandType) []Message {
	var out []Message
	for _, m := range v.messages() {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}

// fakeClock records scheduled callbacks; tests fire them explicitly.
type fakeClock struct {
	mu      sync.Mutex
	delays  []time.Duration
	pending []func()
}

type fakeTimer struct{}

func (fakeTimer) Stop() bool { return false }

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.delays = append(c.delays, d)
	c.pending = append(c.pending, f)
	return fakeTimer{}
}

// fire runs every pending callback, outside the clock lock.
func (c *fakeClock) fire() int {
	c.mu.Lock()
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()
	for _, f := range pending {
		f()
	}
	return len(pending)
}

var errBoom = errors.New("boom")

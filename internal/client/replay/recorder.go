package replay

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Sent is one recorded input: the keys sent and the tick they were sent in.
type Sent struct {
	Tick int      `yaml:"tick"`
	Keys []string `yaml:"keys"`
}

func (s Sent) String() string {
	return fmt.Sprintf("%d:%s", s.Tick, strings.Join(s.Keys, "+"))
}

// Recorder is a client.Injector that records and logs every send instead of
// delivering it.
type Recorder struct {
	mu     sync.Mutex
	logger *zap.Logger
	tick   int
	sent   []Sent
}

// NewRecorder returns an empty Recorder.
//
// Precondition: logger must be non-nil.
func NewRecorder(logger *zap.Logger) *Recorder {
	return &Recorder{logger: logger}
}

// SetTick stamps subsequent sends with tick.
func (r *Recorder) SetTick(tick int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tick = tick
}

// Send records keys.
func (r *Recorder) Send(keys ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, Sent{Tick: r.tick, Keys: append([]string(nil), keys...)})
	r.logger.Info("send", zap.Int("tick", r.tick), zap.Strings("keys", keys))
}

// Sent returns a copy of everything recorded so far.
func (r *Recorder) Sent() []Sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.sent)
}

// Check verifies that expect occurs, in order, within the recorded sends.
// Other sends may be interleaved.
func (r *Recorder) Check(expect []Sent) error {
	sent := r.Sent()
	i := 0
	for _, s := range sent {
		if i < len(expect) && s.Tick == expect[i].Tick && slices.Equal(s.Keys, expect[i].Keys) {
			i++
		}
	}
	if i < len(expect) {
		return fmt.Errorf("replay: expected send %s not found in order (matched %d of %d)", expect[i], i, len(expect))
	}
	return nil
}

package normalizer

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/logdex/internal/domain/index/schema"
	"github.com/kailas-cloud/logdex/internal/domain/logentry"
)

// mockSession implements logentry.Session for tests.
type mockSession struct {
	getFn    func(ctx context.Context, key string) (logentry.Entry, error)
	closeErr error
	closed   int
	gets     int
}

func (m *mockSession) GetByKey(ctx context.Context, key string) (logentry.Entry, error) {
	m.gets++
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return logentry.Entry{}, nil
}

func (m *mockSession) Close() error {
	m.closed++
	return m.closeErr
}

type mockOpener struct {
	session *mockSession
	openErr error
	opened  int
}

func (m *mockOpener) OpenSession(_ context.Context) (logentry.Session, error) {
	m.opened++
	if m.openErr != nil {
		return nil, m.openErr
	}
	return m.session, nil
}

type countingSkips struct{ total float64 }

func (c *countingSkips) Add(v float64) { c.total += v }

var testTime = time.Date(2014, 5, 20, 10, 30, 0, 0, time.UTC)

func testSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := logentry.NewSchema("")
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	return s
}

func testEntry(t *testing.T) logentry.Entry {
	t.Helper()
	e, err := logentry.New("k1", "QPROFILE", "alice", "changed rule", 42, testTime,
		"ruleKey=squid:S100;severity=MAJOR")
	if err != nil {
		t.Fatalf("logentry.New: %v", err)
	}
	return e
}

func newTestService(t *testing.T) (*Service, *mockOpener) {
	t.Helper()
	opener := &mockOpener{session: &mockSession{}}
	svc, err := New(testSchema(t), opener)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return svc, opener
}

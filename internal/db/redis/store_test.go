package redis

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/edgarsearch/internal/db"
)

const bodyKey = "edgarsearch:doc:body:ab12"

func newMockStore(t *testing.T) (*Store, *mock.Client) {
	t.Helper()
	c := mock.NewClient(gomock.NewController(t))
	return newStore(c), c
}

func TestNewStore_RequiresAddrs(t *testing.T) {
	if _, err := NewStore(Config{}); err == nil {
		t.Fatal("expected error for empty addrs")
	}
}

func TestPing(t *testing.T) {
	s, c := newMockStore(t)
	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_ErrorKeepsCause(t *testing.T) {
	s, c := newMockStore(t)
	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	err := s.Ping(context.Background())
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpPing || dbErr.Key != "" {
		t.Fatalf("expected keyless PING db.Error, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected wrapped cause, got %v", err)
	}
}

func TestWaitForReady_RetriesUntilPong(t *testing.T) {
	s, c := newMockStore(t)
	gomock.InOrder(
		c.EXPECT().
			Do(gomock.Any(), mock.Match("PING")).
			Return(mock.ErrorResult(errors.New("connection refused"))).
			Times(2),
		c.EXPECT().
			Do(gomock.Any(), mock.Match("PING")).
			Return(mock.Result(mock.RedisString("PONG"))),
	)

	if err := s.WaitForReady(context.Background(), 2*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWaitForReady_Timeout(t *testing.T) {
	s, c := newMockStore(t)
	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(errors.New("connection refused"))).
		AnyTimes()

	err := s.WaitForReady(context.Background(), 200*time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("expected last ping error in message, got %v", err)
	}
}

func TestGet(t *testing.T) {
	tests := []struct {
		name     string
		result   rueidis.RedisResult
		want     string
		notFound bool
		dbErr    bool
	}{
		{name: "hit", result: mock.Result(mock.RedisBlobString(`{"content":"Item 1A"}`)), want: `{"content":"Item 1A"}`},
		{name: "expired", result: mock.Result(mock.RedisNil()), notFound: true},
		{name: "network", result: mock.ErrorResult(errors.New("connection reset")), dbErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, c := newMockStore(t)
			c.EXPECT().Do(gomock.Any(), mock.Match("GET", bodyKey)).Return(tt.result)

			data, err := s.Get(context.Background(), bodyKey)
			if got := errors.Is(err, db.ErrKeyNotFound); got != tt.notFound {
				t.Fatalf("ErrKeyNotFound = %v, want %v (err %v)", got, tt.notFound, err)
			}
			var dbErr *db.Error
			if got := errors.As(err, &dbErr); got != tt.dbErr {
				t.Fatalf("db.Error = %v, want %v (err %v)", got, tt.dbErr, err)
			}
			if tt.dbErr && (dbErr.Op != db.OpGet || dbErr.Key != bodyKey) {
				t.Errorf("db.Error = %+v", dbErr)
			}
			if string(data) != tt.want {
				t.Errorf("data = %q, want %q", data, tt.want)
			}
		})
	}
}

func TestSetWithTTL(t *testing.T) {
	s, c := newMockStore(t)
	c.EXPECT().
		Do(gomock.Any(), mock.Match("SET", bodyKey, "{}", "EX", "300")).
		Return(mock.Result(mock.RedisString("OK")))

	if err := s.SetWithTTL(context.Background(), bodyKey, []byte("{}"), 5*time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSetWithTTL_Error(t *testing.T) {
	s, c := newMockStore(t)
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "SET" && cmd[1] == bodyKey
		})).
		Return(mock.ErrorResult(errors.New("OOM command not allowed")))

	err := s.SetWithTTL(context.Background(), bodyKey, []byte("{}"), time.Minute)
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpSet {
		t.Fatalf("expected SET db.Error, got %v", err)
	}
	if !strings.Contains(err.Error(), bodyKey) {
		t.Errorf("expected key in message, got %q", err.Error())
	}
}

func TestDel(t *testing.T) {
	s, c := newMockStore(t)
	gomock.InOrder(
		c.EXPECT().
			Do(gomock.Any(), mock.Match("DEL", bodyKey)).
			Return(mock.Result(mock.RedisInt64(0))),
		c.EXPECT().
			Do(gomock.Any(), mock.Match("DEL", bodyKey)).
			Return(mock.ErrorResult(errors.New("READONLY"))),
	)

	if err := s.Del(context.Background(), bodyKey); err != nil {
		t.Fatalf("missing key should not fail: %v", err)
	}
	if err := s.Del(context.Background(), bodyKey); err == nil {
		t.Fatal("expected error on READONLY replica")
	}
}

func scanReply(cursor string, keys ...string) rueidis.RedisResult {
	elems := make([]rueidis.RedisMessage, len(keys))
	for i, k := range keys {
		elems[i] = mock.RedisBlobString(k)
	}
	return mock.Result(mock.RedisArray(mock.RedisBlobString(cursor), mock.RedisArray(elems...)))
}

func TestDeletePrefix_WalksAllPages(t *testing.T) {
	s, c := newMockStore(t)
	const prefix = "edgarsearch:doc:"
	gomock.InOrder(
		c.EXPECT().
			Do(gomock.Any(), mock.Match("SCAN", "0", "MATCH", prefix+"*", "COUNT", "500")).
			Return(scanReply("17", prefix+"a", prefix+"b")),
		c.EXPECT().
			Do(gomock.Any(), mock.Match("UNLINK", prefix+"a", prefix+"b")).
			Return(mock.Result(mock.RedisInt64(2))),
		c.EXPECT().
			Do(gomock.Any(), mock.Match("SCAN", "17", "MATCH", prefix+"*", "COUNT", "500")).
			Return(scanReply("42")),
		c.EXPECT().
			Do(gomock.Any(), mock.Match("SCAN", "42", "MATCH", prefix+"*", "COUNT", "500")).
			Return(scanReply("0", prefix+"c")),
		c.EXPECT().
			Do(gomock.Any(), mock.Match("UNLINK", prefix+"c")).
			Return(mock.Result(mock.RedisInt64(1))),
	)

	n, err := s.DeletePrefix(context.Background(), prefix)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("deleted = %d, want 3", n)
	}
}

func TestDeletePrefix_ScanError(t *testing.T) {
	s, c := newMockStore(t)
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "SCAN" })).
		Return(mock.ErrorResult(errors.New("LOADING")))

	n, err := s.DeletePrefix(context.Background(), "edgarsearch:doc:")
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpScan {
		t.Fatalf("expected SCAN db.Error, got %v", err)
	}
	if n != 0 {
		t.Errorf("deleted = %d, want 0", n)
	}
}

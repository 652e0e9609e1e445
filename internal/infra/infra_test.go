package infra

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestNewRedisClient(t *testing.T) {
	ctx := context.Background()

	client, err := NewRedisClient(ctx, "")
	if err != nil || client != nil {
		t.Fatalf("expected nil client for empty url, got %v %v", client, err)
	}

	if _, err := NewRedisClient(ctx, "not a url"); err == nil {
		t.Fatal("expected parse error")
	}

	mr := miniredis.RunT(t)
	client, err = NewRedisClient(ctx, "redis://"+mr.Addr())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Close()
	if err := client.Set(ctx, "k", "v", 0).Err(); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got, _ := mr.Get("k"); got != "v" {
		t.Fatalf("expected v, got %q", got)
	}
}

func TestNewRedisClientUnreachable(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	addr := mr.Addr()
	mr.Close()

	if _, err := NewRedisClient(context.Background(), "redis://"+addr); err == nil {
		t.Fatal("expected ping error")
	}
}

func TestNewPostgresPool(t *testing.T) {
	pool, err := NewPostgresPool(context.Background(), "")
	if err != nil || pool != nil {
		t.Fatalf("expected nil pool for empty url, got %v %v", pool, err)
	}
	if _, err := NewPostgresPool(context.Background(), "postgres://%zz"); err == nil {
		t.Fatal("expected parse error")
	}
}

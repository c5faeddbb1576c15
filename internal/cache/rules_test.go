package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/redis/go-redis/v9"
)

type fakeKV struct {
	data    map[string]string
	ttls    map[string]time.Duration
	getErr  error
	setErr  error
	gets    int
	deleted []string
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeKV) Get(ctx context.Context, key string) *redis.StringCmd {
	f.gets++
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeKV) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	f.data[key] = string(value.([]byte))
	f.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeKV) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(f.data, k)
	}
	f.deleted = append(f.deleted, keys...)
	return redis.NewIntResult(int64(len(keys)), nil)
}

type countingSource struct {
	rules []core.MappingRule
	err   error
	calls int
}

func (s *countingSource) ActiveMappingRules(ctx context.Context, version string) ([]core.MappingRule, error) {
	s.calls++
	return s.rules, s.err
}

func newTestCache(client kv, src core.RuleSource) *RuleCache {
	return &RuleCache{client: client, source: src, ttl: time.Minute, prefix: "catalog:rules:"}
}

var testRules = []core.MappingRule{
	{Department: "decoracion", Category: "velas", CuratedCategory: "Velas", Priority: core.PriorityExact},
	{Department: "cocina", Category: core.Wildcard, CuratedCategory: "Cocina", Priority: core.PriorityDepartment},
}

func TestRuleCache_MissThenHit(t *testing.T) {
	kv := newFakeKV()
	src := &countingSource{rules: testRules}
	c := newTestCache(kv, src)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := c.ActiveMappingRules(ctx, "v1")
		if err != nil {
			t.Fatalf("ActiveMappingRules() error = %v", err)
		}
		if len(got) != 2 || got[0].CuratedCategory != "Velas" {
			t.Errorf("got %+v, want the source rules", got)
		}
	}

	if src.calls != 1 {
		t.Errorf("source calls = %d, want 1", src.calls)
	}
	if kv.ttls["catalog:rules:v1"] != time.Minute {
		t.Errorf("ttl = %v, want 1m", kv.ttls["catalog:rules:v1"])
	}
}

func TestRuleCache_VersionsAreSeparate(t *testing.T) {
	kv := newFakeKV()
	src := &countingSource{rules: testRules}
	c := newTestCache(kv, src)

	c.ActiveMappingRules(context.Background(), "v1")
	c.ActiveMappingRules(context.Background(), "v2")

	if src.calls != 2 {
		t.Errorf("source calls = %d, want one per version", src.calls)
	}
}

func TestRuleCache_Degrades(t *testing.T) {
	tests := []struct {
		name   string
		getErr error
		setErr error
	}{
		{name: "read failure", getErr: errors.New("connection refused")},
		{name: "write failure", setErr: errors.New("READONLY")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := newFakeKV()
			kv.getErr, kv.setErr = tt.getErr, tt.setErr
			src := &countingSource{rules: testRules}

			got, err := newTestCache(kv, src).ActiveMappingRules(context.Background(), "v1")
			if err != nil {
				t.Fatalf("ActiveMappingRules() error = %v, want fallback to source", err)
			}
			if len(got) != 2 {
				t.Errorf("got %d rules, want 2", len(got))
			}
		})
	}
}

func TestRuleCache_SkipsEmptyAndErrors(t *testing.T) {
	kv := newFakeKV()
	src := &countingSource{}
	c := newTestCache(kv, src)

	if _, err := c.ActiveMappingRules(context.Background(), "v1"); err != nil {
		t.Fatal(err)
	}
	if len(kv.data) != 0 {
		t.Errorf("empty rule set was cached: %v", kv.data)
	}

	src.err = errors.New("db down")
	if _, err := c.ActiveMappingRules(context.Background(), "v1"); !errors.Is(err, src.err) {
		t.Errorf("error = %v, want source error", err)
	}
}

func TestRuleCache_CorruptEntry(t *testing.T) {
	kv := newFakeKV()
	kv.data["catalog:rules:v1"] = "{not json"
	src := &countingSource{rules: testRules}

	got, err := newTestCache(kv, src).ActiveMappingRules(context.Background(), "v1")
	if err != nil || len(got) != 2 {
		t.Errorf("got %v, %v; want reload from source", got, err)
	}
	if src.calls != 1 {
		t.Errorf("source calls = %d, want 1", src.calls)
	}
}

func TestRuleCache_Invalidate(t *testing.T) {
	kv := newFakeKV()
	c := newTestCache(kv, &countingSource{rules: testRules})
	c.ActiveMappingRules(context.Background(), "v1")

	if err := c.Invalidate(context.Background(), "v1"); err != nil {
		t.Fatalf("Invalidate() error = %v", err)
	}
	if _, ok := kv.data["catalog:rules:v1"]; ok {
		t.Error("entry still cached after Invalidate")
	}
}

func TestRuleCache_NilClient(t *testing.T) {
	src := &countingSource{rules: testRules}
	c := NewRuleCache(nil, src, time.Minute, "p:")

	c.ActiveMappingRules(context.Background(), "v1")
	c.ActiveMappingRules(context.Background(), "v1")
	if src.calls != 2 {
		t.Errorf("source calls = %d, want pass-through", src.calls)
	}
	if err := c.Invalidate(context.Background(), "v1"); err != nil {
		t.Errorf("Invalidate() error = %v", err)
	}
}

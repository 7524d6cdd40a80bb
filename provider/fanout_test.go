package provider

import (
	"context"
	"testing"

	"github.com/vidkit/vidkit/core"
)

// fakeProvider 按查询返回预置结果。
type fakeProvider struct {
	byQuery map[string][]*core.Video
	err     error
}

func (f *fakeProvider) Name() string { return "provider.fake" }

func (f *fakeProvider) Search(_ context.Context, query string, _ int) ([]*core.Video, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byQuery[query], nil
}

func TestFanout_MergesAndDedups(t *testing.T) {
	p := &fakeProvider{byQuery: map[string][]*core.Video{
		"jazz": {{ID: "v1", Title: "Jazz One"}, {ID: "v2", Title: "Jazz Two"}},
		"lofi": {{ID: "v2", Title: "Jazz Two"}, {ID: "v3", Title: "Lofi"}},
	}}
	f := &Fanout{Provider: p}

	items, err := f.Search(context.Background(), []string{"jazz", "lofi"}, 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("len(items) = %d, want 3 (v2 deduped)", len(items))
	}
	// 查询顺序即优先级：v2 归属第一路
	want := []string{"v1", "v2", "v3"}
	for i, it := range items {
		if it.ID() != want[i] {
			t.Errorf("items[%d].ID = %q, want %q", i, it.ID(), want[i])
		}
	}
	if lbl, ok := items[1].Labels["fetch_query"]; !ok || lbl.Value != "jazz" {
		t.Errorf("v2 fetch_query = %+v, want jazz", lbl)
	}
}

func TestFanout_EmptyIDsNotDeduped(t *testing.T) {
	// 上游偶发返回缺 ID 的记录：不能把它们当同一条视频折叠掉
	p := &fakeProvider{byQuery: map[string][]*core.Video{
		"jazz": {{ID: "", Title: "Mystery One"}, {ID: "v1", Title: "Jazz"}},
		"lofi": {{ID: "", Title: "Mystery Two"}, {ID: "v1", Title: "Jazz"}},
	}}
	f := &Fanout{Provider: p}

	items, err := f.Search(context.Background(), []string{"jazz", "lofi"}, 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	// v1 去重为一条，两条空 ID 记录都保留
	if len(items) != 3 {
		t.Fatalf("len(items) = %d, want 3", len(items))
	}
	empty := 0
	for _, it := range items {
		if it.ID() == "" {
			empty++
		}
	}
	if empty != 2 {
		t.Errorf("empty-id items = %d, want 2", empty)
	}
}

func TestFanout_FailedQueryDoesNotAbort(t *testing.T) {
	calls := 0
	p := &countingProvider{inner: &fakeProvider{byQuery: map[string][]*core.Video{
		"ok": {{ID: "v1"}},
	}}, failOn: "bad", calls: &calls}
	// 串行跑两路，计数无竞争
	f := &Fanout{Provider: p, MaxConcurrent: 1}

	items, err := f.Search(context.Background(), []string{"bad", "ok"}, 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(items) != 1 || items[0].ID() != "v1" {
		t.Errorf("items = %v, want just v1", items)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2 (both queries attempted)", calls)
	}
}

type countingProvider struct {
	inner  *fakeProvider
	failOn string
	calls  *int
}

func (c *countingProvider) Name() string { return "provider.counting" }

func (c *countingProvider) Search(ctx context.Context, query string, max int) ([]*core.Video, error) {
	*c.calls++
	if query == c.failOn {
		return nil, core.ErrProviderUnavailable
	}
	return c.inner.Search(ctx, query, max)
}

func TestFanout_Empty(t *testing.T) {
	f := &Fanout{Provider: &fakeProvider{}}
	items, err := f.Search(context.Background(), nil, 10)
	if err != nil || items != nil {
		t.Errorf("Search(nil queries) = (%v, %v), want (nil, nil)", items, err)
	}
}

func TestFetchNode_DegradesOnUnavailable(t *testing.T) {
	n := &FetchNode{Provider: &fakeProvider{err: core.ErrProviderUnavailable}}
	sctx := &core.SearchContext{UserID: "u1", Query: "jazz", MaxResults: 10}

	items, err := n.Process(context.Background(), sctx, nil)
	if err != nil {
		t.Fatalf("Process() should degrade, got error %v", err)
	}
	if len(items) != 0 {
		t.Errorf("len(items) = %d, want 0", len(items))
	}
	if _, ok := sctx.GetLabel("fetch_degraded"); !ok {
		t.Error("fetch_degraded label should be set")
	}
}

func TestFetchNode_WrapsResults(t *testing.T) {
	n := &FetchNode{Provider: &fakeProvider{byQuery: map[string][]*core.Video{
		"jazz": {{ID: "v1"}, {ID: "v2"}},
	}}}
	sctx := &core.SearchContext{UserID: "u1", Query: "jazz", MaxResults: 10}

	items, err := n.Process(context.Background(), sctx, nil)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(items) != 2 || items[0].ID() != "v1" {
		t.Errorf("unexpected items: %v", items)
	}
}

package rank

import (
	"context"
	"testing"

	"github.com/vidkit/vidkit/core"
	"github.com/vidkit/vidkit/feature"
)

func rankItems(t *testing.T, model *core.PreferenceModel, items []*core.Item) []*core.Item {
	t.Helper()
	node := &PreferenceNode{}
	out, err := node.Process(context.Background(), &core.SearchContext{Model: model}, items)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	return out
}

func buildItems(videos ...*core.Video) []*core.Item {
	ex := feature.NewExtractor()
	items := make([]*core.Item, 0, len(videos))
	for _, v := range videos {
		it := core.NewItem(v)
		it.Features = ex.ExtractVideo(v)
		items = append(items, it)
	}
	return items
}

func ids(items []*core.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID())
	}
	return out
}

func TestZeroModelKeepsProviderOrder(t *testing.T) {
	// 全零模型：所有分数为 0，排序必须是输入顺序的稳定 no-op
	model := core.NewPreferenceModel("u1")
	items := buildItems(
		&core.Video{ID: "a", ChannelID: "UC3", Title: "third"},
		&core.Video{ID: "b", ChannelID: "UC1", Title: "first"},
		&core.Video{ID: "c", ChannelID: "UC2", Title: "second"},
	)

	out := rankItems(t, model, items)
	want := []string{"a", "b", "c"}
	got := ids(out)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestChannelWeightOrdering(t *testing.T) {
	// channel_weights={"UC1": 2.0}，其余维度全 0 ⇒ UC1 排在 UC2 前
	model := core.NewPreferenceModel("u1")
	model.ChannelWeights["UC1"] = 2.0

	items := buildItems(
		&core.Video{ID: "2", ChannelID: "UC2"},
		&core.Video{ID: "1", ChannelID: "UC1"},
	)

	out := rankItems(t, model, items)
	got := ids(out)
	if got[0] != "1" || got[1] != "2" {
		t.Fatalf("order = %v, want [1 2]", got)
	}
	if out[0].Score != 2.0 || out[1].Score != 0.0 {
		t.Errorf("scores = %v/%v, want 2.0/0.0", out[0].Score, out[1].Score)
	}
}

func TestRankDeterminism(t *testing.T) {
	model := core.NewPreferenceModel("u1")
	model.CategoryWeights["music"] = 1.5
	model.KeywordWeights["lofi"] = 0.5

	mk := func() []*core.Item {
		return buildItems(
			&core.Video{ID: "a", Category: "music", Title: "lofi mix"},
			&core.Video{ID: "b", Category: "music", Title: "lofi mix"}, // 同分，必须保持 a 在前
			&core.Video{ID: "c", Category: "gaming", Title: "speedrun"},
			&core.Video{ID: "d", Category: "music", Title: "jazz hour"},
		)
	}

	first := ids(rankItems(t, model, mk()))
	for i := 0; i < 10; i++ {
		got := ids(rankItems(t, model, mk()))
		for j := range first {
			if got[j] != first[j] {
				t.Fatalf("run %d order = %v, want %v", i, got, first)
			}
		}
	}

	// 同分 tie-break：a 在 b 前
	if first[0] != "a" || first[1] != "b" {
		t.Errorf("tie-break order = %v, want a before b", first)
	}
}

func TestInputSliceUntouched(t *testing.T) {
	model := core.NewPreferenceModel("u1")
	model.ChannelWeights["UC2"] = 5.0

	items := buildItems(
		&core.Video{ID: "x", ChannelID: "UC1"},
		&core.Video{ID: "y", ChannelID: "UC2"},
	)

	_ = rankItems(t, model, items)
	if items[0].ID() != "x" || items[1].ID() != "y" {
		t.Errorf("input slice reordered: %v", ids(items))
	}
}

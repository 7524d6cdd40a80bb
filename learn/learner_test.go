package learn

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/vidkit/vidkit/core"
	"github.com/vidkit/vidkit/store"
)

func likeEvent(videoID string) core.InteractionEvent {
	return core.InteractionEvent{UserID: "u1", VideoID: videoID, Action: core.ActionLike}
}

func TestApply_LikeUpdatesAllDimensions(t *testing.T) {
	s := store.NewMemoryStore()
	l := NewLearner(s)
	ctx := context.Background()

	v := &core.Video{
		ID:              "v1",
		Title:           "Jazz",
		ChannelID:       "UC2",
		Category:        "music",
		DurationSeconds: 300,
	}
	if err := l.Apply(ctx, likeEvent("v1"), v); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	model, _ := s.LoadModel(ctx, "u1")
	if got := model.ChannelWeights["UC2"]; got != 3.0 {
		t.Errorf("ChannelWeights[UC2] = %v, want 3.0", got)
	}
	if got := model.CategoryWeights["music"]; got != 3.0 {
		t.Errorf("CategoryWeights[music] = %v, want 3.0", got)
	}
	if got := model.KeywordWeights["jazz"]; got != 3.0 {
		t.Errorf("KeywordWeights[jazz] = %v, want 3.0", got)
	}
	if got := model.DurationPrefs[core.BucketMedium]; got != 3.0 {
		t.Errorf("DurationPrefs[medium] = %v, want 3.0", got)
	}
}

func TestApply_KeywordShareSplitsDelta(t *testing.T) {
	s := store.NewMemoryStore()
	l := NewLearner(s)
	ctx := context.Background()

	// 两个关键词：每个得 delta/2
	v := &core.Video{ID: "v1", Title: "Chill Jazz", ChannelID: "UC1", DurationSeconds: 100}
	if err := l.Apply(ctx, likeEvent("v1"), v); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	model, _ := s.LoadModel(ctx, "u1")
	if got := model.KeywordWeights["chill"]; got != 1.5 {
		t.Errorf("KeywordWeights[chill] = %v, want 1.5", got)
	}
	if got := model.KeywordWeights["jazz"]; got != 1.5 {
		t.Errorf("KeywordWeights[jazz] = %v, want 1.5", got)
	}
	// 频道仍得全额
	if got := model.ChannelWeights["UC1"]; got != 3.0 {
		t.Errorf("ChannelWeights[UC1] = %v, want 3.0", got)
	}
}

func TestApply_WatchScalesByFraction(t *testing.T) {
	s := store.NewMemoryStore()
	l := NewLearner(s)
	ctx := context.Background()

	v := &core.Video{ID: "v1", Title: "Jazz", ChannelID: "UC1", DurationSeconds: 100}
	ev := core.InteractionEvent{UserID: "u1", VideoID: "v1", Action: core.ActionWatch, WatchFraction: 0.5}
	if err := l.Apply(ctx, ev, v); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	model, _ := s.LoadModel(ctx, "u1")
	if got := model.ChannelWeights["UC1"]; got != 2.5 {
		t.Errorf("ChannelWeights[UC1] = %v, want 2.5 (5.0 × 0.5)", got)
	}
}

func TestApply_WatchFractionClamped(t *testing.T) {
	p := DefaultDeltaPolicy()

	over := core.InteractionEvent{Action: core.ActionWatch, WatchFraction: 1.7}
	if got := p.Delta(over); got != 5.0 {
		t.Errorf("Delta(fraction=1.7) = %v, want 5.0", got)
	}
	under := core.InteractionEvent{Action: core.ActionWatch, WatchFraction: -0.3}
	if got := p.Delta(under); got != 0 {
		t.Errorf("Delta(fraction=-0.3) = %v, want 0", got)
	}
}

func TestApply_NotInterestedExcludesChannel(t *testing.T) {
	s := store.NewMemoryStore()
	l := NewLearner(s)
	ctx := context.Background()

	v := &core.Video{ID: "v1", Title: "Jazz", ChannelID: "UC9", Category: "music"}
	ev := core.InteractionEvent{UserID: "u1", VideoID: "v1", Action: core.ActionNotInterested}
	if err := l.Apply(ctx, ev, v); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	model, _ := s.LoadModel(ctx, "u1")
	if _, excluded := model.ExcludedChannels["UC9"]; !excluded {
		t.Error("channel UC9 should be excluded")
	}
	// 排除走独立通道，不产生负权重
	if got := model.ChannelWeights["UC9"]; got != 0 {
		t.Errorf("ChannelWeights[UC9] = %v, want 0", got)
	}
}

func TestApply_NilVideoSkipsLearning(t *testing.T) {
	s := store.NewMemoryStore()
	l := NewLearner(s)
	ctx := context.Background()

	if err := l.Apply(ctx, likeEvent("ghost"), nil); err != nil {
		t.Fatalf("Apply() with nil video should not fail, got %v", err)
	}
	if got := l.Anomalies(); got != 1 {
		t.Errorf("Anomalies() = %d, want 1", got)
	}

	// 事件仍进日志，模型保持全零
	events, _ := s.Events(ctx, "u1")
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	model, _ := s.LoadModel(ctx, "u1")
	if len(model.ChannelWeights) != 0 {
		t.Errorf("model should be untouched, got %+v", model.ChannelWeights)
	}
}

func TestApply_MissingUserID(t *testing.T) {
	l := NewLearner(store.NewMemoryStore())

	ev := core.InteractionEvent{VideoID: "v1", Action: core.ActionClick}
	if err := l.Apply(context.Background(), ev, &core.Video{ID: "v1"}); err == nil {
		t.Fatal("Apply() without user id should fail")
	}
}

func TestLearningDeterminism(t *testing.T) {
	events := []struct {
		ev    core.InteractionEvent
		video *core.Video
	}{
		{likeEvent("v1"), &core.Video{ID: "v1", Title: "Chill Jazz Mix", ChannelID: "UC1", Category: "music", DurationSeconds: 3600}},
		{core.InteractionEvent{UserID: "u1", VideoID: "v2", Action: core.ActionClick},
			&core.Video{ID: "v2", Title: "Go Tutorial", ChannelID: "UC2", Category: "education", DurationSeconds: 600}},
		{core.InteractionEvent{UserID: "u1", VideoID: "v1", Action: core.ActionWatch, WatchFraction: 0.8},
			&core.Video{ID: "v1", Title: "Chill Jazz Mix", ChannelID: "UC1", Category: "music", DurationSeconds: 3600}},
	}

	run := func() *core.PreferenceModel {
		s := store.NewMemoryStore()
		l := NewLearner(s)
		for _, e := range events {
			if err := l.Apply(context.Background(), e.ev, e.video); err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
		}
		model, _ := s.LoadModel(context.Background(), "u1")
		return model
	}

	a, b := run(), run()
	if !reflect.DeepEqual(a, b) {
		t.Errorf("same event sequence produced different models:\n%+v\n%+v", a, b)
	}
}

func TestRebuild_MatchesIncremental(t *testing.T) {
	s := store.NewMemoryStore()
	l := NewLearner(s)
	ctx := context.Background()

	videos := []*core.Video{
		{ID: "v1", Title: "Chill Jazz", ChannelID: "UC1", Category: "music", DurationSeconds: 3600},
		{ID: "v2", Title: "Go Tutorial", ChannelID: "UC2", Category: "education", DurationSeconds: 600},
	}
	actions := []core.InteractionEvent{
		{UserID: "u1", VideoID: "v1", Action: core.ActionLike},
		{UserID: "u1", VideoID: "v2", Action: core.ActionClick},
		{UserID: "u1", VideoID: "v1", Action: core.ActionWatch, WatchFraction: 1.0},
		{UserID: "u1", VideoID: "v2", Action: core.ActionNotInterested},
	}
	byID := map[string]*core.Video{"v1": videos[0], "v2": videos[1]}
	for _, ev := range actions {
		if err := l.Apply(ctx, ev, byID[ev.VideoID]); err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
	}
	// 快照缺失的事件两条路径都跳过
	if err := l.Apply(ctx, likeEvent("ghost"), nil); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	incremental, err := s.LoadModel(ctx, "u1")
	if err != nil {
		t.Fatalf("LoadModel() error = %v", err)
	}
	replayed, err := l.Rebuild(ctx, "u1")
	if err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}

	if !reflect.DeepEqual(incremental, replayed) {
		t.Errorf("replay diverged from incremental state:\nincremental: %+v\nreplayed:    %+v",
			incremental, replayed)
	}
}

func TestApply_SameEventTwiceDoublesEffect(t *testing.T) {
	s := store.NewMemoryStore()
	l := NewLearner(s)
	ctx := context.Background()

	v := &core.Video{ID: "v1", Title: "Jazz", ChannelID: "UC1"}
	ev := likeEvent("v1")
	ev.ID = "fixed-id"
	for i := 0; i < 2; i++ {
		if err := l.Apply(ctx, ev, v); err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
	}

	model, _ := s.LoadModel(ctx, "u1")
	if got := model.ChannelWeights["UC1"]; got != 6.0 {
		t.Errorf("ChannelWeights[UC1] = %v, want 6.0 (applied twice)", got)
	}
}

// failingStore 在指定操作上返回持久化错误。
type failingStore struct {
	core.PreferenceStore
	failSave   bool
	failAppend bool
}

func (f *failingStore) SaveModel(ctx context.Context, model *core.PreferenceModel) error {
	if f.failSave {
		return core.NewDomainError(core.ModuleStore, core.ErrorCodePersistence, "store: disk full")
	}
	return f.PreferenceStore.SaveModel(ctx, model)
}

func (f *failingStore) AppendEvent(ctx context.Context, ev core.InteractionEvent, video *core.Video) error {
	if f.failAppend {
		return core.NewDomainError(core.ModuleStore, core.ErrorCodePersistence, "store: disk full")
	}
	return f.PreferenceStore.AppendEvent(ctx, ev, video)
}

func TestApply_SaveFailureSurfaced(t *testing.T) {
	s := &failingStore{PreferenceStore: store.NewMemoryStore(), failSave: true}
	l := NewLearner(s)

	v := &core.Video{ID: "v1", Title: "Jazz", ChannelID: "UC1"}
	err := l.Apply(context.Background(), likeEvent("v1"), v)
	if err == nil {
		t.Fatal("save failure must surface to caller")
	}
	// 分类检查必须对 Apply 实际返回的包装错误直接生效
	if !core.IsPersistenceFailure(err) {
		t.Errorf("IsPersistenceFailure(err) = false for %v", err)
	}
	var de *core.DomainError
	if !errors.As(err, &de) || de.Code != core.ErrorCodePersistence {
		t.Errorf("error should wrap a persistence DomainError, got %v", err)
	}
}

func TestApply_AppendFailureSurfaced(t *testing.T) {
	s := &failingStore{PreferenceStore: store.NewMemoryStore(), failAppend: true}
	l := NewLearner(s)

	v := &core.Video{ID: "v1", Title: "Jazz", ChannelID: "UC1"}
	if err := l.Apply(context.Background(), likeEvent("v1"), v); err == nil {
		t.Fatal("append failure must surface to caller")
	}
}

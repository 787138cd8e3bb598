package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/meeeeeooooowwwwwww/updates/internal/domain"
	"github.com/meeeeeooooowwwwwww/updates/internal/service/mocks"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func rawItem(pid string) domain.RawItem {
	return domain.RawItem{
		Title: "video " + pid,
		Link:  "https://rumble.com/" + pid + "-video.html",
	}
}

func pids(items []domain.RawItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		pid, _ := PlatformID(item.Link)
		out[i] = pid
	}
	return out
}

func TestDiff_StopAtBoundary(t *testing.T) {
	engine := NewDiffEngine(StopAtBoundary, "rumble", nil, testLogger())

	// Newest-first scrape; v3 is the last-known video.
	fresh := []domain.RawItem{rawItem("v5"), rawItem("v4"), rawItem("v3"), rawItem("v2"), rawItem("v1")}

	result, err := engine.Diff(context.Background(), fresh, "v3")
	require.NoError(t, err)

	assert.False(t, result.Ambiguous)
	assert.Equal(t, []string{"v4", "v5"}, pids(result.New), "new items must come out oldest-first")
}

func TestDiff_AmbiguousBoundary(t *testing.T) {
	engine := NewDiffEngine(StopAtBoundary, "rumble", nil, testLogger())

	fresh := []domain.RawItem{rawItem("v5"), rawItem("v4"), rawItem("v3"), rawItem("v2"), rawItem("v1")}

	result, err := engine.Diff(context.Background(), fresh, "zzz")
	require.NoError(t, err)

	assert.True(t, result.Ambiguous)
	assert.Equal(t, []string{"v1", "v2", "v3", "v4", "v5"}, pids(result.New))
}

func TestDiff_NoBoundary(t *testing.T) {
	engine := NewDiffEngine(StopAtBoundary, "rumble", nil, testLogger())

	fresh := []domain.RawItem{rawItem("vA"), rawItem("vB")}

	result, err := engine.Diff(context.Background(), fresh, "")
	require.NoError(t, err)

	assert.False(t, result.Ambiguous, "empty sink must not signal ambiguity")
	assert.Equal(t, []string{"vB", "vA"}, pids(result.New))
}

func TestDiff_EmptyFreshList(t *testing.T) {
	engine := NewDiffEngine(StopAtBoundary, "rumble", nil, testLogger())

	result, err := engine.Diff(context.Background(), nil, "v3")
	require.NoError(t, err)

	assert.False(t, result.Ambiguous)
	assert.Empty(t, result.New)
}

func TestDiff_BoundaryIsNewestItem(t *testing.T) {
	engine := NewDiffEngine(StopAtBoundary, "rumble", nil, testLogger())

	fresh := []domain.RawItem{rawItem("v5"), rawItem("v4")}

	result, err := engine.Diff(context.Background(), fresh, "v5")
	require.NoError(t, err)

	assert.False(t, result.Ambiguous)
	assert.Empty(t, result.New)
}

func TestDiff_CheckExisting(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockSink(ctrl)
	engine := NewDiffEngine(CheckExisting, "rumble", sink, testLogger())

	fresh := []domain.RawItem{rawItem("v5"), rawItem("v4"), rawItem("v3")}

	sink.EXPECT().
		ExistingIDs(gomock.Any(), []string{"rumble:v5", "rumble:v4", "rumble:v3"}).
		Return(map[string]struct{}{"rumble:v3": {}}, nil)

	result, err := engine.Diff(context.Background(), fresh, "ignored")
	require.NoError(t, err)

	assert.False(t, result.Ambiguous, "check-existing has positive knowledge, never ambiguous")
	assert.Equal(t, []string{"v4", "v5"}, pids(result.New))
}

func TestDiff_CheckExisting_SinkError(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockSink(ctrl)
	engine := NewDiffEngine(CheckExisting, "rumble", sink, testLogger())

	sink.EXPECT().
		ExistingIDs(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("sink down"))

	_, err := engine.Diff(context.Background(), []domain.RawItem{rawItem("v1")}, "")
	require.Error(t, err)
}

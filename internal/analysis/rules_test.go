package analysis

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielolaszy/triage/pkg/models"
)

var fixedNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

// fixedRuleEngine pins the clock so results are reproducible.
func fixedRuleEngine() *RuleEngine {
	return &RuleEngine{now: func() time.Time { return fixedNow }}
}

func floatPtr(v float64) *float64 { return &v }

func analyzeOne(t *testing.T, issue models.Issue) map[string]any {
	t.Helper()
	fields, err := fixedRuleEngine().Analyze(context.Background(), issue)
	require.NoError(t, err)
	return fields
}

func TestAnalyzeEmptyIssue(t *testing.T) {
	// No votes, no labels, no comments, no update timestamp.
	fields := analyzeOne(t, models.Issue{Key: "WD-1"})

	assert.Equal(t, ThemeOther, fields[models.FieldThemeCategory])
	// 3 + log2(2)*2 + 0 + themeBoost 1
	assert.Equal(t, 6, fields[models.FieldImpactScore])
	assert.Equal(t, 3, fields[models.FieldEffortScore])
	// 5 - 1 for the 90-day staleness default
	assert.Equal(t, 4, fields[models.FieldUrgencyScore])
	assert.Equal(t, 8.0, fields[models.FieldPriorityRank])
	// floor clamp on confidence
	assert.Equal(t, 0.4, fields[models.FieldConfidenceLevel])
	assert.Equal(t, "次のステップとして その他 に関する対応案を検討してください。", fields[models.FieldSuggestedNextAction])
	assert.Equal(t,
		"投票数 0 件、コメント 0 件を参照しました。 最終更新から 90 日経過しています。 テーマは「その他」と推定しました。 インパクト 6、緊急度 4、労力 3 を基に優先度を算出しています。",
		fields[models.FieldAnalysisNote])
}

func TestAnalyzeHighVoteImpactClamps(t *testing.T) {
	// 3 + log2(17)*2 + 1 is well above the ceiling.
	fields := analyzeOne(t, models.Issue{Key: "WD-2", Votes: 15})
	assert.Equal(t, 10, fields[models.FieldImpactScore])
}

func TestAnalyzeActiveStabilityIssue(t *testing.T) {
	issue := models.Issue{
		Key:         "WD-3",
		Summary:     "決済処理でエラーが発生する",
		Description: strings.Repeat("あ", 250),
		Labels:      []string{"bug"},
		Votes:       4,
		Comments: []models.Comment{
			{Author: "Tanaka", Body: "再現しました"},
			{Author: "Suzuki", Body: "調査中です"},
		},
		Status:  "未着手",
		Updated: fixedNow.Add(-48 * time.Hour),
	}

	fields := analyzeOne(t, issue)

	assert.Equal(t, ThemeStability, fields[models.FieldThemeCategory])
	assert.Equal(t, 10, fields[models.FieldImpactScore])
	// medium description, stability adjustment -1
	assert.Equal(t, 4, fields[models.FieldEffortScore])
	// 5 + 2 recent + 1.2 comments + 1.5 stability
	assert.Equal(t, 10, fields[models.FieldUrgencyScore])
	assert.Equal(t, 25.0, fields[models.FieldPriorityRank])
	assert.Equal(t, 0.68, fields[models.FieldConfidenceLevel])
	// urgency >= 8 wins over the in-progress and theme rules
	assert.Equal(t, "直近のスプリントで優先対応できるよう、担当者アサインと要件の確定を行ってください。", fields[models.FieldSuggestedNextAction])
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	issue := models.Issue{
		Key:         "WD-4",
		Summary:     "ダッシュボードの計測を追加",
		Description: "利用状況のデータを可視化したい",
		Labels:      []string{"analytics"},
		Votes:       3,
		Updated:     fixedNow.Add(-10 * 24 * time.Hour),
	}

	first := analyzeOne(t, issue)
	second := analyzeOne(t, issue)
	assert.Equal(t, first, second)
}

func TestImpactOverrideClamping(t *testing.T) {
	testCases := []struct {
		name     string
		override float64
		expected int
	}{
		{name: "Above ceiling", override: 15, expected: 10},
		{name: "Below floor", override: 0.4, expected: 1},
		{name: "Fractional rounds", override: 7.4, expected: 7},
		{name: "In range", override: 5, expected: 5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fields := analyzeOne(t, models.Issue{Key: "WD-5", Impact: floatPtr(tc.override)})
			assert.Equal(t, tc.expected, fields[models.FieldImpactScore])
		})
	}
}

func TestConfidenceOverrideNormalization(t *testing.T) {
	testCases := []struct {
		name     string
		override float64
		expected float64
	}{
		{name: "Ten-scale divided down", override: 8, expected: 0.8},
		{name: "Unit scale used as-is", override: 0.55, expected: 0.55},
		{name: "Above ten-scale clamps to one", override: 15, expected: 1.0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fields := analyzeOne(t, models.Issue{Key: "WD-6", Confidence: floatPtr(tc.override)})
			assert.Equal(t, tc.expected, fields[models.FieldConfidenceLevel])
		})
	}
}

func TestDetermineTheme(t *testing.T) {
	testCases := []struct {
		name     string
		labels   []string
		summary  string
		expected string
	}{
		{name: "Bug keyword", summary: "ログインで不具合", expected: ThemeStability},
		{name: "Stability beats later groups", summary: "エラー画面のデザイン", expected: ThemeStability},
		{name: "Label match", labels: []string{"Growth-Team"}, summary: "新しいタスク", expected: ThemeGrowth},
		{name: "Performance keyword", summary: "一覧の速度が遅い", expected: ThemePerformance},
		{name: "Analytics keyword", summary: "行動データを集計したい", expected: ThemeAnalytics},
		{name: "Fallback to first label", labels: []string{"misc", "later"}, summary: "新しいタスク", expected: "MISC"},
		{name: "No labels falls back to other", summary: "新しいタスク", expected: ThemeOther},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, determineTheme(tc.labels, tc.summary, ""))
		})
	}
}

func TestEffortLengthBuckets(t *testing.T) {
	short := analyzeOne(t, models.Issue{Key: "WD-7", Description: strings.Repeat("あ", 100)})
	assert.Equal(t, 3, short[models.FieldEffortScore])

	medium := analyzeOne(t, models.Issue{Key: "WD-8", Description: strings.Repeat("あ", 500)})
	assert.Equal(t, 5, medium[models.FieldEffortScore])

	long := analyzeOne(t, models.Issue{Key: "WD-9", Description: strings.Repeat("あ", 900)})
	assert.Equal(t, 7, long[models.FieldEffortScore])

	// Performance theme adds one on top of the bucket.
	perf := analyzeOne(t, models.Issue{
		Key:         "WD-10",
		Labels:      []string{"performance"},
		Description: strings.Repeat("あ", 900),
	})
	assert.Equal(t, 8, perf[models.FieldEffortScore])
}

func TestSuggestedActionTable(t *testing.T) {
	testCases := []struct {
		name     string
		status   string
		theme    string
		urgency  int
		contains string
	}{
		{name: "Done status", status: "完了", theme: ThemeOther, urgency: 9, contains: "完了後の影響確認"},
		{name: "High urgency", status: "未着手", theme: ThemeOther, urgency: 8, contains: "直近のスプリント"},
		{name: "In progress", status: "In Progress", theme: ThemeOther, urgency: 5, contains: "棚卸し"},
		{name: "UX theme", status: "未着手", theme: ThemeUX, urgency: 5, contains: "ユーザビリティテスト"},
		{name: "Stability theme", status: "未着手", theme: ThemeStability, urgency: 5, contains: "原因調査"},
		{name: "Generic backlog", status: "未着手", theme: ThemeGrowth, urgency: 5, contains: "バックログの優先度"},
		{name: "Empty status", status: "", theme: ThemeGrowth, urgency: 5, contains: "次のステップ"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Contains(t, suggestedAction(tc.status, tc.theme, tc.urgency), tc.contains)
		})
	}
}

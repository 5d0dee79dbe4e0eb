package analysis

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/danielolaszy/triage/internal/adf"
	"github.com/danielolaszy/triage/pkg/models"
)

// Theme category labels. The set is closed apart from the first-label
// fallback applied when nothing matches.
const (
	ThemeStability   = "安定性"
	ThemeUX          = "UX改善"
	ThemePerformance = "パフォーマンス"
	ThemeGrowth      = "ビジネス成長"
	ThemeAnalytics   = "分析・計測"
	ThemeOther       = "その他"
)

// staleDaysDefault is assumed when an issue has no update timestamp.
const staleDaysDefault = 90

// themeKeywords maps each theme to its trigger keywords. Order matters:
// first matching group wins.
var themeKeywords = []struct {
	theme    string
	keywords []string
}{
	{ThemeStability, []string{"bug", "障害", "エラー", "不具合", "stability"}},
	{ThemeUX, []string{"ux", "ui", "デザイン", "体験", "使いやす"}},
	{ThemePerformance, []string{"performance", "速度", "レスポンス", "パフォーマンス", "スケール"}},
	{ThemeGrowth, []string{"growth", "マーケ", "集客", "売上", "課金"}},
	{ThemeAnalytics, []string{"analytics", "データ", "分析", "計測"}},
}

// RuleEngine is the deterministic scoring engine. It performs no I/O and,
// for a fixed clock, produces identical output for identical input.
type RuleEngine struct {
	now func() time.Time
}

// NewRuleEngine creates the rule-based engine with the wall clock.
func NewRuleEngine() *RuleEngine {
	return &RuleEngine{now: time.Now}
}

// Name implements Engine.
func (e *RuleEngine) Name() string {
	return "rule"
}

// Analyze implements Engine with the continuous-formula scoring rules.
func (e *RuleEngine) Analyze(_ context.Context, issue models.Issue) (map[string]any, error) {
	description := adf.ToPlainText(issue.Description)
	commentCount := len(issue.Comments)

	daysSinceUpdate := float64(staleDaysDefault)
	if !issue.Updated.IsZero() {
		daysSinceUpdate = math.Max(e.now().Sub(issue.Updated).Hours()/24, 0.1)
	}

	theme := determineTheme(issue.Labels, issue.Summary, description)

	impact := impactScore(issue.Impact, issue.Votes, commentCount, theme)
	effort := effortScore(issue.Effort, description, theme)
	urgency := urgencyScore(daysSinceUpdate, commentCount, theme)
	priority := round2(float64(impact) * float64(urgency) / math.Max(float64(effort), 1))
	confidence := confidenceLevel(issue.Confidence, issue.Votes, commentCount, daysSinceUpdate)

	return map[string]any{
		models.FieldImpactScore:         impact,
		models.FieldEffortScore:         effort,
		models.FieldUrgencyScore:        urgency,
		models.FieldPriorityRank:        priority,
		models.FieldThemeCategory:       theme,
		models.FieldConfidenceLevel:     confidence,
		models.FieldSuggestedNextAction: suggestedAction(issue.Status, theme, urgency),
		models.FieldAnalysisNote:        analysisNote(issue.Votes, commentCount, theme, daysSinceUpdate, impact, effort, urgency),
	}, nil
}

// determineTheme scans the lowercased summary+description and labels for the
// keyword groups in priority order.
func determineTheme(labels []string, summary, description string) string {
	text := strings.ToLower(summary + " " + description)

	lowered := make([]string, len(labels))
	for i, label := range labels {
		lowered[i] = strings.ToLower(label)
	}

	match := func(keywords []string) bool {
		for _, keyword := range keywords {
			if strings.Contains(text, keyword) {
				return true
			}
			for _, label := range lowered {
				if strings.Contains(label, keyword) {
					return true
				}
			}
		}
		return false
	}

	for _, group := range themeKeywords {
		if match(group.keywords) {
			return group.theme
		}
	}

	if len(lowered) > 0 {
		return strings.ToUpper(lowered[0])
	}
	return ThemeOther
}

func impactScore(override *float64, votes, commentCount int, theme string) int {
	if override != nil {
		return clampScore(*override)
	}

	voteComponent := math.Log2(float64(votes)+2) * 2
	commentBoost := math.Min(float64(commentCount)*0.6, 3)
	themeBoost := 1.0
	switch theme {
	case ThemeStability:
		themeBoost = 2
	case ThemeGrowth:
		themeBoost = 1.5
	}

	return clampScore(3 + voteComponent + commentBoost + themeBoost)
}

func effortScore(override *float64, description, theme string) int {
	if override != nil {
		return clampScore(*override)
	}

	length := utf8.RuneCountInString(description)
	base := 7
	switch {
	case length < 200:
		base = 3
	case length < 800:
		base = 5
	}

	switch theme {
	case ThemeStability:
		base--
	case ThemePerformance:
		base++
	}

	return clampScore(float64(base))
}

func urgencyScore(daysSinceUpdate float64, commentCount int, theme string) int {
	urgency := 5.0
	if daysSinceUpdate <= 3 {
		urgency += 2
	}
	if daysSinceUpdate >= 30 {
		urgency--
	}
	urgency += math.Min(float64(commentCount), 5) * 0.6
	if theme == ThemeStability {
		urgency += 1.5
	}
	return clampScore(urgency)
}

func confidenceLevel(override *float64, votes, commentCount int, daysSinceUpdate float64) float64 {
	if override != nil {
		value := *override
		if value > 1 {
			value /= 10
		}
		return round2(clamp(value, 0, 1))
	}

	base := 0.6 + math.Min(float64(commentCount)*0.03, 0.15) + math.Min(float64(votes)*0.01, 0.1)
	stalenessPenalty := math.Min(daysSinceUpdate/120, 0.25)
	return round2(clamp(round2(base-stalenessPenalty), 0.4, 0.9))
}

// suggestedAction is a status-driven decision table; the first matching rule
// wins.
func suggestedAction(statusName, theme string, urgency int) string {
	if statusName == "" {
		return fmt.Sprintf("次のステップとして %s に関する対応案を検討してください。", theme)
	}
	status := strings.ToLower(statusName)

	if strings.Contains(status, "done") || strings.Contains(status, "完了") {
		return "完了後の影響確認とフィードバック収集を継続してください。"
	}

	if urgency >= 8 {
		return "直近のスプリントで優先対応できるよう、担当者アサインと要件の確定を行ってください。"
	}

	if strings.Contains(status, "in progress") || strings.Contains(status, "進行") {
		return "進行中の作業内容を棚卸しし、次のデリバリープランを更新してください。"
	}

	if theme == ThemeUX {
		return "ユーザビリティテストまたは顧客ヒアリングで改善案の検証を進めてください。"
	}

	if theme == ThemeStability {
		return "原因調査と再発防止策の整理を進め、必要であればホットフィックスを検討してください。"
	}

	return fmt.Sprintf("バックログの優先度を見直し、%s に関する次のアクションを決めてください。", theme)
}

func analysisNote(votes, commentCount int, theme string, daysSinceUpdate float64, impact, effort, urgency int) string {
	parts := []string{
		fmt.Sprintf("投票数 %d 件、コメント %d 件を参照しました。", votes, commentCount),
		fmt.Sprintf("最終更新から %d 日経過しています。", int(math.Round(daysSinceUpdate))),
		fmt.Sprintf("テーマは「%s」と推定しました。", theme),
		fmt.Sprintf("インパクト %d、緊急度 %d、労力 %d を基に優先度を算出しています。", impact, urgency, effort),
	}
	return strings.Join(parts, " ")
}

// clampScore rounds to the nearest integer and clamps to the 1..10 range.
func clampScore(value float64) int {
	return int(clamp(math.Round(value), 1, 10))
}

func clamp(value, min, max float64) float64 {
	return math.Min(math.Max(value, min), max)
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

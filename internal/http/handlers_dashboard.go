package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"fintrack/internal/core"
)

const recentHistorySize = 5

type emotionView struct {
	Emotion string `json:"emotion"`
	Count   int    `json:"count"`
	Amount  string `json:"amount"`
}

type habitView struct {
	Habit  string `json:"habit"`
	Impact string `json:"impact"`
	Advice string `json:"advice"`
}

type challengeView struct {
	TargetPercent   int     `json:"target_percent"`
	TargetAmount    float64 `json:"target_amount"`
	DailyTarget     float64 `json:"daily_target"`
	AccruedTarget   float64 `json:"accrued_target"`
	ActualSavings   float64 `json:"actual_savings"`
	TodayRequired   float64 `json:"today_required"`
	IsBehind        bool    `json:"is_behind"`
	ProgressPercent float64 `json:"progress_percent"`
}

// dashboardView is one fully derived analytics snapshot. It is what
// the cache stores, so it must stay a plain value type.
type dashboardView struct {
	Income        string            `json:"income"`
	Expense       string            `json:"expense"`
	Balance       string            `json:"balance"`
	HealthScore   int               `json:"health_score"`
	Emotions      []emotionView     `json:"emotions"`
	Habits        []habitView       `json:"habits"`
	Challenge     challengeView     `json:"challenge"`
	RecentHistory []transactionView `json:"recent_history"`
	GeneratedAt   time.Time         `json:"generated_at"`
}

func validTargetPercent(p int) bool {
	switch p {
	case 10, 20, 30, 40, 50:
		return true
	}
	return false
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	target := 30
	if v := r.URL.Query().Get("target"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || !validTargetPercent(parsed) {
			respondError(w, http.StatusBadRequest, "target must be one of 10, 20, 30, 40, 50", nil)
			return
		}
		target = parsed
	}

	key := "target=" + strconv.Itoa(target)
	if view, ok := s.dashCache.Get(key); ok {
		slog.DebugContext(r.Context(), "Dashboard cache hit", "target", target)
		respondOK(w, http.StatusOK, "", view)
		return
	}

	txs, err := s.transactions.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load transactions for dashboard", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to build dashboard", nil)
		return
	}

	view := buildDashboard(txs, target, time.Now())
	s.dashCache.Set(key, view)
	respondOK(w, http.StatusOK, "", view)
}

func buildDashboard(txs []core.Transaction, targetPercent int, now time.Time) dashboardView {
	balance := core.TotalBalance(txs)

	emotions := core.EmotionBreakdown(txs)
	emotionViews := make([]emotionView, 0, len(emotions))
	for _, e := range []core.Emotion{
		core.EmotionNeutral, core.EmotionHappy, core.EmotionGuilty,
		core.EmotionImpulsive, core.EmotionStressed, core.EmotionBored,
	} {
		stat, ok := emotions[e]
		if !ok {
			continue
		}
		emotionViews = append(emotionViews, emotionView{
			Emotion: string(e),
			Count:   stat.Count,
			Amount:  stat.Amount.String(),
		})
	}

	habits := make([]habitView, 0)
	for _, h := range core.HabitWarnings(txs) {
		habits = append(habits, habitView(h))
	}

	ch := core.SavingsChallenge(txs, targetPercent, now)

	recent := core.RecentHistory(txs, recentHistorySize)
	recentViews := make([]transactionView, 0, len(recent))
	for _, tx := range recent {
		recentViews = append(recentViews, viewOf(tx, now))
	}

	return dashboardView{
		Income:        core.Money{Cents: core.TotalIncome(txs)}.String(),
		Expense:       core.Money{Cents: core.TotalExpense(txs)}.String(),
		Balance:       core.Money{Cents: balance}.String(),
		HealthScore:   core.HealthScore(txs),
		Emotions:      emotionViews,
		Habits:        habits,
		Challenge:     challengeView(ch),
		RecentHistory: recentViews,
		GeneratedAt:   now,
	}
}

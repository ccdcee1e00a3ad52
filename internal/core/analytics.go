package core

import (
	"math"
	"sort"
	"time"
)

const (
	ImpactHigh      = "High"
	ImpactMedium    = "Medium"
	ImpactSustained = "Sustained"
)

type (
	// EmotionStat aggregates expense transactions tagged with one emotion.
	EmotionStat struct {
		Count  int
		Amount Money
	}

	// HabitWarning is a detected spending pattern worth flagging to the user.
	HabitWarning struct {
		Habit  string
		Impact string
		Advice string
	}

	// ChallengeReport is the state of the monthly savings challenge at a
	// given instant. Monetary fields are in currency units, not cents,
	// since daily amortization does not divide evenly into cents.
	ChallengeReport struct {
		TargetPercent   int
		TargetAmount    float64
		DailyTarget     float64
		AccruedTarget   float64
		ActualSavings   float64
		TodayRequired   float64
		IsBehind        bool
		ProgressPercent float64
	}
)

// TotalIncome sums the amounts of all income transactions, in cents.
func TotalIncome(txs []Transaction) int64 {
	var total int64
	for _, t := range txs {
		if t.Type == Income {
			total += t.Amount.Cents
		}
	}
	return total
}

// TotalExpense sums the amounts of all expense transactions, in cents.
func TotalExpense(txs []Transaction) int64 {
	var total int64
	for _, t := range txs {
		if t.Type == Expense {
			total += t.Amount.Cents
		}
	}
	return total
}

// TotalBalance is income minus expense, in cents. It may be negative;
// display layers floor it at zero.
func TotalBalance(txs []Transaction) int64 {
	return TotalIncome(txs) - TotalExpense(txs)
}

// HealthScore grades the income/expense ratio on a 0-100 scale.
// A zero or missing income scores 0 regardless of spending.
func HealthScore(txs []Transaction) int {
	income := TotalIncome(txs)
	if income <= 0 {
		return 0
	}
	expense := TotalExpense(txs)
	score := float64(income-expense) / float64(income) * 100
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return int(math.Round(score))
}

// EmotionBreakdown buckets expense transactions by emotion. Income
// transactions never contribute. Untagged expenses count as neutral.
func EmotionBreakdown(txs []Transaction) map[Emotion]EmotionStat {
	out := make(map[Emotion]EmotionStat)
	for _, t := range txs {
		if t.Type != Expense {
			continue
		}
		e := t.Emotion
		if e == "" {
			e = EmotionNeutral
		}
		stat := out[e]
		stat.Count++
		stat.Amount.Cents += t.Amount.Cents
		out[e] = stat
	}
	return out
}

// HabitWarnings evaluates the emotion buckets against fixed thresholds.
// An empty result means no concerning pattern was detected.
func HabitWarnings(txs []Transaction) []HabitWarning {
	breakdown := EmotionBreakdown(txs)
	totalIncome := TotalIncome(txs)

	var warnings []HabitWarning

	// Impulsive spending trips on frequency or on spend above 10% of
	// total income. The comparison stays in integer cents.
	if s, ok := breakdown[EmotionImpulsive]; ok {
		if s.Count > 2 || s.Amount.Cents*10 > totalIncome {
			warnings = append(warnings, HabitWarning{
				Habit:  "Impulsive Shopping",
				Impact: ImpactHigh,
				Advice: "Wait 24 hours before unplanned purchases.",
			})
		}
	}

	if s, ok := breakdown[EmotionGuilty]; ok && s.Count > 1 {
		warnings = append(warnings, HabitWarning{
			Habit:  "Regretful Spending",
			Impact: ImpactMedium,
			Advice: "Review what triggered these purchases.",
		})
	}

	if s, ok := breakdown[EmotionBored]; ok && s.Count > 3 {
		warnings = append(warnings, HabitWarning{
			Habit:  "Automated Boredom",
			Impact: ImpactSustained,
			Advice: "Replace browsing sessions with a no-spend activity.",
		})
	}

	return warnings
}

// SavingsChallenge computes the monthly savings challenge for the month
// containing now. Transactions dated before the first of that month are
// ignored. targetPercent is the share of total income to save.
func SavingsChallenge(txs []Transaction, targetPercent int, now time.Time) ChallengeReport {
	income := float64(TotalIncome(txs)) / 100.0
	targetAmount := income * float64(targetPercent) / 100.0

	year, month, day := now.Date()
	daysInMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, now.Location()).Day()
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, now.Location())

	dailyTarget := targetAmount / float64(daysInMonth)
	accrued := dailyTarget * float64(day)

	var monthIncome, monthExpense int64
	for _, t := range txs {
		if t.Date.Before(monthStart) {
			continue
		}
		switch t.Type {
		case Income:
			monthIncome += t.Amount.Cents
		case Expense:
			monthExpense += t.Amount.Cents
		}
	}
	actual := float64(monthIncome-monthExpense) / 100.0

	// Any shortfall against the accrued target is spread on top of the
	// daily target over the remaining days of the month, today included.
	remainingDays := daysInMonth - day + 1
	gap := accrued - actual
	todayRequired := dailyTarget
	if gap > 0 && remainingDays > 0 {
		todayRequired = dailyTarget + gap/float64(remainingDays)
	}

	var progress float64
	if targetAmount > 0 {
		progress = actual / targetAmount * 100
	}

	return ChallengeReport{
		TargetPercent:   targetPercent,
		TargetAmount:    targetAmount,
		DailyTarget:     dailyTarget,
		AccruedTarget:   accrued,
		ActualSavings:   actual,
		TodayRequired:   todayRequired,
		IsBehind:        actual < accrued-1,
		ProgressPercent: progress,
	}
}

// RecentHistory returns the n most recently created transactions,
// newest first. The input slice is not modified.
func RecentHistory(txs []Transaction, n int) []Transaction {
	sorted := make([]Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

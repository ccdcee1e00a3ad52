package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	DivisionPersonal Division = "Personal"
	DivisionOffice   Division = "Office"
)

const (
	EmotionNeutral   Emotion = "neutral"
	EmotionHappy     Emotion = "happy"
	EmotionGuilty    Emotion = "guilty"
	EmotionImpulsive Emotion = "impulsive"
	EmotionStressed  Emotion = "stressed"
	EmotionBored     Emotion = "bored"
)

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
)

const (
	DefaultOwnerID       = "anonymous"
	DefaultPaymentMethod = "Cash"
)

// EditWindow is how long after creation a transaction stays editable.
const EditWindow = 12 * time.Hour

type (
	TransactionType string
	Division        string
	Emotion         string
	Status          string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is the single persisted entity: one income or expense
	// record. ID and CreatedAt are assigned by the store.
	Transaction struct {
		ID            string
		OwnerID       string
		Title         string
		Amount        Money
		Type          TransactionType
		Category      string
		Description   string
		Date          Date
		Division      Division
		PaymentMethod string
		Emotion       Emotion
		Status        Status
		CreatedAt     time.Time
	}
)

var (
	ErrEmptyTitle       = errors.New("empty title")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidDivision  = errors.New("invalid division")
	ErrInvalidEmotion   = errors.New("invalid emotion")

	// ErrNotFound is returned by stores when an id does not resolve.
	ErrNotFound = errors.New("transaction not found")
)

var validationErrors = []error{
	ErrEmptyTitle,
	ErrEmptyCategory,
	ErrEmptyDescription,
	ErrInvalidAmount,
	ErrInvalidType,
	ErrInvalidDate,
	ErrInvalidDivision,
	ErrInvalidEmotion,
}

// IsValidationError reports whether err is one of the input validation
// sentinels, so callers can tell bad input apart from storage failures.
func IsValidationError(err error) bool {
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (d Division) Valid() bool {
	return d == DivisionPersonal || d == DivisionOffice
}

func (e Emotion) Valid() bool {
	switch e {
	case EmotionNeutral, EmotionHappy, EmotionGuilty, EmotionImpulsive, EmotionStressed, EmotionBored:
		return true
	}
	return false
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Normalize fills in defaults for the optional fields. Emotion is only
// meaningful for expenses; incomes are forced back to neutral.
func (t *Transaction) Normalize() {
	if strings.TrimSpace(t.OwnerID) == "" {
		t.OwnerID = DefaultOwnerID
	}
	if strings.TrimSpace(t.PaymentMethod) == "" {
		t.PaymentMethod = DefaultPaymentMethod
	}
	if t.Division == "" {
		t.Division = DivisionPersonal
	}
	if t.Emotion == "" || t.Type == Income {
		t.Emotion = EmotionNeutral
	}
	if t.Status == "" {
		t.Status = StatusPending
	}
}

func (t Transaction) Validate() error {
	if len(strings.TrimSpace(t.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(strings.TrimSpace(t.Category)) == 0 {
		return ErrEmptyCategory
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if t.Division != "" && !t.Division.Valid() {
		return ErrInvalidDivision
	}
	if t.Emotion != "" && !t.Emotion.Valid() {
		return ErrInvalidEmotion
	}
	return nil
}

// EditableAt reports whether the transaction is still inside its edit
// window at the given instant. Derived for display, never stored.
func (t Transaction) EditableAt(now time.Time) bool {
	if t.CreatedAt.IsZero() {
		return false
	}
	return now.Sub(t.CreatedAt) <= EditWindow
}

package approval

import (
	"strconv"
	"strings"
	"time"

	"github.com/frahmantamala/attendance-management/internal"
)

// Action tokens are case-sensitive fixed syntax; anything else is ordinary
// text.
const (
	ActionApprove         = "Approve"
	ActionNeedsDiscussion = "NeedsDiscussion"
	ActionAddBonus        = "AddBonus"
)

const (
	reviewUsage = "usage: Approve <name> 2025-07-01 / NeedsDiscussion <name> 2025-07-01"
	bonusUsage  = "usage: AddBonus <name> 2025-07 12000 <note>"
)

// ReviewCommand targets one pending leave day. Approving a multi-day range
// takes one command per date.
type ReviewCommand struct {
	Action      string
	DisplayName string
	Date        string
}

type BonusCommand struct {
	DisplayName string
	YearMonth   string
	Amount      int64
	Note        string
}

func IsReviewCommand(text string) bool {
	fields := strings.Fields(text)
	return len(fields) > 0 && (fields[0] == ActionApprove || fields[0] == ActionNeedsDiscussion)
}

func IsBonusCommand(text string) bool {
	fields := strings.Fields(text)
	return len(fields) > 0 && fields[0] == ActionAddBonus
}

func ParseReviewCommand(text string) (*ReviewCommand, error) {
	fields := strings.Fields(text)
	if len(fields) < 3 {
		return nil, internal.NewValidationError(reviewUsage, internal.ErrCodeInvalidCommand)
	}

	if _, err := time.Parse("2006-01-02", fields[2]); err != nil {
		return nil, internal.NewValidationError(reviewUsage, internal.ErrCodeInvalidDate)
	}

	return &ReviewCommand{
		Action:      fields[0],
		DisplayName: fields[1],
		Date:        fields[2],
	}, nil
}

func ParseBonusCommand(text string) (*BonusCommand, error) {
	fields := strings.Fields(text)
	if len(fields) < 5 {
		return nil, internal.NewValidationError(bonusUsage, internal.ErrCodeInvalidCommand)
	}

	if _, err := time.Parse("2006-01", fields[2]); err != nil {
		return nil, internal.NewValidationError(bonusUsage, internal.ErrCodeInvalidMonth)
	}

	amount, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil || amount <= 0 {
		return nil, internal.NewValidationError(bonusUsage, internal.ErrCodeInvalidAmount)
	}

	return &BonusCommand{
		DisplayName: fields[1],
		YearMonth:   fields[2],
		Amount:      amount,
		Note:        strings.Join(fields[4:], " "),
	}, nil
}

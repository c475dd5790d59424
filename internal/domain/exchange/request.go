package exchange

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/cashswap-backend/internal/geo"
)

// MoneyKind is one side of an exchange. It is two-valued on purpose: matching
// relies on Opposite being a total involution.
type MoneyKind string

const (
	KindCash    MoneyKind = "cash"
	KindDigital MoneyKind = "digital"
)

func ParseMoneyKind(raw string) (MoneyKind, bool) {
	k := MoneyKind(strings.ToLower(strings.TrimSpace(raw)))
	return k, k.Valid()
}

func (k MoneyKind) Valid() bool { return k == KindCash || k == KindDigital }

// Opposite returns the complement (cash <-> digital). Invalid kinds map to "".
func (k MoneyKind) Opposite() MoneyKind {
	switch k {
	case KindCash:
		return KindDigital
	case KindDigital:
		return KindCash
	default:
		return ""
	}
}

// ExchangeRequest is an offer to swap Amount of Have for Want near Location.
// Rows are written once and never updated.
type ExchangeRequest struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PosterName  string    `gorm:"column:poster_name;not null" json:"name"`
	PosterEmail string    `gorm:"column:poster_email;not null;index:idx_exchange_request_poster_posted,priority:1" json:"email"`

	Have   MoneyKind `gorm:"column:have;type:varchar(16);not null;index" json:"have"`
	Want   MoneyKind `gorm:"column:want;type:varchar(16);not null" json:"want"`
	Amount float64   `gorm:"column:amount;not null" json:"amount"`

	Location geo.Point `gorm:"embedded" json:"location"`

	PostedAt time.Time `gorm:"column:posted_at;not null;index;index:idx_exchange_request_poster_posted,priority:2" json:"posted_at"`
}

func (ExchangeRequest) TableName() string { return "exchange_request" }

func (r *ExchangeRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.PostedAt.IsZero() {
		r.PostedAt = time.Now().UTC()
	}
	return nil
}

// NewRequest carries caller input for an insert; it is validated before it
// becomes an ExchangeRequest.
type NewRequest struct {
	PosterName  string
	PosterEmail string
	Have        MoneyKind
	Want        MoneyKind
	Amount      float64
	Location    *geo.Point
}

// PublicRequest is the unauthenticated browse projection.
type PublicRequest struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Have     MoneyKind `json:"have"`
	Want     MoneyKind `json:"want"`
	Amount   float64   `json:"amount"`
	Location geo.Point `json:"location"`
	PostedAt time.Time `json:"posted_at"`
}

func (r *ExchangeRequest) Public() PublicRequest {
	return PublicRequest{
		ID:       r.ID,
		Name:     r.PosterName,
		Email:    r.PosterEmail,
		Have:     r.Have,
		Want:     r.Want,
		Amount:   r.Amount,
		Location: r.Location,
		PostedAt: r.PostedAt,
	}
}

// Filter narrows a proximity query; zero fields match anything.
type Filter struct {
	Have            MoneyKind
	Want            MoneyKind
	ExcludeIdentity string
}

func (f Filter) Match(r *ExchangeRequest) bool {
	if r == nil {
		return false
	}
	if f.Have != "" && r.Have != f.Have {
		return false
	}
	if f.Want != "" && r.Want != f.Want {
		return false
	}
	if f.ExcludeIdentity != "" && strings.EqualFold(r.PosterEmail, f.ExcludeIdentity) {
		return false
	}
	return true
}

// Match is a candidate counterparty and its distance from the query point in metres.
type Match struct {
	Request  *ExchangeRequest `json:"request"`
	Distance float64          `json:"distance_m"`
}
